package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
)

const sessionKey = "userData"

// ErrNoSession means nothing is cached; the user has to log in
var ErrNoSession = errors.New("no cached session")

// Session is the userData blob kept between CLI runs
type Session struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	UserType     auth.Role `json:"userType"`
	IsLoggedIn   bool      `json:"isLoggedIn"`
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
}

// SessionFrom builds the cached form of a login or signup response
func SessionFrom(resp *auth.AuthResponse) *Session {
	s := &Session{
		IsLoggedIn:   true,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.User != nil {
		s.UserID = resp.User.ID
		s.Email = resp.User.Email
		s.UserType = resp.User.Role
	}
	return s
}

func (s *Session) IsSupport() bool {
	return s != nil && s.IsLoggedIn && s.UserType == auth.RoleSupport
}

// DefaultSessionPath is $PROPOSAL_AI_HOME/session.db, falling back to ~/.proposal-ai/session.db
func DefaultSessionPath() (string, error) {
	dir := os.Getenv("PROPOSAL_AI_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".proposal-ai")
	}
	return filepath.Join(dir, "session.db"), nil
}

// SessionStore is a one-table key/value file on disk
type SessionStore struct {
	db *sql.DB
}

func OpenSessionStore(path string) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare session store: %w", err)
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Load(ctx context.Context) (*Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, sessionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("corrupt session blob: %w", err)
	}
	if !sess.IsLoggedIn {
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sessionKey, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear drops the cached session. Clearing an empty store is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}
