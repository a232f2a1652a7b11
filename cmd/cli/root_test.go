package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/client"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
)

func run(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", api}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedSession(t *testing.T, sess *client.Session) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("PROPOSAL_AI_HOME", home)
	if sess == nil {
		return
	}
	store, err := client.OpenSessionStore(filepath.Join(home, "session.db"))
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sess))
	require.NoError(t, store.Close())
}

func TestCLI_RequiresLogin(t *testing.T) {
	seedSession(t, nil)
	_, err := run(t, "http://127.0.0.1:1", "proposal", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestCLI_SupportCommandsNeedSupportRole(t *testing.T) {
	seedSession(t, &client.Session{UserID: "u-1", Email: "c@example.com", UserType: auth.RoleClient, IsLoggedIn: true, AccessToken: "tok"})
	_, err := run(t, "http://127.0.0.1:1", "support", "conversations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "support accounts")
}

func TestCLI_RefreshesExpiredToken(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+" "+r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/support/conversations":
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Invalid or expired token"}`))
				return
			}
			json.NewEncoder(w).Encode(models.ConversationsResponse{Conversations: []chat.Conversation{{Key: "user_1"}}})
		case "/auth/refresh":
			json.NewEncoder(w).Encode(auth.AuthResponse{AccessToken: "fresh", RefreshToken: "r2"})
		}
	}))
	defer srv.Close()

	seedSession(t, &client.Session{UserID: "s-1", Email: "s@example.com", UserType: auth.RoleSupport, IsLoggedIn: true, AccessToken: "stale", RefreshToken: "r1"})
	_, err := run(t, srv.URL, "support", "conversations")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/support/conversations Bearer stale",
		"/auth/refresh Bearer stale",
		"/support/conversations Bearer fresh",
	}, seen)
}
