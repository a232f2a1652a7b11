package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserStore is the users/{uid} gateway the auth service depends on
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeRefreshToken(ctx context.Context, userID string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ErrNotFound is returned by UserStore lookups that match nothing
var ErrNotFound = errors.New("user not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) first(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ? AND is_active = ?", email, true)
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.first(ctx, "id = ? AND is_active = ?", id, true)
}

func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.first(ctx, "google_id = ? AND is_active = ?", googleID, true)
}

// GetUserByRefreshToken returns ErrNotFound for unknown and expired tokens alike
func (r *Repository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*User, error) {
	user, err := r.first(ctx, "refresh_token = ? AND is_active = ?", refreshToken, true)
	if err != nil {
		return nil, err
	}
	if user.RefreshTokenExpiresAt != nil && user.RefreshTokenExpiresAt.Before(time.Now()) {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *Repository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":            refreshToken,
			"refresh_token_expires_at": expiresAt,
		}).Error
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("last_login_at", time.Now()).Error
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":            nil,
			"refresh_token_expires_at": nil,
		}).Error
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ UserStore = (*Repository)(nil)
