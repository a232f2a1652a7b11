package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is persisted on the user row and is the only source of authorization decisions
type Role string

const (
	RoleClient  Role = "client"
	RoleSupport Role = "support"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleSupport
}

// User is the users/{uid} record: identity, credentials and role
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email string    `gorm:"type:text;unique;not null" json:"email"`
	Name  string    `gorm:"type:text" json:"name"`
	Role  Role      `gorm:"type:text;not null;default:'client'" json:"role"`

	PasswordHash string `gorm:"type:text" json:"-"`

	// OAuth
	GoogleID      *string `gorm:"type:text;unique;column:google_id" json:"google_id,omitempty"`
	OAuthProvider string  `gorm:"type:text;default:'email';column:oauth_provider" json:"oauth_provider"`
	AvatarURL     string  `gorm:"type:text" json:"avatar_url,omitempty"`

	IsActive bool `gorm:"type:boolean;default:true" json:"is_active"`

	RefreshToken          *string    `gorm:"type:text" json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "app_users"
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	GoogleIDToken string `json:"google_id_token" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
	User         *UserInfo `json:"user"`
}

type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	Role          Role   `json:"role"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	OAuthProvider string `json:"oauth_provider"`
}

// TokenClaims are what we sign into access tokens. Role here is informational only;
// requests re-read it from the user row.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func userInfo(u *User) *UserInfo {
	return &UserInfo{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		AvatarURL:     u.AvatarURL,
		OAuthProvider: u.OAuthProvider,
	}
}
