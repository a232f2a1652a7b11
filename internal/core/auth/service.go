package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

type Service struct {
	repo       UserStore
	jwtService *JWTService
}

func NewService(repo UserStore, jwtSecret string) *Service {
	return &Service{
		repo:       repo,
		jwtService: NewJWTService(jwtSecret),
	}
}

// Signup creates a client account. Support accounts are never self-registered.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:         email,
		Name:          strings.TrimSpace(req.Name),
		Role:          RoleClient,
		PasswordHash:  passwordHash,
		OAuthProvider: "email",
		IsActive:      true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ User signed up: %s (%s)", user.Email, user.ID.String())
	return s.generateAuthResponse(ctx, user)
}

// Login checks credentials, then loads the persisted record that carries the role
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrNotFound) {
		return nil, authErr(ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == "" || VerifyPassword(user.PasswordHash, req.Password) != nil {
		return nil, authErr(ErrInvalidCredentials)
	}
	if !user.Role.Valid() {
		return nil, authErr(ErrUserDataNotFound)
	}

	_ = s.repo.UpdateLastLogin(ctx, user.ID.String())

	log.Printf("✅ User logged in: %s (%s, %s)", user.Email, user.ID.String(), user.Role)
	return s.generateAuthResponse(ctx, user)
}

// LoginWithGoogle signs in a verified Google account, linking by email or creating a client
func (s *Service) LoginWithGoogle(ctx context.Context, g *GoogleUserInfo) (*AuthResponse, error) {
	user, err := s.repo.GetUserByGoogleID(ctx, g.GoogleID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user, err = s.repo.GetUserByEmail(ctx, normalizeEmail(g.Email))
		switch {
		case err == nil:
			googleID := g.GoogleID
			user.GoogleID = &googleID
			if user.AvatarURL == "" {
				user.AvatarURL = g.AvatarURL
			}
			if err := s.repo.UpdateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
			log.Printf("🔗 Google account linked: %s", user.Email)

		case errors.Is(err, ErrNotFound):
			googleID := g.GoogleID
			user = &User{
				Email:         normalizeEmail(g.Email),
				Name:          g.Name,
				Role:          RoleClient,
				GoogleID:      &googleID,
				AvatarURL:     g.AvatarURL,
				OAuthProvider: "google",
				IsActive:      true,
			}
			if err := s.repo.CreateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}
			log.Printf("✅ New Google user registered: %s (%s)", user.Email, user.ID.String())

		default:
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
	}

	_ = s.repo.UpdateLastLogin(ctx, user.ID.String())
	return s.generateAuthResponse(ctx, user)
}

// RefreshToken rotates both tokens
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, authErr(ErrInvalidToken)
	}

	user, err := s.repo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil || user.ID.String() != userID {
		return nil, authErr(ErrInvalidToken)
	}

	return s.generateAuthResponse(ctx, user)
}

// Logout revokes the refresh token; the short-lived access token simply expires
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repo.RevokeRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	log.Printf("👋 User logged out: %s", userID)
	return nil
}

// CurrentState resolves an access token to Authenticated(identity, role), reading the role from the user row
func (s *Service) CurrentState(ctx context.Context, accessToken string) (State, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return AnonymousState(), authErr(ErrInvalidToken)
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, ErrNotFound) {
		return AnonymousState(), authErr(ErrUserDataNotFound)
	}
	if err != nil {
		return AnonymousState(), fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Role.Valid() {
		return AnonymousState(), authErr(ErrUserDataNotFound)
	}

	return AuthenticatedState(Identity{UserID: user.ID.String(), Email: user.Email}, user.Role), nil
}

// EnsureSupportUser seeds the support account. An existing row keeps its password but gets the support role.
func (s *Service) EnsureSupportUser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = normalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == RoleSupport {
			return nil
		}
		user.Role = RoleSupport
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to promote support user: %w", err)
		}
		log.Printf("🛟 Promoted %s to support", email)
		return nil

	case errors.Is(err, ErrNotFound):
		hash, err := HashPassword(password)
		if err != nil {
			return err
		}
		user = &User{
			Email:         email,
			Name:          "Support",
			Role:          RoleSupport,
			PasswordHash:  hash,
			OAuthProvider: "email",
			IsActive:      true,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create support user: %w", err)
		}
		log.Printf("🛟 Support user created: %s", email)
		return nil

	default:
		return fmt.Errorf("failed to look up support user: %w", err)
	}
}

func (s *Service) generateAuthResponse(ctx context.Context, user *User) (*AuthResponse, error) {
	claims := &TokenClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
	}

	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, expiresAt, err := s.jwtService.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID.String(), refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         userInfo(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
