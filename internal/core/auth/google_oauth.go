package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleUserInfo is what we keep from a verified Google ID token
type GoogleUserInfo struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// GoogleVerifier checks Google sign-in tokens
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error)
}

type GoogleOAuthService struct {
	clientID string
}

func NewGoogleOAuthService(clientID string) *GoogleOAuthService {
	return &GoogleOAuthService{clientID: clientID}
}

func (s *GoogleOAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	if s.clientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured")
	}

	payload, err := idtoken.Validate(ctx, idToken, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify Google ID token: %w", err)
	}

	googleID, ok := payload.Claims["sub"].(string)
	if !ok || googleID == "" {
		return nil, fmt.Errorf("missing sub claim in token")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	avatarURL, _ := payload.Claims["picture"].(string)

	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, fmt.Errorf("email not verified by Google")
	}

	return &GoogleUserInfo{
		GoogleID:  googleID,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
	}, nil
}
