package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDataNotFound   = errors.New("user data not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthError covers credential and identity failures. Callers show it and let the user retry.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %v", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

func authErr(reason error) error {
	return &AuthError{Reason: reason}
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
