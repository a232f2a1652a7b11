package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/client"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
)

func newSignupCmd(a *app) *cobra.Command {
	var req auth.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup --email <email> [--name <name>]",
		Short: "Create a client account and log in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				pw, err := readPassword()
				if err != nil {
					return err
				}
				req.Password = pw
			}
			resp, err := a.api.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.remember(cmd.Context(), resp)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password, googleToken string
	cmd := &cobra.Command{
		Use:   "login --email <email> | --google-id-token <token>",
		Short: "Log in and cache the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				resp *auth.AuthResponse
				err  error
			)
			switch {
			case googleToken != "":
				resp, err = a.api.LoginWithGoogle(cmd.Context(), googleToken)
			case email != "":
				if password == "" {
					if password, err = readPassword(); err != nil {
						return err
					}
				}
				resp, err = a.api.Login(cmd.Context(), email, password)
			default:
				return errors.New("--email or --google-id-token is required")
			}
			if err != nil {
				return err
			}
			return a.remember(cmd.Context(), resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&googleToken, "google-id-token", "", "Google ID token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear the cached session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.session != nil {
				if err := a.api.Logout(cmd.Context()); err != nil {
					a.printf("⚠️  Server logout failed: %v\n", err)
				}
			}
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			a.printf("👋 Logged out\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session as the server sees it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var view *auth.StateView
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				view, err = a.api.Me(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return a.printJSON(view)
		},
	}
}

// remember caches the login so later commands can route on the user's role
func (a *app) remember(ctx context.Context, resp *auth.AuthResponse) error {
	a.session = client.SessionFrom(resp)
	if err := a.store.Save(ctx, a.session); err != nil {
		return err
	}
	a.printf("✅ Logged in as %s (%s)\n", a.session.Email, a.session.UserType)
	return nil
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
