package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/client"
)

// app is what every subcommand gets: the API client and the cached session
type app struct {
	apiURL  string
	out     io.Writer
	store   *client.SessionStore
	session *client.Session
	api     *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "proposal-ai",
		Short:         "Generate proposals and quotations, chat with support",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
	}

	defaultURL := os.Getenv("PROPOSAL_AI_API")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVar(&a.apiURL, "api", defaultURL, "API base URL (env PROPOSAL_AI_API)")

	cmd.AddCommand(
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProposalCmd(a),
		newQuotationCmd(a),
		newChatCmd(a),
		newSupportCmd(a),
	)
	return cmd
}

// open reads the cached session so the command knows who is logged in
func (a *app) open(ctx context.Context) error {
	path, err := client.DefaultSessionPath()
	if err != nil {
		return err
	}
	a.store, err = client.OpenSessionStore(path)
	if err != nil {
		return err
	}

	a.session, err = a.store.Load(ctx)
	switch {
	case errors.Is(err, client.ErrNoSession):
		a.session = nil
	case err != nil:
		return err
	}

	var opts []client.Option
	if a.session != nil {
		opts = append(opts, client.WithToken(a.session.AccessToken))
	}
	a.api = client.New(a.apiURL, opts...)
	return nil
}

func (a *app) requireLogin() error {
	if a.session == nil {
		return errors.New("not logged in, run `proposal-ai login` first")
	}
	return nil
}

func (a *app) requireSupport() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.session.IsSupport() {
		return errors.New("this command is for support accounts")
	}
	return nil
}

// withRefresh retries fn once after rotating tokens when the access token was rejected
func (a *app) withRefresh(ctx context.Context, fn func() error) error {
	err := fn()
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 || a.session == nil || a.session.RefreshToken == "" {
		return err
	}

	resp, rerr := a.api.Refresh(ctx, a.session.RefreshToken)
	if rerr != nil {
		return err
	}
	if resp.User != nil {
		a.session = client.SessionFrom(resp)
	} else {
		a.session.AccessToken, a.session.RefreshToken = resp.AccessToken, resp.RefreshToken
	}
	a.api.SetToken(a.session.AccessToken)
	if serr := a.store.Save(ctx, a.session); serr != nil {
		return serr
	}
	return fn()
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
