package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/client"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

func newChatCmd(a *app) *cobra.Command {
	var supportID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to support",
	}
	cmd.PersistentFlags().StringVar(&supportID, "support-id", "", "open a specific support agent's thread")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the conversation, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			return a.withRefresh(cmd.Context(), func() error {
				resp, err := a.api.Messages(cmd.Context(), supportID)
				if err != nil {
					return err
				}
				a.printMessages(resp.Messages)
				return nil
			})
		},
	}

	send := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			return a.withRefresh(cmd.Context(), func() error {
				_, err := a.api.SendMessage(cmd.Context(), strings.Join(args, " "), supportID)
				return err
			})
		},
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Follow the conversation until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			return a.follow(cmd.Context(), func(ctx context.Context) error {
				return a.api.ChatStream(ctx, supportID, func(resp models.MessagesResponse) error {
					a.printf("\n── %s ──\n", resp.Key)
					a.printMessages(resp.Messages)
					return nil
				})
			})
		},
	}

	cmd.AddCommand(show, send, watch)
	return cmd
}

func newSupportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Support console",
	}

	conversations := &cobra.Command{
		Use:   "conversations",
		Short: "List conversations, most recently active first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSupport(); err != nil {
				return err
			}
			return a.withRefresh(cmd.Context(), func() error {
				convs, err := a.api.Conversations(cmd.Context())
				if err != nil {
					return err
				}
				a.printConversations(convs)
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <key>",
		Short: "Print a conversation, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSupport(); err != nil {
				return err
			}
			return a.withRefresh(cmd.Context(), func() error {
				resp, err := a.api.ConversationMessages(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printMessages(resp.Messages)
				return nil
			})
		},
	}

	reply := &cobra.Command{
		Use:   "reply <key> <text>",
		Short: "Reply in a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSupport(); err != nil {
				return err
			}
			return a.withRefresh(cmd.Context(), func() error {
				_, err := a.api.Reply(cmd.Context(), args[0], strings.Join(args[1:], " "))
				return err
			})
		},
	}

	var key string
	watch := &cobra.Command{
		Use:   "watch [--key <conversation>]",
		Short: "Follow the conversation list and optionally one thread",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSupport(); err != nil {
				return err
			}
			return a.follow(cmd.Context(), func(ctx context.Context) error {
				return a.api.SupportStream(ctx, key,
					func(convs []chat.Conversation) error {
						a.printf("\n── conversations ──\n")
						a.printConversations(convs)
						return nil
					},
					func(resp models.MessagesResponse) error {
						a.printf("\n── %s ──\n", resp.Key)
						a.printMessages(resp.Messages)
						return nil
					})
			})
		},
	}
	watch.Flags().StringVar(&key, "key", "", "conversation to follow")

	cmd.AddCommand(conversations, show, reply, watch)
	return cmd
}

// follow keeps a stream open, reconnecting after drops until ctx ends.
// Errors the API answered with are returned as they are.
func (a *app) follow(ctx context.Context, open func(context.Context) error) error {
	for {
		err := a.withRefresh(ctx, func() error { return open(ctx) })
		if ctx.Err() != nil {
			return nil
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return err
		}
		a.printf("⚠️  Stream dropped (%v), reconnecting...\n", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func (a *app) printMessages(msgs []chat.Message) {
	for _, m := range msgs {
		ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
		a.printf("[%s] %s: %s\n", ts, m.SenderEmail, m.Text)
	}
}

func (a *app) printConversations(convs []chat.Conversation) {
	for _, c := range convs {
		last := ""
		if c.LastMessage != nil {
			last = utils.Truncate(c.LastMessage.Text, 50)
		}
		a.printf("%-45s  %-30s  %s\n", c.Key, strings.Join(c.Participants, ","), last)
	}
}
