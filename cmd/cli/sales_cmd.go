package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

func newProposalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Generate and track proposals",
	}

	generate := &cobra.Command{
		Use:   "generate [business description]",
		Short: "Generate a proposal",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var resp *models.GenerateProposalResponse
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				resp, err = a.api.GenerateProposal(cmd.Context(), strings.Join(args, " "))
				return err
			})
			if err != nil {
				return err
			}
			if !resp.Saved {
				a.printf("⚠️  Proposal was generated but not saved: %s\n\n", resp.SaveError)
			}
			a.printf("%s\n", resp.Proposal.Content)
			return nil
		},
	}

	var status string
	list := &cobra.Command{
		Use:   "list [--status accepted]",
		Short: "List proposals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var items []models.Proposal
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				items, err = a.api.ListProposals(cmd.Context(), status)
				return err
			})
			if err != nil {
				return err
			}
			for _, p := range items {
				a.printf("%s  %-8s  %s  %s\n", p.ID, p.Status, p.CreatedAt.Format("2006-01-02"), utils.Truncate(p.Business, 60))
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending, accepted or rejected")

	setStatus := &cobra.Command{
		Use:   "status <id> <pending|accepted|rejected>",
		Short: "Change a proposal's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var p *models.Proposal
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				p, err = a.api.UpdateProposalStatus(cmd.Context(), args[0], models.ProposalStatus(args[1]))
				return err
			})
			if err != nil {
				return err
			}
			a.printf("✅ Proposal %s is now %s\n", p.ID, p.Status)
			return nil
		},
	}

	cmd.AddCommand(generate, list, setStatus)
	return cmd
}

func newQuotationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotation",
		Short: "Generate, accept and export quotations",
	}

	var req models.GenerateQuotationRequest
	generate := &cobra.Command{
		Use:   "generate [business description]",
		Short: "Generate a priced quotation",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			req.Business = strings.Join(args, " ")
			var resp *models.GenerateQuotationResponse
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				resp, err = a.api.GenerateQuotation(cmd.Context(), req)
				return err
			})
			if err != nil {
				return err
			}
			if !resp.Saved {
				a.printf("⚠️  Quotation was generated but not saved: %s\n\n", resp.SaveError)
			}
			a.printQuotation(resp.Quotation)
			return nil
		},
	}
	generate.Flags().StringVar(&req.ClientDetails.ClientName, "client-name", "", "client contact name")
	generate.Flags().StringVar(&req.ClientDetails.CompanyName, "company", "", "client company name")
	generate.Flags().StringVar(&req.ClientDetails.Address, "address", "", "client address")
	generate.Flags().StringVar(&req.ClientDetails.PhoneNumber, "phone", "", "client phone number")
	generate.Flags().StringVar(&req.ClientDetails.Email, "email", "", "client email")

	var status, accepted string
	list := &cobra.Command{
		Use:   "list [--status pending] [--accepted true]",
		Short: "List quotations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var acc *bool
			if accepted != "" {
				v, err := strconv.ParseBool(accepted)
				if err != nil {
					return fmt.Errorf("--accepted must be true or false")
				}
				acc = &v
			}
			var items []models.Quotation
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				items, err = a.api.ListQuotations(cmd.Context(), status, acc)
				return err
			})
			if err != nil {
				return err
			}
			for _, q := range items {
				a.printf("%s  %-8s  %s  %-10s  %s\n", q.ID, q.Status, q.Reference, export.FormatINR(q.TotalCost), q.Client().CompanyName)
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending, accepted or expired")
	list.Flags().StringVar(&accepted, "accepted", "", "filter on the accepted flag")

	accept := &cobra.Command{
		Use:   "accept <id>",
		Short: "Accept a quotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var q *models.Quotation
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				q, err = a.api.AcceptQuotation(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			a.printf("🤝 Quotation %s accepted\n", q.Reference)
			return nil
		},
	}

	var outPath string
	pdf := &cobra.Command{
		Use:   "pdf <id> [-o file.pdf]",
		Short: "Download a quotation as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			tmp, err := os.CreateTemp(".", "quotation-*.pdf")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			var name string
			err = a.withRefresh(cmd.Context(), func() error {
				if err := tmp.Truncate(0); err != nil {
					return err
				}
				if _, err := tmp.Seek(0, 0); err != nil {
					return err
				}
				var err error
				name, err = a.api.DownloadPDF(cmd.Context(), args[0], tmp)
				return err
			})
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = name
			}
			if err := os.Rename(tmp.Name(), outPath); err != nil {
				return err
			}
			a.printf("📄 Saved %s\n", outPath)
			return nil
		},
	}
	pdf.Flags().StringVarP(&outPath, "output", "o", "", "output file (defaults to the server's file name)")

	var format string
	exportCmd := &cobra.Command{
		Use:   "export <id> [--format pdf|xlsx|html]",
		Short: "Render a quotation into export storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var res *models.ExportResponse
			err := a.withRefresh(cmd.Context(), func() error {
				var err error
				res, err = a.api.ExportQuotation(cmd.Context(), args[0], format)
				return err
			})
			if err != nil {
				return err
			}
			a.printf("📦 %s (%d bytes)\n", res.URL, res.Size)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "pdf", "pdf, xlsx or html")

	history := &cobra.Command{
		Use:   "history <id>",
		Short: "Show a quotation's audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			return a.withRefresh(cmd.Context(), func() error {
				logs, err := a.api.QuotationHistory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, l := range logs {
					a.printf("%s  %-13s  %s → %s\n", l.CreatedAt.Format("2006-01-02 15:04"), l.Action, string(l.OldValue), string(l.NewValue))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(generate, list, accept, pdf, exportCmd, history)
	return cmd
}

func (a *app) printQuotation(q *models.Quotation) {
	a.printf("%s  %s\n\n", q.Reference, q.IssuedOn)
	for _, item := range q.Services {
		a.printf("  %-40s %12s\n", utils.Truncate(item.Name, 40), export.FormatINR(item.Cost))
	}
	a.printf("  %-40s %12s\n", "Total", export.FormatINR(q.TotalCost))
}
