package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// EmailService is the subset of email.Service used here
type EmailService interface {
	Enabled() bool
	SendTemplateEmail(ctx context.Context, to, subject string, data email.TemplateData) error
}

// AcceptedQuotation describes a quotation a client just accepted
type AcceptedQuotation struct {
	QuotationID   string
	UserID        string
	UserEmail     string
	Reference     string
	CompanyName   string
	ClientName    string
	TotalCost     int64
	AcceptedAt    time.Time
	CorrelationID string
}

// Service fans acceptance out to the sales inbox and the event bus
type Service struct {
	emailService EmailService
	publisher    events.Publisher
	salesEmail   string
}

// NewService creates a new notification service. Either dependency may be nil.
func NewService(emailSvc EmailService, publisher events.Publisher, salesEmail string) *Service {
	return &Service{
		emailService: emailSvc,
		publisher:    publisher,
		salesEmail:   salesEmail,
	}
}

// QuotationAccepted publishes quotation.accepted and emails the sales team.
// Both channels are attempted; the returned error joins whatever failed.
func (s *Service) QuotationAccepted(ctx context.Context, q AcceptedQuotation) error {
	var errs []error

	if s.publisher != nil {
		env := events.NewEnvelope(events.QuotationAccepted, events.QuotationAcceptedData{
			QuotationID: q.QuotationID,
			UserID:      q.UserID,
			Reference:   q.Reference,
			CompanyName: q.CompanyName,
			TotalCost:   q.TotalCost,
			AcceptedAt:  q.AcceptedAt,
		}, q.CorrelationID)
		if err := s.publisher.Publish(ctx, env); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	if s.salesEmail != "" && s.emailService != nil && s.emailService.Enabled() {
		subject := fmt.Sprintf("Quotation %s accepted by %s", q.Reference, displayName(q))
		err := s.emailService.SendTemplateEmail(ctx, s.salesEmail, subject, email.TemplateData{
			Title:   "Quotation accepted",
			Message: fmt.Sprintf("%s has accepted quotation %s.", displayName(q), q.Reference),
			Rows: [][2]string{
				{"Reference", q.Reference},
				{"Company", q.CompanyName},
				{"Client", q.ClientName},
				{"Account", q.UserEmail},
				{"Total", export.FormatINR(q.TotalCost)},
				{"Accepted at", q.AcceptedAt.Format(time.RFC1123)},
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		} else {
			utils.LogInfo("Acceptance email sent", map[string]interface{}{
				"quotation_id": q.QuotationID,
				"to":           s.salesEmail,
			})
		}
	}

	return errors.Join(errs...)
}

func displayName(q AcceptedQuotation) string {
	switch {
	case q.CompanyName != "":
		return q.CompanyName
	case q.ClientName != "":
		return q.ClientName
	case q.UserEmail != "":
		return q.UserEmail
	default:
		return "A client"
	}
}
