package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/config"
)

// Provider defines the interface for email providers
type Provider interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
	GetProviderName() string
}

// NewProvider picks the provider from config; nil when email is not configured
func NewProvider(cfg config.EmailConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for the resend provider")
		}
		return NewResendProvider(cfg.ResendAPIKey, cfg.FromEmail, cfg.FromName), nil
	case "brevo":
		if cfg.BrevoAPIKey == "" {
			return nil, fmt.Errorf("BREVO_API_KEY is required for the brevo provider")
		}
		return NewBrevoProvider(cfg.BrevoAPIKey, cfg.FromEmail, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// Service wraps the email provider
type Service struct {
	provider Provider
}

// NewService creates a new email service with the specified provider
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
	}
}

// Enabled reports whether a provider is configured
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// SendEmail sends an HTML email
func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	if !s.Enabled() {
		return fmt.Errorf("no email provider configured")
	}
	return s.provider.SendEmail(ctx, to, subject, body)
}

// SendTemplateEmail renders a titled message into the standard layout and sends it
func (s *Service) SendTemplateEmail(ctx context.Context, to, subject string, data TemplateData) error {
	body, err := RenderTemplate(data)
	if err != nil {
		return err
	}
	return s.SendEmail(ctx, to, subject, body)
}

// GetProviderName returns the name of the current provider
func (s *Service) GetProviderName() string {
	if !s.Enabled() {
		return "none"
	}
	return s.provider.GetProviderName()
}

// TemplateData fills the standard email layout
type TemplateData struct {
	Title   string
	Message string
	// Rows render as a two-column table below the message
	Rows   [][2]string
	Footer string
}

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 10px; text-align: center; font-size: 12px; color: #666; }
        td { padding: 4px 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
        </div>
        <div class="content">
            <p>{{.Message}}</p>
            {{- if .Rows}}
            <table>
            {{- range .Rows}}
                <tr><td><strong>{{index . 0}}</strong></td><td>{{index . 1}}</td></tr>
            {{- end}}
            </table>
            {{- end}}
        </div>
        <div class="footer">
            <p>{{.Footer}}</p>
        </div>
    </div>
</body>
</html>`))

// RenderTemplate builds the HTML body; values are escaped
func RenderTemplate(data TemplateData) (string, error) {
	if data.Title == "" {
		data.Title = "Notification"
	}
	if data.Footer == "" {
		data.Footer = "Sent from Proposal AI"
	}
	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
