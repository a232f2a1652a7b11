package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
)

var (
	ErrNotFound         = repositories.ErrNotFound
	ErrForbidden        = errors.New("not allowed to access this document")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrQuotationExpired = errors.New("quotation has expired")
)

// Generator is the proposal facade as seen by the sales services. *proposal.Facade implements it.
type Generator interface {
	ProposalWithMeta(ctx context.Context, business string) (*proposal.ProposalResult, error)
	QuotationWithMeta(ctx context.Context, business string, client proposal.ClientDetails) (*proposal.QuotationResult, proposal.Prompt, error)
}

// AuditLogger interface for dependency injection
type AuditLogger interface {
	LogChange(ctx context.Context, c audit.Change) error
	GetEntityHistory(ctx context.Context, entity, entityID string) ([]audit.AuditLog, error)
}

// AcceptanceNotifier interface for dependency injection
type AcceptanceNotifier interface {
	QuotationAccepted(ctx context.Context, q notification.AcceptedQuotation) error
}

// DocumentExporter interface for dependency injection. *export.Service implements it.
type DocumentExporter interface {
	Render(doc *export.QuotationDocument, format export.ExportFormat, w io.Writer) (string, error)
	FileName(doc *export.QuotationDocument, format export.ExportFormat) string
	ExportQuotation(ctx context.Context, doc *export.QuotationDocument, format export.ExportFormat) (*upload.UploadResult, error)
}

// Actor is the authenticated caller of a sales operation
type Actor struct {
	UserID    uuid.UUID
	Email     string
	Role      auth.Role
	RequestID string
}

// ActorFrom converts an authenticated State into an Actor
func ActorFrom(state auth.State, requestID string) (Actor, error) {
	if !state.IsAuthenticated() {
		return Actor{}, &auth.AuthError{Reason: auth.ErrInvalidToken}
	}
	id, err := uuid.Parse(state.Identity.UserID)
	if err != nil {
		return Actor{}, fmt.Errorf("invalid user id %q: %w", state.Identity.UserID, err)
	}
	return Actor{
		UserID:    id,
		Email:     state.Identity.Email,
		Role:      state.Role,
		RequestID: requestID,
	}, nil
}

func (a Actor) IsSupport() bool {
	return a.Role == auth.RoleSupport
}

// canRead reports whether the actor may read a document owned by userID
func (a Actor) canRead(userID uuid.UUID) bool {
	return a.IsSupport() || a.UserID == userID
}

func (a Actor) userPtr() *uuid.UUID {
	id := a.UserID
	return &id
}
