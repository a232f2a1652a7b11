package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

const entityProposal = "proposal"

type ProposalService struct {
	repo      repositories.ProposalRepo
	generator Generator
	audit     AuditLogger
	publisher events.Publisher
}

// NewProposalService wires the proposal flow. audit and publisher may be nil.
func NewProposalService(
	repo repositories.ProposalRepo,
	generator Generator,
	auditLogger AuditLogger,
	publisher events.Publisher,
) *ProposalService {
	return &ProposalService{
		repo:      repo,
		generator: generator,
		audit:     auditLogger,
		publisher: publisher,
	}
}

// Generate produces a proposal and then tries to persist it. A generation failure
// returns the *llm.GenerationError; a save failure still returns the content with Saved=false.
func (s *ProposalService) Generate(ctx context.Context, actor Actor, business string) (*models.GenerateProposalResponse, error) {
	start := time.Now()
	res, err := s.generator.ProposalWithMeta(ctx, business)
	if err != nil {
		metrics.ObserveGeneration(string(proposal.KindProposal), metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	metrics.ObserveGeneration(string(proposal.KindProposal), metrics.OutcomeSuccess, time.Since(start))

	p := &models.Proposal{
		UserID:    actor.UserID,
		Business:  business,
		Content:   res.Content,
		Reference: res.Prompt.Reference,
	}

	resp := &models.GenerateProposalResponse{Proposal: p, Saved: true}
	if err := s.repo.Create(ctx, p); err != nil {
		utils.LogError("Failed to save generated proposal", err, map[string]interface{}{
			"user_id":   actor.UserID.String(),
			"reference": p.Reference,
		})
		metrics.IncUnsaved(string(proposal.KindProposal))
		p.ID = uuid.Nil
		resp.Saved = false
		resp.SaveError = err.Error()
	} else {
		log.Printf("✅ Proposal saved: %s (%s)", p.ID, p.Reference)
		s.logChange(ctx, actor, audit.ActionCreate, p.ID, nil, map[string]string{"status": string(p.Status)})
	}

	events.Emit(s.publisher, events.ProposalGenerated, events.ProposalGeneratedData{
		ProposalID: idOrEmpty(p.ID),
		UserID:     actor.UserID.String(),
		Reference:  p.Reference,
		Saved:      resp.Saved,
	}, actor.RequestID)

	return resp, nil
}

// List returns the caller's proposals, or every proposal for support, newest first
func (s *ProposalService) List(ctx context.Context, actor Actor, status models.ProposalStatus) ([]models.Proposal, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	filter := repositories.ProposalFilter{Status: status}
	if !actor.IsSupport() {
		filter.UserID = actor.userPtr()
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus patches the status field. Setting the current status again is a no-op.
func (s *ProposalService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status models.ProposalStatus) (*models.Proposal, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canRead(p.UserID) {
		return nil, ErrForbidden
	}
	if p.Status == status {
		return p, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	from := p.Status
	p.Status = status
	p.UpdatedAt = time.Now()

	s.logChange(ctx, actor, audit.ActionStatusChange, id,
		map[string]string{"status": string(from)},
		map[string]string{"status": string(status)})

	events.Emit(s.publisher, events.ProposalStatusChanged, events.ProposalStatusChangedData{
		ProposalID: id.String(),
		UserID:     p.UserID.String(),
		From:       string(from),
		To:         string(status),
	}, actor.RequestID)

	return p, nil
}

func (s *ProposalService) logChange(ctx context.Context, actor Actor, action string, id uuid.UUID, oldValue, newValue interface{}) {
	recordChange(ctx, s.audit, actor, action, entityProposal, id, oldValue, newValue)
}

// recordChange writes an audit entry; failures are logged only
func recordChange(ctx context.Context, logger AuditLogger, actor Actor, action, entity string, id uuid.UUID, oldValue, newValue interface{}) {
	if logger == nil {
		return
	}

	var userID *uuid.UUID
	if actor.UserID != uuid.Nil {
		userID = actor.userPtr()
	}

	err := logger.LogChange(ctx, audit.Change{
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  id.String(),
		OldValue:  oldValue,
		NewValue:  newValue,
		RequestID: actor.RequestID,
	})
	if err != nil {
		utils.LogWarn("Failed to write audit log", map[string]interface{}{
			"entity":    entity,
			"entity_id": id.String(),
			"action":    action,
			"error":     err.Error(),
		})
	}
}

func idOrEmpty(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
