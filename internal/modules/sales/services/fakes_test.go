package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
)

type fakeGenerator struct {
	proposal  *proposal.ProposalResult
	quotation *proposal.QuotationResult
	prompt    proposal.Prompt
	err       error
}

func (g *fakeGenerator) ProposalWithMeta(ctx context.Context, business string) (*proposal.ProposalResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.proposal, nil
}

func (g *fakeGenerator) QuotationWithMeta(ctx context.Context, business string, client proposal.ClientDetails) (*proposal.QuotationResult, proposal.Prompt, error) {
	if g.err != nil {
		return nil, g.prompt, g.err
	}
	return g.quotation, g.prompt, nil
}

type fakeProposalRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]models.Proposal
	createErr error
	lastList  repositories.ProposalFilter
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{items: map[uuid.UUID]models.Proposal{}}
}

func (r *fakeProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Status == "" {
		p.Status = models.ProposalStatusPending
	}
	if r.createErr != nil {
		return r.createErr
	}
	p.ID = uuid.New()
	r.items[p.ID] = *p
	return nil
}

func (r *fakeProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProposalRepo) List(ctx context.Context, filter repositories.ProposalFilter) ([]models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = filter
	out := []models.Proposal{}
	for _, p := range r.items {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Status = status
	r.items[id] = p
	return nil
}

type fakeQuotationRepo struct {
	mu          sync.Mutex
	items       map[uuid.UUID]models.Quotation
	createErr   error
	markCalls   int
	refuseMark  bool
	lastList    repositories.QuotationFilter
	onMarkRaced func(q *models.Quotation)
}

func newFakeQuotationRepo() *fakeQuotationRepo {
	return &fakeQuotationRepo{items: map[uuid.UUID]models.Quotation{}}
}

func (r *fakeQuotationRepo) put(q models.Quotation) models.Quotation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = models.QuotationStatusPending
	}
	r.items[q.ID] = q
	return q
}

func (r *fakeQuotationRepo) Create(ctx context.Context, q *models.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.Status == "" {
		q.Status = models.QuotationStatusPending
	}
	if r.createErr != nil {
		return r.createErr
	}
	q.ID = uuid.New()
	r.items[q.ID] = *q
	return nil
}

func (r *fakeQuotationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &q, nil
}

func (r *fakeQuotationRepo) List(ctx context.Context, filter repositories.QuotationFilter) ([]models.Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = filter
	out := []models.Quotation{}
	for _, q := range r.items {
		if filter.UserID != nil && q.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		if filter.Accepted != nil && q.Accepted != *filter.Accepted {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *fakeQuotationRepo) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	q, ok := r.items[id]
	if !ok || q.Status != models.QuotationStatusPending || r.refuseMark {
		if r.onMarkRaced != nil {
			r.onMarkRaced(&q)
			r.items[id] = q
		}
		return false, nil
	}
	q.Accepted = true
	q.Status = models.QuotationStatusAccepted
	q.AcceptedAt = &at
	r.items[id] = q
	return true, nil
}

func (r *fakeQuotationRepo) ExpirePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, q := range r.items {
		if q.Status == models.QuotationStatusPending && q.ExpiresAt.Before(cutoff) {
			q.Status = models.QuotationStatusExpired
			r.items[id] = q
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	changes []audit.Change
}

func (a *fakeAudit) LogChange(ctx context.Context, c audit.Change) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.changes = append(a.changes, c)
	return nil
}

func (a *fakeAudit) GetEntityHistory(ctx context.Context, entity, entityID string) ([]audit.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var logs []audit.AuditLog
	for _, c := range a.changes {
		if c.Entity == entity && c.EntityID == entityID {
			logs = append(logs, audit.AuditLog{Action: c.Action, Entity: c.Entity, EntityID: c.EntityID, UserID: c.UserID})
		}
	}
	return logs, nil
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.changes))
	for _, c := range a.changes {
		out = append(out, c.Action)
	}
	return out
}

type fakeNotifier struct {
	accepted chan notification.AcceptedQuotation
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{accepted: make(chan notification.AcceptedQuotation, 4)}
}

func (n *fakeNotifier) QuotationAccepted(ctx context.Context, q notification.AcceptedQuotation) error {
	n.accepted <- q
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	envs []events.Envelope
}

func (p *fakePublisher) Publish(ctx context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envs = append(p.envs, env)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.envs))
	for _, e := range p.envs {
		out = append(out, e.Meta.Type)
	}
	return out
}
