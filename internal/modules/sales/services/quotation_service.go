package services

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

const (
	entityQuotation = "quotation"

	notifyTimeout = 30 * time.Second
)

type QuotationService struct {
	repo         repositories.QuotationRepo
	generator    Generator
	exporter     DocumentExporter
	audit        AuditLogger
	notifier     AcceptanceNotifier
	publisher    events.Publisher
	validityDays int
	now          func() time.Time
}

// NewQuotationService wires the quotation flow. audit, notifier and publisher may be nil.
// validityDays below 1 falls back to export.DefaultValidityDays.
func NewQuotationService(
	repo repositories.QuotationRepo,
	generator Generator,
	exporter DocumentExporter,
	auditLogger AuditLogger,
	notifier AcceptanceNotifier,
	publisher events.Publisher,
	validityDays int,
) *QuotationService {
	if validityDays < 1 {
		validityDays = export.DefaultValidityDays
	}
	return &QuotationService{
		repo:         repo,
		generator:    generator,
		exporter:     exporter,
		audit:        auditLogger,
		notifier:     notifier,
		publisher:    publisher,
		validityDays: validityDays,
		now:          time.Now,
	}
}

// WithClock replaces the time source used for expiry
func (s *QuotationService) WithClock(now func() time.Time) *QuotationService {
	s.now = now
	return s
}

// Generate produces and parses a quotation, then tries to persist it.
// A save failure still returns the parsed quotation with Saved=false.
func (s *QuotationService) Generate(ctx context.Context, actor Actor, req *models.GenerateQuotationRequest) (*models.GenerateQuotationResponse, error) {
	start := time.Now()
	result, prompt, err := s.generator.QuotationWithMeta(ctx, req.Business, req.ClientDetails)
	if err != nil {
		metrics.ObserveGeneration(string(proposal.KindQuotation), metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	metrics.ObserveGeneration(string(proposal.KindQuotation), metrics.OutcomeSuccess, time.Since(start))
	metrics.ObserveLineItems(len(result.Services))

	q := &models.Quotation{
		UserID:        actor.UserID,
		Business:      req.Business,
		Reference:     prompt.Reference,
		IssuedOn:      prompt.Date,
		ClientDetails: datatypes.NewJSONType(req.ClientDetails),
		Services:      datatypes.JSONSlice[proposal.LineItem](result.Services),
		TotalCost:     result.TotalCost,
		Content:       result.RawContent,
		ExpiresAt:     s.now().AddDate(0, 0, s.validityDays),
	}

	resp := &models.GenerateQuotationResponse{Quotation: q, Saved: true}
	if err := s.repo.Create(ctx, q); err != nil {
		utils.LogError("Failed to save generated quotation", err, map[string]interface{}{
			"user_id":   actor.UserID.String(),
			"reference": q.Reference,
		})
		metrics.IncUnsaved(string(proposal.KindQuotation))
		q.ID = uuid.Nil
		if q.Status == "" {
			q.Status = models.QuotationStatusPending
		}
		resp.Saved = false
		resp.SaveError = err.Error()
	} else {
		log.Printf("✅ Quotation saved: %s (%s, %d items, total %d)", q.ID, q.Reference, len(result.Services), q.TotalCost)
		recordChange(ctx, s.audit, actor, audit.ActionCreate, entityQuotation, q.ID, nil, map[string]interface{}{
			"status":     q.Status,
			"total_cost": q.TotalCost,
		})
	}

	events.Emit(s.publisher, events.QuotationGenerated, events.QuotationGeneratedData{
		QuotationID: idOrEmpty(q.ID),
		UserID:      actor.UserID.String(),
		Reference:   q.Reference,
		TotalCost:   q.TotalCost,
		LineItems:   len(result.Services),
		Saved:       resp.Saved,
	}, actor.RequestID)

	return resp, nil
}

// List returns the caller's quotations, or every quotation for support
func (s *QuotationService) List(ctx context.Context, actor Actor, status models.QuotationStatus, accepted *bool) ([]models.Quotation, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	filter := repositories.QuotationFilter{Status: status, Accepted: accepted}
	if !actor.IsSupport() {
		filter.UserID = actor.userPtr()
	}
	return s.repo.List(ctx, filter)
}

// Get loads one quotation the actor may read
func (s *QuotationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Quotation, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canRead(q.UserID) {
		return nil, ErrForbidden
	}
	return q, nil
}

// Accept marks the actor's own quotation accepted. Accepting twice returns the
// stored quotation unchanged; an expired quotation yields ErrQuotationExpired.
func (s *QuotationService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Quotation, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	switch {
	case q.Status == models.QuotationStatusAccepted:
		return q, nil
	case q.Status == models.QuotationStatusExpired:
		return nil, ErrQuotationExpired
	case !q.ExpiresAt.IsZero() && s.now().After(q.ExpiresAt):
		return nil, ErrQuotationExpired
	}

	at := s.now()
	ok, err := s.repo.MarkAccepted(ctx, id, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another accept or the expiry sweep
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == models.QuotationStatusAccepted {
			return current, nil
		}
		return nil, ErrQuotationExpired
	}

	q.Accepted = true
	q.Status = models.QuotationStatusAccepted
	q.AcceptedAt = &at
	q.UpdatedAt = at

	log.Printf("🤝 Quotation accepted: %s (%s)", q.ID, q.Reference)
	recordChange(ctx, s.audit, actor, audit.ActionAccept, entityQuotation, id,
		map[string]interface{}{"status": models.QuotationStatusPending, "accepted": false},
		map[string]interface{}{"status": q.Status, "accepted": true, "accepted_at": at})

	s.notifyAccepted(actor, q)
	return q, nil
}

// notifyAccepted runs after the response is decided; failures are logged
func (s *QuotationService) notifyAccepted(actor Actor, q *models.Quotation) {
	if s.notifier == nil {
		return
	}

	client := q.Client()
	accepted := notification.AcceptedQuotation{
		QuotationID:   q.ID.String(),
		UserID:        q.UserID.String(),
		UserEmail:     actor.Email,
		Reference:     q.Reference,
		CompanyName:   client.CompanyName,
		ClientName:    client.ClientName,
		TotalCost:     q.TotalCost,
		AcceptedAt:    *q.AcceptedAt,
		CorrelationID: actor.RequestID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.QuotationAccepted(ctx, accepted); err != nil {
			utils.LogError("Failed to notify quotation acceptance", err, map[string]interface{}{
				"quotation_id": accepted.QuotationID,
			})
		}
	}()
}

// Document builds the printable form of a stored quotation
func (s *QuotationService) Document(q *models.Quotation) *export.QuotationDocument {
	doc := export.NewQuotationDocument(q.Reference, q.IssuedOn, q.Client(), q.Result())
	doc.ID = q.ID.String()
	doc.ValidityDays = s.validityDays
	return doc
}

// Render writes the quotation in format to w and returns the content type and download name
func (s *QuotationService) Render(ctx context.Context, actor Actor, id uuid.UUID, format export.ExportFormat, w io.Writer) (string, string, error) {
	q, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", "", err
	}

	doc := s.Document(q)
	contentType, err := s.exporter.Render(doc, format, w)
	if err != nil {
		return "", "", err
	}
	return contentType, s.exporter.FileName(doc, format), nil
}

// Export renders the quotation and stores it, returning the stored file's location
func (s *QuotationService) Export(ctx context.Context, actor Actor, id uuid.UUID, format export.ExportFormat) (*upload.UploadResult, error) {
	q, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	res, err := s.exporter.ExportQuotation(ctx, s.Document(q), format)
	if err != nil {
		return nil, err
	}

	recordChange(ctx, s.audit, actor, audit.ActionExport, entityQuotation, id, nil, map[string]interface{}{
		"format": format,
		"key":    res.Key,
	})
	return res, nil
}

// History lists the quotation's audit trail, oldest first
func (s *QuotationService) History(ctx context.Context, actor Actor, id uuid.UUID) ([]audit.AuditLog, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []audit.AuditLog{}, nil
	}

	logs, err := s.audit.GetEntityHistory(ctx, entityQuotation, id.String())
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []audit.AuditLog{}
	}
	return logs, nil
}

// ExpireStale moves pending quotations past their expiry to expired. It is the
// body of the scheduled sweep and returns how many rows changed.
func (s *QuotationService) ExpireStale(ctx context.Context) (int, error) {
	cutoff := s.now()
	ids, err := s.repo.ExpirePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	system := Actor{}
	for _, id := range ids {
		recordChange(ctx, s.audit, system, audit.ActionExpire, entityQuotation, id,
			map[string]string{"status": string(models.QuotationStatusPending)},
			map[string]string{"status": string(models.QuotationStatusExpired)})
	}

	metrics.AddExpired(int64(len(ids)))
	events.Emit(s.publisher, events.QuotationExpired, events.QuotationExpiredData{
		Count:  int64(len(ids)),
		Before: cutoff,
	}, "")

	utils.LogInfo("Expired stale quotations", map[string]interface{}{
		"count":  len(ids),
		"cutoff": cutoff,
	})
	return len(ids), nil
}
