package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
)

// QuotationFilter holds equality predicates; nil/zero values are ignored
type QuotationFilter struct {
	UserID   *uuid.UUID
	Status   models.QuotationStatus
	Accepted *bool
	Limit    int
}

type QuotationRepo interface {
	Create(ctx context.Context, q *models.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	List(ctx context.Context, filter QuotationFilter) ([]models.Quotation, error)
	// MarkAccepted patches accepted, status and accepted_at on a pending quotation.
	// It reports false when the row was no longer pending.
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// ExpirePending moves pending quotations whose expires_at is before cutoff to expired
	ExpirePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

type quotationRepo struct {
	db *gorm.DB
}

func NewQuotationRepo(db *gorm.DB) QuotationRepo {
	return &quotationRepo{db: db}
}

func (r *quotationRepo) Create(ctx context.Context, q *models.Quotation) error {
	return wrap("create quotation", r.db.WithContext(ctx).Create(q).Error)
}

func (r *quotationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var q models.Quotation
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, wrap("get quotation", err)
	}
	return &q, nil
}

func (r *quotationRepo) List(ctx context.Context, filter QuotationFilter) ([]models.Quotation, error) {
	query := r.db.WithContext(ctx).Model(&models.Quotation{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Accepted != nil {
		query = query.Where("accepted = ?", *filter.Accepted)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	quotations := []models.Quotation{}
	if err := query.Find(&quotations).Error; err != nil {
		return nil, wrap("list quotations", err)
	}
	return quotations, nil
}

func (r *quotationRepo) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Quotation{}).
		Where("id = ? AND status = ?", id, models.QuotationStatusPending).
		Updates(map[string]interface{}{
			"accepted":    true,
			"status":      models.QuotationStatusAccepted,
			"accepted_at": at,
		})
	if result.Error != nil {
		return false, wrap("accept quotation", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *quotationRepo) ExpirePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var expired []models.Quotation
	result := r.db.WithContext(ctx).Model(&expired).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("status = ? AND expires_at < ?", models.QuotationStatusPending, cutoff).
		Update("status", models.QuotationStatusExpired)
	if result.Error != nil {
		return nil, wrap("expire quotations", result.Error)
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, q := range expired {
		ids = append(ids, q.ID)
	}
	return ids, nil
}
