package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
)

// ProposalFilter holds equality predicates; zero values are ignored
type ProposalFilter struct {
	UserID *uuid.UUID
	Status models.ProposalStatus
	Limit  int
}

type ProposalRepo interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error
}

type proposalRepo struct {
	db *gorm.DB
}

func NewProposalRepo(db *gorm.DB) ProposalRepo {
	return &proposalRepo{db: db}
}

func (r *proposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	return wrap("create proposal", r.db.WithContext(ctx).Create(p).Error)
}

func (r *proposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrap("get proposal", err)
	}
	return &p, nil
}

func (r *proposalRepo) List(ctx context.Context, filter ProposalFilter) ([]models.Proposal, error) {
	query := r.db.WithContext(ctx).Model(&models.Proposal{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	proposals := []models.Proposal{}
	if err := query.Find(&proposals).Error; err != nil {
		return nil, wrap("list proposals", err)
	}
	return proposals, nil
}

func (r *proposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return wrap("update proposal status", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
