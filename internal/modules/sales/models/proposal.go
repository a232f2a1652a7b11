package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected:
		return true
	}
	return false
}

// Proposal is a generated business proposal
type Proposal struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Business  string         `gorm:"type:text;not null" json:"business"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Reference string         `gorm:"type:text" json:"reference"`
	Status    ProposalStatus `gorm:"type:text;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Proposal) TableName() string {
	return "proposals"
}

// BeforeCreate sets UUID and the initial status before creating
func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProposalStatusPending
	}
	return nil
}

type GenerateProposalRequest struct {
	Business string `json:"business" validate:"max=4000"`
}

type UpdateProposalStatusRequest struct {
	Status ProposalStatus `json:"status" validate:"required,oneof=pending accepted rejected"`
}

// GenerateProposalResponse always carries the generated content. Saved is false
// when persistence failed after generation; SaveError then says why.
type GenerateProposalResponse struct {
	Proposal  *Proposal `json:"proposal"`
	Saved     bool      `json:"saved"`
	SaveError string    `json:"save_error,omitempty"`
}
