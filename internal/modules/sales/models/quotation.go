package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
)

type QuotationStatus string

const (
	QuotationStatusPending  QuotationStatus = "pending"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusExpired  QuotationStatus = "expired"
)

func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationStatusPending, QuotationStatusAccepted, QuotationStatusExpired:
		return true
	}
	return false
}

// Quotation is a generated, parsed quotation. TotalCost equals the sum of Services.
type Quotation struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Business      string                                     `gorm:"type:text;not null" json:"business"`
	Reference     string                                     `gorm:"type:text" json:"reference"`
	IssuedOn      string                                     `gorm:"type:text" json:"issued_on"`
	ClientDetails datatypes.JSONType[proposal.ClientDetails] `gorm:"type:jsonb;not null" json:"client_details"`
	Services      datatypes.JSONSlice[proposal.LineItem]     `gorm:"type:jsonb;not null" json:"services"`
	TotalCost     int64                                      `gorm:"type:bigint;not null" json:"total_cost"`
	Content       string                                     `gorm:"type:text;not null" json:"content"`

	Status     QuotationStatus `gorm:"type:text;not null;index" json:"status"`
	Accepted   bool            `gorm:"not null;index" json:"accepted"`
	AcceptedAt *time.Time      `json:"accepted_at,omitempty"`
	ExpiresAt  time.Time       `gorm:"index" json:"expires_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Quotation) TableName() string {
	return "quotations"
}

// BeforeCreate sets UUID and the initial status before creating
func (q *Quotation) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QuotationStatusPending
	}
	return nil
}

// Result rebuilds the parsed quotation the record was created from
func (q *Quotation) Result() *proposal.QuotationResult {
	services := []proposal.LineItem(q.Services)
	if services == nil {
		services = []proposal.LineItem{}
	}
	return &proposal.QuotationResult{
		Services:   services,
		TotalCost:  q.TotalCost,
		RawContent: q.Content,
	}
}

// Client returns the stored client details
func (q *Quotation) Client() proposal.ClientDetails {
	return q.ClientDetails.Data()
}

type GenerateQuotationRequest struct {
	Business      string                 `json:"business" validate:"max=4000"`
	ClientDetails proposal.ClientDetails `json:"client_details"`
}

// GenerateQuotationResponse always carries the generated quotation. Saved is false
// when persistence failed after generation; SaveError then says why.
type GenerateQuotationResponse struct {
	Quotation *Quotation `json:"quotation"`
	Saved     bool       `json:"saved"`
	SaveError string     `json:"save_error,omitempty"`
}

// ExportResponse points at a stored export
type ExportResponse struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}
