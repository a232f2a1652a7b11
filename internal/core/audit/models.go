package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions recorded against sales documents
const (
	ActionCreate       = "create"
	ActionStatusChange = "status_change"
	ActionAccept       = "accept"
	ActionExpire       = "expire"
	ActionExport       = "export"
)

// AuditLog represents a change to a proposal or quotation
type AuditLog struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	// Actor; nil for system jobs such as the expiry sweep
	UserID *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`

	// Action details
	Action   string `json:"action" gorm:"type:text;not null;index"`
	Entity   string `json:"entity" gorm:"type:text;not null;index"`
	EntityID string `json:"entity_id" gorm:"type:text;index"`

	// Change tracking
	OldValue datatypes.JSON `json:"old_value,omitempty" gorm:"type:jsonb"`
	NewValue datatypes.JSON `json:"new_value,omitempty" gorm:"type:jsonb"`

	RequestID   string `json:"request_id,omitempty" gorm:"type:text"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns the id client-side so inserts need no RETURNING
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AuditFilter represents filters for querying audit logs
type AuditFilter struct {
	UserID    *uuid.UUID
	Action    string
	Entity    string
	EntityID  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// AuditLogResponse represents paginated audit log response
type AuditLogResponse struct {
	Logs       []AuditLog `json:"logs"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
