package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// Change is one audited mutation
type Change struct {
	UserID    *uuid.UUID
	Action    string
	Entity    string
	EntityID  string
	OldValue  interface{}
	NewValue  interface{}
	RequestID string
}

// Service provides audit logging functionality
type Service struct {
	db *gorm.DB
}

// NewService creates a new audit service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Log creates a new audit log entry
func (s *Service) Log(ctx context.Context, entry *AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// LogChange creates an audit log tracking a change
func (s *Service) LogChange(ctx context.Context, c Change) error {
	oldJSON, err := toJSON(c.OldValue)
	if err != nil {
		utils.LogWarn("Failed to serialize old audit value", map[string]interface{}{"error": err.Error()})
	}

	newJSON, err := toJSON(c.NewValue)
	if err != nil {
		utils.LogWarn("Failed to serialize new audit value", map[string]interface{}{"error": err.Error()})
	}

	return s.Log(ctx, &AuditLog{
		UserID:    c.UserID,
		Action:    c.Action,
		Entity:    c.Entity,
		EntityID:  c.EntityID,
		OldValue:  oldJSON,
		NewValue:  newJSON,
		RequestID: c.RequestID,
	})
}

// GetLogs retrieves audit logs with filtering
func (s *Service) GetLogs(ctx context.Context, filter AuditFilter) (*AuditLogResponse, error) {
	query := s.db.WithContext(ctx).Model(&AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	offset := (filter.Page - 1) * filter.PageSize

	var logs []AuditLog
	if err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	totalPages := int(totalCount) / filter.PageSize
	if int(totalCount)%filter.PageSize > 0 {
		totalPages++
	}

	return &AuditLogResponse{
		Logs:       logs,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetEntityHistory retrieves all changes for a specific entity, oldest first
func (s *Service) GetEntityHistory(ctx context.Context, entity, entityID string) ([]AuditLog, error) {
	var logs []AuditLog
	err := s.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at ASC").
		Find(&logs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get entity history: %w", err)
	}

	return logs, nil
}

// DeleteOldLogs deletes audit logs older than a certain number of days
func (s *Service) DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 1 {
		return 0, fmt.Errorf("daysToKeep must be at least 1")
	}

	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", result.Error)
	}

	utils.LogInfo("Deleted old audit logs", map[string]interface{}{
		"count":        result.RowsAffected,
		"days_to_keep": daysToKeep,
	})
	return result.RowsAffected, nil
}

func toJSON(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}

	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(bytes), nil
}
