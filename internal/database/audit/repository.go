// Package audit stores and queries audit events.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/entities"
)

const defaultPageSize = 50

// Filter narrows an event listing. Empty fields match everything.
type Filter struct {
	UserID   string
	Type     entities.AuditEventType
	EntityID string
}

func (f Filter) apply(query *gorm.DB) *gorm.DB {
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		query = query.Where("event_type = ?", f.Type)
	}
	if f.EntityID != "" {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	return query
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event, stamping it with the current time if unset.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// List returns one page of matching events, newest first, and the number of
// matches overall.
func (r *Repository) List(filter Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset = max(offset, 0)

	query := filter.apply(r.db.Model(&entities.AuditEvent{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.AuditEvent{}, 0, nil
	}

	var events []entities.AuditEvent
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// DeleteOldEvents removes audit events created before olderThan and returns
// how many were deleted.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
