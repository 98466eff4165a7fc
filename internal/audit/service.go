// Package audit records who changed what. Writes are asynchronous so request
// latency does not depend on the audit table.
package audit

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/database/audit"
	"github.com/spellbook-app/spellbook/internal/entities"
)

// Actor identifies the request that caused an event.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
	RequestID string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an audit event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.Warn("Failed to log audit event",
				zap.String("action", event.Action),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all pending async writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogChange records a create, update or delete of a user-owned record.
func (s *Service) LogChange(actor Actor, eventType entities.AuditEventType, action, entityID, description string, metadata map[string]any) {
	event := s.newEvent(actor, eventType, action)
	event.EntityType = string(eventType)
	event.EntityID = entityID
	event.Description = truncate(description, 500)
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			event.Metadata = string(b)
		}
	}
	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(actor Actor, action string, success bool, err error) {
	event := s.newEvent(actor, entities.AuditEventAuth, action)
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	if err != nil {
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// LogMaintenance records a background job outcome not tied to a request.
func (s *Service) LogMaintenance(action, description string, err error) {
	event := s.newEvent(Actor{}, entities.AuditEventMaintenance, action)
	event.Description = truncate(description, 500)
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// ListEvents returns one page of events matching filter, newest first.
func (s *Service) ListEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

func (s *Service) newEvent(actor Actor, eventType entities.AuditEventType, action string) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:    actor.UserID,
		EventType: eventType,
		Action:    action,
		IPAddress: actor.IPAddress,
		UserAgent: truncate(actor.UserAgent, 500),
		RequestID: actor.RequestID,
		Status:    entities.AuditStatusSuccess,
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
