package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// MaintenanceRecorder records the outcome of a background job in the audit log.
type MaintenanceRecorder interface {
	LogMaintenance(action, description string, err error)
}

// CleanupAuditTask removes audit events older than the retention period.
type CleanupAuditTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention:   retention(),
	}
}

// CleanupAuditProcessor creates a processor function for CleanupAuditTask.
// recorder may be nil.
func CleanupAuditProcessor(cleaner AuditEventCleaner, recorder MaintenanceRecorder, logger *zap.Logger) backlite.QueueProcessor[CleanupAuditTask] {
	return func(ctx context.Context, task CleanupAuditTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = DefaultAuditRetentionDays
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := cleaner.DeleteOldEvents(retention)
		if err != nil {
			err = fmt.Errorf("cleanup audit events: %w", err)
			recordMaintenance(recorder, "cleanup_audit", "Audit cleanup failed", err)
			return err
		}

		logger.Info("Cleaned up audit events", zap.Int64("deleted", deleted), zap.Int("retention_days", retentionDays))
		recordMaintenance(recorder, "cleanup_audit",
			fmt.Sprintf("Deleted %d audit events older than %d days", deleted, retentionDays), nil)
		return nil
	}
}

// NewCleanupAuditQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditQueue(cleaner AuditEventCleaner, recorder MaintenanceRecorder, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditProcessor(cleaner, recorder, logger))
}

func recordMaintenance(recorder MaintenanceRecorder, action, description string, err error) {
	if recorder != nil {
		recorder.LogMaintenance(action, description, err)
	}
}
