package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/search"
)

// ContentIndexer is the part of the search index the queues drive.
type ContentIndexer interface {
	Sync(db *gorm.DB, docType search.DocType, id string) error
	Reindex(db *gorm.DB) (int, error)
}

// IndexContentTask refreshes the index entry of one spell, rune or spellbook.
type IndexContentTask struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Config returns the queue configuration for single-document indexing.
func (t IndexContentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "index_content",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     30 * time.Second,
		Retention:   retention(),
	}
}

// IndexContentProcessor creates a processor function for IndexContentTask.
func IndexContentProcessor(index ContentIndexer, db *gorm.DB) backlite.QueueProcessor[IndexContentTask] {
	return func(ctx context.Context, task IndexContentTask) error {
		if index == nil {
			return errors.New("search index not configured")
		}
		docType, ok := search.ParseDocType(task.Type)
		if !ok {
			return fmt.Errorf("unknown content type %q", task.Type)
		}
		if err := index.Sync(db, docType, task.ID); err != nil {
			return fmt.Errorf("index %s %s: %w", task.Type, task.ID, err)
		}
		return nil
	}
}

// NewIndexContentQueue creates a backlite queue for single-document indexing.
func NewIndexContentQueue(index ContentIndexer, db *gorm.DB) backlite.Queue {
	return backlite.NewQueue(IndexContentProcessor(index, db))
}

// ReindexContentTask rebuilds the whole search index from the database.
type ReindexContentTask struct {
	Reason string `json:"reason"`
}

// Config returns the queue configuration for full reindexing. A rebuild is
// cheap to repeat, so failures are not retried.
func (t ReindexContentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reindex_content",
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention:   retention(),
	}
}

// ReindexContentProcessor creates a processor function for ReindexContentTask.
// recorder may be nil.
func ReindexContentProcessor(index ContentIndexer, db *gorm.DB, recorder MaintenanceRecorder, logger *zap.Logger) backlite.QueueProcessor[ReindexContentTask] {
	return func(ctx context.Context, task ReindexContentTask) error {
		if index == nil {
			return errors.New("search index not configured")
		}
		start := time.Now()
		n, err := index.Reindex(db)
		if err != nil {
			err = fmt.Errorf("reindex content: %w", err)
			recordMaintenance(recorder, "reindex_content", "Search reindex failed ("+task.Reason+")", err)
			return err
		}
		logger.Info("Reindexed content",
			zap.Int("documents", n),
			zap.String("reason", task.Reason),
			zap.Duration("took", time.Since(start)))
		recordMaintenance(recorder, "reindex_content",
			fmt.Sprintf("Indexed %d documents (%s)", n, task.Reason), nil)
		return nil
	}
}

// NewReindexContentQueue creates a backlite queue for full reindexing.
func NewReindexContentQueue(index ContentIndexer, db *gorm.DB, recorder MaintenanceRecorder, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(ReindexContentProcessor(index, db, recorder, logger))
}
