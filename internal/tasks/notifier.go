package tasks

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/search"
)

// IndexNotifier keeps the search index in step with content writes. With a
// task client the update is queued; without one it runs inline.
type IndexNotifier struct {
	client *Client
	index  ContentIndexer
	db     *gorm.DB
	logger *zap.Logger
}

// NewIndexNotifier creates a notifier. A nil index makes every call a no-op
// and a nil client makes updates synchronous.
func NewIndexNotifier(client *Client, index ContentIndexer, db *gorm.DB, logger *zap.Logger) *IndexNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexNotifier{client: client, index: index, db: db, logger: logger}
}

// Changed records that the given record was created, updated or deleted.
func (n *IndexNotifier) Changed(docType search.DocType, id string) {
	if n == nil || n.index == nil {
		return
	}

	if n.client != nil {
		_, err := n.client.Add(IndexContentTask{Type: string(docType), ID: id}).Save()
		if err == nil {
			return
		}
		n.logger.Warn("Failed to enqueue index task, indexing inline",
			zap.String("type", string(docType)), zap.String("id", id), zap.Error(err))
	}

	if err := n.index.Sync(n.db, docType, id); err != nil {
		n.logger.Error("Failed to index content",
			zap.String("type", string(docType)), zap.String("id", id), zap.Error(err))
	}
}
