// Package search keeps a bleve full-text index of public content.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

// Index wraps a bleve index. All methods are safe for concurrent use; Rebuild
// takes the write lock.
type Index struct {
	index  bleve.Index
	path   string
	logger *zap.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Path   string      // Index directory
	Logger *zap.Logger // Nop logger when nil
}

// mappingVersion changes whenever the mapping does, forcing a rebuild on open.
const mappingVersion = "1"

// Open opens the index at opts.Path or creates it. An index that cannot be
// opened or was built with another mapping version is recreated empty.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	indexPath := filepath.Clean(opts.Path)
	versionPath := indexPath + ".version"

	var index bleve.Index
	needsRebuild := false

	indexExists := false
	if _, err := os.Stat(indexPath); err == nil {
		indexExists = true
	}

	if indexExists {
		existing, err := os.ReadFile(versionPath)
		if err != nil || string(existing) != mappingVersion {
			logger.Info("Search index mapping changed, rebuilding",
				zap.String("old_version", string(existing)),
				zap.String("new_version", mappingVersion))
			needsRebuild = true
		} else if index, err = bleve.Open(indexPath); err != nil {
			logger.Warn("Failed to open search index, recreating", zap.String("path", indexPath), zap.Error(err))
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		index = nil
	}

	if index == nil {
		var err error
		if index, err = bleve.New(indexPath, buildIndexMapping()); err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("Failed to write search version file", zap.Error(err))
		}
		logger.Info("Created search index", zap.String("path", indexPath))
	} else {
		logger.Info("Opened search index", zap.String("path", indexPath))
	}

	return &Index{index: index, path: indexPath, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces one document.
func (s *Index) IndexDocument(doc *Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments indexes documents in batches of 500.
func (s *Index) IndexDocuments(docs []*Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(docs)
}

func (s *Index) indexLocked(docs []*Document) error {
	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteDocument removes a document. Unknown IDs are not an error.
func (s *Index) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed documents.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the whole index with docs. Searches block until it is done.
func (s *Index) Rebuild(docs []*Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	if err := s.indexLocked(docs); err != nil {
		return err
	}
	s.logger.Info("Rebuilt search index", zap.String("path", s.path), zap.Int("documents", len(docs)))
	return nil
}
