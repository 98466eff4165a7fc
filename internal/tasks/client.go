package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// Client runs the background queues on backlite. Queue state lives in its own
// SQLite file so long task transactions never hold the main database lock.
type Client struct {
	queues  *backlite.Client
	db      *sql.DB
	workers int
	logger  *zap.Logger
	started atomic.Bool
}

// DatabasePath returns the queue database used next to mainDBPath:
// "data/spellbook.db" becomes "data/spellbook-tasks.db".
func DatabasePath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// Every worker holds a connection while its task runs.
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewClient opens the queue database for mainDBPath and installs the
// backlite schema. Queues still have to be registered before Start.
func NewClient(mainDBPath string, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := openQueueDB(DatabasePath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	queues, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          backliteLogger{logger.Named("tasks").Sugar()},
	})
	if err == nil {
		err = queues.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up task queues: %w", err)
	}

	return &Client{queues: queues, db: db, workers: cfg.Workers, logger: logger}, nil
}

// Register adds queues to the client.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queues.Register(q)
	}
}

// Start launches the workers and returns. Later calls are no-ops.
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	c.logger.Info("Task queue started", zap.Int("workers", c.workers))
	c.queues.Start(ctx)
}

// Stop waits for running tasks until ctx is done and reports whether every
// worker finished.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.started.Load() {
		return true
	}

	graceful := c.queues.Stop(ctx)
	if graceful {
		c.logger.Info("Task queue stopped")
	} else {
		c.logger.Warn("Task queue stop timed out, unfinished tasks will be released")
	}
	return graceful
}

// Close closes the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queues.Add(tasks...)
}

// backliteLogger adapts zap to backlite's key/value logger.
type backliteLogger struct {
	sugar *zap.SugaredLogger
}

func (l backliteLogger) Info(message string, params ...any) {
	l.sugar.Infow(message, params...)
}

func (l backliteLogger) Error(message string, params ...any) {
	l.sugar.Errorw(message, params...)
}
