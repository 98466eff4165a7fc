package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/config"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "spellbook.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, dbPath
}

func TestDatabasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"spellbook.db", "spellbook-tasks.db"},
		{"/var/lib/spellbook/data.sqlite", "/var/lib/spellbook/data-tasks.sqlite"},
		{"./data/spellbook", "./data/spellbook-tasks"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DatabasePath(tt.in), tt.in)
	}
}

func TestNewClient_CreatesQueueDatabase(t *testing.T) {
	_, dbPath := newTestClient(t)

	_, err := os.Stat(DatabasePath(dbPath))
	assert.NoError(t, err)
}

func TestClient_StartStop(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.True(t, client.Stop(ctx), "stopping an idle client is a no-op")

	client.Start(ctx)
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
}

type echoTask struct {
	Value string `json:"value"`
}

func (echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestClient_RunsEnqueuedTasks(t *testing.T) {
	client, _ := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	ids, err := client.Add(echoTask{Value: "lumos"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "lumos", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestQueueConfigs(t *testing.T) {
	cfg := IndexContentTask{Type: "spell", ID: "spl-1"}.Config()
	assert.Equal(t, "index_content", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)

	cfg = ReindexContentTask{}.Config()
	assert.Equal(t, "reindex_content", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Timeout)

	cfg = CleanupAuditTask{RetentionDays: 7}.Config()
	assert.Equal(t, "cleanup_audit", cfg.Name)
	assert.Equal(t, 5*time.Minute, cfg.Backoff)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Tasks{Workers: 4, RetryDelay: 10 * time.Second})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 10*time.Second, cfg.RetryDelay)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
}
