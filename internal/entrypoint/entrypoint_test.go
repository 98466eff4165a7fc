package entrypoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/audit"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database"
	auditrepo "github.com/spellbook-app/spellbook/internal/database/audit"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/scheduler"
	"github.com/spellbook-app/spellbook/internal/search"
)

func TestSessionSecret(t *testing.T) {
	t.Run("decodes a configured secret", func(t *testing.T) {
		generated, err := auth.GenerateSecret()
		require.NoError(t, err)

		secret, err := sessionSecret(config.Auth{SessionSecret: generated}, zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, secret, 32)
	})

	t.Run("generates one when unset", func(t *testing.T) {
		a, err := sessionSecret(config.Auth{}, zap.NewNop())
		require.NoError(t, err)
		b, err := sessionSecret(config.Auth{}, zap.NewNop())
		require.NoError(t, err)

		assert.Len(t, a, 32)
		assert.NotEqual(t, a, b)
	})
}

func TestScheduledJobs(t *testing.T) {
	db := &database.Database{DB: dbtest.Open(t)}
	auditService := audit.NewService(auditrepo.NewRepository(db.DB), zap.NewNop())
	cfg := &config.Config{
		Search: config.Search{ReindexSchedule: "0 3 * * *"},
		Audit:  config.Audit{RetentionDays: 30, CleanupSchedule: "30 3 * * *"},
	}

	names := func(jobs []scheduler.Job) []string {
		out := make([]string, len(jobs))
		for i, j := range jobs {
			out[i] = j.Name
		}
		return out
	}

	t.Run("without search only audit cleanup runs", func(t *testing.T) {
		jobs := scheduledJobs(cfg, db, nil, auditService, nil, zap.NewNop())
		assert.Equal(t, []string{scheduler.JobAuditCleanup}, names(jobs))
	})

	t.Run("inline reindex fills the index", func(t *testing.T) {
		index, err := search.Open(search.Options{Path: filepath.Join(t.TempDir(), "idx.bleve")})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })

		user := dbtest.CreateUser(t, db.DB, "merlin")
		dbtest.CreateSpell(t, db.DB, user.ID, "Indexed", "go", true)

		jobs := scheduledJobs(cfg, db, index, auditService, nil, zap.NewNop())
		require.Equal(t, []string{scheduler.JobReindex, scheduler.JobAuditCleanup}, names(jobs))

		for _, job := range jobs {
			require.NoError(t, job.Run(context.Background()))
		}
		count, err := index.DocumentCount()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})
}
