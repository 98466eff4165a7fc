package cli

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/database/users"
	"github.com/spellbook-app/spellbook/internal/search"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateSecret(t *testing.T) {
	out, err := execute(t, "generate-secret")
	require.NoError(t, err)

	secret, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, secret, 32)
}

func TestCreateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spellbook.db")

	out, err := execute(t, "create-user",
		"--email", "merlin@example.com",
		"--password", "correct-horse",
		"--username", "merlin",
		"--db", dbPath,
		"--bcrypt-cost", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user merlin@example.com (@merlin")

	db, err := database.NewDatabase(dbPath, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	user, err := users.NewRepository(db.DB).GetByEmail("merlin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "merlin", user.Username)
	assert.NotEmpty(t, user.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := execute(t, "create-user", "--email", "merlin@example.com", "--password", "another-pass", "--db", dbPath, "--bcrypt-cost", "4")
		assert.Error(t, err)
	})

	t.Run("flags are required", func(t *testing.T) {
		_, err := execute(t, "create-user", "--db", dbPath)
		assert.Error(t, err)
	})
}

func TestReindex(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "spellbook.db")
	indexDir := filepath.Join(dir, "search.bleve")

	db, err := database.NewDatabase(dbPath, zap.NewNop())
	require.NoError(t, err)
	user := dbtest.CreateUser(t, db.DB, "merlin")
	dbtest.CreateSpell(t, db.DB, user.ID, "Public", "go", true)
	dbtest.CreateSpell(t, db.DB, user.ID, "Private", "go", false)
	dbtest.CreateRune(t, db.DB, user.ID, "Button", true)
	require.NoError(t, db.Close())

	out, err := execute(t, "reindex", "--db", dbPath, "--index", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 documents")

	index, err := search.Open(search.Options{Path: indexDir})
	require.NoError(t, err)
	defer index.Close()
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand("1.2.3")
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "create-user", "reindex", "generate-secret"})
	assert.Equal(t, "1.2.3", root.Version)

	_, err := execute(t, "serve", "extra")
	assert.Error(t, err, "serve takes no arguments")
}
