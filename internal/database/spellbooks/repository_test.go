package spellbooks

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/entities"
)

func putInBook(t *testing.T, repo *Repository, spell *entities.Spell, bookID string) {
	t.Helper()
	require.NoError(t, repo.db.Model(spell).Update("spellbook_id", bookID).Error)
}

func TestRepository_CreateAndGet(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "binder")

	book := &entities.Spellbook{ID: "bk-1", Name: "Algorithms", IsPublic: true, UserID: user.ID}
	require.NoError(t, repo.Create(book))
	require.NotNil(t, book.Count)
	assert.Zero(t, book.Count.Spells)

	putInBook(t, repo, dbtest.CreateSpell(t, db, user.ID, "sort", "go", true), book.ID)

	got, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Count.Spells)
	require.NotNil(t, got.User)
	assert.Equal(t, "binder", got.User.Username)

	_, err = repo.GetByID("bk-missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_GetWithSpellsVisibility(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "keeper")
	book := dbtest.CreateSpellbook(t, db, user.ID, "Mixed", true)

	putInBook(t, repo, dbtest.CreateSpell(t, db, user.ID, "open", "go", true), book.ID)
	putInBook(t, repo, dbtest.CreateSpell(t, db, user.ID, "hidden", "go", false), book.ID)

	all, err := repo.GetWithSpells(book.ID, false)
	require.NoError(t, err)
	assert.Len(t, all.Spells, 2)
	assert.Equal(t, int64(2), all.Count.Spells)

	public, err := repo.GetWithSpells(book.ID, true)
	require.NoError(t, err)
	require.Len(t, public.Spells, 1)
	assert.Equal(t, "open", public.Spells[0].Title)
}

func TestRepository_ListByUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "collector")
	other := dbtest.CreateUser(t, db, "stranger")

	book := dbtest.CreateSpellbook(t, db, user.ID, "Big book", true)
	dbtest.CreateSpellbook(t, db, user.ID, "Empty", false)
	dbtest.CreateSpellbook(t, db, other.ID, "Not mine", true)
	for i := 0; i < 5; i++ {
		putInBook(t, repo, dbtest.CreateSpell(t, db, user.ID, fmt.Sprintf("spell %d", i), "go", true), book.ID)
	}

	books, err := repo.ListByUser(user.ID, "")
	require.NoError(t, err)
	require.Len(t, books, 2)

	byName := map[string]entities.Spellbook{}
	for _, b := range books {
		byName[b.Name] = b
	}
	assert.Equal(t, int64(5), byName["Big book"].Count.Spells)
	assert.Len(t, byName["Big book"].Spells, PreviewSpells)
	assert.Equal(t, int64(0), byName["Empty"].Count.Spells)

	found, err := repo.ListByUser(user.ID, "big")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Big book", found[0].Name)
}

func TestRepository_ListPublic(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "sharer")
	dbtest.CreateSpellbook(t, db, user.ID, "Shared", true)
	dbtest.CreateSpellbook(t, db, user.ID, "Private", false)

	books, err := repo.ListPublic(user.ID, 12)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Shared", books[0].Name)
}

func TestRepository_DeleteDetachesSpells(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "burner")
	book := dbtest.CreateSpellbook(t, db, user.ID, "Ashes", true)
	spell := dbtest.CreateSpell(t, db, user.ID, "survivor", "go", true)
	putInBook(t, repo, spell, book.ID)

	require.NoError(t, repo.Delete(book.ID))

	var got entities.Spell
	require.NoError(t, db.Where("id = ?", spell.ID).First(&got).Error)
	assert.Nil(t, got.SpellbookID)

	assert.ErrorIs(t, repo.Delete(book.ID), database.ErrNotFound)
}

func TestRepository_Update(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "renamer")
	book := dbtest.CreateSpellbook(t, db, user.ID, "Old", true)

	got, err := repo.Update(book.ID, map[string]any{"name": "New", "is_public": false})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.False(t, got.IsPublic)

	_, err = repo.Update("bk-missing", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_PublicStamps(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "mapper")

	shown := dbtest.CreateSpellbook(t, db, user.ID, "Shown", true)
	dbtest.CreateSpellbook(t, db, user.ID, "Hidden", false)

	stamps, err := repo.PublicStamps(500)
	require.NoError(t, err)
	require.Len(t, stamps, 1)
	assert.Equal(t, shown.ID, stamps[0].ID)
}
