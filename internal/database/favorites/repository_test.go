package favorites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/entities"
)

func TestRepository_AddAndRemove(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "fan")
	spell := dbtest.CreateSpell(t, db, user.ID, "liked", "go", true)

	fav, err := repo.Add(user.ID, spell.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, fav.ID)

	ok, err := repo.IsFavorited(user.ID, spell.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Add(user.ID, spell.ID)
	assert.ErrorIs(t, err, database.ErrDuplicate)

	require.NoError(t, repo.Remove(user.ID, spell.ID))
	assert.ErrorIs(t, repo.Remove(user.ID, spell.ID), database.ErrNotFound)

	ok, err = repo.IsFavorited(user.ID, spell.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_ListByUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	fan := dbtest.CreateUser(t, db, "fan")
	author := dbtest.CreateUser(t, db, "author")
	book := dbtest.CreateSpellbook(t, db, author.ID, "Tricks", true)

	goSpell := dbtest.CreateSpell(t, db, author.ID, "Goroutine pool", "go", true)
	pySpell := dbtest.CreateSpell(t, db, author.ID, "List comprehension", "python", true)
	require.NoError(t, db.Model(goSpell).Update("spellbook_id", book.ID).Error)

	_, err := repo.Add(fan.ID, goSpell.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = repo.Add(fan.ID, pySpell.ID)
	require.NoError(t, err)

	all, err := repo.ListByUser(fan.ID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, pySpell.ID, all[0].SpellID, "newest favorite first")
	require.NotNil(t, all[1].Spell)
	require.NotNil(t, all[1].Spell.User)
	assert.Equal(t, "author", all[1].Spell.User.Username)
	require.NotNil(t, all[1].Spell.Spellbook)
	assert.Equal(t, "Tricks", all[1].Spell.Spellbook.Name)

	filtered, err := repo.ListByUser(fan.ID, ListFilter{Language: "go"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, goSpell.ID, filtered[0].SpellID)

	searched, err := repo.ListByUser(fan.ID, ListFilter{Search: "comprehension"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, pySpell.ID, searched[0].SpellID)

	counts, err := repo.LanguageCounts(fan.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []entities.LanguageCount{{Language: "go", Count: 1}, {Language: "python", Count: 1}}, counts)

	n, err := repo.CountByUser(fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
