package spells

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/entities"
)

func TestRepository_CreateDefaultsTags(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "caster")

	spell := &entities.Spell{ID: "spl-1", Title: "Hello", Code: "fmt.Println()", Language: "go", IsPublic: true, UserID: user.ID}
	require.NoError(t, repo.Create(spell))

	got, err := repo.GetByID("spl-1")
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
	require.NotNil(t, got.User)
	assert.Equal(t, "caster", got.User.Username)
	assert.Nil(t, got.Spellbook)
}

func TestRepository_IncrementViews(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "viewer")
	spell := dbtest.CreateSpell(t, db, user.ID, "counted", "go", true)

	before, err := repo.GetByID(spell.ID)
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		views, err := repo.IncrementViews(spell.ID)
		require.NoError(t, err)
		assert.Equal(t, want, views)
	}

	after, err := repo.GetByID(spell.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), after.Views)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "views must not bump updated_at")

	_, err = repo.IncrementViews("spl-missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_ListByUserFilters(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "lister")
	other := dbtest.CreateUser(t, db, "other")
	book := dbtest.CreateSpellbook(t, db, user.ID, "Grimoire", true)

	fizz := dbtest.CreateSpell(t, db, user.ID, "FizzBuzz", "python", true)
	dbtest.CreateSpell(t, db, user.ID, "Quicksort", "go", false)
	dbtest.CreateSpell(t, db, other.ID, "Fizz elsewhere", "python", true)
	_, err := repo.Update(fizz.ID, map[string]any{"spellbook_id": book.ID})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"FizzBuzz", "Quicksort"}},
		{"language", ListFilter{Language: "go"}, []string{"Quicksort"}},
		{"search case insensitive", ListFilter{Search: "fizz"}, []string{"FizzBuzz"}},
		{"spellbook", ListFilter{SpellbookID: book.ID}, []string{"FizzBuzz"}},
		{"wildcards are literal", ListFilter{Search: "%"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spells, err := repo.ListByUser(user.ID, tt.filter)
			require.NoError(t, err)
			var titles []string
			for _, s := range spells {
				titles = append(titles, s.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}
}

func TestRepository_ListByUserOrderedByUpdated(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "orderer")

	first := dbtest.CreateSpell(t, db, user.ID, "first", "go", true)
	dbtest.CreateSpell(t, db, user.ID, "second", "go", true)
	time.Sleep(10 * time.Millisecond)
	_, err := repo.Update(first.ID, map[string]any{"title": "first edited"})
	require.NoError(t, err)

	spells, err := repo.ListByUser(user.ID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, spells, 2)
	assert.Equal(t, "first edited", spells[0].Title)
}

func TestRepository_ListPublic(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "publisher")

	popular := dbtest.CreateSpell(t, db, user.ID, "Popular", "go", true)
	dbtest.CreateSpell(t, db, user.ID, "Quiet", "rust", true)
	dbtest.CreateSpell(t, db, user.ID, "Secret", "go", false)
	for i := 0; i < 3; i++ {
		_, err := repo.IncrementViews(popular.ID)
		require.NoError(t, err)
	}

	spells, err := repo.ListPublic(PublicFilter{Order: OrderViews, Limit: 50})
	require.NoError(t, err)
	require.Len(t, spells, 2)
	assert.Equal(t, "Popular", spells[0].Title)
	require.NotNil(t, spells[0].User)
	assert.Equal(t, "publisher", spells[0].User.Username)

	spells, err = repo.ListPublic(PublicFilter{Language: "rust"})
	require.NoError(t, err)
	require.Len(t, spells, 1)
	assert.Equal(t, "Quiet", spells[0].Title)
}

func TestRepository_LanguageFacets(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "polyglot")

	dbtest.CreateSpell(t, db, user.ID, "a", "go", true)
	dbtest.CreateSpell(t, db, user.ID, "b", "go", true)
	dbtest.CreateSpell(t, db, user.ID, "c", "python", true)
	dbtest.CreateSpell(t, db, user.ID, "d", "haskell", false)

	counts, err := repo.PublicLanguageCounts()
	require.NoError(t, err)
	assert.Equal(t, []entities.LanguageCount{{Language: "go", Count: 2}, {Language: "python", Count: 1}}, counts)

	languages, err := repo.PublicLanguages()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "python"}, languages)

	stats, err := repo.UserLanguageCounts(user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"go": 2, "python": 1, "haskell": 1}, stats)
}

func TestRepository_DeleteRemovesFavorites(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "deleter")
	spell := dbtest.CreateSpell(t, db, user.ID, "doomed", "go", true)
	require.NoError(t, db.Create(&entities.Favorite{ID: "fav-1", UserID: user.ID, SpellID: spell.ID}).Error)

	require.NoError(t, repo.Delete(spell.ID))

	_, err := repo.GetByID(spell.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var favorites int64
	require.NoError(t, db.Model(&entities.Favorite{}).Count(&favorites).Error)
	assert.Zero(t, favorites)

	assert.ErrorIs(t, repo.Delete(spell.ID), database.ErrNotFound)
}

func TestRepository_OwnedSpellbookExists(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	owner := dbtest.CreateUser(t, db, "owner")
	other := dbtest.CreateUser(t, db, "intruder")
	book := dbtest.CreateSpellbook(t, db, owner.ID, "mine", false)

	ok, err := repo.OwnedSpellbookExists(book.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.OwnedSpellbookExists(book.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_PublicStamps(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	user := dbtest.CreateUser(t, db, "mapper")

	older := dbtest.CreateSpell(t, db, user.ID, "older", "go", true)
	newer := dbtest.CreateSpell(t, db, user.ID, "newer", "go", true)
	dbtest.CreateSpell(t, db, user.ID, "hidden", "go", false)
	require.NoError(t, db.Model(older).UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	stamps, err := repo.PublicStamps(10)
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	assert.Equal(t, newer.ID, stamps[0].ID)
	assert.Equal(t, older.ID, stamps[1].ID)
	assert.False(t, stamps[0].UpdatedAt.IsZero())

	limited, err := repo.PublicStamps(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
