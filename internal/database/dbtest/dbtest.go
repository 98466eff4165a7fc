// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
)

// Open returns a migrated database in t.TempDir, closed on cleanup.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:       id.MustGenerate(id.PrefixUser),
		Email:    username + "@example.com",
		Name:     username,
		Username: username,
		IsPublic: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateSpell inserts a spell owned by userID.
func CreateSpell(t *testing.T, db *gorm.DB, userID, title, language string, public bool) *entities.Spell {
	t.Helper()
	spell := &entities.Spell{
		ID:       id.MustGenerate(id.PrefixSpell),
		Title:    title,
		Code:     "print('" + title + "')",
		Language: language,
		IsPublic: public,
		Tags:     []string{},
		UserID:   userID,
	}
	require.NoError(t, db.Create(spell).Error)
	return spell
}

// CreateSpellbook inserts a spellbook owned by userID.
func CreateSpellbook(t *testing.T, db *gorm.DB, userID, name string, public bool) *entities.Spellbook {
	t.Helper()
	book := &entities.Spellbook{
		ID:       id.MustGenerate(id.PrefixSpellbook),
		Name:     name,
		IsPublic: public,
		Tags:     []string{},
		UserID:   userID,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

// CreateRune inserts a rune owned by userID.
func CreateRune(t *testing.T, db *gorm.DB, userID, title string, public bool) *entities.Rune {
	t.Helper()
	r := &entities.Rune{
		ID:       id.MustGenerate(id.PrefixRune),
		Title:    title,
		HTML:     "<p>" + title + "</p>",
		IsPublic: public,
		Tags:     []string{},
		UserID:   userID,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}
