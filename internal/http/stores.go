package http

import (
	"context"

	"github.com/spellbook-app/spellbook/internal/audit"
	auditrepo "github.com/spellbook-app/spellbook/internal/database/audit"
	"github.com/spellbook-app/spellbook/internal/database/favorites"
	"github.com/spellbook-app/spellbook/internal/database/runes"
	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/search"
)

// This file consolidates all store interface definitions used by HTTP controllers.
// The repositories under internal/database satisfy them; tests may substitute fakes.

// --- Content ---

// SpellStore provides spell persistence.
type SpellStore interface {
	Create(spell *entities.Spell) error
	GetByID(id string) (*entities.Spell, error)
	IncrementViews(id string) (int64, error)
	ListByUser(userID string, filter spells.ListFilter) ([]entities.Spell, error)
	ListPublic(filter spells.PublicFilter) ([]entities.Spell, error)
	RecentByUser(userID string, limit int) ([]entities.Spell, error)
	Update(id string, fields map[string]any) (*entities.Spell, error)
	Delete(id string) error
	CountByUser(userID string) (int64, error)
	PublicLanguageCounts() ([]entities.LanguageCount, error)
	UserLanguageCounts(userID string) (map[string]int64, error)
	PublicLanguages() ([]string, error)
	OwnedSpellbookExists(spellbookID, userID string) (bool, error)
}

// SpellbookStore provides spellbook persistence.
type SpellbookStore interface {
	Create(book *entities.Spellbook) error
	GetByID(id string) (*entities.Spellbook, error)
	GetWithSpells(id string, publicOnly bool) (*entities.Spellbook, error)
	ListByUser(userID, search string) ([]entities.Spellbook, error)
	ListPublic(userID string, limit int) ([]entities.Spellbook, error)
	Update(id string, fields map[string]any) (*entities.Spellbook, error)
	Delete(id string) error
	CountByUser(userID string) (int64, error)
}

// RuneStore provides rune persistence.
type RuneStore interface {
	Create(rn *entities.Rune) error
	GetByID(id string) (*entities.Rune, error)
	IncrementViews(id string) (int64, error)
	List(filter runes.ListFilter) ([]entities.Rune, error)
	Update(id string, fields map[string]any) (*entities.Rune, error)
	Delete(id string) error
}

// FavoriteStore provides per-user spell bookmarks.
type FavoriteStore interface {
	Add(userID, spellID string) (*entities.Favorite, error)
	Remove(userID, spellID string) error
	IsFavorited(userID, spellID string) (bool, error)
	ListByUser(userID string, filter favorites.ListFilter) ([]entities.Favorite, error)
	LanguageCounts(userID string) ([]entities.LanguageCount, error)
}

// --- Accounts ---

// UserStore provides profile reads and writes.
type UserStore interface {
	GetByID(id string) (*entities.User, error)
	GetByUsername(username string) (*entities.User, error)
	UsernameTaken(username, exceptUserID string) (bool, error)
	Update(id string, fields map[string]any) (*entities.User, error)
	Counts(userID string) (entities.UserCounts, error)
}

// PasswordChanger verifies and replaces a user's password.
type PasswordChanger interface {
	ChangePassword(userID, oldPassword, newPassword string) error
}

// --- Side effects ---

// ContentIndex is told about every write to searchable content.
type ContentIndex interface {
	Changed(docType search.DocType, id string)
}

// Auditor records user-driven changes.
type Auditor interface {
	LogChange(actor audit.Actor, eventType entities.AuditEventType, action, entityID, description string, metadata map[string]any)
}

// AuditReader lists recorded events.
type AuditReader interface {
	ListEvents(filter auditrepo.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// Searcher runs full-text queries.
type Searcher interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}
