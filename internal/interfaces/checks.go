package interfaces

// Compile-time checks that the concrete types wired in entrypoint satisfy
// the interfaces their consumers declare.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/spellbook-app/spellbook/internal/audit"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/database/favorites"
	"github.com/spellbook-app/spellbook/internal/database/runes"
	"github.com/spellbook-app/spellbook/internal/database/spellbooks"
	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/database/users"
	"github.com/spellbook-app/spellbook/internal/http"
	"github.com/spellbook-app/spellbook/internal/scheduler"
	"github.com/spellbook-app/spellbook/internal/search"
	"github.com/spellbook-app/spellbook/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.SpellRepository = (*spells.Repository)(nil)
var _ http.SpellbookRepository = (*spellbooks.Repository)(nil)
var _ http.RuneStore = (*runes.Repository)(nil)
var _ http.FavoriteStore = (*favorites.Repository)(nil)
var _ http.UserStore = (*users.Repository)(nil)
var _ http.SpellGetter = (*spells.Repository)(nil)
var _ auth.UserStore = (*users.Repository)(nil)

// =============================================================================
// Accounts and Audit
// =============================================================================

var _ http.PasswordChanger = (*auth.Service)(nil)
var _ http.Auditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.MaintenanceRecorder = (*audit.Service)(nil)

// =============================================================================
// Search and Background Work
// =============================================================================

var _ http.Searcher = (*search.Index)(nil)
var _ http.IndexCounter = (*search.Index)(nil)
var _ http.ContentIndex = (*tasks.IndexNotifier)(nil)
var _ tasks.ContentIndexer = (*search.Index)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
