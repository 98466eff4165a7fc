package http

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/audit"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/preview"
	"github.com/spellbook-app/spellbook/internal/search"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// SpellRepository is everything the router needs from the spells repository.
type SpellRepository interface {
	SpellStore
	StampLister
}

// SpellbookRepository is everything the router needs from the spellbooks repository.
type SpellbookRepository interface {
	SpellbookStore
	StampLister
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	DB        *gorm.DB
	Logger    *zap.Logger
	Validator *validation.Validator

	// Repositories
	Users      UserStore
	Spells     SpellRepository
	Spellbooks SpellbookRepository
	Runes      RuneStore
	Favorites  FavoriteStore

	// Authentication. Session, CSRF and identity middleware are installed only
	// when SessionManager and AuthMiddleware are set.
	AuthService    *auth.Service
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	Tokens         *auth.TokenService
	CSRFSecret     []byte // Empty disables CSRF protection
	SecureCookies  bool

	// Audit logging (optional)
	Audit *audit.Service

	// Search (optional). Index is notified of content writes; Search serves
	// /api/search and is nil when search is disabled.
	Index  ContentIndex
	Search *search.Index

	// Snippet runner
	Runner *preview.Runner

	// Browse settings
	SiteBaseURL     string
	ExploreCacheTTL time.Duration

	// DemoMode rejects every write except sign-in and snippet previews
	DemoMode bool

	// Application info
	Version string
}
