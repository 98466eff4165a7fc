package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/entities"
)

const (
	recentSpellsLimit = 5
	defaultUserName   = "Wizard"
)

// DashboardResponse is the body of GET /api/dashboard.
type DashboardResponse struct {
	UserName        string           `json:"userName"`
	SpellsCount     int64            `json:"spellsCount"`
	SpellbooksCount int64            `json:"spellbooksCount"`
	RecentSpells    []entities.Spell `json:"recentSpells"`
	LanguageStats   map[string]int64 `json:"languageStats"`
}

// DashboardController summarises the caller's library.
type DashboardController struct {
	users      UserStore
	spells     SpellStore
	spellbooks SpellbookStore
	logger     *zap.Logger
}

// NewDashboardController creates a new dashboard controller.
func NewDashboardController(users UserStore, spells SpellStore, spellbooks SpellbookStore, logger *zap.Logger) *DashboardController {
	return &DashboardController{users: users, spells: spells, spellbooks: spellbooks, logger: logger}
}

// Summary returns counts, recent spells and per-language totals.
// GET /api/dashboard
func (dc *DashboardController) Summary(c *gin.Context) {
	userID := auth.GetUserID(c)

	user, err := dc.users.GetByID(userID)
	if err != nil {
		respondDomainError(c, dc.logger, err, "User", "Failed to load dashboard")
		return
	}
	spellCount, err := dc.spells.CountByUser(userID)
	if err != nil {
		respondInternalError(c, dc.logger, err, "Failed to load dashboard")
		return
	}
	bookCount, err := dc.spellbooks.CountByUser(userID)
	if err != nil {
		respondInternalError(c, dc.logger, err, "Failed to load dashboard")
		return
	}
	recent, err := dc.spells.RecentByUser(userID, recentSpellsLimit)
	if err != nil {
		respondInternalError(c, dc.logger, err, "Failed to load dashboard")
		return
	}
	stats, err := dc.spells.UserLanguageCounts(userID)
	if err != nil {
		respondInternalError(c, dc.logger, err, "Failed to load dashboard")
		return
	}

	name := user.Name
	if name == "" {
		name = defaultUserName
	}
	if recent == nil {
		recent = []entities.Spell{}
	}
	c.JSON(http.StatusOK, DashboardResponse{
		UserName:        name,
		SpellsCount:     spellCount,
		SpellbooksCount: bookCount,
		RecentSpells:    recent,
		LanguageStats:   stats,
	})
}
