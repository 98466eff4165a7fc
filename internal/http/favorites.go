package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/access"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/favorites"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/utils"
)

// SpellGetter provides read access to spells.
type SpellGetter interface {
	GetByID(id string) (*entities.Spell, error)
}

// FavoritesResponse is the body of GET /api/favorites.
type FavoritesResponse struct {
	Favorites []entities.Favorite `json:"favorites"`
	Languages []LanguageFacet     `json:"languages"`
}

// LanguageFacet is one language bucket with its display color.
type LanguageFacet struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
	Color    string `json:"color"`
}

func languageFacets(counts []entities.LanguageCount) []LanguageFacet {
	facets := make([]LanguageFacet, len(counts))
	for i, lc := range counts {
		facets[i] = LanguageFacet{Language: lc.Language, Count: lc.Count, Color: utils.LanguageColor(lc.Language)}
	}
	return facets
}

// FavoritesController handles spell bookmarking.
type FavoritesController struct {
	store   FavoriteStore
	spells  SpellGetter
	changes changeRecorder
	logger  *zap.Logger
}

// NewFavoritesController creates a new favorites controller.
func NewFavoritesController(store FavoriteStore, spells SpellGetter, auditor Auditor, logger *zap.Logger) *FavoritesController {
	return &FavoritesController{
		store:   store,
		spells:  spells,
		changes: changeRecorder{audit: auditor},
		logger:  logger,
	}
}

// Add favorites a readable spell for the caller.
// POST /api/spells/:id/favorite
func (fc *FavoritesController) Add(c *gin.Context) {
	userID := auth.GetUserID(c)
	spell, err := fc.spells.GetByID(c.Param("id"))
	if err == nil {
		err = access.CanRead(userID, spell)
	}
	if err != nil {
		respondDomainError(c, fc.logger, err, "Spell", "Failed to favorite spell")
		return
	}

	fav, err := fc.store.Add(userID, spell.ID)
	if errors.Is(err, database.ErrDuplicate) {
		respondBadRequest(c, "Already favorited")
		return
	}
	if err != nil {
		respondInternalError(c, fc.logger, err, "Failed to favorite spell")
		return
	}
	fc.changes.record(c, "", entities.AuditEventFavorite, "favorite_add", spell.ID, "Favorited spell "+spell.Title)
	respondCreated(c, fav)
}

// Remove drops the caller's favorite of a spell.
// DELETE /api/spells/:id/favorite
func (fc *FavoritesController) Remove(c *gin.Context) {
	spellID := c.Param("id")
	err := fc.store.Remove(auth.GetUserID(c), spellID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not favorited"})
		return
	}
	if err != nil {
		respondInternalError(c, fc.logger, err, "Failed to unfavorite spell")
		return
	}
	fc.changes.record(c, "", entities.AuditEventFavorite, "favorite_remove", spellID, "Unfavorited spell")
	respondSuccess(c)
}

// Status reports whether the caller has favorited a spell. Anonymous callers
// always get false.
// GET /api/spells/:id/favorite
func (fc *FavoritesController) Status(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"favorited": false})
		return
	}

	favorited, err := fc.store.IsFavorited(userID, c.Param("id"))
	if err != nil {
		respondInternalError(c, fc.logger, err, "Failed to check favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// List returns the caller's favorites with a language facet computed over
// all of them, regardless of the filters.
// GET /api/favorites?search=&language=
func (fc *FavoritesController) List(c *gin.Context) {
	userID := auth.GetUserID(c)
	list, err := fc.store.ListByUser(userID, favorites.ListFilter{
		Search:   c.Query("search"),
		Language: c.Query("language"),
	})
	if err != nil {
		respondInternalError(c, fc.logger, err, "Failed to fetch favorites")
		return
	}
	counts, err := fc.store.LanguageCounts(userID)
	if err != nil {
		respondInternalError(c, fc.logger, err, "Failed to fetch favorites")
		return
	}
	if list == nil {
		list = []entities.Favorite{}
	}
	c.JSON(http.StatusOK, FavoritesResponse{Favorites: list, Languages: languageFacets(counts)})
}
