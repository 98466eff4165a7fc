package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/entities"
)

const (
	exploreLimit        = 50
	publicSpellsLimit   = 50
	languageFacetKey    = "explore_languages"
	defaultExploreCache = 5 * time.Minute
)

// ExploreResponse is the body of GET /api/explore.
type ExploreResponse struct {
	Spells    []entities.Spell `json:"spells"`
	Languages []LanguageFacet  `json:"languages"`
}

// PublicSpellsResponse is the body of GET /api/public/spells.
type PublicSpellsResponse struct {
	Spells    []entities.Spell `json:"spells"`
	Languages []string         `json:"languages"`
}

// ExploreController serves the anonymous browse listings.
type ExploreController struct {
	spells SpellStore
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewExploreController creates a new explore controller. The language facet
// is cached for ttl.
func NewExploreController(store SpellStore, ttl time.Duration, logger *zap.Logger) *ExploreController {
	if ttl <= 0 {
		ttl = defaultExploreCache
	}
	return &ExploreController{
		spells: store,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

// Explore lists the most viewed public spells and the language facet.
// GET /api/explore?search=&language=
func (ec *ExploreController) Explore(c *gin.Context) {
	list, err := ec.spells.ListPublic(spells.PublicFilter{
		Search:   c.Query("search"),
		Language: c.Query("language"),
		Order:    spells.OrderViews,
		Limit:    exploreLimit,
	})
	if err != nil {
		respondInternalError(c, ec.logger, err, "Failed to fetch spells")
		return
	}
	facets, err := ec.languageFacets()
	if err != nil {
		respondInternalError(c, ec.logger, err, "Failed to fetch languages")
		return
	}
	if list == nil {
		list = []entities.Spell{}
	}
	c.JSON(http.StatusOK, ExploreResponse{Spells: list, Languages: facets})
}

// PublicSpells lists the newest public spells and every language in use.
// GET /api/public/spells?q=&lang=
func (ec *ExploreController) PublicSpells(c *gin.Context) {
	list, err := ec.spells.ListPublic(spells.PublicFilter{
		Search:   c.Query("q"),
		Language: c.Query("lang"),
		Order:    spells.OrderCreated,
		Limit:    publicSpellsLimit,
	})
	if err != nil {
		respondInternalError(c, ec.logger, err, "Failed to fetch spells")
		return
	}
	languages, err := ec.spells.PublicLanguages()
	if err != nil {
		respondInternalError(c, ec.logger, err, "Failed to fetch languages")
		return
	}
	if list == nil {
		list = []entities.Spell{}
	}
	if languages == nil {
		languages = []string{}
	}
	c.JSON(http.StatusOK, PublicSpellsResponse{Spells: list, Languages: languages})
}

func (ec *ExploreController) languageFacets() ([]LanguageFacet, error) {
	if cached, found := ec.cache.Get(languageFacetKey); found {
		return cached.([]LanguageFacet), nil
	}

	counts, err := ec.spells.PublicLanguageCounts()
	if err != nil {
		return nil, err
	}
	facets := languageFacets(counts)
	ec.cache.Set(languageFacetKey, facets, ec.ttl)
	return facets, nil
}
