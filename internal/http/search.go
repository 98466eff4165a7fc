package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/search"
)

// SearchController serves full-text search over public content.
type SearchController struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewSearchController creates a new search controller.
func NewSearchController(searcher Searcher, logger *zap.Logger) *SearchController {
	return &SearchController{searcher: searcher, logger: logger}
}

// Search runs a relevance-ranked query. type is a comma separated list of
// spell, rune and spellbook.
// GET /api/search?q=&type=&limit=&offset=
func (sc *SearchController) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		respondBadRequest(c, "Query is required")
		return
	}

	var types []search.DocType
	if raw := c.Query("type"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, ok := search.ParseDocType(part)
			if !ok {
				respondBadRequest(c, "Invalid type: "+strings.TrimSpace(part))
				return
			}
			types = append(types, t)
		}
	}

	result, err := sc.searcher.Search(c.Request.Context(), search.Params{
		Query:  q,
		Types:  types,
		Limit:  queryInt(c, "limit", search.DefaultLimit),
		Offset: queryInt(c, "offset", 0),
	})
	if errors.Is(err, search.ErrEmptyQuery) {
		respondBadRequest(c, "Query is required")
		return
	}
	if err != nil {
		respondInternalError(c, sc.logger, err, "Search failed")
		return
	}
	c.JSON(http.StatusOK, result)
}
