package http

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/database"
)

const (
	sitemapSpellLimit     = 1000
	sitemapSpellbookLimit = 500
	sitemapNamespace      = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

// StampLister lists public records for the sitemap.
type StampLister interface {
	PublicStamps(limit int) ([]database.Stamp, error)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority"`
}

// SitemapController renders sitemap.xml for public content.
type SitemapController struct {
	baseURL    string
	spells     StampLister
	spellbooks StampLister
	logger     *zap.Logger
	now        func() time.Time
}

// NewSitemapController creates a new sitemap controller. baseURL prefixes
// every location.
func NewSitemapController(baseURL string, spells, spellbooks StampLister, logger *zap.Logger) *SitemapController {
	return &SitemapController{
		baseURL:    strings.TrimRight(baseURL, "/"),
		spells:     spells,
		spellbooks: spellbooks,
		logger:     logger,
		now:        time.Now,
	}
}

// Sitemap lists the static pages, public spells and public spellbooks.
// GET /sitemap.xml
func (sc *SitemapController) Sitemap(c *gin.Context) {
	spellStamps, err := sc.spells.PublicStamps(sitemapSpellLimit)
	if err != nil {
		respondInternalError(c, sc.logger, err, "Failed to build sitemap")
		return
	}
	bookStamps, err := sc.spellbooks.PublicStamps(sitemapSpellbookLimit)
	if err != nil {
		respondInternalError(c, sc.logger, err, "Failed to build sitemap")
		return
	}

	now := sc.now().UTC().Format(time.RFC3339)
	set := sitemapURLSet{
		Xmlns: sitemapNamespace,
		URLs: []sitemapURL{
			{Loc: sc.baseURL, LastMod: now, ChangeFreq: "daily", Priority: 1},
			{Loc: sc.baseURL + "/explore", LastMod: now, ChangeFreq: "daily", Priority: 0.9},
			{Loc: sc.baseURL + "/auth/signin", LastMod: now, ChangeFreq: "monthly", Priority: 0.5},
		},
	}
	for _, s := range spellStamps {
		set.URLs = append(set.URLs, sc.entry("/spells/", s, 0.8))
	}
	for _, s := range bookStamps {
		set.URLs = append(set.URLs, sc.entry("/spellbooks/", s, 0.7))
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		respondInternalError(c, sc.logger, err, "Failed to build sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}

func (sc *SitemapController) entry(prefix string, s database.Stamp, priority float64) sitemapURL {
	return sitemapURL{
		Loc:        sc.baseURL + prefix + s.ID,
		LastMod:    s.UpdatedAt.UTC().Format(time.RFC3339),
		ChangeFreq: "weekly",
		Priority:   priority,
	}
}
