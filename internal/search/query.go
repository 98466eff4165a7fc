package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

var ErrEmptyQuery = errors.New("search query is required")

// Limits applied to Params.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search.
type Params struct {
	Query  string
	Types  []DocType // Empty means all types
	Limit  int
	Offset int
}

// Result holds one page of hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single match.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Title      string            `json:"title"`
	Language   string            `json:"language,omitempty"`
	Username   string            `json:"username,omitempty"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs a relevance-ranked query over title, description, tags, language
// and owner username.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, ErrEmptyQuery
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	params.Limit = min(params.Limit, MaxLimit)
	params.Offset = max(params.Offset, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "-updated_at"})
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("description")
	req.Fields = []string{"id", "type", "title", "language", "username"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if l, ok := hit.Fields["language"].(string); ok {
			h.Language = l
		}
		if u, ok := hit.Fields["username"].(string); ok {
			h.Username = u
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}
	return result, nil
}

func buildQuery(params Params) query.Query {
	q := params.Query
	lower := strings.ToLower(q)

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	descMatch := bleve.NewMatchQuery(q)
	descMatch.SetField("description")

	tagTerm := bleve.NewTermQuery(lower)
	tagTerm.SetField("tags")
	tagTerm.SetBoost(2.0)

	langTerm := bleve.NewTermQuery(lower)
	langTerm.SetField("language")
	langTerm.SetBoost(2.0)

	userMatch := bleve.NewMatchQuery(q)
	userMatch.SetField("username")
	userMatch.SetBoost(0.5)

	fuzzy := bleve.NewFuzzyQuery(lower)
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)

	textQueries := []query.Query{titleMatch, descMatch, tagTerm, langTerm, userMatch, fuzzy}
	if len(q) >= 2 {
		prefix := bleve.NewPrefixQuery(lower)
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		textQueries = append(textQueries, prefix)
	}
	text := bleve.NewDisjunctionQuery(textQueries...)

	if len(params.Types) == 0 {
		return text
	}
	typeQueries := make([]query.Query, len(params.Types))
	for i, t := range params.Types {
		tq := bleve.NewTermQuery(string(t))
		tq.SetField("type")
		typeQueries[i] = tq
	}
	return bleve.NewConjunctionQuery(text, bleve.NewDisjunctionQuery(typeQueries...))
}
