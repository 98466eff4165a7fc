package search

import (
	"strings"
	"time"

	"github.com/spellbook-app/spellbook/internal/entities"
)

// DocType identifies the kind of record behind a search document.
type DocType string

const (
	DocTypeSpell     DocType = "spell"
	DocTypeRune      DocType = "rune"
	DocTypeSpellbook DocType = "spellbook"
)

// ParseDocType validates a type name from a query string.
func ParseDocType(s string) (DocType, bool) {
	switch t := DocType(strings.ToLower(strings.TrimSpace(s))); t {
	case DocTypeSpell, DocTypeRune, DocTypeSpellbook:
		return t, true
	}
	return "", false
}

// Document is the indexed form of a public spell, rune or spellbook.
type Document struct {
	ID          string
	Type        DocType
	Title       string
	Description string
	Tags        []string
	Language    string
	Username    string
	UpdatedAt   time.Time
}

// ToMap converts the document to field names matching the index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"type":        string(d.Type),
		"title":       d.Title,
		"description": d.Description,
		"username":    d.Username,
		"updated_at":  float64(d.UpdatedAt.Unix()),
	}
	if len(d.Tags) > 0 {
		tags := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = strings.ToLower(t)
		}
		m["tags"] = tags
	}
	if d.Language != "" {
		m["language"] = strings.ToLower(d.Language)
	}
	return m
}

func username(u *entities.UserSummary) string {
	if u == nil {
		return ""
	}
	return u.Username
}

// SpellDocument builds the document for a spell.
func SpellDocument(s *entities.Spell) *Document {
	return &Document{
		ID:          s.ID,
		Type:        DocTypeSpell,
		Title:       s.Title,
		Description: s.Description,
		Tags:        s.Tags,
		Language:    s.Language,
		Username:    username(s.User),
		UpdatedAt:   s.UpdatedAt,
	}
}

// RuneDocument builds the document for a rune.
func RuneDocument(r *entities.Rune) *Document {
	return &Document{
		ID:          r.ID,
		Type:        DocTypeRune,
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		Username:    username(r.User),
		UpdatedAt:   r.UpdatedAt,
	}
}

// SpellbookDocument builds the document for a spellbook.
func SpellbookDocument(b *entities.Spellbook) *Document {
	return &Document{
		ID:          b.ID,
		Type:        DocTypeSpellbook,
		Title:       b.Name,
		Description: b.Description,
		Tags:        b.Tags,
		Username:    username(b.User),
		UpdatedAt:   b.UpdatedAt,
	}
}
