package search

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/entities"
)

// LoadPublic reads every public spell, rune and spellbook as documents.
func LoadPublic(db *gorm.DB) ([]*Document, error) {
	var docs []*Document

	var spells []entities.Spell
	if err := db.Preload("User").Where("is_public = ?", true).Find(&spells).Error; err != nil {
		return nil, fmt.Errorf("load spells: %w", err)
	}
	for i := range spells {
		docs = append(docs, SpellDocument(&spells[i]))
	}

	var runes []entities.Rune
	if err := db.Preload("User").Where("is_public = ?", true).Find(&runes).Error; err != nil {
		return nil, fmt.Errorf("load runes: %w", err)
	}
	for i := range runes {
		docs = append(docs, RuneDocument(&runes[i]))
	}

	var books []entities.Spellbook
	if err := db.Preload("User").Where("is_public = ?", true).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("load spellbooks: %w", err)
	}
	for i := range books {
		docs = append(docs, SpellbookDocument(&books[i]))
	}

	return docs, nil
}

// LoadOne returns the document for a single record, or nil when the record
// is gone or private and so must not be in the index.
func LoadOne(db *gorm.DB, docType DocType, id string) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch docType {
	case DocTypeSpell:
		var s entities.Spell
		if err = db.Preload("User").Where("id = ?", id).First(&s).Error; err == nil && s.IsPublic {
			doc = SpellDocument(&s)
		}
	case DocTypeRune:
		var r entities.Rune
		if err = db.Preload("User").Where("id = ?", id).First(&r).Error; err == nil && r.IsPublic {
			doc = RuneDocument(&r)
		}
	case DocTypeSpellbook:
		var b entities.Spellbook
		if err = db.Preload("User").Where("id = ?", id).First(&b).Error; err == nil && b.IsPublic {
			doc = SpellbookDocument(&b)
		}
	default:
		return nil, fmt.Errorf("unknown document type %q", docType)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Sync brings one record's index entry in line with the database.
func (s *Index) Sync(db *gorm.DB, docType DocType, id string) error {
	doc, err := LoadOne(db, docType, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return s.DeleteDocument(id)
	}
	return s.IndexDocument(doc)
}

// Reindex rebuilds the index from the database.
func (s *Index) Reindex(db *gorm.DB) (int, error) {
	docs, err := LoadPublic(db)
	if err != nil {
		return 0, err
	}
	if err := s.Rebuild(docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
