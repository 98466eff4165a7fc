// Package spellbooks provides database operations for spell collections.
package spellbooks

import (
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
)

// PreviewSpells is how many recent spells list views attach to each spellbook.
const PreviewSpells = 3

// Repository handles all spellbook database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new spellbooks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "username", "image")
}

// Create inserts a new spellbook.
func (r *Repository) Create(book *entities.Spellbook) error {
	if book.Tags == nil {
		book.Tags = []string{}
	}
	if err := r.db.Create(book).Error; err != nil {
		return err
	}
	book.Count = &entities.SpellbookCount{}
	return nil
}

// GetByID retrieves a spellbook with its owner summary and spell count.
func (r *Repository) GetByID(id string) (*entities.Spellbook, error) {
	var book entities.Spellbook
	if err := r.db.Preload("User", preloadUser).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	if err := r.attachCounts([]*entities.Spellbook{&book}); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetWithSpells retrieves a spellbook and its spells, most recently updated
// first. When publicOnly is set private spells are left out.
func (r *Repository) GetWithSpells(id string, publicOnly bool) (*entities.Spellbook, error) {
	var book entities.Spellbook
	err := r.db.Preload("User", preloadUser).
		Preload("Spells", func(db *gorm.DB) *gorm.DB {
			if publicOnly {
				db = db.Where("is_public = ?", true)
			}
			return db.Order("updated_at DESC")
		}).
		Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachCounts([]*entities.Spellbook{&book}); err != nil {
		return nil, err
	}
	return &book, nil
}

// ListByUser returns the owner's spellbooks with counts and a few recent spells.
func (r *Repository) ListByUser(userID, search string) ([]entities.Spellbook, error) {
	query := r.db.Where("user_id = ?", userID)
	if search != "" {
		pattern := database.ContainsPattern(search)
		query = query.Where(
			"(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(tags) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}

	var books []entities.Spellbook
	if err := query.Order("updated_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, r.decorate(books, false)
}

// ListPublic returns public spellbooks, optionally for one owner, most recently
// updated first.
func (r *Repository) ListPublic(userID string, limit int) ([]entities.Spellbook, error) {
	query := r.db.Preload("User", preloadUser).Where("is_public = ?", true)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var books []entities.Spellbook
	if err := query.Order("updated_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, r.decorate(books, true)
}

// Update applies column changes and returns the fresh row.
func (r *Repository) Update(id string, fields map[string]any) (*entities.Spellbook, error) {
	if len(fields) > 0 {
		result := r.db.Model(&entities.Spellbook{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(id)
}

// Delete removes a spellbook and detaches its spells.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.Spell{}).Where("spellbook_id = ?", id).
			UpdateColumn("spellbook_id", nil).Error
		if err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entities.Spellbook{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountByUser returns the number of spellbooks a user owns.
func (r *Repository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Spellbook{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *Repository) decorate(books []entities.Spellbook, publicOnly bool) error {
	ptrs := make([]*entities.Spellbook, len(books))
	for i := range books {
		ptrs[i] = &books[i]
	}
	if err := r.attachCounts(ptrs); err != nil {
		return err
	}
	for _, book := range ptrs {
		query := r.db.Where("spellbook_id = ?", book.ID)
		if publicOnly {
			query = query.Where("is_public = ?", true)
		}
		if err := query.Order("updated_at DESC").Limit(PreviewSpells).Find(&book.Spells).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) attachCounts(books []*entities.Spellbook) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	var rows []struct {
		SpellbookID string
		Count       int64
	}
	err := r.db.Model(&entities.Spell{}).
		Select("spellbook_id, COUNT(*) AS count").
		Where("spellbook_id IN ?", ids).
		Group("spellbook_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SpellbookID] = row.Count
	}
	for _, b := range books {
		b.Count = &entities.SpellbookCount{Spells: counts[b.ID]}
	}
	return nil
}

// PublicStamps returns the ids and update times of the most recently updated
// public spellbooks.
func (r *Repository) PublicStamps(limit int) ([]database.Stamp, error) {
	var stamps []database.Stamp
	err := r.db.Model(&entities.Spellbook{}).
		Select("id", "updated_at").
		Where("is_public = ?", true).
		Order("updated_at DESC").
		Limit(limit).
		Scan(&stamps).Error
	return stamps, err
}
