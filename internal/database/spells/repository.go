// Package spells provides database operations for code snippets.
package spells

import (
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
)

// OrderBy selects the sort order of public listings.
type OrderBy string

const (
	OrderUpdated OrderBy = "updated_at DESC"
	OrderCreated OrderBy = "created_at DESC"
	OrderViews   OrderBy = "views DESC, updated_at DESC"
)

// ListFilter narrows the owner's spell list.
type ListFilter struct {
	Language    string
	SpellbookID string
	Search      string
}

// PublicFilter narrows listings of public spells.
type PublicFilter struct {
	Search   string
	Language string
	UserID   string
	Order    OrderBy
	Limit    int
	Offset   int
}

// Repository handles all spell database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new spells repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "username", "image")
}

func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := database.ContainsPattern(search)
		return db.Where("(LOWER(spells.title) LIKE ? ESCAPE '\\' OR LOWER(spells.description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
}

// Create inserts a new spell.
func (r *Repository) Create(spell *entities.Spell) error {
	if spell.Tags == nil {
		spell.Tags = []string{}
	}
	return r.db.Create(spell).Error
}

// GetByID retrieves a spell with its owner summary and spellbook.
func (r *Repository) GetByID(id string) (*entities.Spell, error) {
	var spell entities.Spell
	err := r.db.Preload("User", preloadUser).Preload("Spellbook").
		Where("id = ?", id).First(&spell).Error
	if err != nil {
		return nil, err
	}
	return &spell, nil
}

// IncrementViews adds one view atomically and returns the new count.
// updated_at is left untouched.
func (r *Repository) IncrementViews(id string) (int64, error) {
	result := r.db.Model(&entities.Spell{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var views int64
	err := r.db.Model(&entities.Spell{}).Where("id = ?", id).Pluck("views", &views).Error
	return views, err
}

// ListByUser returns the owner's spells, most recently updated first.
func (r *Repository) ListByUser(userID string, filter ListFilter) ([]entities.Spell, error) {
	query := r.db.Preload("Spellbook").Where("user_id = ?", userID).Scopes(searchScope(filter.Search))
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.SpellbookID != "" {
		query = query.Where("spellbook_id = ?", filter.SpellbookID)
	}

	var spells []entities.Spell
	err := query.Order("updated_at DESC").Find(&spells).Error
	return spells, err
}

// ListPublic returns public spells with owner summary and spellbook.
func (r *Repository) ListPublic(filter PublicFilter) ([]entities.Spell, error) {
	query := r.db.Preload("User", preloadUser).Preload("Spellbook").
		Where("is_public = ?", true).Scopes(searchScope(filter.Search))
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	order := filter.Order
	if order == "" {
		order = OrderUpdated
	}
	query = query.Order(string(order))
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var spells []entities.Spell
	err := query.Find(&spells).Error
	return spells, err
}

// RecentByUser returns the owner's most recently updated spells.
func (r *Repository) RecentByUser(userID string, limit int) ([]entities.Spell, error) {
	var spells []entities.Spell
	err := r.db.Preload("Spellbook").Where("user_id = ?", userID).
		Order("updated_at DESC").Limit(limit).Find(&spells).Error
	return spells, err
}

// Update applies column changes to a spell and returns the fresh row.
func (r *Repository) Update(id string, fields map[string]any) (*entities.Spell, error) {
	if len(fields) > 0 {
		result := r.db.Model(&entities.Spell{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(id)
}

// Delete removes a spell and the favorites pointing at it.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("spell_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entities.Spell{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountByUser returns the number of spells a user owns.
func (r *Repository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Spell{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// PublicLanguageCounts groups public spells by language, largest first.
func (r *Repository) PublicLanguageCounts() ([]entities.LanguageCount, error) {
	var counts []entities.LanguageCount
	err := r.db.Model(&entities.Spell{}).
		Select("language, COUNT(*) AS count").
		Where("is_public = ?", true).
		Group("language").
		Order("count DESC, language ASC").
		Scan(&counts).Error
	return counts, err
}

// UserLanguageCounts groups a user's spells by language.
func (r *Repository) UserLanguageCounts(userID string) (map[string]int64, error) {
	var counts []entities.LanguageCount
	err := r.db.Model(&entities.Spell{}).
		Select("language, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("language").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(counts))
	for _, c := range counts {
		stats[c.Language] = c.Count
	}
	return stats, nil
}

// PublicLanguages returns the distinct languages of public spells in ascending order.
func (r *Repository) PublicLanguages() ([]string, error) {
	var languages []string
	err := r.db.Model(&entities.Spell{}).
		Where("is_public = ?", true).
		Distinct("language").
		Order("language ASC").
		Pluck("language", &languages).Error
	return languages, err
}

// OwnedSpellbookExists reports whether spellbookID exists and belongs to userID.
func (r *Repository) OwnedSpellbookExists(spellbookID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Spellbook{}).
		Where("id = ? AND user_id = ?", spellbookID, userID).
		Count(&count).Error
	return count > 0, err
}

// PublicStamps returns the ids and update times of the most recently updated
// public spells.
func (r *Repository) PublicStamps(limit int) ([]database.Stamp, error) {
	var stamps []database.Stamp
	err := r.db.Model(&entities.Spell{}).
		Select("id", "updated_at").
		Where("is_public = ?", true).
		Order("updated_at DESC").
		Limit(limit).
		Scan(&stamps).Error
	return stamps, err
}
