// Package runes provides database operations for HTML/CSS/JS widgets.
package runes

import (
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
)

// ListFilter selects which runes a listing returns. Zero values mean "any".
type ListFilter struct {
	UserID     string
	PublicOnly bool
	Search     string
	Limit      int
}

// Repository handles all rune database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "username", "image")
}

// Create inserts a new rune.
func (r *Repository) Create(rn *entities.Rune) error {
	if rn.Tags == nil {
		rn.Tags = []string{}
	}
	return r.db.Create(rn).Error
}

// GetByID retrieves a rune with its owner summary.
func (r *Repository) GetByID(id string) (*entities.Rune, error) {
	var rn entities.Rune
	if err := r.db.Preload("User", preloadUser).Where("id = ?", id).First(&rn).Error; err != nil {
		return nil, err
	}
	return &rn, nil
}

// IncrementViews adds one view atomically and returns the new count.
func (r *Repository) IncrementViews(id string) (int64, error) {
	result := r.db.Model(&entities.Rune{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var views int64
	err := r.db.Model(&entities.Rune{}).Where("id = ?", id).Pluck("views", &views).Error
	return views, err
}

// List returns runes matching filter, most recently updated first.
func (r *Repository) List(filter ListFilter) ([]entities.Rune, error) {
	query := r.db.Preload("User", preloadUser)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filter.Search != "" {
		pattern := database.ContainsPattern(filter.Search)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var list []entities.Rune
	err := query.Order("updated_at DESC").Find(&list).Error
	return list, err
}

// Update applies column changes and returns the fresh row.
func (r *Repository) Update(id string, fields map[string]any) (*entities.Rune, error) {
	if len(fields) > 0 {
		result := r.db.Model(&entities.Rune{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(id)
}

// Delete removes a rune.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.Rune{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
