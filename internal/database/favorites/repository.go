// Package favorites provides database operations for per-user spell bookmarks.
//
// A user can favorite a given spell at most once; the pair is protected by a
// unique index so concurrent adds cannot create duplicates.
package favorites

import (
	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
)

// ListFilter narrows a user's favorites by properties of the spell.
type ListFilter struct {
	Search   string
	Language string
}

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favorites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add favorites spellID for userID. Returns database.ErrDuplicate when the
// pair already exists.
func (r *Repository) Add(userID, spellID string) (*entities.Favorite, error) {
	favID, err := id.Generate(id.PrefixFavorite)
	if err != nil {
		return nil, err
	}
	fav := &entities.Favorite{ID: favID, UserID: userID, SpellID: spellID}
	if err := r.db.Create(fav).Error; err != nil {
		return nil, err
	}
	return fav, nil
}

// Remove deletes the pair. Returns database.ErrNotFound when it did not exist.
func (r *Repository) Remove(userID, spellID string) error {
	result := r.db.Where("user_id = ? AND spell_id = ?", userID, spellID).Delete(&entities.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsFavorited reports whether userID has favorited spellID.
func (r *Repository) IsFavorited(userID, spellID string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ? AND spell_id = ?", userID, spellID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns a user's favorites, newest first, each with its spell,
// the spell's spellbook and the spell's owner.
func (r *Repository) ListByUser(userID string, filter ListFilter) ([]entities.Favorite, error) {
	query := r.db.Model(&entities.Favorite{}).
		Select("favorites.*").
		Joins("JOIN spells ON spells.id = favorites.spell_id").
		Preload("Spell").
		Preload("Spell.Spellbook").
		Preload("Spell.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "username", "image")
		}).
		Where("favorites.user_id = ?", userID)

	if filter.Search != "" {
		pattern := database.ContainsPattern(filter.Search)
		query = query.Where("(LOWER(spells.title) LIKE ? ESCAPE '\\' OR LOWER(spells.description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filter.Language != "" {
		query = query.Where("spells.language = ?", filter.Language)
	}

	var favorites []entities.Favorite
	err := query.Order("favorites.created_at DESC").Find(&favorites).Error
	return favorites, err
}

// LanguageCounts groups all of a user's favorited spells by language.
func (r *Repository) LanguageCounts(userID string) ([]entities.LanguageCount, error) {
	var counts []entities.LanguageCount
	err := r.db.Model(&entities.Favorite{}).
		Select("spells.language AS language, COUNT(*) AS count").
		Joins("JOIN spells ON spells.id = favorites.spell_id").
		Where("favorites.user_id = ?", userID).
		Group("spells.language").
		Order("count DESC, language ASC").
		Scan(&counts).Error
	return counts, err
}

// CountByUser returns how many spells a user has favorited.
func (r *Repository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
