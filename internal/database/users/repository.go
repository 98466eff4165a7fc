// Package users provides database operations for accounts and profiles.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/spellbook-app/spellbook/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Unique violations surface as database.ErrDuplicate.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether a user other than exceptUserID holds username.
func (r *Repository) UsernameTaken(username, exceptUserID string) (bool, error) {
	var user entities.User
	err := r.db.Select("id").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.ID != exceptUserID, nil
}

// Update applies the given column changes and returns the fresh row.
func (r *Repository) Update(id string, fields map[string]any) (*entities.User, error) {
	if len(fields) > 0 {
		result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
	}
	return r.GetByID(id)
}

// RecordLoginSuccess clears lockout state and stamps the login time.
func (r *Repository) RecordLoginSuccess(id string, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"locked_until":       nil,
	}).Error
}

// RecordLoginFailure stores the failed attempt counter and an optional lock.
func (r *Repository) RecordLoginFailure(id string, failedCount int, lockedUntil *time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"failed_login_count": failedCount,
		"locked_until":       lockedUntil,
	}).Error
}

// SetPasswordHash replaces the stored password hash.
func (r *Repository) SetPasswordHash(id, hash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Counts returns how many spells, spellbooks and favorites a user has.
func (r *Repository) Counts(userID string) (entities.UserCounts, error) {
	var counts entities.UserCounts
	if err := r.db.Model(&entities.Spell{}).Where("user_id = ?", userID).Count(&counts.Spells).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&entities.Spellbook{}).Where("user_id = ?", userID).Count(&counts.Spellbooks).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&entities.Favorite{}).Where("user_id = ?", userID).Count(&counts.Favorites).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// Count returns the number of registered users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}
