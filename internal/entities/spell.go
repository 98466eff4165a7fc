package entities

import (
	"time"

	"gorm.io/datatypes"
)

type Spell struct {
	ID          string                      `gorm:"primaryKey;size:32" json:"id"`
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Code        string                      `gorm:"type:text;not null" json:"code"`
	Language    string                      `gorm:"index;size:50;not null" json:"language"`
	IsPublic    bool                        `gorm:"index;not null" json:"isPublic"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Views       int64                       `gorm:"index;not null;default:0" json:"views"`
	UserID      string                      `gorm:"index;size:32;not null" json:"userId"`
	SpellbookID *string                     `gorm:"index;size:32" json:"spellbookId"`
	User        *UserSummary                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Spellbook   *Spellbook                  `gorm:"foreignKey:SpellbookID" json:"spellbook,omitempty"`
	CreatedAt   time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"index" json:"updatedAt"`
}

func (s *Spell) OwnerID() string {
	return s.UserID
}

func (s *Spell) Public() bool {
	return s.IsPublic
}
