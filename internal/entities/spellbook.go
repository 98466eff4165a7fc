package entities

import (
	"time"

	"gorm.io/datatypes"
)

type Spellbook struct {
	ID          string                      `gorm:"primaryKey;size:32" json:"id"`
	Name        string                      `gorm:"size:200;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	IsPublic    bool                        `gorm:"index;not null" json:"isPublic"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	UserID      string                      `gorm:"index;size:32;not null" json:"userId"`
	User        *UserSummary                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Spells      []Spell                     `gorm:"foreignKey:SpellbookID" json:"spells,omitempty"`
	Count       *SpellbookCount             `gorm:"-" json:"_count,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"index" json:"updatedAt"`
}

type SpellbookCount struct {
	Spells int64 `json:"spells"`
}

func (b *Spellbook) OwnerID() string {
	return b.UserID
}

func (b *Spellbook) Public() bool {
	return b.IsPublic
}
