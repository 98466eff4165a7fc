package entities

import "time"

type Favorite struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	UserID    string    `gorm:"size:32;not null;uniqueIndex:idx_favorites_user_spell" json:"userId"`
	SpellID   string    `gorm:"size:32;not null;uniqueIndex:idx_favorites_user_spell;index" json:"spellId"`
	Spell     *Spell    `gorm:"foreignKey:SpellID" json:"spell,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
