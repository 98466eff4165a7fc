package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Rune is an HTML/CSS/JS widget rendered inside a sandboxed frame.
type Rune struct {
	ID          string                      `gorm:"primaryKey;size:32" json:"id"`
	Title       string                      `gorm:"size:200;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	HTML        string                      `gorm:"column:html;type:text" json:"html"`
	CSS         string                      `gorm:"column:css;type:text" json:"css"`
	JavaScript  string                      `gorm:"column:javascript;type:text" json:"javascript"`
	IsPublic    bool                        `gorm:"index;not null" json:"isPublic"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Views       int64                       `gorm:"not null;default:0" json:"views"`
	UserID      string                      `gorm:"index;size:32;not null" json:"userId"`
	User        *UserSummary                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"index" json:"updatedAt"`
}

func (r *Rune) OwnerID() string {
	return r.UserID
}

func (r *Rune) Public() bool {
	return r.IsPublic
}
