package entities

import "time"

type User struct {
	ID               string     `gorm:"primaryKey;size:32" json:"id"`
	Email            string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	Name             string     `gorm:"size:200" json:"name"`
	Username         string     `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Bio              string     `gorm:"size:1000" json:"bio"`
	Website          string     `gorm:"size:500" json:"website"`
	Github           string     `gorm:"size:100" json:"github"`
	Twitter          string     `gorm:"size:100" json:"twitter"`
	Image            string     `gorm:"size:2048" json:"image"`
	IsPublic         bool       `gorm:"not null" json:"isPublic"`
	FailedLoginCount int        `gorm:"not null;default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// IsLocked reports whether the account is inside a lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// UserSummary is the public slice of a user embedded in other records.
type UserSummary struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

func (UserSummary) TableName() string {
	return "users"
}

// Summary returns the embeddable view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Image: u.Image}
}

// UserCounts backs the "_count" object of profile responses.
type UserCounts struct {
	Spells     int64 `json:"spells"`
	Spellbooks int64 `json:"spellbooks"`
	Favorites  int64 `json:"favorites"`
}
