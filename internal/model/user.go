package model

import "time"

// User owns calendars, projects and study memberships.
// TelegramID is set only for users that arrived through the bot.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID *int64 `gorm:"uniqueIndex"`
	Name       string
	FirstName  string
	LastName   string
	Username   string
	// VisibilityRev is bumped by every visibility admission so that concurrent
	// admissions for the same user serialize on this row.
	VisibilityRev int64 `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Calendars   []Calendar  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Projects    []Project   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Memberships []UserStudy `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// DisplayName picks the best human-readable name available.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return "user"
	}
}
