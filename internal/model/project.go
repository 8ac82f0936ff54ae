package model

import "time"

// Project spans StartDate..EndDate inclusive and belongs directly to a user.
type Project struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;index"`
	Name       string    `gorm:"not null"`
	StartDate  time.Time `gorm:"not null;index"`
	EndDate    time.Time `gorm:"not null;index"`
	IsComplete bool      `gorm:"not null;default:false"`
	IsVisible  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Covers reports whether day falls inside the project span.
func (p Project) Covers(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
