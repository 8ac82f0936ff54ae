package model

import "time"

// Calendar aggregates one user's planners for a single month.
type Calendar struct {
	ID                  uint  `gorm:"primaryKey"`
	UserID              uint  `gorm:"not null;uniqueIndex:idx_calendar_user_month"`
	Year                int   `gorm:"not null;uniqueIndex:idx_calendar_user_month"`
	Month               int   `gorm:"not null;uniqueIndex:idx_calendar_user_month"`
	MonthlyStudyTime    int64 `gorm:"not null;default:0"`
	MonthlyCompletedNum int64 `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Planners []Planner `gorm:"foreignKey:CalendarID;constraint:OnDelete:CASCADE"`
}
