package model

import "time"

// Planner holds the plans of one user on one calendar date.
type Planner struct {
	ID                uint      `gorm:"primaryKey"`
	CalendarID        uint      `gorm:"not null;uniqueIndex:idx_planner_calendar_date"`
	Date              time.Time `gorm:"not null;uniqueIndex:idx_planner_calendar_date"`
	Memo              string
	DDay              *time.Time `gorm:"column:d_day"`
	IsPublic          bool  `gorm:"not null;default:true"`
	DailyStudyTime    int64 `gorm:"not null;default:0"`
	DailyCompletedNum int64 `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Plans []Plan `gorm:"foreignKey:PlannerID;constraint:OnDelete:CASCADE"`
}
