package model

import "time"

// Plan is a single-day item inside a planner.
// IsStudy is true exactly when UserStudyID is set.
type Plan struct {
	ID          uint   `gorm:"primaryKey"`
	PlannerID   uint   `gorm:"not null;index"`
	UserStudyID *uint  `gorm:"index"`
	Name        string `gorm:"not null"`
	IsStudy     bool   `gorm:"not null;default:false"`
	IsComplete  bool   `gorm:"not null;default:false"`
	IsVisible   bool   `gorm:"not null;default:false"`
	StudyTime   int64  `gorm:"not null;default:0"` // minutes
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
