package model

import "time"

// Post is either a study notice or a public promotion.
type Post struct {
	ID        uint   `gorm:"primaryKey"`
	StudyID   uint   `gorm:"not null;index"`
	WriterID  uint   `gorm:"not null;index"`
	Title     string `gorm:"not null"`
	Contents  string
	Image     string
	IsNotice  bool `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
