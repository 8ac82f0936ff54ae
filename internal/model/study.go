package model

import "time"

// Study is a collaborative group with shared posts and plans.
type Study struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"not null"`
	MemberCount      int64  `gorm:"not null;default:0"`
	TotalStudyTime   int64  `gorm:"not null;default:0"`
	AverageStudyTime int64  `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Members []UserStudy `gorm:"foreignKey:StudyID;constraint:OnDelete:CASCADE"`
	Posts   []Post      `gorm:"foreignKey:StudyID;constraint:OnDelete:CASCADE"`
}

// Member ranks; lower is more privileged.
const (
	RankLeader    = 1
	RankManager   = 2
	RankMember    = 3
	RankApplicant = 4
)

// UserStudy links a user to a study with a rank.
type UserStudy struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_user_study"`
	StudyID      uint `gorm:"not null;uniqueIndex:idx_user_study"`
	MemberStatus int  `gorm:"not null;default:3"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanManagePosts reports whether the rank allows writing and removing posts.
func (us UserStudy) CanManagePosts() bool {
	return us.MemberStatus <= RankManager
}

// CanRecordStudy reports whether the rank may attach study plans. Applicants may not.
func (us UserStudy) CanRecordStudy() bool {
	return us.MemberStatus <= RankMember
}
