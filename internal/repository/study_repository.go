package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"study-planner/internal/model"
)

// StudyRepository manages studies and memberships.
type StudyRepository struct {
	db *gorm.DB
}

func NewStudyRepository(db *gorm.DB) *StudyRepository {
	return &StudyRepository{db: db}
}

func (r *StudyRepository) Create(ctx context.Context, study *model.Study) error {
	if err := r.db.WithContext(ctx).Create(study).Error; err != nil {
		return fmt.Errorf("create study: %w", err)
	}
	return nil
}

func (r *StudyRepository) FindByID(ctx context.Context, id uint) (*model.Study, error) {
	var study model.Study
	if err := r.db.WithContext(ctx).First(&study, id).Error; err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *StudyRepository) AddMember(ctx context.Context, membership *model.UserStudy) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(membership).Error; err != nil {
		return fmt.Errorf("create membership: %w", err)
	}
	if err := db.Model(&model.Study{}).Where("id = ?", membership.StudyID).
		UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
		return fmt.Errorf("count member: %w", err)
	}
	return r.refreshAverage(ctx, membership.StudyID)
}

func (r *StudyRepository) FindMembership(ctx context.Context, id uint) (*model.UserStudy, error) {
	var membership model.UserStudy
	if err := r.db.WithContext(ctx).First(&membership, id).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *StudyRepository) FindMembershipByStudyAndUser(ctx context.Context, studyID, userID uint) (*model.UserStudy, error) {
	var membership model.UserStudy
	if err := r.db.WithContext(ctx).Where("study_id = ? AND user_id = ?", studyID, userID).
		First(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *StudyRepository) ListMembers(ctx context.Context, studyID uint) ([]model.UserStudy, error) {
	var members []model.UserStudy
	if err := r.db.WithContext(ctx).Where("study_id = ?", studyID).
		Order("member_status ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *StudyRepository) UpdateMemberStatus(ctx context.Context, membership *model.UserStudy, status int) error {
	membership.MemberStatus = status
	if err := r.db.WithContext(ctx).Model(membership).Update("member_status", status).Error; err != nil {
		return fmt.Errorf("update member status: %w", err)
	}
	return nil
}

func (r *StudyRepository) ListAll(ctx context.Context) ([]model.Study, error) {
	var studies []model.Study
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&studies).Error; err != nil {
		return nil, err
	}
	return studies, nil
}

// MemberCounts returns the number of memberships of every study that has any.
func (r *StudyRepository) MemberCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		StudyID uint
		Members int64
	}
	if err := r.db.WithContext(ctx).Model(&model.UserStudy{}).
		Select("study_id, COUNT(*) AS members").
		Group("study_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.StudyID] = row.Members
	}
	return counts, nil
}

// SetTotals overwrites the study's total time and member count and recomputes its average.
func (r *StudyRepository) SetTotals(ctx context.Context, id uint, studyTime, members int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Study{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_study_time": studyTime,
			"member_count":     members,
		}).Error; err != nil {
		return fmt.Errorf("set study totals: %w", err)
	}
	return r.refreshAverage(ctx, id)
}

// AddStudyTime adjusts the study's total time and recomputes its average per member.
func (r *StudyRepository) AddStudyTime(ctx context.Context, studyID uint, delta int64) error {
	if err := addClamped(r.db.WithContext(ctx), &model.Study{}, studyID, "total_study_time", delta); err != nil {
		return err
	}
	return r.refreshAverage(ctx, studyID)
}

func (r *StudyRepository) refreshAverage(ctx context.Context, studyID uint) error {
	expr := gorm.Expr("total_study_time / CASE WHEN member_count > 0 THEN member_count ELSE 1 END")
	if err := r.db.WithContext(ctx).Model(&model.Study{}).Where("id = ?", studyID).
		UpdateColumn("average_study_time", expr).Error; err != nil {
		return fmt.Errorf("refresh study average: %w", err)
	}
	return nil
}
