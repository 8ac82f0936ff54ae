package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"study-planner/internal/model"
)

// PlannerRepository manages daily planners and their counters.
type PlannerRepository struct {
	db *gorm.DB
}

func NewPlannerRepository(db *gorm.DB) *PlannerRepository {
	return &PlannerRepository{db: db}
}

// Ensure returns the planner for (calendar, date), inserting it first when missing.
func (r *PlannerRepository) Ensure(ctx context.Context, calendarID uint, date time.Time) (*model.Planner, error) {
	db := r.db.WithContext(ctx)
	date = model.DateOf(date)
	candidate := model.Planner{CalendarID: calendarID, Date: date, IsPublic: true}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("insert planner: %w", err)
	}

	var planner model.Planner
	if err := db.Where("calendar_id = ? AND date = ?", calendarID, date).First(&planner).Error; err != nil {
		return nil, fmt.Errorf("find planner: %w", err)
	}
	return &planner, nil
}

func (r *PlannerRepository) FindByID(ctx context.Context, id uint) (*model.Planner, error) {
	var planner model.Planner
	if err := r.db.WithContext(ctx).First(&planner, id).Error; err != nil {
		return nil, err
	}
	return &planner, nil
}

// FindByUserAndDate resolves a planner through its calendar's owner.
func (r *PlannerRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*model.Planner, error) {
	var planner model.Planner
	if err := r.db.WithContext(ctx).
		Joins("JOIN calendars ON calendars.id = planners.calendar_id").
		Where("calendars.user_id = ? AND planners.date = ?", userID, model.DateOf(date)).
		First(&planner).Error; err != nil {
		return nil, err
	}
	return &planner, nil
}

func (r *PlannerRepository) ListAll(ctx context.Context) ([]model.Planner, error) {
	var planners []model.Planner
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&planners).Error; err != nil {
		return nil, err
	}
	return planners, nil
}

func (r *PlannerRepository) UpdateMemo(ctx context.Context, planner *model.Planner, memo string) error {
	planner.Memo = memo
	if err := r.db.WithContext(ctx).Model(planner).Update("memo", memo).Error; err != nil {
		return fmt.Errorf("update memo: %w", err)
	}
	return nil
}

func (r *PlannerRepository) UpdateDDay(ctx context.Context, planner *model.Planner, dday *time.Time) error {
	planner.DDay = dday
	if err := r.db.WithContext(ctx).Model(planner).Update("d_day", dday).Error; err != nil {
		return fmt.Errorf("update d-day: %w", err)
	}
	return nil
}

// AddStudyTime adjusts the daily study time, never below zero.
func (r *PlannerRepository) AddStudyTime(ctx context.Context, id uint, delta int64) error {
	return addClamped(r.db.WithContext(ctx), &model.Planner{}, id, "daily_study_time", delta)
}

// AddCompleted adjusts the daily completed-plan count, never below zero.
func (r *PlannerRepository) AddCompleted(ctx context.Context, id uint, delta int64) error {
	return addClamped(r.db.WithContext(ctx), &model.Planner{}, id, "daily_completed_num", delta)
}

// SetTotals overwrites both daily counters.
func (r *PlannerRepository) SetTotals(ctx context.Context, id uint, studyTime, completed int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Planner{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"daily_study_time":    studyTime,
			"daily_completed_num": completed,
		}).Error; err != nil {
		return fmt.Errorf("set planner totals: %w", err)
	}
	return nil
}
