package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"study-planner/internal/model"
)

// CalendarRepository manages monthly calendars and their counters.
type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Ensure returns the calendar for (user, year, month), inserting it first when missing.
// The unique index on those columns makes concurrent callers converge on one row.
func (r *CalendarRepository) Ensure(ctx context.Context, userID uint, year, month int) (*model.Calendar, error) {
	db := r.db.WithContext(ctx)
	candidate := model.Calendar{UserID: userID, Year: year, Month: month}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("insert calendar: %w", err)
	}

	calendar, err := r.Find(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("find calendar: %w", err)
	}
	return calendar, nil
}

func (r *CalendarRepository) Find(ctx context.Context, userID uint, year, month int) (*model.Calendar, error) {
	var calendar model.Calendar
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&calendar).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (r *CalendarRepository) FindByID(ctx context.Context, id uint) (*model.Calendar, error) {
	var calendar model.Calendar
	if err := r.db.WithContext(ctx).First(&calendar, id).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

// FindWithPlanners loads a calendar together with its planners ordered by date.
func (r *CalendarRepository) FindWithPlanners(ctx context.Context, userID uint, year, month int) (*model.Calendar, error) {
	var calendar model.Calendar
	if err := r.db.WithContext(ctx).
		Preload("Planners", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&calendar).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (r *CalendarRepository) ListAll(ctx context.Context) ([]model.Calendar, error) {
	var calendars []model.Calendar
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}

// AddStudyTime adjusts the monthly study time, never below zero.
func (r *CalendarRepository) AddStudyTime(ctx context.Context, id uint, delta int64) error {
	return addClamped(r.db.WithContext(ctx), &model.Calendar{}, id, "monthly_study_time", delta)
}

// AddCompleted adjusts the monthly completed-plan count, never below zero.
func (r *CalendarRepository) AddCompleted(ctx context.Context, id uint, delta int64) error {
	return addClamped(r.db.WithContext(ctx), &model.Calendar{}, id, "monthly_completed_num", delta)
}

// SetTotals overwrites both monthly counters.
func (r *CalendarRepository) SetTotals(ctx context.Context, id uint, studyTime, completed int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Calendar{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"monthly_study_time":    studyTime,
			"monthly_completed_num": completed,
		}).Error; err != nil {
		return fmt.Errorf("set calendar totals: %w", err)
	}
	return nil
}
