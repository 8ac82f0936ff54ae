package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"study-planner/internal/model"
)

// PlannerTotals are the counters a planner should hold according to its plans.
type PlannerTotals struct {
	PlannerID uint
	StudyTime int64
	Completed int64
}

// StudyTotals is the study time a study should hold according to its members' plans.
type StudyTotals struct {
	StudyID   uint
	StudyTime int64
}

type plannerCount struct {
	PlannerID uint
	Total     int64
}

// PlanRepository handles CRUD for plans.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *model.Plan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByPlanner returns the planner's plans, optionally filtered by the study flag.
func (r *PlanRepository) ListByPlanner(ctx context.Context, plannerID uint, isStudy *bool) ([]model.Plan, error) {
	var plans []model.Plan
	q := r.db.WithContext(ctx).Where("planner_id = ?", plannerID)
	if isStudy != nil {
		q = q.Where("is_study = ?", *isStudy)
	}
	if err := q.Order("id ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PlanRepository) UpdateName(ctx context.Context, plan *model.Plan, name string) error {
	plan.Name = name
	if err := r.db.WithContext(ctx).Model(plan).Update("name", name).Error; err != nil {
		return fmt.Errorf("rename plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) SetComplete(ctx context.Context, plan *model.Plan, complete bool) error {
	plan.IsComplete = complete
	if err := r.db.WithContext(ctx).Model(plan).Update("is_complete", complete).Error; err != nil {
		return fmt.Errorf("update plan completion: %w", err)
	}
	return nil
}

func (r *PlanRepository) SetVisible(ctx context.Context, plan *model.Plan, visible bool) error {
	plan.IsVisible = visible
	if err := r.db.WithContext(ctx).Model(plan).Update("is_visible", visible).Error; err != nil {
		return fmt.Errorf("update plan visibility: %w", err)
	}
	return nil
}

func (r *PlanRepository) AddStudyTime(ctx context.Context, plan *model.Plan, delta int64) error {
	if err := addClamped(r.db.WithContext(ctx), &model.Plan{}, plan.ID, "study_time", delta); err != nil {
		return err
	}
	plan.StudyTime += delta
	if plan.StudyTime < 0 {
		plan.StudyTime = 0
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Plan{}, id).Error; err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// CountVisibleByDay counts the user's visible plans per day between start and end inclusive,
// keyed by model.DateLayout.
func (r *PlanRepository) CountVisibleByDay(ctx context.Context, userID uint, start, end time.Time) (map[string]int64, error) {
	db := r.db.WithContext(ctx)

	var planners []model.Planner
	if err := db.Joins("JOIN calendars ON calendars.id = planners.calendar_id").
		Where("calendars.user_id = ?", userID).
		Where("planners.date BETWEEN ? AND ?", model.DateOf(start), model.DateOf(end)).
		Find(&planners).Error; err != nil {
		return nil, fmt.Errorf("list planners in range: %w", err)
	}

	counts := make(map[string]int64, len(planners))
	if len(planners) == 0 {
		return counts, nil
	}

	days := make(map[uint]string, len(planners))
	ids := make([]uint, 0, len(planners))
	for _, p := range planners {
		days[p.ID] = p.Date.UTC().Format(model.DateLayout)
		ids = append(ids, p.ID)
	}

	var rows []plannerCount
	if err := db.Model(&model.Plan{}).
		Select("planner_id, COUNT(id) AS total").
		Where("planner_id IN ? AND is_visible = ?", ids, true).
		Group("planner_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count visible plans: %w", err)
	}

	for _, row := range rows {
		counts[days[row.PlannerID]] += row.Total
	}
	return counts, nil
}

// TotalsByPlanner aggregates study time and completed plans for every planner that has plans.
func (r *PlanRepository) TotalsByPlanner(ctx context.Context) ([]PlannerTotals, error) {
	var totals []PlannerTotals
	if err := r.db.WithContext(ctx).Model(&model.Plan{}).
		Select("planner_id, COALESCE(SUM(study_time), 0) AS study_time, " +
			"COALESCE(SUM(CASE WHEN is_complete THEN 1 ELSE 0 END), 0) AS completed").
		Group("planner_id").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("aggregate plans: %w", err)
	}
	return totals, nil
}

// TotalsByStudy sums the study time of study plans per study, through their memberships.
func (r *PlanRepository) TotalsByStudy(ctx context.Context) ([]StudyTotals, error) {
	var totals []StudyTotals
	if err := r.db.WithContext(ctx).Model(&model.Plan{}).
		Select("user_studies.study_id AS study_id, COALESCE(SUM(plans.study_time), 0) AS study_time").
		Joins("JOIN user_studies ON user_studies.id = plans.user_study_id").
		Group("user_studies.study_id").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("aggregate study plans: %w", err)
	}
	return totals, nil
}
