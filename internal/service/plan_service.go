package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// PlanInput represents data required to create a plan.
type PlanInput struct {
	Name        string
	Date        time.Time
	IsStudy     bool
	UserStudyID *uint
	StudyTime   int64 // minutes
}

// MaxPlanStudyTime caps the minutes a single plan can hold: one day's worth.
const MaxPlanStudyTime = 24 * 60

// PlanDetail is a plan together with the date and owner it inherits from its planner.
type PlanDetail struct {
	model.Plan
	Date   time.Time
	UserID uint
}

// PlanService wraps plan-related business logic.
type PlanService struct {
	store  *repository.Store
	ledger ledger
	log    *zap.Logger
}

func NewPlanService(store *repository.Store, log *zap.Logger) *PlanService {
	return &PlanService{store: store, ledger: ledger{log: log}, log: log}
}

func validatePlanInput(input PlanInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return invalid("plan name is required")
	}
	if input.Date.IsZero() {
		return invalid("plan date is required")
	}
	if !model.InRange(input.Date) {
		return invalid("plan date must fall within %d..%d", model.MinYear, model.MaxYear)
	}
	if input.StudyTime < 0 {
		return invalid("study time must not be negative")
	}
	if input.StudyTime > MaxPlanStudyTime {
		return invalid("study time must not exceed %d minutes", MaxPlanStudyTime)
	}
	if input.IsStudy && input.UserStudyID == nil {
		return invalid("study plan requires a user study")
	}
	if !input.IsStudy && input.UserStudyID != nil {
		return invalid("user study given for a non-study plan")
	}
	return nil
}

// CreatePlan attaches a new plan to the user's planner for input.Date, provisioning
// the calendar and planner when this is the first write for that date.
func (s *PlanService) CreatePlan(ctx context.Context, userID uint, input PlanInput) (*PlanDetail, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}

	var detail *PlanDetail
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if input.UserStudyID != nil {
			membership, err := tx.Studies.FindMembership(ctx, *input.UserStudyID)
			if err != nil {
				return lookup("user study", err)
			}
			if membership.UserID != userID {
				return newError(CodeUnauthorized, "user study %d belongs to another user", membership.ID)
			}
			if !membership.CanRecordStudy() {
				return newError(CodeUnauthorized, "rank %d cannot attach study plans", membership.MemberStatus)
			}
		}

		planner, err := ensurePlanner(ctx, tx, userID, input.Date)
		if err != nil {
			return err
		}

		plan := model.Plan{
			PlannerID:   planner.ID,
			UserStudyID: input.UserStudyID,
			Name:        strings.TrimSpace(input.Name),
			IsStudy:     input.IsStudy,
			StudyTime:   input.StudyTime,
		}
		if err := tx.Plans.Create(ctx, &plan); err != nil {
			return err
		}
		if err := s.ledger.planCreated(ctx, tx, &plan, planner); err != nil {
			return err
		}

		detail = &PlanDetail{Plan: plan, Date: planner.Date, UserID: userID}
		return nil
	})
	if err != nil {
		return nil, surface(s.log, "create plan", err)
	}
	return detail, nil
}

func (s *PlanService) GetPlan(ctx context.Context, planID uint) (*PlanDetail, error) {
	plan, planner, calendar, err := loadPlan(ctx, s.store, planID)
	if err != nil {
		return nil, surface(s.log, "get plan", err)
	}
	return &PlanDetail{Plan: *plan, Date: planner.Date, UserID: calendar.UserID}, nil
}

// ListPlans returns the user's plans on date, optionally filtered by the study flag.
// Reads never provision: a date without a planner is NotFound.
func (s *PlanService) ListPlans(ctx context.Context, userID uint, date time.Time, isStudy *bool) ([]model.Plan, error) {
	planner, err := s.store.Planners.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, surface(s.log, "list plans", lookup("planner", err))
	}
	plans, err := s.store.Plans.ListByPlanner(ctx, planner.ID, isStudy)
	if err != nil {
		return nil, surface(s.log, "list plans", err)
	}
	return plans, nil
}

func (s *PlanService) RenamePlan(ctx context.Context, userID, planID uint, name string) (*PlanDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("plan name is required")
	}
	return s.mutate(ctx, "rename plan", userID, planID, func(tx *repository.Store, plan *model.Plan, _ *model.Planner) error {
		return tx.Plans.UpdateName(ctx, plan, name)
	})
}

// SetPlanComplete toggles completion and moves the completed-plan counters with it.
func (s *PlanService) SetPlanComplete(ctx context.Context, userID, planID uint, complete bool) (*PlanDetail, error) {
	return s.mutate(ctx, "set plan complete", userID, planID, func(tx *repository.Store, plan *model.Plan, planner *model.Planner) error {
		return s.ledger.completionToggled(ctx, tx, plan, planner, complete)
	})
}

// SetPlanVisible pins the plan to the calendar view, subject to the per-day cap.
// Hiding always succeeds.
func (s *PlanService) SetPlanVisible(ctx context.Context, userID, planID uint, visible bool) (*PlanDetail, error) {
	return s.mutate(ctx, "set plan visible", userID, planID, func(tx *repository.Store, plan *model.Plan, planner *model.Planner) error {
		if plan.IsVisible == visible {
			return newError(CodeRedundant, "plan %d visibility is already %t", plan.ID, visible)
		}
		if visible {
			if err := admitVisible(ctx, tx, "plan", userID, planner.Date, planner.Date, 0); err != nil {
				return err
			}
		}
		return tx.Plans.SetVisible(ctx, plan, visible)
	})
}

// RecordStudyTime adds minutes to the plan and to every counter it feeds.
// The plan's total may not exceed MaxPlanStudyTime.
func (s *PlanService) RecordStudyTime(ctx context.Context, userID, planID uint, minutes int64) (*PlanDetail, error) {
	if minutes <= 0 {
		return nil, invalid("study time must be positive")
	}
	if minutes > MaxPlanStudyTime {
		return nil, invalid("study time must not exceed %d minutes", MaxPlanStudyTime)
	}
	return s.mutate(ctx, "record study time", userID, planID, func(tx *repository.Store, plan *model.Plan, planner *model.Planner) error {
		if plan.StudyTime+minutes > MaxPlanStudyTime {
			return invalid("plan %d would hold more than %d minutes", plan.ID, MaxPlanStudyTime)
		}
		return s.ledger.studyTimeRecorded(ctx, tx, plan, planner, minutes)
	})
}

// DeletePlan unwinds the plan's counters and removes it. The returned detail is the plan as it was.
func (s *PlanService) DeletePlan(ctx context.Context, userID, planID uint) (*PlanDetail, error) {
	return s.mutate(ctx, "delete plan", userID, planID, func(tx *repository.Store, plan *model.Plan, planner *model.Planner) error {
		if err := s.ledger.planDeleted(ctx, tx, plan, planner); err != nil {
			return err
		}
		return tx.Plans.Delete(ctx, plan.ID)
	})
}

// mutate loads an owned plan inside a transaction and applies fn to it.
func (s *PlanService) mutate(ctx context.Context, op string, userID, planID uint, fn func(tx *repository.Store, plan *model.Plan, planner *model.Planner) error) (*PlanDetail, error) {
	var detail *PlanDetail
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		plan, planner, calendar, err := loadPlan(ctx, tx, planID)
		if err != nil {
			return err
		}
		if calendar.UserID != userID {
			return newError(CodeUnauthorized, "plan %d belongs to another user", plan.ID)
		}
		if err := fn(tx, plan, planner); err != nil {
			return err
		}
		detail = &PlanDetail{Plan: *plan, Date: planner.Date, UserID: calendar.UserID}
		return nil
	})
	if err != nil {
		return nil, surface(s.log, op, err)
	}
	return detail, nil
}

func loadPlan(ctx context.Context, store *repository.Store, planID uint) (*model.Plan, *model.Planner, *model.Calendar, error) {
	plan, err := store.Plans.FindByID(ctx, planID)
	if err != nil {
		return nil, nil, nil, lookup("plan", err)
	}
	planner, err := store.Planners.FindByID(ctx, plan.PlannerID)
	if err != nil {
		return nil, nil, nil, lookup("planner", err)
	}
	calendar, err := store.Calendars.FindByID(ctx, planner.CalendarID)
	if err != nil {
		return nil, nil, nil, lookup("calendar", err)
	}
	return plan, planner, calendar, nil
}
