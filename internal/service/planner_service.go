package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// PlannerService exposes planners and calendars. Writes provision, reads do not.
type PlannerService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewPlannerService(store *repository.Store, log *zap.Logger) *PlannerService {
	return &PlannerService{store: store, log: log}
}

// EnsurePlanner returns the user's planner for date, creating it and its calendar if absent.
// Repeated calls for the same user and date return the same planner.
func (s *PlannerService) EnsurePlanner(ctx context.Context, userID uint, date time.Time) (*model.Planner, error) {
	var planner *model.Planner
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		planner, err = ensurePlanner(ctx, tx, userID, date)
		return err
	})
	if err != nil {
		return nil, surface(s.log, "ensure planner", err)
	}
	return planner, nil
}

func (s *PlannerService) GetPlanner(ctx context.Context, userID uint, date time.Time) (*model.Planner, error) {
	planner, err := s.store.Planners.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, surface(s.log, "get planner", lookup("planner", err))
	}
	return planner, nil
}

func (s *PlannerService) UpdateMemo(ctx context.Context, userID uint, date time.Time, memo string) (*model.Planner, error) {
	return s.write(ctx, "update memo", userID, date, func(tx *repository.Store, planner *model.Planner) error {
		return tx.Planners.UpdateMemo(ctx, planner, memo)
	})
}

// SetDDay marks a target date on the planner; nil clears it.
func (s *PlannerService) SetDDay(ctx context.Context, userID uint, date time.Time, dday *time.Time) (*model.Planner, error) {
	if dday != nil {
		d := model.DateOf(*dday)
		dday = &d
	}
	return s.write(ctx, "set d-day", userID, date, func(tx *repository.Store, planner *model.Planner) error {
		return tx.Planners.UpdateDDay(ctx, planner, dday)
	})
}

// GetCalendar returns the month's calendar with its planners ordered by date.
func (s *PlannerService) GetCalendar(ctx context.Context, userID uint, year, month int) (*model.Calendar, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month %d out of range", month)
	}
	calendar, err := s.store.Calendars.FindWithPlanners(ctx, userID, year, month)
	if err != nil {
		return nil, surface(s.log, "get calendar", lookup("calendar", err))
	}
	return calendar, nil
}

func (s *PlannerService) write(ctx context.Context, op string, userID uint, date time.Time, fn func(tx *repository.Store, planner *model.Planner) error) (*model.Planner, error) {
	var planner *model.Planner
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		planner, err = ensurePlanner(ctx, tx, userID, date)
		if err != nil {
			return err
		}
		return fn(tx, planner)
	})
	if err != nil {
		return nil, surface(s.log, op, err)
	}
	return planner, nil
}
