package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"study-planner/internal/metrics"
	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// ledger keeps planner, calendar and study counters in step with plan writes.
// Every method runs inside the caller's transaction.
type ledger struct {
	log *zap.Logger
}

func (l ledger) planCreated(ctx context.Context, tx *repository.Store, plan *model.Plan, planner *model.Planner) error {
	return l.addStudyTime(ctx, tx, plan, planner, plan.StudyTime)
}

func (l ledger) studyTimeRecorded(ctx context.Context, tx *repository.Store, plan *model.Plan, planner *model.Planner, minutes int64) error {
	if err := tx.Plans.AddStudyTime(ctx, plan, minutes); err != nil {
		return fmt.Errorf("add plan study time: %w", err)
	}
	return l.addStudyTime(ctx, tx, plan, planner, minutes)
}

// completionToggled flips the plan's completion flag and moves the completed counts by one.
func (l ledger) completionToggled(ctx context.Context, tx *repository.Store, plan *model.Plan, planner *model.Planner, complete bool) error {
	if plan.IsComplete == complete {
		if complete {
			return newError(CodeRedundant, "plan %d is already complete", plan.ID)
		}
		return newError(CodeRedundant, "plan %d is not complete", plan.ID)
	}

	if err := tx.Plans.SetComplete(ctx, plan, complete); err != nil {
		return err
	}
	if complete {
		return l.adjustCompleted(ctx, tx, plan, planner, 1)
	}
	return l.adjustCompleted(ctx, tx, plan, planner, -1)
}

// planDeleted unwinds everything the plan contributed. It must run before the row is removed.
func (l ledger) planDeleted(ctx context.Context, tx *repository.Store, plan *model.Plan, planner *model.Planner) error {
	if err := l.addStudyTime(ctx, tx, plan, planner, -plan.StudyTime); err != nil {
		return err
	}
	if plan.IsComplete {
		return l.adjustCompleted(ctx, tx, plan, planner, -1)
	}
	return nil
}

func (l ledger) addStudyTime(ctx context.Context, tx *repository.Store, plan *model.Plan, planner *model.Planner, delta int64) error {
	if delta == 0 {
		return nil
	}
	if err := tx.Planners.AddStudyTime(ctx, planner.ID, delta); err != nil {
		return fmt.Errorf("add planner study time: %w", err)
	}
	if err := tx.Calendars.AddStudyTime(ctx, planner.CalendarID, delta); err != nil {
		return fmt.Errorf("add calendar study time: %w", err)
	}
	if plan.UserStudyID == nil {
		return nil
	}
	membership, err := tx.Studies.FindMembership(ctx, *plan.UserStudyID)
	if err != nil {
		return lookup("user study", err)
	}
	if err := tx.Studies.AddStudyTime(ctx, membership.StudyID, delta); err != nil {
		return fmt.Errorf("add study time: %w", err)
	}
	return nil
}

// adjustCompleted moves both completed counts by delta. A decrement that would
// take either count below zero is skipped for both and reported; reconciliation
// repairs the drift that made it possible.
func (l ledger) adjustCompleted(ctx context.Context, tx *repository.Store, plan *model.Plan, planner *model.Planner, delta int64) error {
	if delta < 0 {
		current, err := tx.Planners.FindByID(ctx, planner.ID)
		if err != nil {
			return lookup("planner", err)
		}
		calendar, err := tx.Calendars.FindByID(ctx, planner.CalendarID)
		if err != nil {
			return lookup("calendar", err)
		}
		if current.DailyCompletedNum <= 0 || calendar.MonthlyCompletedNum <= 0 {
			l.log.Warn("completed count already zero, skipping decrement",
				zap.Uint("plan_id", plan.ID),
				zap.Uint("planner_id", current.ID),
				zap.Int64("daily_completed", current.DailyCompletedNum),
				zap.Uint("calendar_id", calendar.ID),
				zap.Int64("monthly_completed", calendar.MonthlyCompletedNum),
			)
			if current.DailyCompletedNum <= 0 {
				metrics.RecordLedgerClamp("planner_completed")
			}
			if calendar.MonthlyCompletedNum <= 0 {
				metrics.RecordLedgerClamp("calendar_completed")
			}
			return nil
		}
	}

	if err := tx.Planners.AddCompleted(ctx, planner.ID, delta); err != nil {
		return fmt.Errorf("adjust planner completed: %w", err)
	}
	if err := tx.Calendars.AddCompleted(ctx, planner.CalendarID, delta); err != nil {
		return fmt.Errorf("adjust calendar completed: %w", err)
	}
	return nil
}
