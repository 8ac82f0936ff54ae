package service

import (
	"context"
	"fmt"
	"time"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// ensurePlanner returns the user's planner for date, creating the month's calendar
// and the planner itself on first use. Uniqueness is enforced by the storage layer,
// so concurrent callers converge on the same rows.
func ensurePlanner(ctx context.Context, tx *repository.Store, userID uint, date time.Time) (*model.Planner, error) {
	if _, err := tx.Users.FindByID(ctx, userID); err != nil {
		return nil, lookup("user", err)
	}

	if !model.InRange(date) {
		return nil, invalid("date must fall within %d..%d", model.MinYear, model.MaxYear)
	}
	date = model.DateOf(date)
	calendar, err := tx.Calendars.Ensure(ctx, userID, date.Year(), int(date.Month()))
	if err != nil {
		return nil, fmt.Errorf("provision calendar: %w", err)
	}
	planner, err := tx.Planners.Ensure(ctx, calendar.ID, date)
	if err != nil {
		return nil, fmt.Errorf("provision planner: %w", err)
	}
	return planner, nil
}

// ensureCalendars provisions a calendar for every month touched by start..end.
func ensureCalendars(ctx context.Context, tx *repository.Store, userID uint, start, end time.Time) error {
	if _, err := tx.Users.FindByID(ctx, userID); err != nil {
		return lookup("user", err)
	}
	for _, month := range model.MonthsBetween(start, end) {
		if _, err := tx.Calendars.Ensure(ctx, userID, month.Year(), int(month.Month())); err != nil {
			return fmt.Errorf("provision calendar %s: %w", month.Format("2006-01"), err)
		}
	}
	return nil
}
