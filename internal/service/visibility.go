package service

import (
	"context"
	"fmt"
	"time"

	"study-planner/internal/metrics"
	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// MaxVisiblePerDay caps visible plans plus overlapping visible projects for one user and date.
const MaxVisiblePerDay = 5

// admitVisible checks that every date in start..end has room for one more visible item.
// It first takes the user's admission lock so that concurrent admissions for the same
// user cannot both observe the same free slot. excludeProjectID keeps a project that is
// being rescheduled from counting against itself.
func admitVisible(ctx context.Context, tx *repository.Store, kind string, userID uint, start, end time.Time, excludeProjectID uint) error {
	if err := tx.Users.BumpVisibilityRev(ctx, userID); err != nil {
		return lookup("user", err)
	}

	start, end = model.DateOf(start), model.DateOf(end)
	plans, err := tx.Plans.CountVisibleByDay(ctx, userID, start, end)
	if err != nil {
		return err
	}
	projects, err := tx.Projects.ListOverlapping(ctx, userID, start, end, true, excludeProjectID)
	if err != nil {
		return fmt.Errorf("list visible projects: %w", err)
	}

	for _, day := range model.DaysBetween(start, end) {
		key := day.Format(model.DateLayout)
		count := plans[key]
		for _, p := range projects {
			if p.Covers(day) {
				count++
			}
		}
		if count >= MaxVisiblePerDay {
			metrics.RecordAdmissionRejection(kind)
			return newError(CodeCapacityExceeded, "visibility full on %s", key)
		}
	}
	return nil
}
