package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

type testEnv struct {
	store     *repository.Store
	users     *UserService
	plans     *PlanService
	planners  *PlannerService
	projects  *ProjectService
	studies   *StudyService
	posts     *PostService
	reconcile *ReconcileService
	reminders *ReminderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "planner.db") + "?_foreign_keys=on&_busy_timeout=5000"
	log := zap.NewNop()
	db, err := repository.NewDB(dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	return &testEnv{
		store:     store,
		users:     NewUserService(store, log),
		plans:     NewPlanService(store, log),
		planners:  NewPlannerService(store, log),
		projects:  NewProjectService(store, log),
		studies:   NewStudyService(store, log),
		posts:     NewPostService(store, log),
		reconcile: NewReconcileService(store, log),
		reminders: NewReminderService(store, log),
	}
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), name)
	require.NoError(t, err)
	return user
}

func (e *testEnv) plan(t *testing.T, userID uint, name string, date time.Time, studyTime int64) *PlanDetail {
	t.Helper()
	plan, err := e.plans.CreatePlan(context.Background(), userID, PlanInput{Name: name, Date: date, StudyTime: studyTime})
	require.NoError(t, err)
	return plan
}

func (e *testEnv) plannerOf(t *testing.T, plan *PlanDetail) *model.Planner {
	t.Helper()
	planner, err := e.store.Planners.FindByID(context.Background(), plan.PlannerID)
	require.NoError(t, err)
	return planner
}

func (e *testEnv) calendarOf(t *testing.T, plan *PlanDetail) *model.Calendar {
	t.Helper()
	planner := e.plannerOf(t, plan)
	calendar, err := e.store.Calendars.FindByID(context.Background(), planner.CalendarID)
	require.NoError(t, err)
	return calendar
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func countRows(t *testing.T, e *testEnv, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.store.DB().Model(value).Count(&n).Error)
	return n
}
