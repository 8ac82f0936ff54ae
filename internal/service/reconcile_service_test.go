package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileRepairsDrift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.user(t, "ann")

	a := env.plan(t, user.ID, "a", day(2024, 3, 10), 20)
	env.plan(t, user.ID, "b", day(2024, 3, 11), 15)
	_, err := env.plans.SetPlanComplete(ctx, user.ID, a.ID, true)
	require.NoError(t, err)

	clean, err := env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{PlannersChecked: 2, CalendarsChecked: 1}, clean)

	planner := env.plannerOf(t, a)
	require.NoError(t, env.store.Planners.SetTotals(ctx, planner.ID, 999, 0))
	require.NoError(t, env.store.Calendars.SetTotals(ctx, planner.CalendarID, 0, 7))

	report, err := env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlannersRepaired)
	assert.Equal(t, 1, report.CalendarsRepaired)

	planner = env.plannerOf(t, a)
	assert.Equal(t, int64(20), planner.DailyStudyTime)
	assert.Equal(t, int64(1), planner.DailyCompletedNum)
	calendar := env.calendarOf(t, a)
	assert.Equal(t, int64(35), calendar.MonthlyStudyTime)
	assert.Equal(t, int64(1), calendar.MonthlyCompletedNum)
}

func TestReconcileZeroesEmptyPlanners(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.user(t, "ann")

	planner, err := env.planners.EnsurePlanner(ctx, user.ID, day(2024, 3, 10))
	require.NoError(t, err)
	require.NoError(t, env.store.Planners.SetTotals(ctx, planner.ID, 30, 2))

	report, err := env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlannersRepaired)
	assert.Zero(t, report.CalendarsRepaired)

	got, err := env.store.Planners.FindByID(ctx, planner.ID)
	require.NoError(t, err)
	assert.Zero(t, got.DailyStudyTime)
	assert.Zero(t, got.DailyCompletedNum)
}

func TestReconcileRepairsStudyTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	study, err := env.studies.CreateStudy(ctx, ann.ID, "algorithms")
	require.NoError(t, err)
	_, err = env.studies.JoinStudy(ctx, bob.ID, study.ID)
	require.NoError(t, err)
	membershipID := study.Members[0].ID
	_, err = env.plans.CreatePlan(ctx, ann.ID, PlanInput{
		Name: "graphs", Date: day(2024, 3, 10), IsStudy: true, UserStudyID: &membershipID, StudyTime: 90,
	})
	require.NoError(t, err)

	clean, err := env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, clean.StudiesChecked)
	assert.Zero(t, clean.StudiesRepaired)

	require.NoError(t, env.store.Studies.SetTotals(ctx, study.ID, 7, 5))

	report, err := env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StudiesRepaired)

	got, err := env.studies.GetStudy(ctx, study.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), got.TotalStudyTime)
	assert.Equal(t, int64(2), got.MemberCount)
	assert.Equal(t, int64(45), got.AverageStudyTime)
}
