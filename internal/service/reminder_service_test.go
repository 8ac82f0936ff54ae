package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.user(t, "ann")

	done := env.plan(t, user.ID, "Read <chapter 3>", day(2024, 3, 10), 30)
	env.plan(t, user.ID, "Write notes", day(2024, 3, 10), 0)
	env.plan(t, user.ID, "Tomorrow", day(2024, 3, 11), 0)
	_, err := env.plans.SetPlanComplete(ctx, user.ID, done.ID, true)
	require.NoError(t, err)

	project, err := env.projects.CreateProject(ctx, user.ID, ProjectInput{Name: "Thesis", Start: day(2024, 3, 1), End: day(2024, 3, 15)})
	require.NoError(t, err)
	_, err = env.projects.SetProjectVisible(ctx, user.ID, project.ID, true)
	require.NoError(t, err)
	_, err = env.projects.CreateProject(ctx, user.ID, ProjectInput{Name: "Hidden", Start: day(2024, 3, 1), End: day(2024, 3, 15)})
	require.NoError(t, err)

	dday := day(2024, 3, 15)
	_, err = env.planners.SetDDay(ctx, user.ID, day(2024, 3, 10), &dday)
	require.NoError(t, err)

	user, err = env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	summary, err := env.reminders.DailySummary(ctx, *user, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, summary, "10.03.2024")
	assert.Contains(t, summary, "✅ Read &lt;chapter 3&gt;")
	assert.Contains(t, summary, "⬜ Write notes")
	assert.NotContains(t, summary, "Tomorrow")
	assert.Contains(t, summary, "Thesis")
	assert.Contains(t, summary, "осталось 6 дн.")
	assert.NotContains(t, summary, "Hidden")
	assert.Contains(t, summary, "Учёба за день: 30 мин. · выполнено: 1")
	assert.Contains(t, summary, "D-5")
}

func TestDailySummaryWithoutPlanner(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "ann")

	summary, err := env.reminders.DailySummary(context.Background(), *user, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, summary, "планов нет")
	assert.NotContains(t, summary, "Учёба за день")
}
