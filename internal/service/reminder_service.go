package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewReminderService(store *repository.Store, log *zap.Logger) *ReminderService {
	return &ReminderService{store: store, log: log}
}

// DailySummary renders the user's agenda for the calendar day of now: the day's plans,
// the visible projects running through it and the day's counters.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	today := model.DateOf(now)

	var (
		plans   []model.Plan
		planner *model.Planner
	)
	found, err := s.store.Planners.FindByUserAndDate(ctx, user.ID, today)
	switch {
	case err == nil:
		planner = found
		plans, err = s.store.Plans.ListByPlanner(ctx, planner.ID, nil)
		if err != nil {
			return "", surface(s.log, "daily summary", err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", surface(s.log, "daily summary", err)
	}

	projects, err := s.store.Projects.ListOverlapping(ctx, user.ID, today, today, true, 0)
	if err != nil {
		return "", surface(s.log, "daily summary", err)
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", today.Format("02.01.2006")))

	builder.WriteString("📝 <b>Планы на сегодня</b>\n")
	if len(plans) == 0 {
		builder.WriteString("— планов нет\n")
	} else {
		for _, plan := range plans {
			builder.WriteString(formatPlan(plan))
		}
	}

	builder.WriteString("\n📌 <b>Проекты</b>\n")
	if len(projects) == 0 {
		builder.WriteString("— нет закреплённых проектов\n")
	} else {
		for _, project := range projects {
			builder.WriteString(formatProject(project, today))
		}
	}

	if planner != nil {
		builder.WriteString(fmt.Sprintf("\n⏱ Учёба за день: %d мин. · выполнено: %d\n",
			planner.DailyStudyTime, planner.DailyCompletedNum))
		if memo := strings.TrimSpace(planner.Memo); memo != "" {
			builder.WriteString(fmt.Sprintf("🗒 %s\n", html.EscapeString(memo)))
		}
		if planner.DDay != nil {
			builder.WriteString(formatDDay(*planner.DDay, today))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatPlan(plan model.Plan) string {
	var sb strings.Builder

	icon := "⬜"
	if plan.IsComplete {
		icon = "✅"
	}
	sb.WriteString(fmt.Sprintf("%s %s <i>#%d</i>", icon, html.EscapeString(strings.TrimSpace(plan.Name)), plan.ID))
	if plan.IsVisible {
		sb.WriteString(" 📍")
	}
	if plan.IsStudy {
		sb.WriteString(" 👥")
	}
	if plan.StudyTime > 0 {
		sb.WriteString(fmt.Sprintf("\n   ⏱ %d мин.", plan.StudyTime))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatProject(project model.Project, today time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if project.IsComplete {
		icon = "✅"
	}
	sb.WriteString(fmt.Sprintf("%s %s <i>#%d</i>", icon, html.EscapeString(strings.TrimSpace(project.Name)), project.ID))

	daysLeft := int(project.EndDate.Sub(today).Hours()/24) + 1
	sb.WriteString(fmt.Sprintf("\n   📆 %s – %s · осталось %d дн.",
		project.StartDate.Format(model.DateLayout), project.EndDate.Format(model.DateLayout), daysLeft))

	sb.WriteByte('\n')
	return sb.String()
}

func formatDDay(dday, today time.Time) string {
	diff := int(model.DateOf(dday).Sub(today).Hours() / 24)
	switch {
	case diff > 0:
		return fmt.Sprintf("🎯 D-%d (%s)\n", diff, dday.Format(model.DateLayout))
	case diff == 0:
		return "🎯 D-Day\n"
	default:
		return fmt.Sprintf("🎯 D+%d (%s)\n", -diff, dday.Format(model.DateLayout))
	}
}
