package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stagePlanName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым.", cancelKeyboard())
		}
		state.plan.Name = text
		state.stage = stagePlanDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 <b>Шаг 2:</b> на какую дату? Формат <code>2025-11-30</code> или «Сегодня».", todayKeyboard())
	case stagePlanDate:
		date, ok := b.parseDialogDate(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code> или «Сегодня».", todayKeyboard())
		}
		state.plan.Date = date
		state.stage = stagePlanStudyTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏱ <b>Шаг 3:</b> сколько минут учёбы записать? (или «Пропустить»)", skipKeyboard())
	case stagePlanStudyTime:
		if !isSkipInput(text) {
			minutes, err := strconv.ParseInt(text, 10, 64)
			if err != nil || minutes < 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Время учёбы должно быть неотрицательным числом минут.", skipKeyboard())
			}
			if minutes > service.MaxPlanStudyTime {
				return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("Не больше %d минут на один план.", service.MaxPlanStudyTime), skipKeyboard())
			}
			state.plan.StudyTime = minutes
		}
		b.clearConversation(msg.From.ID)
		return b.finishPlanCreation(ctx, msg.From, state.plan, msg.Chat.ID)
	case stageProjectName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым.", cancelKeyboard())
		}
		state.project.Name = text
		state.stage = stageProjectStart
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 <b>Шаг 2:</b> дата начала? Формат <code>2025-11-30</code> или «Сегодня».", todayKeyboard())
	case stageProjectStart:
		start, ok := b.parseDialogDate(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code> или «Сегодня».", todayKeyboard())
		}
		state.project.Start = start
		state.stage = stageProjectEnd
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏁 <b>Шаг 3:</b> дата окончания? Формат <code>2025-11-30</code>.", todayKeyboard())
	case stageProjectEnd:
		end, ok := b.parseDialogDate(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code>.", todayKeyboard())
		}
		if end.Before(state.project.Start) {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Окончание не может быть раньше начала. Укажи другую дату.", todayKeyboard())
		}
		state.project.End = end
		b.clearConversation(msg.From.ID)
		return b.finishProjectCreation(ctx, msg.From, state.project, msg.Chat.ID)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newplan или /newproject.")
	}
}

func (b *Bot) parseDialogDate(text string) (time.Time, bool) {
	if isTodayInput(text) {
		return b.today(), true
	}
	date, err := model.ParseDate(text)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(msg.Text)) {
	case strings.ToLower(menuLabelNewPlan):
		return true, b.startNewPlanConversation(ctx, msg)
	case strings.ToLower(menuLabelPlans):
		return true, b.handleListPlans(ctx, msg)
	case strings.ToLower(menuLabelProjects):
		return true, b.handleListProjects(ctx, msg)
	case strings.ToLower(menuLabelReport):
		return true, b.handleReport(ctx, msg)
	default:
		return false, nil
	}
}
