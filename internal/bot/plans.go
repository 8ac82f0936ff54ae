package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

const (
	cbCompletePrefix = "complete:"
	cbUndoPrefix     = "undo:"
	cbShowPrefix     = "show:"
	cbHidePrefix     = "hide:"
	cbDeletePrefix   = "delete:"
)

func (b *Bot) startNewPlanConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stagePlanName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новый план.\n<b>Шаг 1:</b> как его назвать?", cancelKeyboard())
}

func (b *Bot) finishPlanCreation(ctx context.Context, from *tgbotapi.User, input service.PlanInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	plan, err := b.svc.Plans.CreatePlan(ctx, user.ID, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, "Не удалось сохранить план. "+errorText(err))
	}

	b.log.Info("plan created via bot", zap.Uint("plan_id", plan.ID), zap.Uint("user_id", user.ID))

	var summary strings.Builder
	summary.WriteString("✅ <b>План сохранён</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", plan.ID))
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(plan.Name))))
	summary.WriteString(fmt.Sprintf("• <b>Дата:</b> %s\n", plan.Date.Format(model.DateLayout)))
	if plan.StudyTime > 0 {
		summary.WriteString(fmt.Sprintf("• <b>Учёба:</b> %d мин.\n", plan.StudyTime))
	}
	summary.WriteString(fmt.Sprintf("План скрыт. Показать в календаре: /show %d", plan.ID))

	if err := b.sendTextWithRemove(chatID, summary.String()); err != nil {
		return err
	}
	return b.sendPlanList(ctx, chatID, user, plan.Date)
}

func (b *Bot) handleListPlans(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	date := b.today()
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		date, err = model.ParseDate(args)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Дата должна быть в формате <code>2025-11-30</code>.")
		}
	}
	return b.sendPlanList(ctx, msg.Chat.ID, user, date)
}

func (b *Bot) sendPlanList(ctx context.Context, chatID int64, user *model.User, date time.Time) error {
	plans, err := b.svc.Plans.ListPlans(ctx, user.ID, date, nil)
	if err != nil && service.CodeOf(err) != service.CodeNotFound {
		return b.sendText(chatID, "Не удалось получить планы. "+errorText(err))
	}
	if len(plans) == 0 {
		return b.sendText(chatID, fmt.Sprintf("На %s планов нет. Добавь новый через /newplan.", date.Format(model.DateLayout)))
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Планы на %s</b>\n", date.Format(model.DateLayout)))
	builder.WriteString("Кнопки: выполнено, видимость, удаление.\n\n")

	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(plans))
	for _, plan := range plans {
		builder.WriteString(formatPlan(plan))
		buttons = append(buttons, planButtons(plan))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func planButtons(plan model.Plan) []tgbotapi.InlineKeyboardButton {
	complete := tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", plan.ID, shortTitle(plan.Name, 16)), fmt.Sprintf("%s%d", cbCompletePrefix, plan.ID))
	if plan.IsComplete {
		complete = tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("↩️ #%d · %s", plan.ID, shortTitle(plan.Name, 16)), fmt.Sprintf("%s%d", cbUndoPrefix, plan.ID))
	}
	visible := tgbotapi.NewInlineKeyboardButtonData("👁 Показать", fmt.Sprintf("%s%d", cbShowPrefix, plan.ID))
	if plan.IsVisible {
		visible = tgbotapi.NewInlineKeyboardButtonData("🙈 Скрыть", fmt.Sprintf("%s%d", cbHidePrefix, plan.ID))
	}
	remove := tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, plan.ID))
	return tgbotapi.NewInlineKeyboardRow(complete, visible, remove)
}

func (b *Bot) handleSetComplete(ctx context.Context, msg *tgbotapi.Message, complete bool) error {
	command := "undo"
	if complete {
		command = "complete"
	}
	planID, ok, err := b.commandID(msg, command)
	if !ok {
		return err
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	plan, err := b.svc.Plans.SetPlanComplete(ctx, user.ID, planID, complete)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if complete {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ План «%s» выполнен.", escape(normalizeTitle(plan.Name))))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ С плана «%s» снята отметка о выполнении.", escape(normalizeTitle(plan.Name))))
}

func (b *Bot) handleSetVisible(ctx context.Context, msg *tgbotapi.Message, visible bool) error {
	command := "hide"
	if visible {
		command = "show"
	}
	planID, ok, err := b.commandID(msg, command)
	if !ok {
		return err
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	plan, err := b.svc.Plans.SetPlanVisible(ctx, user.ID, planID, visible)
	if err != nil {
		return b.sendText(msg.Chat.ID, errorText(err))
	}
	if visible {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("👁 План «%s» теперь виден в календаре.", escape(normalizeTitle(plan.Name))))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🙈 План «%s» скрыт.", escape(normalizeTitle(plan.Name))))
}

// handleDelete asks for confirmation before removing a plan.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	planID, ok, err := b.commandID(msg, "delete")
	if !ok {
		return err
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, planID)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, planID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	plan, err := b.svc.Plans.GetPlan(ctx, planID)
	if err != nil {
		return b.sendText(chatID, errorText(err))
	}
	if plan.UserID != user.ID {
		return b.sendText(chatID, errorText(service.ErrUnauthorized))
	}

	b.clearConversation(from.ID)
	b.setConfirmation(from.ID, confirmationRequest{planID: plan.ID})
	text := fmt.Sprintf("Удалить план «%s» (#%d) за %s?", escape(normalizeTitle(plan.Name)), plan.ID, plan.Date.Format(model.DateLayout))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	switch text := strings.TrimSpace(msg.Text); {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deletePlanAndRefresh(ctx, msg.Chat.ID, msg.From, req.planID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "Удаление отменено.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени удаление плана.", confirmKeyboard())
	}
}

func (b *Bot) deletePlanAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, planID uint) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	plan, err := b.svc.Plans.DeletePlan(ctx, user.ID, planID)
	if err != nil {
		return b.sendTextWithRemove(chatID, errorText(err))
	}

	b.log.Info("plan deleted via bot", zap.Uint("plan_id", plan.ID), zap.Uint("user_id", user.ID))
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 План «%s» удалён.", escape(normalizeTitle(plan.Name)))); err != nil {
		return err
	}
	return b.sendPlanList(ctx, chatID, user, plan.Date)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	prefix, planID, ok := parseCallback(cb.Data)
	if !ok {
		b.ack(cb, "")
		return nil
	}
	b.log.Debug("callback", zap.Int64("telegram_id", cb.From.ID), zap.String("action", prefix), zap.Uint("plan_id", planID))

	if prefix == cbDeletePrefix {
		b.ack(cb, "")
		return b.askDeleteConfirmation(ctx, cb.Message.Chat.ID, cb.From, planID)
	}

	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		b.ack(cb, "")
		return err
	}

	var plan *service.PlanDetail
	switch prefix {
	case cbCompletePrefix:
		plan, err = b.svc.Plans.SetPlanComplete(ctx, user.ID, planID, true)
	case cbUndoPrefix:
		plan, err = b.svc.Plans.SetPlanComplete(ctx, user.ID, planID, false)
	case cbShowPrefix:
		plan, err = b.svc.Plans.SetPlanVisible(ctx, user.ID, planID, true)
	case cbHidePrefix:
		plan, err = b.svc.Plans.SetPlanVisible(ctx, user.ID, planID, false)
	}
	if err != nil {
		b.ack(cb, plainErrorText(err))
		return nil
	}
	b.ack(cb, "Готово")
	return b.sendPlanList(ctx, cb.Message.Chat.ID, user, plan.Date)
}

// commandID parses the numeric argument of /<command> <id>. When ok is false the
// usage hint has already been sent and err carries only a send failure.
func (b *Bot) commandID(msg *tgbotapi.Message, command string) (uint, bool, error) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return 0, false, b.sendText(msg.Chat.ID, fmt.Sprintf("Укажи ID плана: /%s 12", command))
	}
	id, err := strconv.ParseUint(args, 10, 64)
	if err != nil || id == 0 {
		return 0, false, b.sendText(msg.Chat.ID, "ID плана должен быть положительным числом.")
	}
	return uint(id), true, nil
}

func parseCallback(data string) (string, uint, bool) {
	for _, prefix := range []string{cbCompletePrefix, cbUndoPrefix, cbShowPrefix, cbHidePrefix, cbDeletePrefix} {
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 64)
		if err != nil || id == 0 {
			return "", 0, false
		}
		return prefix, uint(id), true
	}
	return "", 0, false
}
