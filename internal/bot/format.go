package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

const (
	btnSkip           = "⏭️ Пропустить"
	btnToday          = "📅 Сегодня"
	btnConfirm        = "✅ Подтвердить"
	btnCancel         = "↩️ Отмена"
	btnCancelDialog   = "⏪ Отменить ввод"
	menuLabelNewPlan  = "➕ Новый план"
	menuLabelPlans    = "📋 Планы"
	menuLabelProjects = "📌 Проекты"
	menuLabelReport   = "📊 Отчёт"
)

// errorText renders a service error for the chat.
func errorText(err error) string {
	switch service.CodeOf(err) {
	case service.CodeNotFound:
		return "🔍 Ничего не найдено."
	case service.CodeInvalidRequest:
		return "✏️ Проверь введённые данные."
	case service.CodeUnauthorized:
		return "⛔ Это чужая запись."
	case service.CodeRedundant:
		return "ℹ️ Уже сделано, менять нечего."
	case service.CodeCapacityExceeded:
		return fmt.Sprintf("📵 Лимит видимых элементов исчерпан: не больше %d в день. Скрой что-нибудь и попробуй снова.", service.MaxVisiblePerDay)
	default:
		return "⚠️ Что-то пошло не так, попробуй позже."
	}
}

// plainErrorText is errorText for callback toasts, which do not render HTML.
func plainErrorText(err error) string {
	return html.UnescapeString(errorText(err))
}

func formatPlan(plan model.Plan) string {
	var b strings.Builder
	icon := "⬜"
	if plan.IsComplete {
		icon = "✅"
	}
	visibility := "🙈"
	if plan.IsVisible {
		visibility = "👁"
	}
	b.WriteString(fmt.Sprintf("%s %s <b>#%d</b> %s\n", icon, visibility, plan.ID, escape(normalizeTitle(plan.Name))))
	if plan.StudyTime > 0 {
		b.WriteString(fmt.Sprintf("   ⏱ %d мин.\n", plan.StudyTime))
	}
	return b.String()
}

func formatProject(project model.Project, today time.Time) string {
	var b strings.Builder
	icon := "🟢"
	switch {
	case project.IsComplete:
		icon = "✅"
	case today.After(project.EndDate):
		icon = "⚠️"
	case !today.Before(project.StartDate):
		icon = "⏳"
	}
	visibility := "🙈"
	if project.IsVisible {
		visibility = "👁"
	}
	b.WriteString(fmt.Sprintf("%s %s <b>#%d</b> %s\n", icon, visibility, project.ID, escape(normalizeTitle(project.Name))))
	b.WriteString(fmt.Sprintf("   🗓 %s — %s\n\n", project.StartDate.Format(model.DateLayout), project.EndDate.Format(model.DateLayout)))
	return b.String()
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewPlan),
			tgbotapi.NewKeyboardButton(menuLabelPlans),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelProjects),
			tgbotapi.NewKeyboardButton(menuLabelReport),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func todayKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isTodayInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnToday) || value == "сегодня" || value == "today"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена" || value == "нет"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
