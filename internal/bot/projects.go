package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

func (b *Bot) startNewProjectConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageProjectName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новый проект.\n<b>Шаг 1:</b> как его назвать?", cancelKeyboard())
}

func (b *Bot) finishProjectCreation(ctx context.Context, from *tgbotapi.User, input service.ProjectInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	project, err := b.svc.Projects.CreateProject(ctx, user.ID, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, "Не удалось сохранить проект. "+errorText(err))
	}

	b.log.Info("project created via bot", zap.Uint("project_id", project.ID), zap.Uint("user_id", user.ID))

	text := fmt.Sprintf("✅ <b>Проект сохранён</b>\n• <b>ID:</b> %d\n• <b>Название:</b> %s\n• <b>Сроки:</b> %s — %s",
		project.ID,
		escape(normalizeTitle(project.Name)),
		project.StartDate.Format(model.DateLayout),
		project.EndDate.Format(model.DateLayout),
	)
	return b.sendTextWithRemove(chatID, text)
}

func (b *Bot) handleListProjects(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	projects, err := b.svc.Projects.ListProjects(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не удалось получить проекты. "+errorText(err))
	}
	if len(projects) == 0 {
		return b.sendText(msg.Chat.ID, "Проектов пока нет. Добавь первый через /newproject.")
	}

	today := b.today()
	var builder strings.Builder
	builder.WriteString("📌 <b>Проекты</b>\n\n")
	for _, project := range projects {
		builder.WriteString(formatProject(project, today))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}
