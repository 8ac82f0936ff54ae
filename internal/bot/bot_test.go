package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
	"study-planner/internal/service"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeAPI struct {
	mu        sync.Mutex
	sent      []sentMessage
	callbacks []tgbotapi.CallbackConfig
	updates   chan tgbotapi.Update
	stopOnce  sync.Once
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, sentMessage{chatID: msg.ChatID, text: msg.Text})
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopOnce.Do(func() { close(f.updates) })
}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].text != "🔹 Главное меню" {
			return f.sent[i].text
		}
	}
	return ""
}

func (f *fakeAPI) allText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, m := range f.sent {
		b.WriteString(m.text)
		b.WriteByte('\n')
	}
	return b.String()
}

type testEnv struct {
	bot *Bot
	api *fakeAPI
	svc Services
}

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	dsn := filepath.Join(t.TempDir(), "bot.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := repository.NewDB(dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	svc := Services{
		Users:     service.NewUserService(store, log),
		Plans:     service.NewPlanService(store, log),
		Projects:  service.NewProjectService(store, log),
		Reminders: service.NewReminderService(store, log),
	}
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
	b := newBot(api, svc, log)
	b.now = func() time.Time { return fixedNow }
	return &testEnv{bot: b, api: api, svc: svc}
}

func message(from int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: from, FirstName: "Ann"},
		Chat: &tgbotapi.Chat{ID: from, Type: "private"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		length := strings.IndexByte(text, ' ')
		if length < 0 {
			length = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{Message: msg}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: from, Type: "private"}},
		Data:    data,
	}}
}

func (e *testEnv) send(from int64, texts ...string) {
	for _, text := range texts {
		e.bot.handleUpdate(context.Background(), message(from, text))
	}
}

func (e *testEnv) user(t *testing.T, telegramID int64) *model.User {
	t.Helper()
	user, err := e.svc.Users.UpsertFromTelegram(context.Background(), telegramID, "Ann", "", "")
	require.NoError(t, err)
	return user
}

func (e *testEnv) plan(t *testing.T, userID uint, name string) *service.PlanDetail {
	t.Helper()
	plan, err := e.svc.Plans.CreatePlan(context.Background(), userID, service.PlanInput{Name: name, Date: fixedNow})
	require.NoError(t, err)
	return plan
}

func TestNewPlanDialog(t *testing.T) {
	env := newTestEnv(t)

	env.send(42, "/newplan", "read chapter 3", "Сегодня", "45")

	assert.Contains(t, env.api.allText(), "План сохранён")
	assert.Contains(t, env.api.lastText(), "Read chapter 3")
	assert.False(t, env.bot.hasConversation(42))

	user := env.user(t, 42)
	plans, err := env.svc.Plans.ListPlans(context.Background(), user.ID, fixedNow, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(45), plans[0].StudyTime)
	assert.False(t, plans[0].IsVisible)
}

func TestNewPlanDialogRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	env.send(42, "/newplan", "read", "tomorrow")
	assert.Contains(t, env.api.lastText(), "Не могу распознать дату")

	env.send(42, "2024-03-11", "-5")
	assert.Contains(t, env.api.lastText(), "неотрицательным")

	env.send(42, "100000")
	assert.Contains(t, env.api.lastText(), "Не больше 1440 минут")
	assert.True(t, env.bot.hasConversation(42))

	env.send(42, "⏪ Отменить ввод")
	assert.False(t, env.bot.hasConversation(42))

	user := env.user(t, 42)
	_, err := env.svc.Plans.ListPlans(context.Background(), user.ID, model.DateOf(fixedNow.AddDate(0, 0, 1)), nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestNewProjectDialog(t *testing.T) {
	env := newTestEnv(t)

	env.send(42, "/newproject", "thesis", "2024-03-10", "2024-03-09")
	assert.Contains(t, env.api.lastText(), "раньше начала")

	env.send(42, "2024-03-20")
	assert.Contains(t, env.api.allText(), "Проект сохранён")

	env.send(42, "/projects")
	assert.Contains(t, env.api.lastText(), "Thesis")
	assert.Contains(t, env.api.lastText(), "2024-03-10 — 2024-03-20")
}

func TestShowRespectsDailyCap(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 42)

	for i := 0; i < service.MaxVisiblePerDay; i++ {
		plan := env.plan(t, user.ID, fmt.Sprintf("plan %d", i))
		env.send(42, fmt.Sprintf("/show %d", plan.ID))
		require.Contains(t, env.api.lastText(), "виден в календаре")
	}

	extra := env.plan(t, user.ID, "extra")
	env.send(42, fmt.Sprintf("/show %d", extra.ID))
	assert.Contains(t, env.api.lastText(), "Лимит видимых элементов")

	env.send(42, "/hide 1", fmt.Sprintf("/show %d", extra.ID))
	assert.Contains(t, env.api.lastText(), "виден в календаре")
}

func TestCompleteAndUndo(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 42)
	plan := env.plan(t, user.ID, "read")

	env.send(42, fmt.Sprintf("/complete %d", plan.ID))
	assert.Contains(t, env.api.lastText(), "выполнен")

	env.send(42, fmt.Sprintf("/complete %d", plan.ID))
	assert.Contains(t, env.api.lastText(), "Уже сделано")

	env.send(42, fmt.Sprintf("/undo %d", plan.ID))
	assert.Contains(t, env.api.lastText(), "снята отметка")

	env.send(42, "/complete", "/complete abc")
	assert.Contains(t, env.api.lastText(), "положительным числом")
}

func TestForeignPlanIsRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, 42)
	plan := env.plan(t, owner.ID, "mine")

	env.send(7, fmt.Sprintf("/complete %d", plan.ID))
	assert.Contains(t, env.api.lastText(), "чужая")

	env.send(7, fmt.Sprintf("/delete %d", plan.ID))
	assert.Contains(t, env.api.lastText(), "чужая")
	_, pending := env.bot.getConfirmation(7)
	assert.False(t, pending)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 42)
	plan := env.plan(t, user.ID, "read")

	env.send(42, fmt.Sprintf("/delete %d", plan.ID))
	assert.Contains(t, env.api.lastText(), "Удалить план")

	env.send(42, "что?")
	assert.Contains(t, env.api.lastText(), "Подтверди или отмени")

	env.send(42, btnCancel)
	_, err := env.svc.Plans.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)

	env.send(42, fmt.Sprintf("/delete %d", plan.ID), btnConfirm)
	assert.Contains(t, env.api.allText(), "удалён")
	_, err = env.svc.Plans.GetPlan(context.Background(), plan.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCallbacks(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, 42)
	plan := env.plan(t, user.ID, "read")
	ctx := context.Background()

	env.bot.handleUpdate(ctx, callback(42, fmt.Sprintf("complete:%d", plan.ID)))
	got, err := env.svc.Plans.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.IsComplete)
	assert.Contains(t, env.api.lastText(), "Планы на 2024-03-10")

	env.bot.handleUpdate(ctx, callback(42, fmt.Sprintf("complete:%d", plan.ID)))
	env.bot.handleUpdate(ctx, callback(42, "bogus"))

	require.Len(t, env.api.callbacks, 3)
	assert.Equal(t, "Готово", env.api.callbacks[0].Text)
	assert.Contains(t, env.api.callbacks[1].Text, "Уже сделано")
	assert.Empty(t, env.api.callbacks[2].Text)

	env.bot.handleUpdate(ctx, callback(42, fmt.Sprintf("delete:%d", plan.ID)))
	_, pending := env.bot.getConfirmation(42)
	assert.True(t, pending)
}

func TestGroupChatsAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	update := message(42, "/start")
	update.Message.Chat.Type = "group"

	env.bot.handleUpdate(context.Background(), update)
	assert.Empty(t, env.api.allText())
}

func TestSendDailyReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.user(t, 42)
	env.user(t, 43)
	_, err := env.svc.Users.CreateUser(ctx, "api only")
	require.NoError(t, err)
	env.plan(t, ann.ID, "read")

	require.NoError(t, env.bot.SendDailyReports(ctx))

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	require.Len(t, env.api.sent, 2)
	byChat := map[int64]string{}
	for _, m := range env.api.sent {
		byChat[m.chatID] = m.text
	}
	assert.Contains(t, byChat[42], "read")
	assert.Contains(t, byChat[43], "планов нет")
}

func TestStartStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.bot.Start(ctx) }()

	env.api.updates <- message(42, "/help")
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}
	assert.Contains(t, env.api.allText(), "/newplan")
}

func TestErrorText(t *testing.T) {
	assert.Contains(t, errorText(service.ErrCapacityExceeded), "не больше 5")
	assert.Contains(t, errorText(service.ErrNotFound), "Ничего не найдено")
	assert.Contains(t, errorText(fmt.Errorf("boom")), "Что-то пошло не так")
}
