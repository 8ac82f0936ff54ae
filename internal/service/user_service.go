package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// UserService registers users coming from the API or the bot.
type UserService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewUserService(store *repository.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("user name is required")
	}
	user := model.User{Name: name}
	if err := s.store.Users.Create(ctx, &user); err != nil {
		return nil, surface(s.log, "create user", err)
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, surface(s.log, "get user", lookup("user", err))
	}
	return user, nil
}

// UpsertFromTelegram finds or creates the user behind a Telegram account and refreshes its profile.
func (s *UserService) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	user, err := s.store.Users.UpsertFromTelegram(ctx, telegramID, firstName, lastName, username)
	if err != nil {
		return nil, surface(s.log, "upsert telegram user", err)
	}
	return user, nil
}

func (s *UserService) ListTelegramUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users.ListWithTelegram(ctx)
	if err != nil {
		return nil, surface(s.log, "list telegram users", err)
	}
	return users, nil
}
