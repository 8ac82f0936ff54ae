package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// ProjectInput represents data required to create a project.
type ProjectInput struct {
	Name  string
	Start time.Time
	End   time.Time
}

// MaxProjectDays bounds how many days a single project may span.
const MaxProjectDays = 366

// ProjectService wraps project-related business logic.
type ProjectService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewProjectService(store *repository.Store, log *zap.Logger) *ProjectService {
	return &ProjectService{store: store, log: log}
}

func validateSpan(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return invalid("project start and end dates are required")
	}
	if !model.InRange(start) || !model.InRange(end) {
		return invalid("project dates must fall within %d..%d", model.MinYear, model.MaxYear)
	}
	start, end = model.DateOf(start), model.DateOf(end)
	if end.Before(start) {
		return invalid("project ends before it starts")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxProjectDays {
		return invalid("project spans %d days, at most %d allowed", days, MaxProjectDays)
	}
	return nil
}

// CreateProject stores a new hidden project and provisions a calendar for every month it spans.
func (s *ProjectService) CreateProject(ctx context.Context, userID uint, input ProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("project name is required")
	}
	if err := validateSpan(input.Start, input.End); err != nil {
		return nil, err
	}

	project := model.Project{
		UserID:    userID,
		Name:      name,
		StartDate: model.DateOf(input.Start),
		EndDate:   model.DateOf(input.End),
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureCalendars(ctx, tx, userID, project.StartDate, project.EndDate); err != nil {
			return err
		}
		return tx.Projects.Create(ctx, &project)
	})
	if err != nil {
		return nil, surface(s.log, "create project", err)
	}
	return &project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID uint) (*model.Project, error) {
	project, err := s.store.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, surface(s.log, "get project", lookup("project", err))
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uint) ([]model.Project, error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, surface(s.log, "list projects", lookup("user", err))
	}
	projects, err := s.store.Projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, surface(s.log, "list projects", err)
	}
	return projects, nil
}

func (s *ProjectService) RenameProject(ctx context.Context, userID, projectID uint, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("project name is required")
	}
	return s.mutate(ctx, "rename project", userID, projectID, func(tx *repository.Store, project *model.Project) error {
		return tx.Projects.UpdateName(ctx, project, name)
	})
}

// RescheduleProject moves the project to start..end. A visible project must still
// fit under the daily cap on every date of its new span.
func (s *ProjectService) RescheduleProject(ctx context.Context, userID, projectID uint, start, end time.Time) (*model.Project, error) {
	if err := validateSpan(start, end); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "reschedule project", userID, projectID, func(tx *repository.Store, project *model.Project) error {
		if err := ensureCalendars(ctx, tx, userID, start, end); err != nil {
			return err
		}
		if project.IsVisible {
			if err := admitVisible(ctx, tx, "project", userID, start, end, project.ID); err != nil {
				return err
			}
		}
		return tx.Projects.UpdateSpan(ctx, project, start, end)
	})
}

func (s *ProjectService) SetProjectComplete(ctx context.Context, userID, projectID uint, complete bool) (*model.Project, error) {
	return s.mutate(ctx, "set project complete", userID, projectID, func(tx *repository.Store, project *model.Project) error {
		if project.IsComplete == complete {
			return newError(CodeRedundant, "project %d completion is already %t", project.ID, complete)
		}
		return tx.Projects.SetComplete(ctx, project, complete)
	})
}

// SetProjectVisible pins the project to every date it spans. Either every date has
// room or nothing changes.
func (s *ProjectService) SetProjectVisible(ctx context.Context, userID, projectID uint, visible bool) (*model.Project, error) {
	return s.mutate(ctx, "set project visible", userID, projectID, func(tx *repository.Store, project *model.Project) error {
		if project.IsVisible == visible {
			return newError(CodeRedundant, "project %d visibility is already %t", project.ID, visible)
		}
		if visible {
			if err := admitVisible(ctx, tx, "project", userID, project.StartDate, project.EndDate, project.ID); err != nil {
				return err
			}
		}
		return tx.Projects.SetVisible(ctx, project, visible)
	})
}

// DeleteProject removes the project. The returned value is the project as it was.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uint) (*model.Project, error) {
	return s.mutate(ctx, "delete project", userID, projectID, func(tx *repository.Store, project *model.Project) error {
		return tx.Projects.Delete(ctx, project.ID)
	})
}

func (s *ProjectService) mutate(ctx context.Context, op string, userID, projectID uint, fn func(tx *repository.Store, project *model.Project) error) (*model.Project, error) {
	var result *model.Project
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := tx.Projects.FindByID(ctx, projectID)
		if err != nil {
			return lookup("project", err)
		}
		if project.UserID != userID {
			return newError(CodeUnauthorized, "project %d belongs to another user", project.ID)
		}
		if err := fn(tx, project); err != nil {
			return err
		}
		result = project
		return nil
	})
	if err != nil {
		return nil, surface(s.log, op, err)
	}
	return result, nil
}
