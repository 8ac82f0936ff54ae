package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"study-planner/internal/model"
)

// ProjectRepository handles CRUD for multi-day projects.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID uint) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("start_date ASC, id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListOverlapping returns the user's projects that share at least one day with start..end.
// When visibleOnly is set only visible projects are returned; excludeID skips one project.
func (r *ProjectRepository) ListOverlapping(ctx context.Context, userID uint, start, end time.Time, visibleOnly bool, excludeID uint) ([]model.Project, error) {
	var projects []model.Project
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, model.DateOf(end), model.DateOf(start))
	if visibleOnly {
		q = q.Where("is_visible = ?", true)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("start_date ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list overlapping projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) UpdateName(ctx context.Context, project *model.Project, name string) error {
	project.Name = name
	if err := r.db.WithContext(ctx).Model(project).Update("name", name).Error; err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) UpdateSpan(ctx context.Context, project *model.Project, start, end time.Time) error {
	project.StartDate = model.DateOf(start)
	project.EndDate = model.DateOf(end)
	if err := r.db.WithContext(ctx).Model(project).Updates(map[string]interface{}{
		"start_date": project.StartDate,
		"end_date":   project.EndDate,
	}).Error; err != nil {
		return fmt.Errorf("reschedule project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) SetComplete(ctx context.Context, project *model.Project, complete bool) error {
	project.IsComplete = complete
	if err := r.db.WithContext(ctx).Model(project).Update("is_complete", complete).Error; err != nil {
		return fmt.Errorf("update project completion: %w", err)
	}
	return nil
}

func (r *ProjectRepository) SetVisible(ctx context.Context, project *model.Project, visible bool) error {
	project.IsVisible = visible
	if err := r.db.WithContext(ctx).Model(project).Update("is_visible", visible).Error; err != nil {
		return fmt.Errorf("update project visibility: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Project{}, id).Error; err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
