package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"study-planner/internal/model"
)

// PostRepository handles CRUD for study posts.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update writes the given columns and reloads the post.
func (r *PostRepository) Update(ctx context.Context, post *model.Post, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Model(post).Updates(updates).Error; err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if err := db.First(post, post.ID).Error; err != nil {
		return fmt.Errorf("reload post: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Post{}, id).Error; err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *PostRepository) ListPromotions(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).Where("is_notice = ?", false).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) ListNotices(ctx context.Context, studyID uint) ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).Where("study_id = ? AND is_notice = ?", studyID, true).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// SearchPromotions matches query against promotion titles and contents, ignoring case.
func (r *PostRepository) SearchPromotions(ctx context.Context, query string) ([]model.Post, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var posts []model.Post
	if err := r.db.WithContext(ctx).
		Where("is_notice = ?", false).
		Where("(LOWER(title) LIKE ? OR LOWER(contents) LIKE ?)", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
