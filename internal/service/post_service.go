package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"study-planner/internal/model"
	"study-planner/internal/repository"
)

// PostInput represents data required to write a post.
type PostInput struct {
	Title    string
	Contents string
	Image    string
	IsNotice bool
}

// PostUpdate carries the fields to change; nil fields are left untouched.
type PostUpdate struct {
	Title    *string
	Contents *string
	Image    *string
}

// PostService handles study notices and promotion posts.
type PostService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewPostService(store *repository.Store, log *zap.Logger) *PostService {
	return &PostService{store: store, log: log}
}

// CreatePost publishes a post in studyID. The writer must be a leader or manager there.
func (s *PostService) CreatePost(ctx context.Context, userID, studyID uint, input PostInput) (*model.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("post title is required")
	}

	post := model.Post{
		StudyID:  studyID,
		WriterID: userID,
		Title:    title,
		Contents: input.Contents,
		Image:    input.Image,
		IsNotice: input.IsNotice,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := requirePostRights(ctx, tx, studyID, userID); err != nil {
			return err
		}
		return tx.Posts.Create(ctx, &post)
	})
	if err != nil {
		return nil, surface(s.log, "create post", err)
	}
	return &post, nil
}

// UpdatePost edits a post; only its writer may do so.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint, update PostUpdate) (*model.Post, error) {
	updates := make(map[string]interface{})
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, invalid("post title must not be empty")
		}
		updates["title"] = title
	}
	if update.Contents != nil {
		updates["contents"] = *update.Contents
	}
	if update.Image != nil {
		updates["image"] = *update.Image
	}

	var post *model.Post
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		post, err = tx.Posts.FindByID(ctx, postID)
		if err != nil {
			return lookup("post", err)
		}
		if post.WriterID != userID {
			return newError(CodeUnauthorized, "post %d was written by another user", post.ID)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Posts.Update(ctx, post, updates)
	})
	if err != nil {
		return nil, surface(s.log, "update post", err)
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint) (*model.Post, error) {
	post, err := s.store.Posts.FindByID(ctx, postID)
	if err != nil {
		return nil, surface(s.log, "get post", lookup("post", err))
	}
	return post, nil
}

// ListPromotions returns every non-notice post, newest first.
func (s *PostService) ListPromotions(ctx context.Context) ([]model.Post, error) {
	posts, err := s.store.Posts.ListPromotions(ctx)
	if err != nil {
		return nil, surface(s.log, "list promotions", err)
	}
	return posts, nil
}

func (s *PostService) ListNotices(ctx context.Context, studyID uint) ([]model.Post, error) {
	if _, err := s.store.Studies.FindByID(ctx, studyID); err != nil {
		return nil, surface(s.log, "list notices", lookup("study", err))
	}
	posts, err := s.store.Posts.ListNotices(ctx, studyID)
	if err != nil {
		return nil, surface(s.log, "list notices", err)
	}
	return posts, nil
}

// SearchPromotions matches query against promotion titles and contents, ignoring case.
func (s *PostService) SearchPromotions(ctx context.Context, query string) ([]model.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("search query is required")
	}
	posts, err := s.store.Posts.SearchPromotions(ctx, query)
	if err != nil {
		return nil, surface(s.log, "search promotions", err)
	}
	return posts, nil
}

// DeletePost removes a post; the actor must be a leader or manager of the post's study.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) (*model.Post, error) {
	var post *model.Post
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		post, err = tx.Posts.FindByID(ctx, postID)
		if err != nil {
			return lookup("post", err)
		}
		if err := requirePostRights(ctx, tx, post.StudyID, userID); err != nil {
			return err
		}
		return tx.Posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return nil, surface(s.log, "delete post", err)
	}
	return post, nil
}

func requirePostRights(ctx context.Context, tx *repository.Store, studyID, userID uint) error {
	membership, err := tx.Studies.FindMembershipByStudyAndUser(ctx, studyID, userID)
	if err != nil {
		return lookup("user study", err)
	}
	if !membership.CanManagePosts() {
		return newError(CodeUnauthorized, "rank %d cannot manage posts", membership.MemberStatus)
	}
	return nil
}
