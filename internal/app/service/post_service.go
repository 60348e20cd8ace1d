package service

import (
	"context"
	"fmt"
	"strings"

	"miniblog/internal/common"
	"miniblog/internal/domain/model"
	"miniblog/internal/domain/repository"
	"miniblog/internal/platform/cache"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type PostService struct {
	postRepo  repository.PostRepository
	postCache *cache.PostCache // nil disables caching
}

func NewPostService(postRepo repository.PostRepository, postCache *cache.PostCache) *PostService {
	return &PostService{postRepo: postRepo, postCache: postCache}
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// CanModifyPost is the author-or-admin rule: mutation is permitted only to the
// creating account or an admin.
func CanModifyPost(user *model.User, post *model.Post) bool {
	return user.IsAdmin || user.ID == post.AuthorID
}

func (s *PostService) CreatePost(ctx context.Context, author *model.User, req CreatePostRequest) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("title and content are required: %w", common.ErrValidation)
	}

	post := &model.Post{
		ID:       uuid.NewString(),
		Title:    title,
		Content:  content,
		AuthorID: author.ID,
	}
	// The id suffix keeps slugs unique across posts with identical titles. The
	// slug never changes after creation, so post URLs survive title edits.
	post.Slug = slug.Make(title) + "-" + post.ID[:8]

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.AuthorUsername = author.Username
	s.postCache.Invalidate(ctx)
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]model.Post, error) {
	if posts, ok := s.postCache.GetRecent(ctx); ok {
		return posts, nil
	}
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.postCache.SetRecent(ctx, posts)
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}

func (s *PostService) GetPostBySlug(ctx context.Context, postSlug string) (*model.Post, error) {
	return s.postRepo.FindBySlug(ctx, postSlug)
}

func (s *PostService) UpdatePost(ctx context.Context, actor *model.User, id string, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModifyPost(actor, post) {
		return nil, fmt.Errorf("not authorized to edit this post: %w", common.ErrForbidden)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", common.ErrValidation)
		}
		post.Title = title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("content cannot be empty: %w", common.ErrValidation)
		}
		post.Content = content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.postCache.Invalidate(ctx)
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, actor *model.User, id string) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModifyPost(actor, post) {
		return fmt.Errorf("not authorized to delete this post: %w", common.ErrForbidden)
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.postCache.Invalidate(ctx)
	return nil
}
