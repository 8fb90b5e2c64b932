package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/auth"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

const (
	MaxTitleLength   = 200
	MaxContentLength = 20_000
)

type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// PostList is one page of posts, newest first.
type PostList struct {
	Posts []model.Post `json:"posts"`
	Page
}

func (s *PostService) Create(ctx context.Context, authorID int64, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", authorID),
	)
	return post, nil
}

// Get returns a post and counts the read as a view.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, page, size int) (*PostList, error) {
	opts, meta := pageOptions(page, size)

	posts, err := s.posts.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	meta.Total = total
	return &PostList{Posts: posts, Page: meta}, nil
}

// Update edits a post the principal authored.
func (s *PostService) Update(ctx context.Context, principalID, postID int64, title, content string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := auth.AssertOwner(post.AuthorID, principalID); err != nil {
		s.logger.Warn("post update denied",
			slog.Int64("post_id", postID),
			slog.Int64("principal_id", principalID),
		)
		return nil, err
	}

	title = strings.TrimSpace(title)
	if err := validatePost(title, content); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	return post, nil
}

// Delete removes a post the principal authored, with its comments and likes.
func (s *PostService) Delete(ctx context.Context, principalID, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := auth.AssertOwner(post.AuthorID, principalID); err != nil {
		s.logger.Warn("post delete denied",
			slog.Int64("post_id", postID),
			slog.Int64("principal_id", principalID),
		)
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.logger.Info("post deleted", slog.Int64("post_id", postID))
	return nil
}

func validatePost(title, content string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return validateContent(content, MaxContentLength)
}

func validateContent(content string, max int) error {
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > max {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("content must be at most %d characters", max))
	}
	return nil
}
