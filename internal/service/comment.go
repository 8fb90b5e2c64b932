package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/community-forum/internal/auth"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

const MaxCommentLength = 2_000

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, logger: logger}
}

// CommentList is one page of a post's comments, oldest first.
type CommentList struct {
	Comments []model.Comment `json:"comments"`
	Page
}

func (s *CommentService) Create(ctx context.Context, authorID, postID int64, content string) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := validateContent(content, MaxCommentLength); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("post_id", postID),
	)
	return comment, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID int64, page, size int) (*CommentList, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	opts, meta := pageOptions(page, size)
	comments, err := s.comments.ListByPost(ctx, postID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	total, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	meta.Total = total
	return &CommentList{Comments: comments, Page: meta}, nil
}

func (s *CommentService) Update(ctx context.Context, principalID, commentID int64, content string) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := auth.AssertOwner(comment.AuthorID, principalID); err != nil {
		s.logger.Warn("comment update denied",
			slog.Int64("comment_id", commentID),
			slog.Int64("principal_id", principalID),
		)
		return nil, err
	}
	if err := validateContent(content, MaxCommentLength); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, principalID, commentID int64) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := auth.AssertOwner(comment.AuthorID, principalID); err != nil {
		s.logger.Warn("comment delete denied",
			slog.Int64("comment_id", commentID),
			slog.Int64("principal_id", principalID),
		)
		return err
	}
	return s.comments.Delete(ctx, commentID)
}
