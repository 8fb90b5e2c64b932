package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

const (
	LikeOpAdd    = "add"
	LikeOpRemove = "remove"

	LikeOutcomeOK        = "ok"
	LikeOutcomeDuplicate = "duplicate"
	LikeOutcomeNotFound  = "not_found"
	LikeOutcomeError     = "error"
)

// LikeObserver is notified once per AddLike/RemoveLike call.
type LikeObserver interface {
	LikeOperation(op, outcome string)
}

type noopLikeObserver struct{}

func (noopLikeObserver) LikeOperation(string, string) {}

// LikeService guards the one-like-per-(user, post) rule.
//
// The Exists check in AddLike is only an early exit. Two concurrent AddLike
// calls can both see "absent"; the storage Insert then lets exactly one of
// them through and reports the other as apperror.ErrDuplicateLike.
type LikeService struct {
	likes    repository.LikeRepository
	users    repository.UserRepository
	posts    repository.PostRepository
	observer LikeObserver
	logger   *slog.Logger
}

func NewLikeService(
	likes repository.LikeRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	observer LikeObserver,
	logger *slog.Logger,
) *LikeService {
	if observer == nil {
		observer = noopLikeObserver{}
	}
	return &LikeService{
		likes:    likes,
		users:    users,
		posts:    posts,
		observer: observer,
		logger:   logger,
	}
}

// AddLike records that userID likes postID.
func (s *LikeService) AddLike(ctx context.Context, userID, postID int64) (*model.Like, error) {
	like, err := s.addLike(ctx, userID, postID)
	s.observer.LikeOperation(LikeOpAdd, likeOutcome(err))
	return like, err
}

func (s *LikeService) addLike(ctx context.Context, userID, postID int64) (*model.Like, error) {
	if err := s.requireUserAndPost(ctx, userID, postID); err != nil {
		return nil, err
	}

	exists, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return nil, fmt.Errorf("checking like: %w", err)
	}
	if exists {
		return nil, apperror.DuplicateLike(userID, postID)
	}

	like := &model.Like{UserID: userID, PostID: postID}
	if err := s.likes.Insert(ctx, like); err != nil {
		if errors.Is(err, apperror.ErrDuplicateLike) {
			s.logger.Debug("concurrent like rejected by storage",
				slog.Int64("user_id", userID),
				slog.Int64("post_id", postID),
			)
		}
		return nil, err
	}
	return like, nil
}

// RemoveLike deletes the like. Removing a like that does not exist is
// apperror.ErrNotFound, so of two concurrent removals exactly one succeeds.
func (s *LikeService) RemoveLike(ctx context.Context, userID, postID int64) error {
	err := s.removeLike(ctx, userID, postID)
	s.observer.LikeOperation(LikeOpRemove, likeOutcome(err))
	return err
}

func (s *LikeService) removeLike(ctx context.Context, userID, postID int64) error {
	if err := s.requireUserAndPost(ctx, userID, postID); err != nil {
		return err
	}
	return s.likes.Delete(ctx, userID, postID)
}

// Stats returns the like count of a post. UserLiked is only computed when
// the caller is authenticated.
func (s *LikeService) Stats(ctx context.Context, postID, userID int64, authenticated bool) (*model.LikeStats, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	count, err := s.likes.CountByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}

	stats := &model.LikeStats{PostID: postID, LikeCount: count}
	if authenticated {
		stats.UserLiked, err = s.likes.Exists(ctx, userID, postID)
		if err != nil {
			return nil, fmt.Errorf("checking like: %w", err)
		}
	}
	return stats, nil
}

func (s *LikeService) requireUserAndPost(ctx context.Context, userID, postID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}
	return nil
}

func likeOutcome(err error) string {
	switch {
	case err == nil:
		return LikeOutcomeOK
	case errors.Is(err, apperror.ErrDuplicateLike):
		return LikeOutcomeDuplicate
	case errors.Is(err, apperror.ErrNotFound):
		return LikeOutcomeNotFound
	default:
		return LikeOutcomeError
	}
}
