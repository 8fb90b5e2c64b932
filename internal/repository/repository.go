// Package repository declares the storage contracts the services depend on.
//
// Two implementations exist: repository/sqlite (embedded, default) and
// repository/postgres. Both translate storage failures into apperror values:
// a missing row is ErrNotFound, a duplicate email or nickname is ErrConflict,
// and a duplicate (user, post) like is ErrDuplicateLike.
package repository

import (
	"context"

	"github.com/sakif/community-forum/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps Limit to [1, MaxPageSize] (default DefaultPageSize) and
// Offset to >= 0.
func (o ListOptions) Normalize() (limit, offset int) {
	limit = o.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset = o.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64, opts ListOptions) ([]model.Comment, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
}

// LikeRepository stores (user, post) like pairs.
//
// Insert must be the authority on uniqueness: it runs in a transaction and
// reports a duplicate pair as apperror.ErrDuplicateLike even when a
// concurrent Exists check said the pair was absent.
type LikeRepository interface {
	Exists(ctx context.Context, userID, postID int64) (bool, error)
	Insert(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, userID, postID int64) error
	CountByPost(ctx context.Context, postID int64) (int64, error)
}

// Store bundles the four repositories of one backend.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Ping(ctx context.Context) error
	Close() error
}
