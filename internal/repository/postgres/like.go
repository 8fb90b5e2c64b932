package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/dbx"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

type LikeDB struct {
	conn *sql.DB
}

var _ repository.LikeRepository = (*LikeDB)(nil)

func (l *LikeDB) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var found bool
	err := l.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`,
		userID, postID,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("postgres: checking like (%d, %d): %w", userID, postID, err)
	}
	return found, nil
}

// Insert records a like in a transaction. The primary key violation raised
// for the losing request of a concurrent pair becomes ErrDuplicateLike.
func (l *LikeDB) Insert(ctx context.Context, like *model.Like) error {
	like.CreatedAt = time.Now().UTC()

	err := dbx.WithTx(ctx, l.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO likes (user_id, post_id, created_at) VALUES ($1, $2, $3)`,
			like.UserID, like.PostID, like.CreatedAt,
		)
		return err
	})
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperror.DuplicateLike(like.UserID, like.PostID)
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("post", fmt.Sprint(like.PostID))
		}
		return fmt.Errorf("postgres: inserting like (%d, %d): %w", like.UserID, like.PostID, err)
	}
	return nil
}

func (l *LikeDB) Delete(ctx context.Context, userID, postID int64) error {
	res, err := l.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("postgres: deleting like (%d, %d): %w", userID, postID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("like", fmt.Sprintf("%d/%d", userID, postID))
	}
	return nil
}

func (l *LikeDB) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := l.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: counting likes of post %d: %w", postID, err)
	}
	return n, nil
}
