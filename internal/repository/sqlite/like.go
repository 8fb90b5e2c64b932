package sqlite

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

// LikeDB is the likes table. Obtain one with DB.Likes.
type LikeDB struct {
	conn *sql.DB
}

var _ repository.LikeRepository = (*LikeDB)(nil)

func (l *LikeDB) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var found bool
	err := l.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND post_id = ?)`,
		userID, postID,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like (%d, %d): %w", userID, postID, err)
	}
	return found, nil
}

// Insert records a like inside a transaction.
//
// The primary key on (user_id, post_id) is the only thing standing between
// two concurrent requests and a double like: the loser of the race gets a
// constraint violation here, reported as apperror.ErrDuplicateLike. A foreign
// key failure means the user or post vanished and is reported as NotFound.
func (l *LikeDB) Insert(ctx context.Context, like *model.Like) error {
	like.CreatedAt = time.Now().UTC()

	err := dbx.WithTx(ctx, l.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)`,
			like.UserID, like.PostID, like.CreatedAt,
		)
		return err
	})
	if err != nil {
		switch kind, _ := violated(err); kind {
		case constraintUnique:
			return apperror.DuplicateLike(like.UserID, like.PostID)
		case constraintForeignKey:
			return apperror.NotFound("post", fmt.Sprint(like.PostID))
		}
		return fmt.Errorf("sqlite: inserting like (%d, %d): %w", like.UserID, like.PostID, err)
	}
	return nil
}

// Delete removes the like in one statement. Zero rows affected, including
// when a concurrent request removed it first, is apperror.NotFound.
func (l *LikeDB) Delete(ctx context.Context, userID, postID int64) error {
	res, err := l.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like (%d, %d): %w", userID, postID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("like", fmt.Sprintf("%d/%d", userID, postID))
	}
	return nil
}

func (l *LikeDB) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := l.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes of post %d: %w", postID, err)
	}
	return n, nil
}
