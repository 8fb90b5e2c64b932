package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

// CommentDB is the comments table. Obtain one with DB.Comments.
type CommentDB struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentDB)(nil)

const commentColumns = `id, post_id, author_id, content, created_at, updated_at`

func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := c.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, author_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		if kind, _ := violated(err); kind == constraintForeignKey {
			return apperror.NotFound("post", strconv.FormatInt(comment.PostID, 10))
		}
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading comment id: %w", err)
	}
	return nil
}

func (c *CommentDB) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := c.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id,
	).Scan(commentFields(&comment)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return &comment, nil
}

// ListByPost returns a page of a post's comments, oldest first.
func (c *CommentDB) ListByPost(ctx context.Context, postID int64, opts repository.ListOptions) ([]model.Comment, error) {
	limit, offset := opts.Normalize()

	rows, err := c.conn.QueryContext(ctx,
		`SELECT `+commentColumns+`
		 FROM comments
		 WHERE post_id = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		postID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		var comment model.Comment
		if err := rows.Scan(commentFields(&comment)...); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment rows: %w", err)
	}
	return comments, nil
}

func (c *CommentDB) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := c.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting comments of post %d: %w", postID, err)
	}
	return n, nil
}

func (c *CommentDB) Update(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now().UTC()

	res, err := c.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content, comment.UpdatedAt, comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %d: %w", comment.ID, err)
	}
	return requireAffected(res, "comment", comment.ID)
}

func (c *CommentDB) Delete(ctx context.Context, id int64) error {
	res, err := c.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	return requireAffected(res, "comment", id)
}

func commentFields(comment *model.Comment) []any {
	return []any{
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	}
}
