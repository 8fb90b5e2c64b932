package postgres

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

type PostDB struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostDB)(nil)

const postColumns = `id, author_id, title, content, view_count, created_at, updated_at`

func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.ViewCount = 0

	err := p.conn.QueryRowContext(ctx,
		`INSERT INTO posts (author_id, title, content, view_count, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, $4, $5)
		 RETURNING id`,
		post.AuthorID, post.Title, post.Content, post.CreatedAt, post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", strconv.FormatInt(post.AuthorID, 10))
		}
		return fmt.Errorf("postgres: creating post: %w", err)
	}
	return nil
}

func (p *PostDB) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := p.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id,
	).Scan(postFields(&post)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("postgres: getting post %d: %w", id, err)
	}
	return &post, nil
}

func (p *PostDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit, offset := opts.Normalize()

	rows, err := p.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(postFields(&post)...); err != nil {
			return nil, fmt.Errorf("postgres: scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating post rows: %w", err)
	}
	return posts, nil
}

func (p *PostDB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting posts: %w", err)
	}
	return n, nil
}

func (p *PostDB) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now().UTC()

	res, err := p.conn.ExecContext(ctx,
		`UPDATE posts SET title = $1, content = $2, updated_at = $3 WHERE id = $4`,
		post.Title, post.Content, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating post %d: %w", post.ID, err)
	}
	return requireAffected(res, "post", post.ID)
}

func (p *PostDB) Delete(ctx context.Context, id int64) error {
	res, err := p.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting post %d: %w", id, err)
	}
	return requireAffected(res, "post", id)
}

func (p *PostDB) IncrementViews(ctx context.Context, id int64) error {
	res, err := p.conn.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: incrementing views of post %d: %w", id, err)
	}
	return requireAffected(res, "post", id)
}

func postFields(post *model.Post) []any {
	return []any{
		&post.ID, &post.AuthorID, &post.Title, &post.Content,
		&post.ViewCount, &post.CreatedAt, &post.UpdatedAt,
	}
}
