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

// PostDB is the posts table. Obtain one with DB.Posts.
type PostDB struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostDB)(nil)

const postColumns = `id, author_id, title, content, view_count, created_at, updated_at`

// Create inserts a post. AuthorID must name an existing user; otherwise the
// foreign key fails and the author is reported as not found.
func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.ViewCount = 0

	res, err := p.conn.ExecContext(ctx,
		`INSERT INTO posts (author_id, title, content, view_count, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		post.AuthorID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		if kind, _ := violated(err); kind == constraintForeignKey {
			return apperror.NotFound("user", strconv.FormatInt(post.AuthorID, 10))
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading post id: %w", err)
	}
	return nil
}

// GetByID retrieves a single post.
// sql.ErrNoRows is translated to apperror.NotFound so the handler can 404.
func (p *PostDB) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := p.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	).Scan(postFields(&post)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return &post, nil
}

// List returns a page of posts, newest first.
//
// LIMIT/OFFSET pagination is simple but degrades on deep pages; a keyset
// cursor on (created_at, id) would replace it if the forum grows.
func (p *PostDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit, offset := opts.Normalize()

	rows, err := p.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(postFields(&post)...); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post rows: %w", err)
	}
	return posts, nil
}

func (p *PostDB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// Update saves title and content. AuthorID is never written after Create.
func (p *PostDB) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now().UTC()

	res, err := p.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		post.Title, post.Content, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}
	return requireAffected(res, "post", post.ID)
}

// Delete removes a post together with its comments and likes.
func (p *PostDB) Delete(ctx context.Context, id int64) error {
	res, err := p.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}
	return requireAffected(res, "post", id)
}

// IncrementViews bumps view_count in a single statement so concurrent
// readers never lose an increment.
func (p *PostDB) IncrementViews(ctx context.Context, id int64) error {
	res, err := p.conn.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views of post %d: %w", id, err)
	}
	return requireAffected(res, "post", id)
}

func postFields(post *model.Post) []any {
	return []any{
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.ViewCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	}
}
