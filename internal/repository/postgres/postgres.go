// Package postgres implements the repository interfaces on PostgreSQL through
// pgx's database/sql driver. The schema is managed by goose with migrations
// embedded in the binary.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/community-forum/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a sql.DB pool and hands out the four repositories.
type DB struct {
	conn *sql.DB
}

var _ repository.Store = (*DB)(nil)

// New connects to databaseURL, verifies the connection and brings the schema
// up to date.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}
	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}
	return &DB{conn: conn}, nil
}

// NewWithDB wraps an existing pool without running migrations.
func NewWithDB(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

func migrate(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUp(ctx, conn, "migrations")
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Users() repository.UserRepository       { return &UserDB{conn: db.conn} }
func (db *DB) Posts() repository.PostRepository       { return &PostDB{conn: db.conn} }
func (db *DB) Comments() repository.CommentRepository { return &CommentDB{conn: db.conn} }
func (db *DB) Likes() repository.LikeRepository       { return &LikeDB{conn: db.conn} }
