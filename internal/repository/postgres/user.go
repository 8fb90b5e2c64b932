package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

type UserDB struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, email, nickname, password_hash, role, created_at, updated_at`

func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := u.conn.QueryRowContext(ctx,
		`INSERT INTO users (email, nickname, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		user.Email, user.Nickname, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if conflict := userConflict(err, user); conflict != nil {
			return conflict
		}
		return fmt.Errorf("postgres: creating user: %w", err)
	}
	return nil
}

func (u *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("postgres: getting user %d: %w", id, err)
	}
	return user, nil
}

func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("postgres: getting user by email: %w", err)
	}
	return user, nil
}

func (u *UserDB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := u.conn.ExecContext(ctx,
		`UPDATE users SET nickname = $1, updated_at = $2 WHERE id = $3`,
		user.Nickname, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if conflict := userConflict(err, user); conflict != nil {
			return conflict
		}
		return fmt.Errorf("postgres: updating user %d: %w", user.ID, err)
	}
	return requireAffected(res, "user", user.ID)
}

func (u *UserDB) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := u.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating password for user %d: %w", id, err)
	}
	return requireAffected(res, "user", id)
}

func (u *UserDB) Delete(ctx context.Context, id int64) error {
	res, err := u.conn.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting user %d: %w", id, err)
	}
	return requireAffected(res, "user", id)
}

func (u *UserDB) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return u.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (u *UserDB) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return u.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE nickname = $1)`, nickname)
}

func (u *UserDB) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := u.conn.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("postgres: checking user existence: %w", err)
	}
	return found, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(
		&user.ID, &user.Email, &user.Nickname, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// userConflict maps a unique violation to apperror.Conflict, using the
// constraint name to tell email from nickname.
func userConflict(err error, user *model.User) error {
	pgErr, ok := isUniqueViolation(err)
	if !ok {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return apperror.Conflict("user", "email", user.Email)
	}
	return apperror.Conflict("user", "nickname", user.Nickname)
}
