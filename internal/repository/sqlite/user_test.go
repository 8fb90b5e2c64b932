package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "alice@example.com", Nickname: "alice", PasswordHash: "h", Role: "MEMBER"}
	err := db.Users().Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == 0 {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{Email: "alice@example.com", Nickname: "other", PasswordHash: "h", Role: "MEMBER"}
	err := db.Users().Create(context.Background(), dup)

	require.ErrorIs(t, err, apperror.ErrConflict)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "email", appErr.Field)
}

func TestUserCreate_DuplicateNickname(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{Email: "new@example.com", Nickname: "alice", PasswordHash: "h", Role: "MEMBER"}
	err := db.Users().Create(context.Background(), dup)

	require.ErrorIs(t, err, apperror.ErrConflict)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "nickname", appErr.Field)
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	got, err := db.Users().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, created.Nickname, got.Nickname)
	assert.Equal(t, created.PasswordHash, got.PasswordHash)
	assert.Equal(t, "MEMBER", got.Role)
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	got, err := db.Users().GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = db.Users().GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserExists(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	ctx := context.Background()

	found, err := db.Users().ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = db.Users().ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = db.Users().ExistsByNickname(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	ctx := context.Background()

	user.Nickname = "alice2"
	require.NoError(t, db.Users().Update(ctx, user))

	got, err := db.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Nickname)

	user.Nickname = "bob"
	assert.ErrorIs(t, db.Users().Update(ctx, user), apperror.ErrConflict)

	ghost := &model.User{ID: 999, Nickname: "ghost"}
	assert.ErrorIs(t, db.Users().Update(ctx, ghost), apperror.ErrNotFound)
}

func TestUserUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	ctx := context.Background()

	require.NoError(t, db.Users().UpdatePassword(ctx, user.ID, "new-hash"))

	got, err := db.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, db.Users().UpdatePassword(ctx, 999, "x"), apperror.ErrNotFound)
}

func TestUserDelete_CascadesToContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "hello")
	require.NoError(t, db.Likes().Insert(ctx, &model.Like{UserID: bob.ID, PostID: post.ID}))

	require.NoError(t, db.Users().Delete(ctx, alice.ID))

	_, err := db.Posts().GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "posts are removed with their author")

	n, err := db.Likes().CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, db.Users().Delete(ctx, alice.ID), apperror.ErrNotFound)
}
