package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

func TestCommentLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "thread")

	first := &model.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "first!"}
	require.NoError(t, db.Comments().Create(ctx, first))
	assert.NotZero(t, first.ID)

	second := &model.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "thanks"}
	require.NoError(t, db.Comments().Create(ctx, second))

	got, err := db.Comments().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.AuthorID)
	assert.Equal(t, post.ID, got.PostID)

	list, err := db.Comments().ListByPost(ctx, post.ID, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "comments are listed oldest first")

	n, err := db.Comments().CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	first.Content = "edited"
	require.NoError(t, db.Comments().Update(ctx, first))
	got, err = db.Comments().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, db.Comments().Delete(ctx, first.ID))
	_, err = db.Comments().GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, db.Comments().Delete(ctx, first.ID), apperror.ErrNotFound)
	assert.ErrorIs(t, db.Comments().Update(ctx, first), apperror.ErrNotFound)
}

func TestCommentCreate_UnknownPost(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	err := db.Comments().Create(context.Background(), &model.Comment{PostID: 77, AuthorID: alice.ID, Content: "hi"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestComments_DeletedWithPost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "thread")
	c := &model.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "hi"}
	require.NoError(t, db.Comments().Create(ctx, c))

	require.NoError(t, db.Posts().Delete(ctx, post.ID))

	_, err := db.Comments().GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
