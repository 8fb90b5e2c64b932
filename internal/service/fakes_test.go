package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Each fake is an in-memory implementation of one repository interface.
// They are guarded by a mutex because the like tests call the service
// from many goroutines at once.
//
// Set one of the *Err fields to simulate a database failure.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64

	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email", user.Email)
		}
		if u.Nickname == user.Nickname {
			return apperror.Conflict("user", "nickname", user.Nickname)
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", idString(id))
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return apperror.NotFound("user", idString(user.ID))
	}
	existing.Nickname = user.Nickname
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", idString(id))
	}
	existing.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", idString(id))
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

// addUser stores a user directly, bypassing validation.
func (f *fakeUserRepo) addUser(nickname string) int64 {
	u := &model.User{Email: nickname + "@example.com", Nickname: nickname, Role: "MEMBER"}
	_ = f.Create(context.Background(), u)
	return u.ID
}

type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[int64]*model.Post
	nextID int64

	listErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*model.Post)}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id int64) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", idString(id))
	}
	result := *p
	return &result, nil
}

func (f *fakePostRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]model.Post, 0, len(f.posts))
	for _, p := range f.posts {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })

	limit, offset := opts.Normalize()
	if offset >= len(result) {
		return []model.Post{}, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakePostRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.posts)), nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.posts[post.ID]
	if !ok {
		return apperror.NotFound("post", idString(post.ID))
	}
	existing.Title = post.Title
	existing.Content = post.Content
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", idString(id))
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) IncrementViews(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return apperror.NotFound("post", idString(id))
	}
	p.ViewCount++
	return nil
}

func (f *fakePostRepo) addPost(authorID int64, title string) int64 {
	p := &model.Post{AuthorID: authorID, Title: title, Content: "body of " + title}
	_ = f.Create(context.Background(), p)
	return p.ID
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[int64]*model.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]*model.Comment)}
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	f.comments[c.ID] = &stored
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", idString(id))
	}
	result := *c
	return &result, nil
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID int64, opts repository.ListOptions) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	limit, offset := opts.Normalize()
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeCommentRepo) CountByPost(_ context.Context, postID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCommentRepo) Update(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.comments[c.ID]
	if !ok {
		return apperror.NotFound("comment", idString(c.ID))
	}
	existing.Content = c.Content
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", idString(id))
	}
	delete(f.comments, id)
	return nil
}

type likeKey struct{ userID, postID int64 }

// fakeLikeRepo enforces (user, post) uniqueness inside Insert, the way the
// primary key does in a real database.
type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[likeKey]model.Like

	// existsAlwaysFalse makes Exists lie, so every AddLike reaches Insert.
	existsAlwaysFalse bool
	insertErr         error
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]model.Like)}
}

func (f *fakeLikeRepo) Exists(_ context.Context, userID, postID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsAlwaysFalse {
		return false, nil
	}
	_, ok := f.likes[likeKey{userID, postID}]
	return ok, nil
}

func (f *fakeLikeRepo) Insert(_ context.Context, like *model.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	k := likeKey{like.UserID, like.PostID}
	if _, ok := f.likes[k]; ok {
		return apperror.DuplicateLike(like.UserID, like.PostID)
	}
	like.CreatedAt = time.Now()
	f.likes[k] = *like
	return nil
}

func (f *fakeLikeRepo) Delete(_ context.Context, userID, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey{userID, postID}
	if _, ok := f.likes[k]; !ok {
		return apperror.NotFound("like", idString(userID)+"/"+idString(postID))
	}
	delete(f.likes, k)
	return nil
}

func (f *fakeLikeRepo) CountByPost(_ context.Context, postID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.likes {
		if k.postID == postID {
			n++
		}
	}
	return n, nil
}
