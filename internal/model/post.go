package model

import "time"

// Post is a forum post. AuthorID is set once at creation and never reassigned;
// every edit/delete permission check compares against it.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ViewCount int64     `json:"viewCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment belongs to a post and, like Post, carries an immutable AuthorID.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Like records that a user liked a post. The (UserID, PostID) pair is the
// primary key in storage, so at most one row exists per pair.
type Like struct {
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeStats summarises the likes on a post from the caller's point of view.
type LikeStats struct {
	PostID    int64 `json:"postId"`
	LikeCount int64 `json:"likeCount"`
	UserLiked bool  `json:"userLiked"`
}
