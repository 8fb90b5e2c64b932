package handler

import (
	"net/http"

	"github.com/sakif/community-forum/internal/auth"
)

// API groups the resource handlers that make up the JSON surface.
type API struct {
	Users    *UserHandler
	Posts    *PostHandler
	Comments *CommentHandler
	Likes    *LikeHandler
}

// Routes returns every API route with its access policy.
//
// Reads are public. Anything that creates content needs a principal;
// account routes additionally need the MEMBER role. Edit and delete are
// AuthenticatedAny here because ownership is checked per resource.
func (a *API) Routes() auth.RouteTable {
	member := auth.RequireRole(auth.RoleMember)

	return auth.RouteTable{
		{Method: http.MethodPost, Pattern: "/users/signup", Policy: auth.Public, Handler: a.Users.HandleSignup},
		{Method: http.MethodPost, Pattern: "/users/login", Policy: auth.Public, Handler: a.Users.HandleLogin},
		{Method: http.MethodGet, Pattern: "/users/me", Policy: member, Handler: a.Users.HandleMe},
		{Method: http.MethodPut, Pattern: "/users/me", Policy: member, Handler: a.Users.HandleUpdateMe},
		{Method: http.MethodPut, Pattern: "/users/me/password", Policy: member, Handler: a.Users.HandleChangePassword},
		{Method: http.MethodDelete, Pattern: "/users/me", Policy: member, Handler: a.Users.HandleDeleteMe},

		{Method: http.MethodGet, Pattern: "/posts", Policy: auth.Public, Handler: a.Posts.HandleList},
		{Method: http.MethodPost, Pattern: "/posts", Policy: auth.AuthenticatedAny, Handler: a.Posts.HandleCreate},
		{Method: http.MethodGet, Pattern: "/posts/{postID}", Policy: auth.Public, Handler: a.Posts.HandleGet},
		{Method: http.MethodPut, Pattern: "/posts/{postID}", Policy: auth.AuthenticatedAny, Handler: a.Posts.HandleUpdate},
		{Method: http.MethodDelete, Pattern: "/posts/{postID}", Policy: auth.AuthenticatedAny, Handler: a.Posts.HandleDelete},

		{Method: http.MethodGet, Pattern: "/posts/{postID}/comments", Policy: auth.Public, Handler: a.Comments.HandleList},
		{Method: http.MethodPost, Pattern: "/posts/{postID}/comments", Policy: auth.AuthenticatedAny, Handler: a.Comments.HandleCreate},
		{Method: http.MethodPut, Pattern: "/comments/{commentID}", Policy: auth.AuthenticatedAny, Handler: a.Comments.HandleUpdate},
		{Method: http.MethodDelete, Pattern: "/comments/{commentID}", Policy: auth.AuthenticatedAny, Handler: a.Comments.HandleDelete},

		{Method: http.MethodGet, Pattern: "/posts/{postID}/likes", Policy: auth.Public, Handler: a.Likes.HandleStats},
		{Method: http.MethodPost, Pattern: "/posts/{postID}/like", Policy: auth.AuthenticatedAny, Handler: a.Likes.HandleLike},
		{Method: http.MethodDelete, Pattern: "/posts/{postID}/like", Policy: auth.AuthenticatedAny, Handler: a.Likes.HandleUnlike},
	}
}
