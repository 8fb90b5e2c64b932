package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/community-forum/internal/repository"
	"github.com/sakif/community-forum/internal/service"
)

// PostHandler manages CRUD operations for posts.
//
// Reads are public. Writes need a principal, and PUT/DELETE additionally
// need the principal to be the post's author; the service enforces that.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleList returns one page of posts, newest first.
//
// HTTP: GET /posts?page=1&size=20
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.posts.List(r.Context(),
		queryInt(r, "page", 1),
		queryInt(r, "size", repository.DefaultPageSize),
	)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HTTP: GET /posts/{postID}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HTTP: POST /posts
// REQUEST BODY: {"title": "...", "content": "..."}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), p.SubjectID, req.Title, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HTTP: PUT /posts/{postID}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.posts.Update(r.Context(), p.SubjectID, id, req.Title, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HTTP: DELETE /posts/{postID}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.posts.Delete(r.Context(), p.SubjectID, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
