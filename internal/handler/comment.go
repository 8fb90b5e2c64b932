package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/community-forum/internal/repository"
	"github.com/sakif/community-forum/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Content string `json:"content"`
}

// HTTP: GET /posts/{postID}/comments?page=1&size=20
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	list, err := h.comments.ListByPost(r.Context(), postID,
		queryInt(r, "page", 1),
		queryInt(r, "size", repository.DefaultPageSize),
	)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HTTP: POST /posts/{postID}/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.comments.Create(r.Context(), p.SubjectID, postID, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HTTP: PUT /comments/{commentID}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "commentID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.comments.Update(r.Context(), p.SubjectID, id, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HTTP: DELETE /comments/{commentID}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r, "commentID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.comments.Delete(r.Context(), p.SubjectID, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
