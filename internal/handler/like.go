package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/community-forum/internal/auth"
	"github.com/sakif/community-forum/internal/service"
)

// LikeHandler exposes the like toggle and per-post like stats.
//
// Liking twice is a 409 duplicate_like and unliking twice is a 404, so a
// client that retries can tell its first attempt already landed.
type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, logger: logger}
}

// HTTP: POST /posts/{postID}/like
func (h *LikeHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
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

	like, err := h.likes.AddLike(r.Context(), p.SubjectID, postID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, like)
}

// HTTP: DELETE /posts/{postID}/like
func (h *LikeHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
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

	if err := h.likes.RemoveLike(r.Context(), p.SubjectID, postID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStats is public; userLiked is only filled in for an authenticated
// caller.
//
// HTTP: GET /posts/{postID}/likes
func (h *LikeHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, ok := auth.PrincipalFromContext(r.Context())
	stats, err := h.likes.Stats(r.Context(), postID, p.SubjectID, ok)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
