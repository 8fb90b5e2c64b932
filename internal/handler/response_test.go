package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/community-forum/internal/apperror"
)

func TestErrorCategory(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantCategory string
	}{
		{"unauthorized", apperror.Unauthorized("nope"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("post", "1"), http.StatusNotFound, "not_found"},
		{"duplicate like", apperror.DuplicateLike(1, 2), http.StatusConflict, "duplicate_like"},
		{"conflict", apperror.Conflict("user", "email", "a@x.com"), http.StatusConflict, "conflict"},
		{"validation", apperror.ValidationFailed("title", "required"), http.StatusBadRequest, "validation_error"},
		{"hashing", apperror.Hashing(errors.New("boom")), http.StatusInternalServerError, "internal_error"},
		{"plain", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
		{"wrapped", fmt.Errorf("service: %w", apperror.NotFound("comment", "3")), http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, category := errorCategory(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCategory, category)
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	writeError(rec, req, logger, apperror.Hashing(errors.New("bcrypt: salt exploded")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "salt exploded")
	assert.Contains(t, logs.String(), "salt exploded")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Error)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"name":"x","admin":true}`, true},
		{"two objects", `{"name":"x"}{"name":"y"}`, true},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "x", dst.Name)
		})
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	var gotErr error
	r.Get("/posts/{postID}", func(w http.ResponseWriter, req *http.Request) {
		got, gotErr = pathID(req, "postID")
	})

	for raw, want := range map[string]int64{"42": 42, "0": 0, "-1": 0, "abc": 0, "99999999999999999999": 0} {
		got, gotErr = 0, nil
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/"+raw, nil))
		if want == 0 {
			assert.ErrorIs(t, gotErr, apperror.ErrValidation, raw)
			continue
		}
		require.NoError(t, gotErr, raw)
		assert.Equal(t, want, got)
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts?page=3&size=abc", nil)
	assert.Equal(t, 3, queryInt(req, "page", 1))
	assert.Equal(t, 20, queryInt(req, "size", 20))
	assert.Equal(t, 7, queryInt(req, "missing", 7))
}

func TestPrincipal_MissingIsUnauthorized(t *testing.T) {
	_, err := principal(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
