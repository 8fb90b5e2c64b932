package auth

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) TokenVerified(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

// captureHandler records what the next handler saw.
type captureHandler struct {
	called    bool
	principal Principal
	ok        bool
}

func (c *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.called = true
	c.principal, c.ok = PrincipalFromContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func newDebugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestAuthenticate_Headers(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Issue(42, RoleMember, time.Hour)
	require.NoError(t, err)
	expired, err := ts.Issue(42, RoleMember, -time.Second)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantOK      bool
		wantOutcome string
	}{
		{"valid bearer", "Bearer " + valid, true, OutcomeOK},
		{"lowercase scheme", "bearer " + valid, true, OutcomeOK},
		{"uppercase scheme", "BEARER " + valid, true, OutcomeOK},
		{"no header", "", false, OutcomeMissing},
		{"basic scheme", "Basic dXNlcjpwYXNz", false, OutcomeMalformed},
		{"scheme only", "Bearer", false, OutcomeMalformed},
		{"empty token", "Bearer    ", false, OutcomeMalformed},
		{"raw token without scheme", valid, false, OutcomeMalformed},
		{"garbage token", "Bearer garbage", false, OutcomeMalformed},
		{"expired token", "Bearer " + expired, false, OutcomeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			obs := &recordingObserver{}
			next := &captureHandler{}
			h := NewAuthenticator(ts, newDebugLogger(&logs), obs).Middleware(next)

			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			// The middleware never rejects: the next handler always runs.
			assert.True(t, next.called)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantOK, next.ok)
			if tt.wantOK {
				assert.Equal(t, Principal{SubjectID: 42, Role: RoleMember}, next.principal)
			} else {
				assert.Contains(t, logs.String(), "kind="+tt.wantOutcome)
			}
			assert.Equal(t, []string{tt.wantOutcome}, obs.outcomes)
		})
	}
}

func TestAuthenticate_NeverLogsToken(t *testing.T) {
	ts := newTestTokenService(t)
	expired, err := ts.Issue(42, RoleMember, -time.Second)
	require.NoError(t, err)

	var logs bytes.Buffer
	h := Authenticate(ts, newDebugLogger(&logs))(&captureHandler{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotEmpty(t, logs.String())
	assert.False(t, strings.Contains(logs.String(), expired), "log output must not contain the token")
}

func TestPrincipalFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := PrincipalFromContext(req.Context())
	assert.False(t, ok)
}
