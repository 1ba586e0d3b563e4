package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/ratelimit"
)

func TestEnvelopeTransformer(t *testing.T) {
	t.Run("success body", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "200", map[string]string{"name": "Soup"})
		require.NoError(t, err)
		env := out.(response.Envelope)
		assert.True(t, env.Success)
		assert.Equal(t, EnvelopeVersion, env.Version)
		assert.Equal(t, map[string]string{"name": "Soup"}, env.Data)
	})

	t.Run("api error", func(t *testing.T) {
		apiErr := &APIError{status: http.StatusConflict, Code: "ALREADY_EXISTS", Message: "email taken"}
		out, err := EnvelopeTransformer(nil, "409", apiErr)
		require.NoError(t, err)
		env := out.(response.Envelope)
		assert.False(t, env.Success)
		assert.Equal(t, "ALREADY_EXISTS", env.Code)
		assert.Equal(t, "email taken", env.Error)
	})

	t.Run("plain error", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "404", errors.New("gone"))
		require.NoError(t, err)
		env := out.(response.Envelope)
		assert.Equal(t, "NOT_FOUND", env.Code)
		assert.Equal(t, "gone", env.Error)
	})

	t.Run("already wrapped", func(t *testing.T) {
		in := response.Fail("CONFLICT", "busy", nil)
		out, err := EnvelopeTransformer(nil, "409", in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestUnknownAPIRoute_ReturnsEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/nope")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestResponsesAreNotCached(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/tags")

	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.PerMinute(1)
	t.Cleanup(limiter.Stop)

	handler := RateLimitMiddleware(limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000").Code)

	rec := send("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	env := decode[any](t, rec.Body.Bytes())
	assert.Equal(t, "RATE_LIMITED", env.Code)

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5000").Code, "limits are per client")
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"/recipes/abc":               "/recipes/abc",
		"/search?q=soup":             "/search?q=soup",
		"":                           "/dashboard",
		"https://evil.example/steal": "/steal",
		"//evil.example":             "/",
		"/\\evil.example":            "/dashboard",
		"javascript:alert(1)":        "/dashboard",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirect(in), "input %q", in)
	}
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, "1", retryAfter(0))
	assert.Equal(t, "1", retryAfter(200*time.Millisecond))
	assert.Equal(t, "30", retryAfter(29*time.Second+time.Millisecond))
	assert.Equal(t, "60", retryAfter(time.Minute))
}
