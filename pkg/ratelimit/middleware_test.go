package ratelimit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vaultguard/pkg/logger"
)

func newTestLimiter(t *testing.T, cfg Config) *Limiter {
	t.Helper()

	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := New(store, cfg)
	require.NoError(t, err)
	return limiter
}

func fixedKey(key string) KeyFunc {
	return func(*http.Request) string { return key }
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Headers(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 5})
	handler := Middleware(limiter, WithKeyFunc(fixedKey("k")))(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Window"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestMiddleware_DeniedResponse(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 1})
	handler := Middleware(limiter, WithKeyFunc(fixedKey("k")))(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Details struct {
			Limit      int   `json:"limit"`
			Window     int   `json:"window"`
			ResetTime  int64 `json:"resetTime"`
			RetryAfter int   `json:"retryAfter"`
		} `json:"details"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, 1, body.Details.Limit)
	assert.Equal(t, 60, body.Details.Window)
	assert.Greater(t, body.Details.ResetTime, time.Now().UnixMilli())
	assert.GreaterOrEqual(t, body.Details.RetryAfter, 1)
	assert.NotEmpty(t, body.Timestamp)
}

func TestMiddleware_EmptyKeyBypasses(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 1})
	handler := Middleware(limiter, WithKeyFunc(fixedKey("")))(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestMiddleware_FailsOpenOnStoreError(t *testing.T) {
	t.Parallel()

	limiter, err := New(&failingStore{err: errors.New("backend down")}, Config{Window: time.Minute, Max: 1})
	require.NoError(t, err)

	var logBuf bytes.Buffer
	log := logger.New(logger.WithOutput(&logBuf), logger.WithFormat(logger.FormatText))

	handler := Middleware(limiter,
		WithKeyFunc(fixedKey("k")),
		WithLogger(log),
	)(okHandler())

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "degraded limiter must not block traffic")
	}

	assert.Contains(t, logBuf.String(), "failing open")
}

func TestMiddleware_SkipFailedRefundsFailures(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 1, SkipFailed: true})

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := Middleware(limiter, WithKeyFunc(fixedKey("k")))(failing)

	// Every attempt fails downstream, so none of them consumes quota.
	for range 4 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/upload", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}
}

func TestMiddleware_SkipSuccessfulRefundsSuccesses(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 2, SkipSuccessful: true})

	status := http.StatusOK
	handler := Middleware(limiter, WithKeyFunc(fixedKey("k")))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

	// Successful logins never count toward the brute-force brake.
	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Failures do count.
	status = http.StatusUnauthorized
	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestMiddleware_DefaultKeyDerivation(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 1})
	handler := Middleware(limiter)(okHandler())

	// Different forwarded addresses land in different buckets.
	req1 := httptest.NewRequest("GET", "/", nil)
	req1.Header.Set("X-Forwarded-For", "203.0.113.7")
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.Header.Set("X-Forwarded-For", "203.0.113.8")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req1)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req2)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Same address exhausts its own bucket.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req1)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// The outcome-capturing wrapper must not hide the underlying writer's
// streaming capabilities from handlers behind a Skip* policy.
func TestMiddleware_StreamingPassThrough(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 5, SkipFailed: true})

	var flushErr error
	handler := Middleware(limiter, WithKeyFunc(fixedKey("k")))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("chunk"))
			flushErr = http.NewResponseController(w).Flush()
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/stream", nil))

	require.NoError(t, flushErr)
	assert.True(t, rec.Flushed)
}

func TestMiddleware_CustomLimitHandler(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, Config{Window: time.Minute, Max: 1})

	handler := Middleware(limiter,
		WithKeyFunc(fixedKey("k")),
		WithOnLimitReached(func(w http.ResponseWriter, r *http.Request, result *Result) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
	)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// failingStore simulates an unreachable durable backend.
type failingStore struct {
	err error
}

func (s *failingStore) Increment(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, s.err
}
func (s *failingStore) Decrement(context.Context, string) error { return s.err }
func (s *failingStore) Get(context.Context, string) (int64, time.Time, error) {
	return 0, time.Time{}, s.err
}
func (s *failingStore) Delete(context.Context, string) error { return s.err }
func (s *failingStore) Sweep(context.Context) (int64, error) { return 0, s.err }
