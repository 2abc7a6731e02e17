package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	keyFunc        KeyFunc
	logger         *slog.Logger
	onLimitReached func(w http.ResponseWriter, r *http.Request, result *Result)
}

// WithKeyFunc replaces the default DeriveKey derivation.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.keyFunc = fn
		}
	}
}

// WithLogger sets the logger for degraded-mode and refund-failure events.
func WithLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithOnLimitReached replaces the default 429 JSON response.
func WithOnLimitReached(fn func(w http.ResponseWriter, r *http.Request, result *Result)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onLimitReached = fn
		}
	}
}

// Middleware gates requests through the limiter before any handler work runs.
//
// Every response carries the ceiling, remaining allowance, window size and
// reset time; denials get a 429 with a structured JSON body. A store failure
// fails open and is logged as a degraded-mode event.
//
// When the policy exempts an outcome class from counting, the downstream
// response status is captured and the admission increment is refunded after
// the handler completes.
func Middleware(limiter *Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		keyFunc: DeriveKey,
		logger:  slog.Default(),
	}
	cfg.onLimitReached = func(w http.ResponseWriter, r *http.Request, result *Result) {
		writeLimitExceeded(w, limiter.Config(), result)
	}

	for _, opt := range opts {
		opt(cfg)
	}

	policy := limiter.Config()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.logger.WarnContext(r.Context(), "rate limiter degraded, failing open",
					slog.String("key", key),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, policy, result)

			if !result.Allowed {
				cfg.onLimitReached(w, r, result)
				return
			}

			if !policy.SkipSuccessful && !policy.SkipFailed {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			succeeded := rec.status < http.StatusBadRequest
			if (succeeded && policy.SkipSuccessful) || (!succeeded && policy.SkipFailed) {
				if err := limiter.Refund(r.Context(), key); err != nil {
					cfg.logger.WarnContext(r.Context(), "rate limit refund failed",
						slog.String("key", key),
						slog.Any("error", err),
					)
				}
			}
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, policy Config, result *Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	h.Set("X-RateLimit-Window", strconv.Itoa(int(policy.Window.Seconds())))
}

type limitExceededResponse struct {
	Success   bool                `json:"success"`
	Error     string              `json:"error"`
	Details   limitExceededDetail `json:"details"`
	Timestamp string              `json:"timestamp"`
}

type limitExceededDetail struct {
	Limit      int   `json:"limit"`
	Window     int   `json:"window"`     // seconds
	ResetTime  int64 `json:"resetTime"`  // epoch millis
	RetryAfter int   `json:"retryAfter"` // seconds
}

func writeLimitExceeded(w http.ResponseWriter, policy Config, result *Result) {
	retryAfter := int(result.RetryAfter().Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(limitExceededResponse{
		Success: false,
		Error:   "rate limit exceeded",
		Details: limitExceededDetail{
			Limit:      result.Limit,
			Window:     int(policy.Window.Seconds()),
			ResetTime:  result.ResetAt.UnixMilli(),
			RetryAfter: retryAfter,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// statusRecorder captures the status code written by the downstream handler
// so the outcome-based counting exemptions can be applied afterwards.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController, so
// streaming and hijacking handlers keep working behind the wrapper.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
