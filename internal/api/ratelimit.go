package api

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/logger"
	"github.com/simmerapp/simmer-server/internal/ratelimit"
)

// RateLimitMiddleware creates a middleware that rate limits requests by client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if ok, wait := limiter.Check(key); !ok {
				log := logger.FromContext(r.Context(), base)
				log.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
					"retry_after", wait,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", retryAfter(wait), log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimited is the huma counterpart of RateLimitMiddleware for JSON auth operations.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	key := clientFromContext(ctx.Context()).IPAddress
	if ok, wait := s.authRateLimiter.Check(key); !ok {
		logger.FromContext(ctx.Context(), s.logger).Warn("Rate limit exceeded", "ip", key, "path", ctx.URL().Path)
		ctx.SetHeader("Retry-After", retryAfter(wait))
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}
	next(ctx)
}

// retryAfter formats a wait as whole seconds for the Retry-After header, rounding up.
func retryAfter(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	return strconv.Itoa(max(secs, 1))
}

// clientIP returns the client address without its port.
// middleware.RealIP has already replaced RemoteAddr with X-Real-IP or X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientInfo describes the caller for session bookkeeping.
func clientInfo(r *http.Request) auth.ClientInfo {
	return auth.ClientInfo{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}.Normalized()
}
