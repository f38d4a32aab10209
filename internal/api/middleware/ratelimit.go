package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

// KeyFunc derives the rate limit key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by remote address without the port. Run chi's
// RealIP middleware first when behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limiter's budget with 429 and a
// Retry-After header. A failing limiter lets the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), scope+":"+key(r))
			if err != nil {
				logger.FromContextOrDefault(r.Context(), slog.Default()).
					Warn("rate limiter unavailable, allowing request",
						slog.String("scope", scope),
						slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retry := int(math.Ceil(result.RetryAfter(time.Now()).Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
