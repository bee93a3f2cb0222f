package api

import (
	"net/http"

	"github.com/angelarchive/archive-server/internal/http/response"
	"github.com/angelarchive/archive-server/internal/ratelimit"
)

// Per-IP request budgets over a 15 minute window.
const rateWindowSeconds = 15 * 60

// limiters holds the per-IP buckets protecting the API. Credential guessing
// gets the tightest bucket, collection writes and exports a moderate one.
type limiters struct {
	general *ratelimit.KeyedLimiter
	auth    *ratelimit.KeyedLimiter
	write   *ratelimit.KeyedLimiter
}

func newLimiters() *limiters {
	return &limiters{
		general: ratelimit.PerWindow(200, rateWindowSeconds),
		auth:    ratelimit.PerWindow(5, rateWindowSeconds),
		write:   ratelimit.PerWindow(30, rateWindowSeconds),
	}
}

// limitBy returns middleware enforcing the given bucket, keyed by client IP.
// Returns 429 with a retry hint when the limit is exceeded.
func (s *Server) limitBy(limiter *ratelimit.KeyedLimiter, bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.cfg.RateLimit.Disable {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				s.logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
					"bucket", bucket,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", "15 minutes", s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
