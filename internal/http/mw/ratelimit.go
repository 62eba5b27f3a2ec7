package mw

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// RequestsPerMinute is the per-IP limit for all requests.
	RequestsPerMinute int
	// ExpensivePerMinute is the per-IP limit for paths that call paid
	// providers. 0 applies only the general limit.
	ExpensivePerMinute int
	// ExpensivePatterns are path substrings that count against ExpensivePerMinute.
	ExpensivePatterns []string
}

// DefaultExpensivePatterns covers trend analysis and generation.
var DefaultExpensivePatterns = []string{"/trends/analyze", "/generate"}

// RateLimit returns a middleware that rate limits by client IP. Requests to
// expensive paths are checked against both limits.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	general := httprate.NewRateLimiter(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP))

	var expensive *httprate.RateLimiter
	if cfg.ExpensivePerMinute > 0 {
		expensive = httprate.NewRateLimiter(cfg.ExpensivePerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint))
	}

	return func(next http.Handler) http.Handler {
		limited := general.Handler(next)
		if expensive == nil {
			return limited
		}
		expensiveLimited := general.Handler(expensive.Handler(next))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExpensive(r.URL.Path, cfg.ExpensivePatterns) {
				expensiveLimited.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func isExpensive(path string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
