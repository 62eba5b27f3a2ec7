package mw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// panicWithStack captures a panic value along with its stack trace.
type panicWithStack struct {
	value any
	stack []byte
}

// TimeoutConfig defines timeout behavior for different path patterns.
type TimeoutConfig struct {
	// Default timeout for most endpoints
	Default time.Duration
	// Long timeout for analysis runs and synchronous generation
	Long time.Duration
	// Path substrings that get the Long timeout
	LongPatterns []string
}

// DefaultLongPatterns are the paths that call signal sources or image providers.
var DefaultLongPatterns = []string{"/trends/analyze", "/generate"}

// Timeout returns a middleware that cancels the request context after the
// configured timeout and answers 504 if the handler has not finished.
func Timeout(cfg TimeoutConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timeout := cfg.Default
			for _, pattern := range cfg.LongPatterns {
				if strings.Contains(r.URL.Path, pattern) {
					timeout = cfg.Long
					break
				}
			}
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			panicChan := make(chan *panicWithStack, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- &panicWithStack{value: p, stack: debug.Stack()}
					}
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				return
			case p := <-panicChan:
				// Re-panic so the recoverer reports the handler's stack.
				panic(fmt.Sprintf("%v\n\nOriginal stack trace:\n%s", p.value, p.stack))
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					w.Header().Set("Content-Type", "application/problem+json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = fmt.Fprintf(w, `{"title":"Gateway Timeout","status":504,"detail":"request exceeded %s"}`, timeout)
				}
			}
		})
	}
}
