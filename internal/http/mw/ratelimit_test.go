package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, method, path, ip string) int {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

// ========================================
// RateLimit Tests
// ========================================

func TestRateLimit_General(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestsPerMinute: 2})(okHandler())

	for i := 0; i < 2; i++ {
		if code := doRequest(h, http.MethodGet, "/api/v1/trends", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, code)
		}
	}
	if code := doRequest(h, http.MethodGet, "/api/v1/trends", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", code)
	}

	// Limits are per IP.
	if code := doRequest(h, http.MethodGet, "/api/v1/trends", "10.0.0.2"); code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", code)
	}
}

func TestRateLimit_Expensive(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		RequestsPerMinute:  100,
		ExpensivePerMinute: 1,
		ExpensivePatterns:  DefaultExpensivePatterns,
	})(okHandler())

	if code := doRequest(h, http.MethodPost, "/api/v1/trends/analyze", "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first analyze status = %d, want 200", code)
	}
	if code := doRequest(h, http.MethodPost, "/api/v1/trends/analyze", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("second analyze status = %d, want 429", code)
	}

	// Cheap endpoints keep the general limit.
	if code := doRequest(h, http.MethodGet, "/api/v1/products/stats", "10.0.0.1"); code != http.StatusOK {
		t.Errorf("stats status = %d, want 200", code)
	}
}

func TestIsExpensive(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/v1/trends/analyze", true},
		{"/api/v1/trends/01HX/generate", true},
		{"/api/v1/trends", false},
		{"/api/v1/models/estimate", false},
	}
	for _, tt := range tests {
		if got := isExpensive(tt.path, DefaultExpensivePatterns); got != tt.want {
			t.Errorf("isExpensive(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
