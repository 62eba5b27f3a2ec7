package config

import (
	"testing"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/products"
)

// ========================================
// Helper Functions Tests
// ========================================

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_GET_ENV", "test_value")
	t.Setenv("TEST_EMPTY_VAR", "")

	if got := getEnv("TEST_GET_ENV", "default"); got != "test_value" {
		t.Errorf("getEnv() = %q, want %q", got, "test_value")
	}
	if got := getEnv("TEST_MISSING_VAR", "default_value"); got != "default_value" {
		t.Errorf("getEnv() = %q, want %q", got, "default_value")
	}
	if got := getEnv("TEST_EMPTY_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want %q (empty should use default)", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_INVALID", "not-a-number")
	t.Setenv("TEST_INT_NEG", "-5")

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"TEST_INT", 0, 42},
		{"TEST_INT_INVALID", 99, 99},
		{"TEST_INT_MISSING", 100, 100},
		{"TEST_INT_NEG", 0, -5},
	}
	for _, tt := range tests {
		if got := getEnvInt(tt.key, tt.def); got != tt.want {
			t.Errorf("getEnvInt(%s) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.85")
	t.Setenv("TEST_FLOAT_INVALID", "high")

	if got := getEnvFloat("TEST_FLOAT", 0); got != 0.85 {
		t.Errorf("getEnvFloat() = %v, want 0.85", got)
	}
	if got := getEnvFloat("TEST_FLOAT_INVALID", 0.7); got != 0.7 {
		t.Errorf("getEnvFloat() = %v, want 0.7 (default)", got)
	}
	if got := getEnvFloat("TEST_FLOAT_MISSING", 1000); got != 1000 {
		t.Errorf("getEnvFloat() = %v, want 1000 (default)", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes"} {
		t.Setenv("TEST_BOOL", v)
		if !getEnvBool("TEST_BOOL", false) {
			t.Errorf("getEnvBool(%q) = false, want true", v)
		}
	}
	t.Setenv("TEST_BOOL", "nope")
	if getEnvBool("TEST_BOOL", true) {
		t.Error("getEnvBool(nope) = true, want false")
	}
	if !getEnvBool("TEST_BOOL_MISSING", true) {
		t.Error("getEnvBool(missing) should return the default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "168h")
	t.Setenv("TEST_DURATION_INVALID", "a week")

	if got := getEnvDuration("TEST_DURATION", 0); got != 168*time.Hour {
		t.Errorf("getEnvDuration() = %v, want 168h", got)
	}
	if got := getEnvDuration("TEST_DURATION_INVALID", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration() = %v, want 1m (default)", got)
	}
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", " a, b ,,c ")

	got := getEnvSlice("TEST_SLICE", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("getEnvSlice() = %v, want [a b c]", got)
	}
	if got := getEnvSlice("TEST_SLICE_MISSING", []string{"x", "y"}); len(got) != 2 {
		t.Errorf("getEnvSlice() length = %d, want 2 (default)", len(got))
	}
}

func TestGetEnvWithFallback(t *testing.T) {
	t.Setenv("FALLBACK_KEY", "fallback_value")

	if got := getEnvWithFallback("MISSING_PRIMARY", "FALLBACK_KEY", "default"); got != "fallback_value" {
		t.Errorf("getEnvWithFallback() = %q, want %q", got, "fallback_value")
	}
	t.Setenv("PRIMARY_KEY", "primary_value")
	if got := getEnvWithFallback("PRIMARY_KEY", "FALLBACK_KEY", "default"); got != "primary_value" {
		t.Errorf("getEnvWithFallback() = %q, want %q", got, "primary_value")
	}
	if got := getEnvWithFallback("MISSING1", "MISSING2", "the_default"); got != "the_default" {
		t.Errorf("getEnvWithFallback() = %q, want %q", got, "the_default")
	}
}

// ========================================
// Load / Validate Tests
// ========================================

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BUDGET_MODE", "")
	t.Setenv("MIN_TREND_SCORE", "")
	t.Setenv("STYLES", "")
	t.Setenv("PRODUCT_FORMATS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BudgetMode != aimodel.BudgetBalanced {
		t.Errorf("BudgetMode = %q, want balanced", cfg.BudgetMode)
	}
	if cfg.MinTrendScore != 0.7 || cfg.MinSearchVolume != 1000 || cfg.MaxTrendsToStore != 50 {
		t.Errorf("thresholds = %v/%v/%d, want 0.7/1000/50", cfg.MinTrendScore, cfg.MinSearchVolume, cfg.MaxTrendsToStore)
	}
	if cfg.RawTrendFreshness != 24*time.Hour || cfg.ScoredTrendFreshness != 7*24*time.Hour {
		t.Errorf("freshness = %v/%v, want 24h/168h", cfg.RawTrendFreshness, cfg.ScoredTrendFreshness)
	}
	if cfg.MomentumRecentWindow != 30 {
		t.Errorf("MomentumRecentWindow = %d, want 30", cfg.MomentumRecentWindow)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.RateLimitPerMinute != 100 || cfg.IdleShutdown != 0 {
		t.Errorf("http limits = %v/%d/%v", cfg.RequestTimeout, cfg.RateLimitPerMinute, cfg.IdleShutdown)
	}
	if cfg.CleanupEnabled || cfg.CleanupMaxAge != 30*24*time.Hour {
		t.Errorf("cleanup = %v/%v, want disabled/720h", cfg.CleanupEnabled, cfg.CleanupMaxAge)
	}
	if len(cfg.Styles) != len(DefaultStyles) {
		t.Errorf("Styles = %v, want defaults", cfg.Styles)
	}
}

func TestLoad_RejectsUnknownBudgetMode(t *testing.T) {
	t.Setenv("BUDGET_MODE", "premium")
	if _, err := Load(); !aimodel.IsValidation(err) {
		t.Errorf("Load() error = %v, want validation error", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BudgetMode:         aimodel.BudgetCheap,
			WorkerConcurrency:  1,
			RateLimitPerMinute: 60,
			Styles:             []string{"minimalist"},
			Pricing:            DefaultPricingConfig(),
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative score", func(c *Config) { c.MinTrendScore = -1 }},
		{"negative volume", func(c *Config) { c.MinSearchVolume = -1 }},
		{"negative freshness", func(c *Config) { c.RawTrendFreshness = -time.Hour }},
		{"no styles", func(c *Config) { c.Styles = nil }},
		{"zero workers", func(c *Config) { c.WorkerConcurrency = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }},
		{"cleanup without interval", func(c *Config) { c.CleanupEnabled, c.CleanupMaxAge = true, time.Hour }},
		{"bad budget", func(c *Config) { c.BudgetMode = "premium" }},
		{"unknown format", func(c *Config) { c.Pricing.Formats = []string{"poster"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestConfig_ShopifyEnabled(t *testing.T) {
	cfg := &Config{ShopifyShopDomain: "shop.myshopify.com"}
	if cfg.ShopifyEnabled() {
		t.Error("ShopifyEnabled() should need an access token")
	}
	cfg.ShopifyAccessToken = "shpat_x"
	if !cfg.ShopifyEnabled() {
		t.Error("ShopifyEnabled() = false, want true")
	}
}

// ========================================
// Pricing Tests
// ========================================

func TestPricingConfig(t *testing.T) {
	cfg := DefaultPricingConfig()
	cfg.FormatMarkup[products.FormatTriptych] = 0.1
	cfg.DefaultMarkup = 0.2

	if got := cfg.GetMarkup(products.FormatTriptych); got != 0.1 {
		t.Errorf("GetMarkup(triptych) = %v, want 0.1", got)
	}
	if got := cfg.GetMarkup(products.FormatSingle); got != 0.2 {
		t.Errorf("GetMarkup(single) = %v, want 0.2 (default)", got)
	}

	single, _ := products.FormatByKey(products.FormatSingle)
	if got := cfg.DimensionFor(single); got != "18x24" {
		t.Errorf("DimensionFor(single) = %q, want 18x24", got)
	}
	diptych, _ := products.FormatByKey(products.FormatDiptych)
	if got := cfg.DimensionFor(diptych); got != "16x20" {
		t.Errorf("DimensionFor(diptych) = %q, want 16x20", got)
	}
}
