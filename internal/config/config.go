// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port        int
	BaseURL     string
	CORSOrigins []string

	// HTTP limits
	RequestTimeout     time.Duration
	LongRequestTimeout time.Duration // Analysis and synchronous generation
	RateLimitPerMinute int           // Per client IP
	BlocklistKey       string        // S3 key of a JSON IP blocklist, empty to disable
	IdleShutdown       time.Duration // Stop after this long without traffic, 0 to disable

	// Database
	DatabaseURL string

	// Model selection
	BudgetMode       aimodel.BudgetMode
	TestingMode      bool
	BalancedModel    string // Catalog key used for the balanced role
	CatalogConfigKey string // S3 key for catalog overrides, empty to disable

	// Trend analysis
	MinTrendScore        float64
	MinSearchVolume      float64
	MaxTrendsToStore     int
	TrendRegion          string
	TrendFetchLimit      int
	RawTrendFreshness    time.Duration // Dedup window for unscored trends
	ScoredTrendFreshness time.Duration // Dedup window for scored trends
	SignalFetchTimeout   time.Duration
	SignalBatchDelay     time.Duration
	MomentumRecentWindow int
	AutoGenerate         bool // Queue stored trends for generation

	// Signal sources
	SerpAPIKey               string
	SerpAPIBaseURL           string
	MarketplaceScrapeEnabled bool
	MarketplaceSearchURL     string
	PinterestStubVolume      int // Synthetic volume for the pinterest stub, 0 to mark it unavailable

	// Image generation providers
	ReplicateAPIToken string
	ReplicateBaseURL  string
	GeminiAPIKey      string
	GenerationDelay   time.Duration // Pause between real generation calls
	Styles            []string

	// Storefront
	ShopifyShopDomain  string
	ShopifyAccessToken string
	ShopifyAPIVersion  string

	// Object Storage (Tigris/S3-compatible)
	StorageEnabled   bool
	StorageEndpoint  string // AWS_ENDPOINT_URL_S3 for Tigris
	StorageAccessKey string // AWS_ACCESS_KEY_ID
	StorageSecretKey string // AWS_SECRET_ACCESS_KEY
	StorageBucket    string
	StorageRegion    string
	StoragePublicURL string // Base URL artwork is served from

	// Worker
	WorkerEnabled             bool
	WorkerPollInterval        time.Duration
	WorkerConcurrency         int
	WorkerShutdownGracePeriod time.Duration
	WorkerStaleAfter          time.Duration

	// Cleanup of rejected products
	CleanupEnabled  bool
	CleanupMaxAge   time.Duration
	CleanupInterval time.Duration

	Pricing PricingConfig
}

// DefaultStyles is the style rotation used when STYLES is unset.
var DefaultStyles = []string{"minimalist", "abstract", "geometric", "watercolor", "vintage", "modern", "bohemian", "rustic"}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	budget, err := aimodel.ParseBudgetMode(getEnv("BUDGET_MODE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		DatabaseURL: getEnv("DATABASE_URL", "file:pod.db?_journal=WAL&_timeout=5000"),

		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		LongRequestTimeout: getEnvDuration("LONG_REQUEST_TIMEOUT", 10*time.Minute),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		BlocklistKey:       getEnv("BLOCKLIST_KEY", ""),
		IdleShutdown:       getEnvDuration("IDLE_SHUTDOWN", 0),

		BudgetMode:       budget,
		TestingMode:      getEnvBool("TESTING_MODE", false),
		BalancedModel:    getEnv("BALANCED_MODEL", aimodel.DefaultBalancedModel),
		CatalogConfigKey: getEnv("CATALOG_CONFIG_KEY", ""),

		MinTrendScore:        getEnvFloat("MIN_TREND_SCORE", 0.7),
		MinSearchVolume:      getEnvFloat("MIN_SEARCH_VOLUME", 1000),
		MaxTrendsToStore:     getEnvInt("MAX_TRENDS_TO_STORE", 50),
		TrendRegion:          getEnv("TREND_REGION", "GB"),
		TrendFetchLimit:      getEnvInt("TREND_FETCH_LIMIT", 20),
		RawTrendFreshness:    getEnvDuration("RAW_TREND_FRESHNESS", 24*time.Hour),
		ScoredTrendFreshness: getEnvDuration("SCORED_TREND_FRESHNESS", 7*24*time.Hour),
		SignalFetchTimeout:   getEnvDuration("SIGNAL_FETCH_TIMEOUT", 30*time.Second),
		SignalBatchDelay:     getEnvDuration("SIGNAL_BATCH_DELAY", 2*time.Second),
		MomentumRecentWindow: getEnvInt("MOMENTUM_RECENT_WINDOW", 30),
		AutoGenerate:         getEnvBool("AUTO_GENERATE", false),

		SerpAPIKey:               getEnv("SERPAPI_KEY", ""),
		SerpAPIBaseURL:           getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
		MarketplaceScrapeEnabled: getEnvBool("MARKETPLACE_SCRAPE_ENABLED", false),
		MarketplaceSearchURL:     getEnv("MARKETPLACE_SEARCH_URL", ""),
		PinterestStubVolume:      getEnvInt("PINTEREST_STUB_VOLUME", 0),

		ReplicateAPIToken: getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com"),
		GeminiAPIKey:      getEnvWithFallback("GEMINI_API_KEY", "GOOGLE_API_KEY", ""),
		GenerationDelay:   getEnvDuration("GENERATION_DELAY", 2*time.Second),
		Styles:            getEnvSlice("STYLES", DefaultStyles),

		ShopifyShopDomain:  getEnv("SHOPIFY_SHOP_DOMAIN", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-10"),

		// BUCKET_NAME is set automatically by `fly storage create`
		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageBucket:    getEnvWithFallback("BUCKET_NAME", "STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),

		WorkerEnabled:             getEnvBool("WORKER_ENABLED", true),
		WorkerPollInterval:        getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerConcurrency:         getEnvInt("WORKER_CONCURRENCY", 1),
		WorkerShutdownGracePeriod: getEnvDuration("WORKER_SHUTDOWN_GRACE_PERIOD", 5*time.Minute),
		WorkerStaleAfter:          getEnvDuration("WORKER_STALE_AFTER", 30*time.Minute),

		CleanupEnabled:  getEnvBool("CLEANUP_ENABLED", false),
		CleanupMaxAge:   getEnvDuration("CLEANUP_MAX_AGE", 30*24*time.Hour),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour),

		Pricing: LoadPricingConfig(),
	}
	cfg.StorageEnabled = cfg.StorageBucket != "" && cfg.StorageEndpoint != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if !c.BudgetMode.IsValid() {
		return fmt.Errorf("BUDGET_MODE must be one of %v, got %q", aimodel.ValidBudgetModes(), c.BudgetMode)
	}
	if c.MinTrendScore < 0 {
		return fmt.Errorf("MIN_TREND_SCORE must not be negative")
	}
	if c.MinSearchVolume < 0 {
		return fmt.Errorf("MIN_SEARCH_VOLUME must not be negative")
	}
	if c.MaxTrendsToStore < 0 {
		return fmt.Errorf("MAX_TRENDS_TO_STORE must not be negative")
	}
	if c.RawTrendFreshness < 0 || c.ScoredTrendFreshness < 0 {
		return fmt.Errorf("trend freshness windows must not be negative")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if c.CleanupEnabled && (c.CleanupMaxAge <= 0 || c.CleanupInterval <= 0) {
		return fmt.Errorf("CLEANUP_MAX_AGE and CLEANUP_INTERVAL must be positive")
	}
	if len(c.Styles) == 0 {
		return fmt.Errorf("STYLES must list at least one style")
	}
	return c.Pricing.Validate()
}

// ShopifyEnabled returns true if storefront publishing is configured.
func (c *Config) ShopifyEnabled() bool {
	return c.ShopifyShopDomain != "" && c.ShopifyAccessToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvSlice splits a comma-separated value, trimming and dropping empty entries.
func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}
