package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/pod-pipeline/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("POD Pipeline API", version.Get().Short())
	cfg.Info.Description = "Finds trending keywords, generates print-on-demand artwork with the best-fit image model, and publishes approved products."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Models", Description: "Image model catalog, selection and cost estimates", Extensions: map[string]any{"x-displayName": "Models"}},
		{Name: "Trends", Description: "Trend analysis and artwork generation", Extensions: map[string]any{"x-displayName": "Trends"}},
		{Name: "Products", Description: "Product review and publishing", Extensions: map[string]any{"x-displayName": "Products"}},
		{Name: "Health", Description: "System health and status", Extensions: map[string]any{"x-displayName": "Health"}},
	}

	return cfg
}
