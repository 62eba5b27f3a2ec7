package aimodel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/pod-pipeline/internal/storage"
)

// CatalogConfig holds configuration for loading the model catalog.
type CatalogConfig struct {
	S3Client    storage.ObjectGetter
	Bucket      string
	Key         string // Object key of the overrides JSON
	BalancedKey string // Mid-tier default (default: flux-pro)
	Logger      *slog.Logger
}

// CatalogFile represents the JSON structure stored in S3.
//
//	{
//	  "balanced_model": "flux-pro",
//	  "models": {"flux-pro": {"cost": 0.05}},
//	  "additional": [{"key": "...", "provider_model_id": "...", ...}]
//	}
type CatalogFile struct {
	BalancedModel string                   `json:"balanced_model,omitempty"`
	Models        map[string]ModelOverride `json:"models,omitempty"`
	Additional    []ModelSpec              `json:"additional,omitempty"`
}

// ModelOverride replaces individual fields of a built-in model.
type ModelOverride struct {
	ProviderModelID *string  `json:"provider_model_id,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	SpeedSeconds    *int     `json:"speed_seconds,omitempty"`
	Quality         *int     `json:"quality,omitempty"`
	TextRendering   *int     `json:"text_rendering,omitempty"`
	Photorealism    *int     `json:"photorealism,omitempty"`
	StyleControl    *int     `json:"style_control,omitempty"`
	BestForStyles   []string `json:"best_for_styles,omitempty"`
}

// LoadCatalog builds the catalog once at startup. Built-in models are merged
// with overrides from S3 when configured. A missing or unreadable object
// falls back to the built-in table; overrides that produce an invalid catalog
// return ErrConfiguration.
func LoadCatalog(ctx context.Context, cfg CatalogConfig) (*Catalog, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "model_catalog")

	if cfg.S3Client == nil || cfg.Key == "" {
		return NewCatalog(defaultModelSpecs, cfg.BalancedKey)
	}

	loader := storage.NewLoader(storage.LoaderConfig{
		Client: cfg.S3Client,
		Bucket: cfg.Bucket,
		Key:    cfg.Key,
		Logger: logger,
	})
	result, err := loader.Fetch(ctx)
	if err != nil || result.NotChanged {
		logger.Info("using built-in model catalog", "reason", err)
		return NewCatalog(defaultModelSpecs, cfg.BalancedKey)
	}

	var file CatalogFile
	if err := json.Unmarshal(result.Data, &file); err != nil {
		return nil, &SelectionError{Err: ErrConfiguration, Field: "catalog", Message: fmt.Sprintf("parse overrides: %v", err)}
	}

	catalog, err := file.Apply(defaultModelSpecs, cfg.BalancedKey)
	if err != nil {
		return nil, err
	}
	catalog.rev = result.ETag

	logger.Info("model catalog loaded from S3",
		"bucket", cfg.Bucket,
		"key", cfg.Key,
		"etag", result.ETag,
		"model_count", catalog.Len(),
		"overrides", len(file.Models),
	)
	return catalog, nil
}

// Apply merges the file onto base and builds a validated catalog.
// balancedKey is used when the file does not name one.
func (f CatalogFile) Apply(base []ModelSpec, balancedKey string) (*Catalog, error) {
	specs := make([]ModelSpec, 0, len(base)+len(f.Additional))
	known := make(map[string]bool, len(base))
	for _, m := range base {
		m = m.clone()
		if o, ok := f.Models[m.Key]; ok {
			o.applyTo(&m)
		}
		known[m.Key] = true
		specs = append(specs, m)
	}
	for key := range f.Models {
		if !known[key] {
			return nil, configurationError("models", key, "override for unknown model")
		}
	}
	specs = append(specs, f.Additional...)

	if f.BalancedModel != "" {
		balancedKey = f.BalancedModel
	}
	return NewCatalog(specs, balancedKey)
}

func (o ModelOverride) applyTo(m *ModelSpec) {
	if o.ProviderModelID != nil {
		m.ProviderModelID = *o.ProviderModelID
	}
	if o.Cost != nil {
		m.Cost = *o.Cost
	}
	if o.SpeedSeconds != nil {
		m.SpeedSeconds = *o.SpeedSeconds
	}
	if o.Quality != nil {
		m.Quality = *o.Quality
	}
	if o.TextRendering != nil {
		m.TextRendering = *o.TextRendering
	}
	if o.Photorealism != nil {
		m.Photorealism = *o.Photorealism
	}
	if o.StyleControl != nil {
		m.StyleControl = *o.StyleControl
	}
	if len(o.BestForStyles) > 0 {
		m.BestForStyles = append([]string(nil), o.BestForStyles...)
	}
}
