package config

import (
	"fmt"
	"slices"

	"github.com/jmylchreest/pod-pipeline/internal/products"
)

// PricingConfig controls which product listings are created per artwork.
type PricingConfig struct {
	// Formats are the canvas format keys listed for each artwork.
	Formats []string

	// Dimension is the preferred size. Formats that do not offer it use
	// their middle size instead.
	Dimension string

	// DefaultMarkup is applied on top of the size table (0.25 = 25%).
	DefaultMarkup float64

	// FormatMarkup defines per-format markup overrides.
	FormatMarkup map[string]float64
}

// DefaultPricingConfig returns the default pricing configuration.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Formats:       []string{products.FormatSingle},
		Dimension:     "18x24",
		DefaultMarkup: 0,
		FormatMarkup:  map[string]float64{},
	}
}

// LoadPricingConfig reads PRODUCT_FORMATS, PRODUCT_DIMENSION and PRICE_MARKUP.
func LoadPricingConfig() PricingConfig {
	cfg := DefaultPricingConfig()
	cfg.Formats = getEnvSlice("PRODUCT_FORMATS", cfg.Formats)
	cfg.Dimension = getEnv("PRODUCT_DIMENSION", cfg.Dimension)
	cfg.DefaultMarkup = getEnvFloat("PRICE_MARKUP", cfg.DefaultMarkup)
	return cfg
}

// Validate rejects unknown formats and negative markups.
func (c PricingConfig) Validate() error {
	if len(c.Formats) == 0 {
		return fmt.Errorf("PRODUCT_FORMATS must list at least one format")
	}
	for _, f := range c.Formats {
		if _, ok := products.FormatByKey(f); !ok {
			return fmt.Errorf("unknown product format %q", f)
		}
	}
	if c.DefaultMarkup < 0 {
		return fmt.Errorf("PRICE_MARKUP must not be negative")
	}
	for f, m := range c.FormatMarkup {
		if m < 0 {
			return fmt.Errorf("markup for %s must not be negative", f)
		}
	}
	return nil
}

// GetMarkup returns the markup for a format, falling back to default.
func (c PricingConfig) GetMarkup(format string) float64 {
	if markup, ok := c.FormatMarkup[format]; ok {
		return markup
	}
	return c.DefaultMarkup
}

// DimensionFor returns the size to list for a format.
func (c PricingConfig) DimensionFor(format products.CanvasFormat) string {
	if slices.Contains(format.Dimensions, c.Dimension) {
		return c.Dimension
	}
	if len(format.Dimensions) == 0 {
		return c.Dimension
	}
	return format.Dimensions[len(format.Dimensions)/2]
}
