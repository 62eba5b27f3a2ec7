// Package models defines the domain models for the pipeline.
package models

import (
	"time"
)

// GenerationStatus tracks artwork generation for a trend. New trends are
// not queued; the worker only claims pending ones.
type GenerationStatus string

const (
	GenerationNew        GenerationStatus = "new"
	GenerationPending    GenerationStatus = "pending"
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Trend origins recorded in metadata.
const (
	TrendOriginRaw    = "raw"
	TrendOriginScored = "scored"
)

// Trend is a persisted keyword worth generating artwork for.
type Trend struct {
	ID               string           `json:"id"`
	Keyword          string           `json:"keyword"`
	SearchVolume     int              `json:"search_volume"`
	TrendScore       float64          `json:"trend_score"`
	Geography        string           `json:"geography"`
	Category         string           `json:"category"`
	Metadata         TrendMetadata    `json:"metadata"`
	GenerationStatus GenerationStatus `json:"generation_status"`
	GenerationError  string           `json:"generation_error,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TrendMetadata records why a keyword was prioritised.
type TrendMetadata struct {
	Origin          string             `json:"origin"`
	Sources         []string           `json:"sources"`
	Rising          bool               `json:"rising"`
	Competition     string             `json:"competition,omitempty"`
	SourceVolumes   map[string]float64 `json:"source_volumes,omitempty"`
	MomentumScore   float64            `json:"momentum_score"`
	SeasonalBoost   float64            `json:"seasonal_boost"`
	Season          string             `json:"season,omitempty"`
	HistoricalBoost float64            `json:"historical_boost"`
	AnalyzedAt      time.Time          `json:"analyzed_at"`

	// DesignsAllocated is how many designs the search volume justifies.
	DesignsAllocated int `json:"designs_allocated"`
}

// DesignsForVolume returns the design allocation for a monthly search volume.
func DesignsForVolume(volume int) int {
	switch {
	case volume >= 50000:
		return 100
	case volume >= 30000:
		return 75
	case volume >= 20000:
		return 50
	case volume >= 10000:
		return 30
	case volume >= 5000:
		return 20
	case volume >= 2000:
		return 10
	default:
		return 5
	}
}

// Artwork is one generated image.
type Artwork struct {
	ID               string    `json:"id"`
	TrendID          string    `json:"trend_id"`
	Style            string    `json:"style"`
	Prompt           string    `json:"prompt"`
	ModelKey         string    `json:"model_key"`
	ProviderModelID  string    `json:"provider_model_id"`
	Cost             float64   `json:"cost"`
	QualityScore     int       `json:"quality_score"`
	Reasoning        []string  `json:"reasoning"`
	StorageKey       string    `json:"storage_key"`
	ImageURL         string    `json:"image_url"`
	GenerationTimeMs int64     `json:"generation_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProductStatus is the approval state of a product.
type ProductStatus string

const (
	ProductPendingApproval ProductStatus = "pending_approval"
	ProductApproved        ProductStatus = "approved"
	ProductRejected        ProductStatus = "rejected"
	ProductPublished       ProductStatus = "published"
)

// Product is a sellable listing built from an artwork.
type Product struct {
	ID              string        `json:"id"`
	ArtworkID       string        `json:"artwork_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	SKU             string        `json:"sku"`
	BasePrice       float64       `json:"base_price"`
	Tags            []string      `json:"tags"`
	Category        string        `json:"category"`
	Status          ProductStatus `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	StorefrontID    string        `json:"storefront_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ProductWithArtwork joins a product with the artwork fields reviewers need.
type ProductWithArtwork struct {
	Product
	ImageURL     string `json:"image_url"`
	Style        string `json:"style"`
	ModelKey     string `json:"model_key"`
	QualityScore int    `json:"quality_score"`
}

// Order is a sale of a product.
type Order struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	OrderValue float64   `json:"order_value"`
	CreatedAt  time.Time `json:"created_at"`
}

// ApprovalStats summarises the approval queue.
type ApprovalStats struct {
	Pending      int     `json:"pending_approval"`
	Approved     int     `json:"approved"`
	Rejected     int     `json:"rejected"`
	Published    int     `json:"published"`
	Total        int     `json:"total_products"`
	ApprovalRate float64 `json:"approval_rate"` // Percent of all products approved or published
}
