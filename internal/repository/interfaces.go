// Package repository defines repository interfaces for data access.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
)

// TrendRepository defines methods for trend data access.
type TrendRepository interface {
	Insert(ctx context.Context, trend *models.Trend) error
	GetByID(ctx context.Context, id string) (*models.Trend, error)
	// FindByKeyword returns the newest trend whose keyword matches case-insensitively
	// and was created within window of now, or nil.
	FindByKeyword(ctx context.Context, keyword string, window time.Duration) (*models.Trend, error)
	// ListRecent returns trends created since the given time, best score first.
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.Trend, error)
	// Enqueue marks a trend pending generation. Returns false if the trend does
	// not exist or is already being processed.
	Enqueue(ctx context.Context, id string) (bool, error)
	// ClaimPendingGeneration atomically moves the best pending trend to processing.
	ClaimPendingGeneration(ctx context.Context) (*models.Trend, error)
	UpdateStatus(ctx context.Context, id string, status models.GenerationStatus, errMsg string) error
	// ResetStaleProcessing marks trends stuck in processing longer than maxAge as failed.
	ResetStaleProcessing(ctx context.Context, maxAge time.Duration) (int64, error)
}

// ArtworkRepository defines methods for artwork data access.
type ArtworkRepository interface {
	Insert(ctx context.Context, artwork *models.Artwork) error
	GetByID(ctx context.Context, id string) (*models.Artwork, error)
	ListByTrend(ctx context.Context, trendID string) ([]*models.Artwork, error)
	// DeleteOrphaned removes artwork created before the cutoff that no product
	// references. It returns how many rows went and the storage keys no
	// remaining artwork uses.
	DeleteOrphaned(ctx context.Context, before time.Time) (int, []string, error)
}

// ProductRepository defines methods for product data access.
type ProductRepository interface {
	Insert(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListByStatus(ctx context.Context, status models.ProductStatus, limit int) ([]*models.ProductWithArtwork, error)
	// UpdateStatus changes the approval status. Published products are final;
	// returns false when no product was changed.
	UpdateStatus(ctx context.Context, id string, status models.ProductStatus, reason string) (bool, error)
	// UpdateStatusBatch applies UpdateStatus to several products and returns how many changed.
	UpdateStatusBatch(ctx context.Context, ids []string, status models.ProductStatus) (int64, error)
	MarkPublished(ctx context.Context, id, storefrontID string) error
	Stats(ctx context.Context) (*models.ApprovalStats, error)
	// DeleteByStatusBefore removes products in status last updated before the cutoff.
	DeleteByStatusBefore(ctx context.Context, status models.ProductStatus, before time.Time) (int64, error)
}

// OrderRepository defines methods for order data access.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
}

// SalesPerformance is aggregated order history for one keyword.
type SalesPerformance struct {
	Keyword          string
	TotalOrders      int
	AvgOrderValue    float64
	PerformanceScore float64
}

// SalesRepository reports historical sales by trend keyword.
type SalesRepository interface {
	// PerformanceByKeyword returns performance keyed by lowercased keyword,
	// covering only keywords with at least one order.
	PerformanceByKeyword(ctx context.Context, keywords []string) (map[string]SalesPerformance, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Trend   TrendRepository
	Artwork ArtworkRepository
	Product ProductRepository
	Order   OrderRepository
	Sales   SalesRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	orders := NewSQLiteOrderRepository(db)
	return &Repositories{
		Trend:   NewSQLiteTrendRepository(db),
		Artwork: NewSQLiteArtworkRepository(db),
		Product: NewSQLiteProductRepository(db),
		Order:   orders,
		Sales:   orders,
	}
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// formatTime stores times in UTC so lexical comparison in SQL matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
