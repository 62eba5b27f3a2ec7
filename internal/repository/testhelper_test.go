package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/database/migrations"
	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/oklog/ulid/v2"
	_ "github.com/tursodatabase/go-libsql"
)

// setupTestDB creates an in-memory SQLite database for testing.
// It runs migrations and returns a database connection that will be cleaned up
// when the test completes.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Each pooled connection to :memory: would see its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories using a test database.
func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	return NewRepositories(setupTestDB(t))
}

// insertTestTrend inserts a trend created at the given time.
func insertTestTrend(t *testing.T, repos *Repositories, keyword string, score float64, createdAt time.Time) *models.Trend {
	t.Helper()
	trend := &models.Trend{
		ID:           ulid.Make().String(),
		Keyword:      keyword,
		SearchVolume: 5000,
		TrendScore:   score,
		Geography:    "GB",
		Category:     "general",
		Metadata:     models.TrendMetadata{Origin: models.TrendOriginScored, Sources: []string{"google_trends"}},
		CreatedAt:    createdAt,
	}
	if err := repos.Trend.Insert(t.Context(), trend); err != nil {
		t.Fatalf("failed to insert test trend: %v", err)
	}
	return trend
}

// insertTestProduct inserts an artwork for the trend and a product for that artwork.
func insertTestProduct(t *testing.T, repos *Repositories, trendID string, status models.ProductStatus) *models.Product {
	t.Helper()
	ctx := t.Context()

	artwork := &models.Artwork{
		ID:              ulid.Make().String(),
		TrendID:         trendID,
		Style:           "minimalist",
		Prompt:          "test prompt",
		ModelKey:        "flux-schnell",
		ProviderModelID: "black-forest-labs/flux-schnell",
		Cost:            0.003,
		QualityScore:    7,
		Reasoning:       []string{"test"},
		ImageURL:        "https://cdn.example.com/a.png",
	}
	if err := repos.Artwork.Insert(ctx, artwork); err != nil {
		t.Fatalf("failed to insert test artwork: %v", err)
	}

	product := &models.Product{
		ID:        ulid.Make().String(),
		ArtworkID: artwork.ID,
		Title:     "Test - Canvas - Minimalist #1",
		SKU:       "SKU-" + ulid.Make().String(),
		BasePrice: 49.99,
		Tags:      []string{"test"},
		Status:    status,
	}
	if err := repos.Product.Insert(ctx, product); err != nil {
		t.Fatalf("failed to insert test product: %v", err)
	}
	return product
}
