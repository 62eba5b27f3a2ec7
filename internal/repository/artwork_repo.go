package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
)

const artworkColumns = `id, trend_id, style, prompt, model_key, provider_model_id, cost,
	quality_score, reasoning_json, storage_key, image_url, generation_time_ms, created_at`

// SQLiteArtworkRepository implements ArtworkRepository for SQLite.
type SQLiteArtworkRepository struct {
	db *sql.DB
}

// NewSQLiteArtworkRepository creates a new SQLite artwork repository.
func NewSQLiteArtworkRepository(db *sql.DB) *SQLiteArtworkRepository {
	return &SQLiteArtworkRepository{db: db}
}

func (r *SQLiteArtworkRepository) Insert(ctx context.Context, a *models.Artwork) error {
	reasoning, err := json.Marshal(a.Reasoning)
	if err != nil {
		return fmt.Errorf("failed to marshal reasoning: %w", err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query := `INSERT INTO artwork (` + artworkColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.TrendID, a.Style, a.Prompt, a.ModelKey, a.ProviderModelID, a.Cost,
		a.QualityScore, string(reasoning), a.StorageKey, a.ImageURL, a.GenerationTimeMs,
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert artwork: %w", err)
	}
	return nil
}

func (r *SQLiteArtworkRepository) GetByID(ctx context.Context, id string) (*models.Artwork, error) {
	a, err := scanArtwork(r.db.QueryRowContext(ctx, `SELECT `+artworkColumns+` FROM artwork WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *SQLiteArtworkRepository) ListByTrend(ctx context.Context, trendID string) ([]*models.Artwork, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+artworkColumns+` FROM artwork WHERE trend_id = ? ORDER BY created_at ASC, id ASC`, trendID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artwork: %w", err)
	}
	defer rows.Close()

	var out []*models.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteArtworkRepository) DeleteOrphaned(ctx context.Context, before time.Time) (int, []string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT a.id, a.storage_key FROM artwork a
		WHERE a.created_at < ?
		AND NOT EXISTS (SELECT 1 FROM products p WHERE p.artwork_id = a.id)`,
		formatTime(before))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query orphaned artwork: %w", err)
	}
	var ids []string
	keys := make(map[string]bool)
	for rows.Next() {
		var id string
		var key sql.NullString
		if err := rows.Scan(&id, &key); err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("failed to scan artwork: %w", err)
		}
		ids = append(ids, id)
		if key.String != "" {
			keys[key.String] = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM artwork WHERE id = ?`, id); err != nil {
			return 0, nil, fmt.Errorf("failed to delete artwork: %w", err)
		}
	}

	// Identical images share a content-addressed key.
	var freed []string
	for key := range keys {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM artwork WHERE storage_key = ?`, key).Scan(&n); err != nil {
			return 0, nil, fmt.Errorf("failed to count artwork references: %w", err)
		}
		if n == 0 {
			freed = append(freed, key)
		}
	}
	sort.Strings(freed)

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit: %w", err)
	}
	return len(ids), freed, nil
}

func scanArtwork(row rowScanner) (*models.Artwork, error) {
	var a models.Artwork
	var reasoning sql.NullString
	var createdAt string

	err := row.Scan(
		&a.ID, &a.TrendID, &a.Style, &a.Prompt, &a.ModelKey, &a.ProviderModelID, &a.Cost,
		&a.QualityScore, &reasoning, &a.StorageKey, &a.ImageURL, &a.GenerationTimeMs, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artwork: %w", err)
	}
	if reasoning.Valid && reasoning.String != "" {
		_ = json.Unmarshal([]byte(reasoning.String), &a.Reasoning)
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}
