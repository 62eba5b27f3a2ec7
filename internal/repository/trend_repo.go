package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
)

const trendColumns = `id, keyword, search_volume, trend_score, geography, category,
	metadata_json, generation_status, generation_error, created_at, updated_at`

// SQLiteTrendRepository implements TrendRepository for SQLite.
type SQLiteTrendRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTrendRepository creates a new SQLite trend repository.
func NewSQLiteTrendRepository(db *sql.DB) *SQLiteTrendRepository {
	return &SQLiteTrendRepository{db: db, now: time.Now}
}

func (r *SQLiteTrendRepository) Insert(ctx context.Context, trend *models.Trend) error {
	metadata, err := json.Marshal(trend.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal trend metadata: %w", err)
	}
	if trend.GenerationStatus == "" {
		trend.GenerationStatus = models.GenerationNew
	}
	if trend.CreatedAt.IsZero() {
		trend.CreatedAt = r.now()
	}
	if trend.UpdatedAt.IsZero() {
		trend.UpdatedAt = trend.CreatedAt
	}

	query := `INSERT INTO trends (` + trendColumns + `, keyword_norm) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		trend.ID,
		trend.Keyword,
		trend.SearchVolume,
		trend.TrendScore,
		trend.Geography,
		trend.Category,
		string(metadata),
		trend.GenerationStatus,
		nullString(trend.GenerationError),
		formatTime(trend.CreatedAt),
		formatTime(trend.UpdatedAt),
		normalizeKeyword(trend.Keyword),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trend: %w", err)
	}
	return nil
}

func (r *SQLiteTrendRepository) GetByID(ctx context.Context, id string) (*models.Trend, error) {
	query := `SELECT ` + trendColumns + ` FROM trends WHERE id = ?`
	trend, err := scanTrend(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return trend, err
}

func (r *SQLiteTrendRepository) FindByKeyword(ctx context.Context, keyword string, window time.Duration) (*models.Trend, error) {
	cutoff := formatTime(r.now().Add(-window))
	query := `SELECT ` + trendColumns + ` FROM trends
		WHERE keyword_norm = ? AND created_at > ?
		ORDER BY created_at DESC LIMIT 1`
	trend, err := scanTrend(r.db.QueryRowContext(ctx, query, normalizeKeyword(keyword), cutoff))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return trend, err
}

func (r *SQLiteTrendRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*models.Trend, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + trendColumns + ` FROM trends
		WHERE created_at >= ?
		ORDER BY trend_score DESC, created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, formatTime(since), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	var trends []*models.Trend
	for rows.Next() {
		trend, err := scanTrend(rows)
		if err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

func (r *SQLiteTrendRepository) Enqueue(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE trends SET generation_status = ?, generation_error = NULL, updated_at = ?
		WHERE id = ? AND generation_status != ?`,
		models.GenerationPending, formatTime(r.now()), id, models.GenerationProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("failed to enqueue trend: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteTrendRepository) ClaimPendingGeneration(ctx context.Context) (*models.Trend, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE trends
		SET generation_status = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM trends
			WHERE generation_status = ?
			ORDER BY trend_score DESC, created_at ASC
			LIMIT 1
		)
		RETURNING ` + trendColumns

	trend, err := scanTrend(tx.QueryRowContext(ctx, query,
		models.GenerationProcessing, formatTime(r.now()), models.GenerationPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim trend: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return trend, nil
}

func (r *SQLiteTrendRepository) UpdateStatus(ctx context.Context, id string, status models.GenerationStatus, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE trends SET generation_status = ?, generation_error = ?, updated_at = ? WHERE id = ?`,
		status, nullString(errMsg), formatTime(r.now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update trend status: %w", err)
	}
	return nil
}

func (r *SQLiteTrendRepository) ResetStaleProcessing(ctx context.Context, maxAge time.Duration) (int64, error) {
	now := r.now()
	result, err := r.db.ExecContext(ctx,
		`UPDATE trends SET generation_status = ?, generation_error = ?, updated_at = ?
		WHERE generation_status = ? AND updated_at < ?`,
		models.GenerationFailed,
		"generation interrupted: server restart or timeout",
		formatTime(now),
		models.GenerationProcessing,
		formatTime(now.Add(-maxAge)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale trends: %w", err)
	}
	count, _ := result.RowsAffected()
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrend(row rowScanner) (*models.Trend, error) {
	var trend models.Trend
	var metadata, genError sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&trend.ID, &trend.Keyword, &trend.SearchVolume, &trend.TrendScore,
		&trend.Geography, &trend.Category, &metadata, &trend.GenerationStatus,
		&genError, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trend: %w", err)
	}

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &trend.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode trend metadata: %w", err)
		}
	}
	trend.GenerationError = genError.String
	trend.CreatedAt = parseTime(createdAt)
	trend.UpdatedAt = parseTime(updatedAt)
	return &trend, nil
}

// normalizeKeyword is the dedup form of a keyword. Matching happens in Go
// rather than with SQL LOWER, which leaves non-ASCII letters untouched.
func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
