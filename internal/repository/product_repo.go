package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
)

const productColumns = `p.id, p.artwork_id, p.title, p.description, p.sku, p.base_price,
	p.tags_json, p.category, p.status, p.rejection_reason, p.storefront_id, p.created_at, p.updated_at`

// SQLiteProductRepository implements ProductRepository for SQLite.
type SQLiteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository creates a new SQLite product repository.
func NewSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{db: db}
}

func (r *SQLiteProductRepository) Insert(ctx context.Context, p *models.Product) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	if p.Status == "" {
		p.Status = models.ProductPendingApproval
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	query := `
		INSERT INTO products (id, artwork_id, title, description, sku, base_price, tags_json,
			category, status, rejection_reason, storefront_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.ArtworkID, p.Title, p.Description, p.SKU, p.BasePrice, string(tags),
		p.Category, p.Status, nullString(p.RejectionReason), nullString(p.StorefrontID),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *SQLiteProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ?`
	var p models.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteProductRepository) ListByStatus(ctx context.Context, status models.ProductStatus, limit int) ([]*models.ProductWithArtwork, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + productColumns + `, a.image_url, a.style, a.model_key, a.quality_score
		FROM products p
		JOIN artwork a ON a.id = p.artwork_id
		WHERE p.status = ?
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []*models.ProductWithArtwork
	for rows.Next() {
		var pw models.ProductWithArtwork
		err := scanProduct(rows, &pw.Product, &pw.ImageURL, &pw.Style, &pw.ModelKey, &pw.QualityScore)
		if err != nil {
			return nil, err
		}
		out = append(out, &pw)
	}
	return out, rows.Err()
}

func (r *SQLiteProductRepository) UpdateStatus(ctx context.Context, id string, status models.ProductStatus, reason string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status != ?`,
		status, nullString(reason), formatTime(time.Now()), id, models.ProductPublished,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update product status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteProductRepository) UpdateStatusBatch(ctx context.Context, ids []string, status models.ProductStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := []any{status, formatTime(time.Now()), models.ProductPublished}
	for _, id := range ids {
		args = append(args, id)
	}

	query := `UPDATE products SET status = ?, rejection_reason = NULL, updated_at = ?
		WHERE status != ? AND id IN (` + placeholders + `)`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to batch update products: %w", err)
	}
	return result.RowsAffected()
}

func (r *SQLiteProductRepository) MarkPublished(ctx context.Context, id, storefrontID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET status = ?, storefront_id = ?, updated_at = ? WHERE id = ?`,
		models.ProductPublished, storefrontID, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark product published: %w", err)
	}
	return nil
}

func (r *SQLiteProductRepository) Stats(ctx context.Context) (*models.ApprovalStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM products GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product stats: %w", err)
	}
	defer rows.Close()

	var stats models.ApprovalStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan product stats: %w", err)
		}
		switch models.ProductStatus(status) {
		case models.ProductPendingApproval:
			stats.Pending = count
		case models.ProductApproved:
			stats.Approved = count
		case models.ProductRejected:
			stats.Rejected = count
		case models.ProductPublished:
			stats.Published = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		// Published products were approved first.
		rate := float64(stats.Approved+stats.Published) / float64(stats.Total) * 100
		stats.ApprovalRate = math.Round(rate*100) / 100
	}
	return &stats, nil
}

func (r *SQLiteProductRepository) DeleteByStatusBefore(ctx context.Context, status models.ProductStatus, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE status = ? AND updated_at < ?`, status, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	return result.RowsAffected()
}

func scanProduct(row rowScanner, p *models.Product, extra ...any) error {
	var tags, reason, storefrontID sql.NullString
	var createdAt, updatedAt string

	dest := []any{
		&p.ID, &p.ArtworkID, &p.Title, &p.Description, &p.SKU, &p.BasePrice,
		&tags, &p.Category, &p.Status, &reason, &storefrontID, &createdAt, &updatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan product: %w", err)
	}

	if tags.Valid && tags.String != "" {
		_ = json.Unmarshal([]byte(tags.String), &p.Tags)
	}
	p.RejectionReason = reason.String
	p.StorefrontID = storefrontID.String
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return nil
}
