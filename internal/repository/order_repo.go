package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
)

// OrderPerformanceWeight converts an order count into a performance score.
const OrderPerformanceWeight = 2.0

// SQLiteOrderRepository implements OrderRepository and SalesRepository for SQLite.
type SQLiteOrderRepository struct {
	db *sql.DB
}

// NewSQLiteOrderRepository creates a new SQLite order repository.
func NewSQLiteOrderRepository(db *sql.DB) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{db: db}
}

func (r *SQLiteOrderRepository) Insert(ctx context.Context, o *models.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (id, product_id, order_value, created_at) VALUES (?, ?, ?, ?)`,
		o.ID, o.ProductID, o.OrderValue, formatTime(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepository) PerformanceByKeyword(ctx context.Context, keywords []string) (map[string]SalesPerformance, error) {
	out := make(map[string]SalesPerformance)
	if len(keywords) == 0 {
		return out, nil
	}

	seen := make(map[string]bool, len(keywords))
	var args []any
	for _, kw := range keywords {
		k := normalizeKeyword(kw)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		args = append(args, k)
	}
	if len(args) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")

	query := `
		SELECT t.keyword_norm, COUNT(o.id), COALESCE(AVG(o.order_value), 0)
		FROM trends t
		JOIN artwork a ON a.trend_id = t.id
		JOIN products p ON p.artwork_id = a.id
		JOIN orders o ON o.product_id = p.id
		WHERE t.keyword_norm IN (` + placeholders + `)
		GROUP BY t.keyword_norm
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales performance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var perf SalesPerformance
		if err := rows.Scan(&perf.Keyword, &perf.TotalOrders, &perf.AvgOrderValue); err != nil {
			return nil, fmt.Errorf("failed to scan sales performance: %w", err)
		}
		if perf.TotalOrders == 0 {
			continue
		}
		perf.PerformanceScore = float64(perf.TotalOrders) * OrderPerformanceWeight
		out[perf.Keyword] = perf
	}
	return out, rows.Err()
}
