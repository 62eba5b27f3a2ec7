package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-110000",
		Description: "Orders table for historical performance",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS orders (
				id TEXT PRIMARY KEY,
				product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				order_value REAL NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_orders_product_id ON orders(product_id)`,
		},
	})
}
