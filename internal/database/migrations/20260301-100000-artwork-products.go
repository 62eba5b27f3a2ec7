package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-100000",
		Description: "Artwork and products tables",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS artwork (
				id TEXT PRIMARY KEY,
				trend_id TEXT NOT NULL REFERENCES trends(id) ON DELETE CASCADE,
				style TEXT NOT NULL,
				prompt TEXT NOT NULL,
				model_key TEXT NOT NULL,
				provider_model_id TEXT NOT NULL,
				cost REAL NOT NULL DEFAULT 0,
				quality_score INTEGER NOT NULL DEFAULT 0,
				reasoning_json TEXT,
				storage_key TEXT NOT NULL DEFAULT '',
				image_url TEXT NOT NULL DEFAULT '',
				generation_time_ms INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_artwork_trend_id ON artwork(trend_id)`,

			`CREATE TABLE IF NOT EXISTS products (
				id TEXT PRIMARY KEY,
				artwork_id TEXT NOT NULL REFERENCES artwork(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				sku TEXT UNIQUE NOT NULL,
				base_price REAL NOT NULL,
				tags_json TEXT,
				category TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending_approval',
				rejection_reason TEXT,
				storefront_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_status ON products(status, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_products_artwork_id ON products(artwork_id)`,
		},
	})
}
