package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-090000",
		Description: "Trends table",
		Up: []string{
			// Keyword dedup is case-insensitive, so index the lowered form
			`CREATE TABLE IF NOT EXISTS trends (
				id TEXT PRIMARY KEY,
				keyword TEXT NOT NULL,
				search_volume INTEGER NOT NULL DEFAULT 0,
				trend_score REAL NOT NULL DEFAULT 0,
				geography TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT 'general',
				metadata_json TEXT,
				generation_status TEXT NOT NULL DEFAULT 'new',
				generation_error TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_trends_keyword_lower ON trends(LOWER(keyword), created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_trends_score ON trends(trend_score DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_trends_generation_status ON trends(generation_status, trend_score DESC)`,
		},
	})
}
