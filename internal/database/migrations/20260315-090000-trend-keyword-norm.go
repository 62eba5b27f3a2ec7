package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260315-090000",
		Description: "Add keyword_norm to trends for Unicode-aware dedup",
		Up: []string{
			// Written by the application with full Unicode case folding;
			// SQLite's LOWER only folds ASCII.
			`ALTER TABLE trends ADD COLUMN keyword_norm TEXT NOT NULL DEFAULT ''`,
			// Best-effort backfill; rows with non-ASCII capitals stay unmatched until re-inserted
			`UPDATE trends SET keyword_norm = LOWER(TRIM(keyword)) WHERE keyword_norm = ''`,
			`DROP INDEX IF EXISTS idx_trends_keyword_lower`,
			`CREATE INDEX IF NOT EXISTS idx_trends_keyword_norm ON trends(keyword_norm, created_at)`,
		},
	})
}
