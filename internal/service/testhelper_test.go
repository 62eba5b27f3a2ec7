package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/jmylchreest/pod-pipeline/internal/database/migrations"
	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/trends"
)

// setupTestRepos creates repositories over a migrated in-memory database.
func setupTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return repository.NewRepositories(db)
}

// insertTestTrend stores a trend created at the given time.
func insertTestTrend(t *testing.T, repos *repository.Repositories, keyword string, createdAt time.Time) *models.Trend {
	t.Helper()
	trend := &models.Trend{
		ID:           ulid.Make().String(),
		Keyword:      keyword,
		SearchVolume: 15000,
		TrendScore:   7.5,
		Geography:    "GB",
		Category:     trends.Categorize(keyword),
		CreatedAt:    createdAt,
	}
	if err := repos.Trend.Insert(context.Background(), trend); err != nil {
		t.Fatalf("failed to insert trend: %v", err)
	}
	return trend
}

// fakeCollector returns fixed signals for whichever keywords are requested.
type fakeCollector struct {
	signals  map[string][]trends.TrendSignal
	failures []*trends.SourceError
	calls    [][]string
}

func (f *fakeCollector) Collect(_ context.Context, keywords []string) *trends.CollectResult {
	f.calls = append(f.calls, keywords)
	result := &trends.CollectResult{Signals: make(map[string][]trends.TrendSignal), Failures: f.failures}
	for _, kw := range keywords {
		if sigs, ok := f.signals[kw]; ok {
			result.Signals[kw] = sigs
		} else {
			result.Dropped = append(result.Dropped, kw)
		}
	}
	return result
}

type fakeDiscoverer struct {
	keywords []string
	err      error
}

func (f *fakeDiscoverer) Discover(context.Context, string, int, int) ([]string, error) {
	return f.keywords, f.err
}

func primarySignal(keyword string, volume, momentum float64, rising bool) trends.TrendSignal {
	return trends.TrendSignal{
		Keyword:       keyword,
		Source:        trends.SourceGoogleTrends,
		RawValue:      volume,
		IsRising:      rising,
		MomentumScore: momentum,
	}
}
