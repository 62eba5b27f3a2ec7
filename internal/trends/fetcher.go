package trends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Fetcher produces signals for a set of keywords from one source.
// An error means the source contributed nothing.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, keywords []string) ([]TrendSignal, error)
}

// SearchTrendSource is the primary search-interest API.
type SearchTrendSource interface {
	// TrendingKeywords returns currently trending searches for region.
	TrendingKeywords(ctx context.Context, region string, limit int) ([]string, error)

	// InterestSeries returns an interest time series per keyword. At most
	// MaxInterestBatch keywords may be requested at once.
	InterestSeries(ctx context.Context, keywords []string, timeframe string) (map[string][]float64, error)
}

// VolumeEstimator estimates monthly demand per keyword.
type VolumeEstimator interface {
	Name() string
	Availability() Availability
	EstimateVolume(ctx context.Context, keywords []string) (map[string]int, error)
}

// MaxInterestBatch is the most keywords the interest API accepts per request.
const MaxInterestBatch = 5

// DefaultTimeframe requests three months of daily interest samples.
const DefaultTimeframe = "today 3-m"

// PrimaryFetcherConfig configures a PrimaryFetcher.
type PrimaryFetcherConfig struct {
	Name         string        // Source name (default: google_trends)
	Timeframe    string        // Interest window (default: today 3-m)
	BatchDelay   time.Duration // Pause between interest batches
	RecentWindow int           // Momentum window (default: 30)
	Logger       *slog.Logger
}

// PrimaryFetcher turns interest series from a SearchTrendSource into
// signals carrying volume, momentum and rising status.
type PrimaryFetcher struct {
	source       SearchTrendSource
	name         string
	timeframe    string
	batchDelay   time.Duration
	recentWindow int
	logger       *slog.Logger
	now          func() time.Time
}

// NewPrimaryFetcher creates a fetcher over source.
func NewPrimaryFetcher(source SearchTrendSource, cfg PrimaryFetcherConfig) *PrimaryFetcher {
	if cfg.Name == "" {
		cfg.Name = SourceGoogleTrends
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = DefaultTimeframe
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = DefaultRecentWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PrimaryFetcher{
		source:       source,
		name:         cfg.Name,
		timeframe:    cfg.Timeframe,
		batchDelay:   cfg.BatchDelay,
		recentWindow: cfg.RecentWindow,
		logger:       cfg.Logger.With("component", "primary_fetcher", "source", cfg.Name),
		now:          time.Now,
	}
}

// Name implements Fetcher.
func (f *PrimaryFetcher) Name() string {
	return f.name
}

// Discover returns trending keywords for region that are suitable for print
// products, capped at analyzeLimit.
func (f *PrimaryFetcher) Discover(ctx context.Context, region string, fetchLimit, analyzeLimit int) ([]string, error) {
	trending, err := f.source.TrendingKeywords(ctx, region, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch trending keywords: %w", err)
	}

	suitable := FilterSuitable(trending)
	if analyzeLimit > 0 && len(suitable) > analyzeLimit {
		suitable = suitable[:analyzeLimit]
	}

	f.logger.Info("discovered trending keywords",
		"region", region,
		"trending", len(trending),
		"suitable", len(suitable),
	)
	return suitable, nil
}

// Fetch implements Fetcher. Keywords are requested in batches of
// MaxInterestBatch with BatchDelay between batches. A failed batch is
// logged and skipped; the fetch fails only when every batch fails.
func (f *PrimaryFetcher) Fetch(ctx context.Context, keywords []string) ([]TrendSignal, error) {
	var signals []TrendSignal
	var errs []error

	for start := 0; start < len(keywords); start += MaxInterestBatch {
		if start > 0 && f.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.batchDelay):
			}
		}

		end := min(start+MaxInterestBatch, len(keywords))
		batch := keywords[start:end]

		series, err := f.source.InterestSeries(ctx, batch, f.timeframe)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warn("interest batch failed", "keywords", batch, "error", err)
			errs = append(errs, err)
			continue
		}

		fetchedAt := f.now()
		for _, kw := range batch {
			values, ok := series[kw]
			if !ok || len(values) == 0 {
				continue
			}
			signals = append(signals, TrendSignal{
				Keyword:       kw,
				Source:        f.name,
				RawValue:      float64(int(mean(values))),
				IsRising:      IsRising(values),
				MomentumScore: MomentumScore(values, f.recentWindow),
				Series:        values,
				FetchedAt:     fetchedAt,
			})
		}
	}

	if len(signals) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return signals, nil
}

// estimatorFetcher adapts a VolumeEstimator to Fetcher.
type estimatorFetcher struct {
	est VolumeEstimator
	now func() time.Time
}

// FromEstimator wraps est as a Fetcher. Unavailable estimators always fail
// with ErrSourceUnavailable.
func FromEstimator(est VolumeEstimator) Fetcher {
	return &estimatorFetcher{est: est, now: time.Now}
}

func (f *estimatorFetcher) Name() string {
	return f.est.Name()
}

func (f *estimatorFetcher) Fetch(ctx context.Context, keywords []string) ([]TrendSignal, error) {
	if f.est.Availability() == AvailabilityUnavailable {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, f.est.Name())
	}

	volumes, err := f.est.EstimateVolume(ctx, keywords)
	if err != nil {
		return nil, err
	}

	fetchedAt := f.now()
	signals := make([]TrendSignal, 0, len(volumes))
	for _, kw := range keywords {
		v, ok := volumes[kw]
		if !ok {
			continue
		}
		signals = append(signals, TrendSignal{
			Keyword:   kw,
			Source:    f.est.Name(),
			RawValue:  float64(v),
			FetchedAt: fetchedAt,
		})
	}
	return signals, nil
}
