package trends

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds each fetcher call.
const DefaultFetchTimeout = 30 * time.Second

// CollectorConfig configures a Collector.
type CollectorConfig struct {
	Timeout time.Duration // Per-fetcher timeout (default: 30s)
	Logger  *slog.Logger
}

// Collector fans out to all fetchers in parallel and joins their signals.
type Collector struct {
	fetchers []Fetcher
	timeout  time.Duration
	logger   *slog.Logger
}

// CollectResult is the joined output of one collection run.
type CollectResult struct {
	// Signals holds signals per requested keyword. Keywords with no
	// signal from any source are absent.
	Signals map[string][]TrendSignal

	// Succeeded lists the sources that returned without error.
	Succeeded []string

	// Failures holds one entry per failed or timed-out source.
	Failures []*SourceError

	// Dropped lists keywords that received no signals.
	Dropped []string
}

// NewCollector creates a collector over fetchers.
func NewCollector(cfg CollectorConfig, fetchers ...Fetcher) *Collector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Collector{
		fetchers: fetchers,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger.With("component", "signal_collector"),
	}
}

// Sources returns the names of the registered fetchers.
func (c *Collector) Sources() []string {
	names := make([]string, len(c.fetchers))
	for i, f := range c.fetchers {
		names[i] = f.Name()
	}
	return names
}

type fetchOutcome struct {
	signals []TrendSignal
	err     *SourceError
}

// Collect runs every fetcher concurrently, each under its own timeout.
// A failing fetcher never cancels the others and never fails the run.
func (c *Collector) Collect(ctx context.Context, keywords []string) *CollectResult {
	outcomes := make([]fetchOutcome, len(c.fetchers))

	g := new(errgroup.Group)
	for i, f := range c.fetchers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			signals, err := f.Fetch(fctx, keywords)
			if err != nil {
				timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded)
				outcomes[i].err = &SourceError{Source: f.Name(), Err: err, TimedOut: timedOut}
				c.logger.Warn("signal source failed",
					"source", f.Name(),
					"timed_out", timedOut,
					"duration_ms", time.Since(start).Milliseconds(),
					"error", err,
				)
				return nil
			}
			outcomes[i].signals = signals
			c.logger.Debug("signal source fetched",
				"source", f.Name(),
				"signals", len(signals),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	_ = g.Wait()

	// Signals are matched back to the requested spelling case-insensitively.
	canonical := make(map[string]string, len(keywords))
	for _, kw := range keywords {
		lk := strings.ToLower(kw)
		if _, ok := canonical[lk]; !ok {
			canonical[lk] = kw
		}
	}

	result := &CollectResult{Signals: make(map[string][]TrendSignal)}
	for i, out := range outcomes {
		if out.err != nil {
			result.Failures = append(result.Failures, out.err)
			continue
		}
		result.Succeeded = append(result.Succeeded, c.fetchers[i].Name())
		for _, sig := range out.signals {
			kw, ok := canonical[strings.ToLower(sig.Keyword)]
			if !ok {
				continue
			}
			sig.Keyword = kw
			result.Signals[kw] = append(result.Signals[kw], sig)
		}
	}

	seen := make(map[string]bool, len(canonical))
	for _, kw := range keywords {
		canon := canonical[strings.ToLower(kw)]
		if seen[canon] {
			continue
		}
		seen[canon] = true
		if len(result.Signals[canon]) == 0 {
			result.Dropped = append(result.Dropped, canon)
			c.logger.Debug("keyword dropped", "keyword", canon, "reason", ErrInsufficientData)
		}
	}

	c.logger.Info("signal collection complete",
		"keywords", len(canonical),
		"with_signals", len(result.Signals),
		"sources_ok", len(result.Succeeded),
		"sources_failed", len(result.Failures),
	)
	return result
}
