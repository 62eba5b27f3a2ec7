package trends

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeFetcher struct {
	name    string
	signals []TrendSignal
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context, _ []string) ([]TrendSignal, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.signals, f.err
}

func TestCollector_IsolatesFailures(t *testing.T) {
	good := &fakeFetcher{name: SourceMarketplace, signals: []TrendSignal{
		{Keyword: "Mountain", Source: SourceMarketplace, RawValue: 1000},
		{Keyword: "unrequested", Source: SourceMarketplace, RawValue: 1},
	}}
	failing := &fakeFetcher{name: SourceGoogleTrends, err: errors.New("boom")}
	slow := &fakeFetcher{name: SourcePinterest, delay: time.Second}

	c := NewCollector(CollectorConfig{Timeout: 50 * time.Millisecond}, good, failing, slow)

	start := time.Now()
	result := c.Collect(context.Background(), []string{"mountain", "sunset"})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Collect took %v, slow fetcher was not cut off", elapsed)
	}

	if len(result.Failures) != 2 {
		t.Fatalf("len(Failures) = %d, want 2", len(result.Failures))
	}
	var sawTimeout bool
	for _, f := range result.Failures {
		if !errors.Is(f, ErrSignalSource) {
			t.Errorf("failure %v should wrap ErrSignalSource", f)
		}
		if f.Source == SourcePinterest {
			sawTimeout = f.TimedOut
		}
	}
	if !sawTimeout {
		t.Error("slow fetcher should be reported as timed out")
	}

	if len(result.Succeeded) != 1 || result.Succeeded[0] != SourceMarketplace {
		t.Errorf("Succeeded = %v, want [marketplace]", result.Succeeded)
	}

	sigs := result.Signals["mountain"]
	if len(sigs) != 1 || sigs[0].Keyword != "mountain" {
		t.Errorf("Signals[mountain] = %+v, want one signal under requested spelling", sigs)
	}
	if _, ok := result.Signals["unrequested"]; ok {
		t.Error("signals for unrequested keywords should be discarded")
	}
	if len(result.Dropped) != 1 || result.Dropped[0] != "sunset" {
		t.Errorf("Dropped = %v, want [sunset]", result.Dropped)
	}
}

func TestCollector_RunsFetchersConcurrently(t *testing.T) {
	a := &fakeFetcher{name: "a", delay: 100 * time.Millisecond}
	b := &fakeFetcher{name: "b", delay: 100 * time.Millisecond}
	c := &fakeFetcher{name: "c", delay: 100 * time.Millisecond}

	start := time.Now()
	NewCollector(CollectorConfig{Timeout: time.Second}, a, b, c).Collect(context.Background(), []string{"x"})
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("Collect took %v, fetchers appear to run sequentially", elapsed)
	}
	for _, f := range []*fakeFetcher{a, b, c} {
		if f.calls.Load() != 1 {
			t.Errorf("%s called %d times, want 1", f.name, f.calls.Load())
		}
	}
}

func TestCollector_EndToEndWithScorer(t *testing.T) {
	primary := &fakeFetcher{name: SourceGoogleTrends, err: errors.New("quota")}
	stub := FromEstimator(NewStubEstimator(SourcePinterest, 500))
	unavailable := FromEstimator(NewUnavailableEstimator(SourceMarketplace, "no api"))

	c := NewCollector(CollectorConfig{}, primary, stub, unavailable)
	result := c.Collect(context.Background(), []string{"mountain"})

	scores := NewScorer(SourceGoogleTrends).ScoreTrends(result.Signals, nil, 6)
	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d, want 1", len(scores))
	}
	if len(scores[0].Sources) != 1 || scores[0].Sources[0] != SourcePinterest {
		t.Errorf("Sources = %v, want [pinterest]", scores[0].Sources)
	}

	var unavailableFailed bool
	for _, f := range result.Failures {
		if f.Source == SourceMarketplace && errors.Is(f, ErrSourceUnavailable) {
			unavailableFailed = true
		}
	}
	if !unavailableFailed {
		t.Error("unavailable estimator should fail with ErrSourceUnavailable")
	}
}

// ========================================
// PrimaryFetcher Tests
// ========================================

type fakeSearchSource struct {
	trending []string
	series   map[string][]float64
	failOn   string
	batches  [][]string
}

func (f *fakeSearchSource) TrendingKeywords(context.Context, string, int) ([]string, error) {
	return f.trending, nil
}

func (f *fakeSearchSource) InterestSeries(_ context.Context, keywords []string, _ string) (map[string][]float64, error) {
	f.batches = append(f.batches, keywords)
	for _, kw := range keywords {
		if kw == f.failOn {
			return nil, errors.New("batch failed")
		}
	}
	out := make(map[string][]float64)
	for _, kw := range keywords {
		if s, ok := f.series[kw]; ok {
			out[kw] = s
		}
	}
	return out, nil
}

func TestPrimaryFetcher_ChunksByFive(t *testing.T) {
	keywords := []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10", "k11", "k12"}
	series := make(map[string][]float64)
	for _, kw := range keywords {
		series[kw] = []float64{10, 20, 30}
	}
	src := &fakeSearchSource{series: series}

	f := NewPrimaryFetcher(src, PrimaryFetcherConfig{BatchDelay: time.Millisecond})
	signals, err := f.Fetch(context.Background(), keywords)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(src.batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(src.batches))
	}
	for i, b := range src.batches {
		if len(b) > MaxInterestBatch {
			t.Errorf("batch %d has %d keywords", i, len(b))
		}
	}
	if len(signals) != 12 {
		t.Errorf("len(signals) = %d, want 12", len(signals))
	}

	s := signals[0]
	if s.Source != SourceGoogleTrends || s.RawValue != 20 || !s.IsRising || s.MomentumScore != 5 {
		t.Errorf("signal = %+v", s)
	}
}

func TestPrimaryFetcher_SkipsFailedBatch(t *testing.T) {
	keywords := []string{"a", "b", "c", "d", "e", "f"}
	src := &fakeSearchSource{
		series: map[string][]float64{"f": {1, 2}},
		failOn: "a",
	}
	signals, err := NewPrimaryFetcher(src, PrimaryFetcherConfig{}).Fetch(context.Background(), keywords)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(signals) != 1 || signals[0].Keyword != "f" {
		t.Errorf("signals = %+v, want only f", signals)
	}

	all := &fakeSearchSource{failOn: "a"}
	if _, err := NewPrimaryFetcher(all, PrimaryFetcherConfig{}).Fetch(context.Background(), []string{"a"}); err == nil {
		t.Error("Fetch() should fail when every batch fails")
	}
}

func TestPrimaryFetcher_Discover(t *testing.T) {
	src := &fakeSearchSource{trending: []string{"cat", "election day", "dog", "bird", "covid update", "fish"}}
	got, err := NewPrimaryFetcher(src, PrimaryFetcherConfig{}).Discover(context.Background(), "GB", 20, 3)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := []string{"cat", "dog", "bird"}
	if len(got) != len(want) {
		t.Fatalf("Discover() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Discover()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
