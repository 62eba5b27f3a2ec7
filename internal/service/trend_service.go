package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/pod-pipeline/internal/logging"
	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/trends"
)

// KeywordDiscoverer returns candidate keywords for a region.
type KeywordDiscoverer interface {
	Discover(ctx context.Context, region string, fetchLimit, analyzeLimit int) ([]string, error)
}

// SignalCollector gathers signals for keywords from every source.
type SignalCollector interface {
	Collect(ctx context.Context, keywords []string) *trends.CollectResult
}

// FallbackKeywords are analysed when discovery returns nothing.
var FallbackKeywords = []string{
	"mountain landscape minimalist",
	"sunset ocean waves",
	"motivational quotes workspace",
	"abstract geometric shapes",
	"vintage travel posters",
}

// TrendServiceConfig holds the thresholds and windows for trend analysis.
type TrendServiceConfig struct {
	Region               string
	FetchLimit           int
	AnalyzeLimit         int
	MinSearchVolume      float64
	MinTrendScore        float64
	MaxTrendsToStore     int
	RawTrendFreshness    time.Duration
	ScoredTrendFreshness time.Duration
	AutoGenerate         bool
}

// TrendService discovers, scores and stores trends.
type TrendService struct {
	repos      *repository.Repositories
	discoverer KeywordDiscoverer
	collector  SignalCollector
	scorer     *trends.Scorer
	cfg        TrendServiceConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewTrendService creates a trend service. discoverer may be nil, in which
// case analysis runs need explicit keywords or use FallbackKeywords.
func NewTrendService(repos *repository.Repositories, discoverer KeywordDiscoverer, collector SignalCollector, scorer *trends.Scorer, cfg TrendServiceConfig, logger *slog.Logger) *TrendService {
	if logger == nil {
		logger = slog.Default()
	}
	if scorer == nil {
		scorer = trends.NewScorer("")
	}
	return &TrendService{
		repos:      repos,
		discoverer: discoverer,
		collector:  collector,
		scorer:     scorer,
		cfg:        cfg,
		logger:     logger.With("component", "trend_service"),
		now:        time.Now,
	}
}

// StoreOptions controls how trends are persisted.
type StoreOptions struct {
	Window     time.Duration // Dedup window; a keyword stored within it is skipped
	MaxToStore int           // Only the first MaxToStore scores are considered, 0 for all
	Geography  string
	Enqueue    bool // Queue stored trends for generation
}

// StoreResult reports a store step.
type StoreResult struct {
	Stored  []*models.Trend `json:"stored"`
	Skipped []string        `json:"skipped"`
}

// StoreScored persists scores in order. A keyword already stored within the
// window is skipped, never updated.
func (s *TrendService) StoreScored(ctx context.Context, scores []trends.TrendScore, opts StoreOptions) (*StoreResult, error) {
	logger := logging.FromContext(ctx, s.logger)
	if opts.MaxToStore > 0 && len(scores) > opts.MaxToStore {
		scores = scores[:opts.MaxToStore]
	}

	result := &StoreResult{}
	analyzedAt := s.now().UTC()
	for _, score := range scores {
		existing, err := s.repos.Trend.FindByKeyword(ctx, score.Keyword, opts.Window)
		if err != nil {
			return result, fmt.Errorf("failed to check existing trend %q: %w", score.Keyword, err)
		}
		if existing != nil {
			logger.Debug("trend already exists", "keyword", score.Keyword, "trend_id", existing.ID)
			result.Skipped = append(result.Skipped, score.Keyword)
			continue
		}

		trend := &models.Trend{
			ID:           ulid.Make().String(),
			Keyword:      score.Keyword,
			SearchVolume: score.SearchVolume,
			TrendScore:   score.FinalScore,
			Geography:    opts.Geography,
			Category:     trends.Categorize(score.Keyword),
			Metadata: models.TrendMetadata{
				Origin:           models.TrendOriginScored,
				Sources:          score.Sources,
				Rising:           score.RisingStatus,
				Competition:      string(score.CompetitionLevel),
				SourceVolumes:    score.SourceVolumes,
				MomentumScore:    score.MomentumScore,
				SeasonalBoost:    score.SeasonalBoost,
				Season:           score.Season,
				HistoricalBoost:  score.HistoricalPerformanceBoost,
				AnalyzedAt:       analyzedAt,
				DesignsAllocated: models.DesignsForVolume(score.SearchVolume),
			},
			GenerationStatus: models.GenerationNew,
		}
		if opts.Enqueue {
			trend.GenerationStatus = models.GenerationPending
		}
		if err := s.repos.Trend.Insert(ctx, trend); err != nil {
			return result, fmt.Errorf("failed to store trend %q: %w", score.Keyword, err)
		}
		result.Stored = append(result.Stored, trend)
		logger.Info("trend stored",
			"keyword", trend.Keyword,
			"score", math.Round(trend.TrendScore*100)/100,
			"volume", trend.SearchVolume,
		)
	}
	return result, nil
}

// FetchAndStoreRaw discovers keywords and stores their unscored signals
// under the raw freshness window.
func (s *TrendService) FetchAndStoreRaw(ctx context.Context, region string) (*StoreResult, error) {
	if region == "" {
		region = s.cfg.Region
	}
	keywords, err := s.keywords(ctx, region, nil)
	if err != nil {
		return nil, err
	}
	collected := s.collector.Collect(ctx, keywords)

	result := &StoreResult{}
	fetchedAt := s.now().UTC()
	for _, kw := range keywords {
		signals := collected.Signals[kw]
		if len(signals) == 0 {
			continue
		}
		existing, err := s.repos.Trend.FindByKeyword(ctx, kw, s.cfg.RawTrendFreshness)
		if err != nil {
			return result, fmt.Errorf("failed to check existing trend %q: %w", kw, err)
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, kw)
			continue
		}

		meta := models.TrendMetadata{
			Origin:        models.TrendOriginRaw,
			SourceVolumes: make(map[string]float64),
			AnalyzedAt:    fetchedAt,
		}
		var volume float64
		for _, sig := range signals {
			if _, seen := meta.SourceVolumes[sig.Source]; seen {
				continue
			}
			meta.SourceVolumes[sig.Source] = sig.RawValue
			meta.Sources = append(meta.Sources, sig.Source)
			meta.Rising = meta.Rising || sig.IsRising
			volume = max(volume, sig.RawValue)
		}
		meta.DesignsAllocated = models.DesignsForVolume(int(volume))

		trend := &models.Trend{
			ID:           ulid.Make().String(),
			Keyword:      kw,
			SearchVolume: int(math.Round(volume)),
			Geography:    region,
			Category:     trends.Categorize(kw),
			Metadata:     meta,
		}
		if err := s.repos.Trend.Insert(ctx, trend); err != nil {
			return result, fmt.Errorf("failed to store trend %q: %w", kw, err)
		}
		result.Stored = append(result.Stored, trend)
	}

	s.logger.Info("raw trends stored", "stored", len(result.Stored), "skipped", len(result.Skipped))
	return result, nil
}

// AnalysisRequest parameterises one analysis run.
type AnalysisRequest struct {
	Keywords []string // Analyse these instead of discovering
	Region   string
	Month    int // 1..12, 0 for the current month
}

// AnalysisSummary reports one analysis run.
type AnalysisSummary struct {
	RunID         string              `json:"run_id"`
	Analyzed      int                 `json:"analyzed"`
	Qualified     int                 `json:"qualified"`
	Stored        int                 `json:"stored"`
	Skipped       int                 `json:"skipped"`
	AvgVolume     float64             `json:"avg_volume"`
	Top           []trends.TrendScore `json:"top"`
	StoredTrends  []*models.Trend     `json:"stored_trends"`
	FailedSources []string            `json:"failed_sources"`
}

// RunAnalysis collects signals, scores, filters and stores the top trends.
// Finding nothing is a successful run with an empty summary.
func (s *TrendService) RunAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisSummary, error) {
	month := req.Month
	if month == 0 {
		month = int(s.now().Month())
	}
	if err := trends.ValidateMonth(month); err != nil {
		return nil, err
	}
	region := req.Region
	if region == "" {
		region = s.cfg.Region
	}

	runID := ulid.Make().String()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx, s.logger)

	keywords, err := s.keywords(ctx, region, req.Keywords)
	if err != nil {
		return nil, err
	}
	logger.Info("trend analysis started", "keywords", len(keywords), "region", region, "month", month)

	collected := s.collector.Collect(ctx, keywords)
	summary := &AnalysisSummary{RunID: runID, Top: []trends.TrendScore{}, StoredTrends: []*models.Trend{}, FailedSources: []string{}}
	for _, f := range collected.Failures {
		summary.FailedSources = append(summary.FailedSources, f.Source)
	}

	history := s.history(ctx, keywords)
	scores := s.scorer.ScoreTrends(collected.Signals, history.Lookup, month)
	summary.Analyzed = len(scores)

	scores = trends.FilterByMinimumVolume(scores, int(math.Ceil(s.cfg.MinSearchVolume)))
	scores = trends.FilterByMinimumScore(scores, s.cfg.MinTrendScore)
	summary.Qualified = len(scores)

	if len(scores) > 0 {
		var total int
		for _, sc := range scores {
			total += sc.SearchVolume
		}
		summary.AvgVolume = math.Round(float64(total)/float64(len(scores))*100) / 100
		summary.Top = scores[:min(5, len(scores))]
	}

	stored, err := s.StoreScored(ctx, scores, StoreOptions{
		Window:     s.cfg.ScoredTrendFreshness,
		MaxToStore: s.cfg.MaxTrendsToStore,
		Geography:  region,
		Enqueue:    s.cfg.AutoGenerate,
	})
	if stored != nil {
		summary.Stored = len(stored.Stored)
		summary.Skipped = len(stored.Skipped)
		summary.StoredTrends = append(summary.StoredTrends, stored.Stored...)
	}
	if err != nil {
		return summary, err
	}

	logger.Info("trend analysis complete",
		"analyzed", summary.Analyzed,
		"qualified", summary.Qualified,
		"stored", summary.Stored,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// ListRecent returns trends created within window, best first.
func (s *TrendService) ListRecent(ctx context.Context, window time.Duration, limit int) ([]*models.Trend, error) {
	return s.repos.Trend.ListRecent(ctx, s.now().Add(-window), limit)
}

// keywords resolves the keyword list for a run.
func (s *TrendService) keywords(ctx context.Context, region string, explicit []string) ([]string, error) {
	var out []string
	for _, kw := range explicit {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	if s.discoverer != nil {
		discovered, err := s.discoverer.Discover(ctx, region, s.cfg.FetchLimit, s.cfg.AnalyzeLimit)
		if err != nil {
			logging.FromContext(ctx, s.logger).Warn("keyword discovery failed, using fallback keywords", "error", err)
		} else if len(discovered) > 0 {
			return discovered, nil
		}
	}
	return append([]string(nil), FallbackKeywords...), nil
}

// history resolves past sales before scoring so the scorer stays free of I/O.
// Failures degrade to no history.
func (s *TrendService) history(ctx context.Context, keywords []string) trends.HistoryMap {
	perf, err := s.repos.Sales.PerformanceByKeyword(ctx, keywords)
	if err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to load sales history", "error", err)
		return nil
	}
	m := make(trends.HistoryMap, len(perf))
	for kw, p := range perf {
		m[kw] = trends.HistoricalPerformance{
			HasHistory:       p.TotalOrders > 0,
			PerformanceScore: p.PerformanceScore,
			TotalOrders:      p.TotalOrders,
			AvgOrderValue:    p.AvgOrderValue,
		}
	}
	return m
}
