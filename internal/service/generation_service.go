package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/config"
	"github.com/jmylchreest/pod-pipeline/internal/imagegen"
	"github.com/jmylchreest/pod-pipeline/internal/logging"
	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/products"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
)

var (
	// ErrTrendNotFound is returned for an unknown trend id.
	ErrTrendNotFound = errors.New("trend not found")
	// ErrAllGenerationsFailed is returned when no style produced a product.
	ErrAllGenerationsFailed = errors.New("all generations failed")
	// ErrTrendBusy is returned when queueing a trend that is already processing.
	ErrTrendBusy = errors.New("trend is already being processed")
)

// ImageGenerator produces images for a provider model.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (*imagegen.Image, error)
}

// GenerationServiceConfig configures artwork generation.
type GenerationServiceConfig struct {
	BudgetMode aimodel.BudgetMode
	Styles     []string
	Delay      time.Duration // Pause between real generation calls
	Pricing    config.PricingConfig
}

// GenerationService turns a trend into artwork and pending products.
type GenerationService struct {
	repos     *repository.Repositories
	selector  *aimodel.Selector
	generator ImageGenerator
	storage   *StorageService
	cfg       GenerationServiceConfig
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewGenerationService creates a generation service.
func NewGenerationService(repos *repository.Repositories, selector *aimodel.Selector, generator ImageGenerator, storage *StorageService, cfg GenerationServiceConfig, logger *slog.Logger) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Pricing.Formats) == 0 {
		cfg.Pricing = config.DefaultPricingConfig()
	}
	return &GenerationService{
		repos:     repos,
		selector:  selector,
		generator: generator,
		storage:   storage,
		cfg:       cfg,
		logger:    logger.With("component", "generation_service"),
		sleep:     sleepContext,
	}
}

// StyleResult is the outcome of one style and format.
type StyleResult struct {
	Style     string  `json:"style"`
	Format    string  `json:"format"`
	ModelKey  string  `json:"model_key,omitempty"`
	Cost      float64 `json:"cost"`
	ArtworkID string  `json:"artwork_id,omitempty"`
	ProductID string  `json:"product_id,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// GenerationReport summarises GenerateForTrend.
type GenerationReport struct {
	TrendID   string        `json:"trend_id"`
	Keyword   string        `json:"keyword"`
	Generated int           `json:"generated"`
	Failed    int           `json:"failed"`
	TotalCost float64       `json:"total_cost"`
	Results   []StyleResult `json:"results"`
}

// Enqueue queues a trend for the generation worker.
func (s *GenerationService) Enqueue(ctx context.Context, trendID string) error {
	trend, err := s.repos.Trend.GetByID(ctx, trendID)
	if err != nil {
		return fmt.Errorf("failed to get trend: %w", err)
	}
	if trend == nil {
		return ErrTrendNotFound
	}
	ok, err := s.repos.Trend.Enqueue(ctx, trendID)
	if err != nil {
		return fmt.Errorf("failed to enqueue trend: %w", err)
	}
	if !ok {
		return ErrTrendBusy
	}
	return nil
}

// GenerateForTrend generates one artwork and product per style and configured
// format. A failed style is recorded and does not stop the others.
func (s *GenerationService) GenerateForTrend(ctx context.Context, trendID string, styles []string) (*GenerationReport, error) {
	trend, err := s.repos.Trend.GetByID(ctx, trendID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trend: %w", err)
	}
	if trend == nil {
		return nil, ErrTrendNotFound
	}
	if len(styles) == 0 {
		styles = s.cfg.Styles
	}

	ctx = logging.WithTrendID(ctx, trend.ID)
	logger := logging.FromContext(ctx, s.logger)
	logger.Info("generation started", "keyword", trend.Keyword, "styles", len(styles), "formats", len(s.cfg.Pricing.Formats))

	report := &GenerationReport{TrendID: trend.ID, Keyword: trend.Keyword, Results: []StyleResult{}}
	calls := 0
	for i, style := range styles {
		for _, formatKey := range s.cfg.Pricing.Formats {
			format, ok := products.FormatByKey(formatKey)
			if !ok {
				continue
			}
			if calls > 0 {
				if err := s.sleep(ctx, s.cfg.Delay); err != nil {
					return report, err
				}
			}
			calls++

			res := s.generateOne(ctx, trend, style, format, i+1)
			if res.Error != "" {
				report.Failed++
				logger.Warn("style generation failed", "style", style, "format", format.Key, "error", res.Error)
			} else {
				report.Generated++
				report.TotalCost += res.Cost
			}
			report.Results = append(report.Results, res)
		}
	}
	report.TotalCost = math.Round(report.TotalCost*10000) / 10000

	logger.Info("generation complete",
		"generated", report.Generated,
		"failed", report.Failed,
		"total_cost", report.TotalCost,
	)
	if report.Generated == 0 && report.Failed > 0 {
		return report, ErrAllGenerationsFailed
	}
	return report, nil
}

func (s *GenerationService) generateOne(ctx context.Context, trend *models.Trend, style string, format products.CanvasFormat, design int) StyleResult {
	res := StyleResult{Style: style, Format: format.Key}
	fail := func(err error) StyleResult {
		res.Error = err.Error()
		return res
	}

	sel, err := s.selector.SelectModel(style, trend.Keyword, s.cfg.BudgetMode, nil)
	if err != nil {
		return fail(err)
	}
	res.ModelKey = sel.ModelKey

	prompt := products.Prompt(trend.Keyword, style, format.Panels)
	img, err := s.generator.Generate(ctx, imagegen.Request{
		Prompt:          prompt,
		ProviderModelID: sel.ProviderModelID,
		Params:          aimodel.ParamsFor(sel.ProviderModelID),
	})
	if err != nil {
		return fail(err)
	}

	var key, imageURL string
	if s.storage != nil && s.storage.IsEnabled() {
		key, imageURL, err = s.storage.UploadArtwork(ctx, img.Data, img.ContentType)
		if err != nil {
			return fail(err)
		}
	} else {
		imageURL = img.SourceURL
	}
	if imageURL == "" {
		return fail(fmt.Errorf("no image url: %w", ErrStorageDisabled))
	}

	artwork := &models.Artwork{
		ID:               ulid.Make().String(),
		TrendID:          trend.ID,
		Style:            style,
		Prompt:           prompt,
		ModelKey:         sel.ModelKey,
		ProviderModelID:  sel.ProviderModelID,
		Cost:             sel.Cost,
		QualityScore:     sel.QualityScore,
		Reasoning:        sel.Reasoning,
		StorageKey:       key,
		ImageURL:         imageURL,
		GenerationTimeMs: img.Duration.Milliseconds(),
	}
	if err := s.repos.Artwork.Insert(ctx, artwork); err != nil {
		return fail(fmt.Errorf("failed to save artwork: %w", err))
	}
	res.ArtworkID = artwork.ID
	res.ImageURL = imageURL
	res.Cost = sel.Cost

	dimension := s.cfg.Pricing.DimensionFor(format)
	product := &models.Product{
		ID:          ulid.Make().String(),
		ArtworkID:   artwork.ID,
		Title:       products.Title(trend.Keyword, format.Name, style, design),
		Description: products.Description(trend.Keyword, style, format.Name, dimension),
		SKU:         products.SKU(trend.Keyword, style, format.Key, dimension, artwork.ID),
		BasePrice:   products.Price(dimension, format.Panels, s.cfg.Pricing.GetMarkup(format.Key)),
		Tags:        products.Tags(trend.Keyword, style, trend.Category),
		Category:    trend.Category,
		Status:      models.ProductPendingApproval,
	}
	if err := s.repos.Product.Insert(ctx, product); err != nil {
		return fail(fmt.Errorf("failed to save product: %w", err))
	}
	res.ProductID = product.ID
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
