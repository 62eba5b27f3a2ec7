package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/config"
	"github.com/jmylchreest/pod-pipeline/internal/imagegen"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/storage"
	"github.com/jmylchreest/pod-pipeline/internal/storefront"
	"github.com/jmylchreest/pod-pipeline/internal/trends"
)

// Services holds all service instances.
type Services struct {
	Selector   *aimodel.Selector
	Storage    *StorageService
	Trend      *TrendService
	Generation *GenerationService
	Approval   *ApprovalService
	Cleanup    *CleanupService
	Collector  *trends.Collector
	ImageGen   *imagegen.Router

	// S3 is the shared object storage client, nil when storage is disabled.
	S3 *s3.Client
}

// NewServices creates all service instances and the external clients they use.
func NewServices(ctx context.Context, cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	// One S3 client serves catalog overrides and artwork uploads.
	var s3Client *s3.Client
	if cfg.StorageEnabled {
		var err error
		s3Client, err = storage.NewClient(ctx, storage.Options{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Region:    cfg.StorageRegion,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	catalogCfg := aimodel.CatalogConfig{
		Bucket:      cfg.StorageBucket,
		Key:         cfg.CatalogConfigKey,
		BalancedKey: cfg.BalancedModel,
		Logger:      logger,
	}
	var putter storage.ObjectPutter
	if s3Client != nil {
		catalogCfg.S3Client = s3Client
		putter = s3Client
	}
	storageSvc := NewStorageService(cfg, putter, logger)

	catalog, err := aimodel.LoadCatalog(ctx, catalogCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load model catalog: %w", err)
	}
	selector := aimodel.NewSelector(catalog, aimodel.WithTestingMode(cfg.TestingMode), aimodel.WithLogger(logger))

	router, err := NewImageRouter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var publisher storefront.Publisher
	if cfg.ShopifyEnabled() {
		shop, err := storefront.NewShopifyClient(storefront.ShopifyOpts{
			ShopDomain:  cfg.ShopifyShopDomain,
			AccessToken: cfg.ShopifyAccessToken,
			APIVersion:  cfg.ShopifyAPIVersion,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create shopify client: %w", err)
		}
		publisher = shop
		logger.Info("storefront publishing enabled", "shop", cfg.ShopifyShopDomain)
	}

	primary, collector := NewSignalCollector(cfg, logger)
	var discoverer KeywordDiscoverer
	if primary != nil {
		discoverer = primary
	}
	trendSvc := NewTrendService(repos, discoverer, collector, trends.NewScorer(trends.SourceGoogleTrends), TrendServiceConfig{
		Region:               cfg.TrendRegion,
		FetchLimit:           cfg.TrendFetchLimit,
		AnalyzeLimit:         cfg.TrendFetchLimit,
		MinSearchVolume:      cfg.MinSearchVolume,
		MinTrendScore:        cfg.MinTrendScore,
		MaxTrendsToStore:     cfg.MaxTrendsToStore,
		RawTrendFreshness:    cfg.RawTrendFreshness,
		ScoredTrendFreshness: cfg.ScoredTrendFreshness,
		AutoGenerate:         cfg.AutoGenerate,
	}, logger)

	generationSvc := NewGenerationService(repos, selector, router, storageSvc, GenerationServiceConfig{
		BudgetMode: cfg.BudgetMode,
		Styles:     cfg.Styles,
		Delay:      cfg.GenerationDelay,
		Pricing:    cfg.Pricing,
	}, logger)

	return &Services{
		Selector:   selector,
		Storage:    storageSvc,
		Trend:      trendSvc,
		Generation: generationSvc,
		Approval:   NewApprovalService(repos, publisher, logger),
		Cleanup:    NewCleanupService(repos, storageSvc, logger),
		Collector:  collector,
		ImageGen:   router,
		S3:         s3Client,
	}, nil
}

// NewImageRouter builds the image providers. Imagen models go to the Gemini
// API when a key is set; everything else goes to Replicate.
func NewImageRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*imagegen.Router, error) {
	var providers []imagegen.Provider
	if cfg.GeminiAPIKey != "" {
		imagen, err := imagegen.NewImagenProvider(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, imagen)
	}
	if cfg.ReplicateAPIToken != "" {
		providers = append(providers, imagegen.NewReplicateProvider(imagegen.ReplicateOpts{
			BaseURL:  cfg.ReplicateBaseURL,
			APIToken: cfg.ReplicateAPIToken,
			Logger:   logger,
		}))
	}
	if len(providers) == 0 {
		logger.Warn("no image providers configured - set REPLICATE_API_TOKEN or GEMINI_API_KEY")
	}
	router := imagegen.NewRouter(providers...)
	logger.Info("image providers configured", "providers", router.Providers())
	return router, nil
}

// NewSignalCollector registers every signal source. The primary source is
// also the keyword discoverer; it is nil when no SerpAPI key is set.
func NewSignalCollector(cfg *config.Config, logger *slog.Logger) (*trends.PrimaryFetcher, *trends.Collector) {
	var fetchers []trends.Fetcher

	var primary *trends.PrimaryFetcher
	if cfg.SerpAPIKey != "" {
		client := trends.NewGoogleTrendsClient(trends.GoogleTrendsOpts{
			BaseURL: cfg.SerpAPIBaseURL,
			APIKey:  cfg.SerpAPIKey,
			Region:  cfg.TrendRegion,
		})
		primary = trends.NewPrimaryFetcher(client, trends.PrimaryFetcherConfig{
			BatchDelay:   cfg.SignalBatchDelay,
			RecentWindow: cfg.MomentumRecentWindow,
			Logger:       logger,
		})
		fetchers = append(fetchers, primary)
	} else {
		logger.Warn("SERPAPI_KEY not set - primary trend source disabled")
	}

	var marketplace trends.VolumeEstimator
	if cfg.MarketplaceScrapeEnabled && cfg.MarketplaceSearchURL != "" {
		marketplace = trends.NewMarketplaceScraper(trends.MarketplaceScraperConfig{
			SearchURL: cfg.MarketplaceSearchURL,
			Logger:    logger,
		})
	} else {
		marketplace = trends.NewUnavailableEstimator(trends.SourceMarketplace, "marketplace scraping disabled")
	}
	fetchers = append(fetchers, trends.FromEstimator(marketplace))

	var pinterest trends.VolumeEstimator
	if cfg.PinterestStubVolume > 0 {
		pinterest = trends.NewStubEstimator(trends.SourcePinterest, cfg.PinterestStubVolume)
	} else {
		pinterest = trends.NewUnavailableEstimator(trends.SourcePinterest, "no pinterest integration")
	}
	fetchers = append(fetchers, trends.FromEstimator(pinterest))

	collector := trends.NewCollector(trends.CollectorConfig{
		Timeout: cfg.SignalFetchTimeout,
		Logger:  logger,
	}, fetchers...)
	return primary, collector
}
