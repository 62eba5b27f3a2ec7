// Command trend-scan runs one trend analysis pass against the configured
// database and signal sources, and optionally generates artwork for the
// stored trends. It is intended for cron jobs and manual runs.
//
// Usage:
//
//	go run ./cmd/trend-scan
//	go run ./cmd/trend-scan -keywords "cat mom,dog dad" -month 11 -generate
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jmylchreest/pod-pipeline/internal/config"
	"github.com/jmylchreest/pod-pipeline/internal/database"
	"github.com/jmylchreest/pod-pipeline/internal/logging"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/service"
)

var (
	keywordsFlag = flag.String("keywords", "", "Comma-separated keywords to analyse instead of discovering")
	regionFlag   = flag.String("region", "", "Region code (default: TREND_REGION)")
	monthFlag    = flag.Int("month", 0, "Month 1-12 for seasonality (default: current month)")
	generateFlag = flag.Bool("generate", false, "Generate artwork for each stored trend")
	rawFlag      = flag.Bool("raw", false, "Store discovered keywords unscored and exit")
)

func main() {
	flag.Parse()
	logger := logging.SetDefault()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Error("trend scan failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx, nil)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	services, err := service.NewServices(ctx, cfg, repository.NewRepositories(db), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if *rawFlag {
		res, err := services.Trend.FetchAndStoreRaw(ctx, *regionFlag)
		if err != nil {
			return err
		}
		return printJSON(res)
	}

	summary, err := services.Trend.RunAnalysis(ctx, service.AnalysisRequest{
		Keywords: splitList(*keywordsFlag),
		Region:   *regionFlag,
		Month:    *monthFlag,
	})
	if err != nil {
		return err
	}
	if err := printJSON(summary); err != nil {
		return err
	}

	if !*generateFlag {
		return nil
	}
	for _, trend := range summary.StoredTrends {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report, err := services.Generation.GenerateForTrend(ctx, trend.ID, nil)
		if err != nil {
			logger.Warn("generation failed", "trend_id", trend.ID, "keyword", trend.Keyword, "error", err)
		}
		if report != nil {
			if err := printJSON(report); err != nil {
				return err
			}
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
