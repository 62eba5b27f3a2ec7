// Package worker runs queued artwork generation in the background.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/logging"
	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/service"
)

// Generator produces artwork for one trend.
type Generator interface {
	GenerateForTrend(ctx context.Context, trendID string, styles []string) (*service.GenerationReport, error)
}

// Worker claims pending trends and generates their artwork.
type Worker struct {
	trends       repository.TrendRepository
	generator    Generator
	pollInterval time.Duration
	concurrency  int
	staleAfter   time.Duration
	gracePeriod  time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	active       atomic.Int32
	cancelJobs   context.CancelFunc
	logger       *slog.Logger
}

// Config holds worker configuration.
type Config struct {
	PollInterval time.Duration
	Concurrency  int
	// StaleAfter fails trends left in processing longer than this at startup.
	StaleAfter time.Duration
	// GracePeriod bounds how long Stop waits for running generations.
	GracePeriod time.Duration
}

// New creates a new worker.
func New(trends repository.TrendRepository, generator Generator, cfg Config, logger *slog.Logger) *Worker {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = 30 * time.Minute
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		trends:       trends,
		generator:    generator,
		pollInterval: cfg.PollInterval,
		concurrency:  cfg.Concurrency,
		staleAfter:   cfg.StaleAfter,
		gracePeriod:  cfg.GracePeriod,
		stop:         make(chan struct{}),
		cancelJobs:   func() {},
		logger:       logger.With("component", "worker"),
	}
}

// Start recovers trends orphaned by a previous run and begins polling.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("starting", "concurrency", w.concurrency, "poll_interval", w.pollInterval)

	if w.trends != nil {
		if n, err := w.trends.ResetStaleProcessing(ctx, w.staleAfter); err != nil {
			w.logger.Error("failed to reset stale trends", "error", err)
		} else if n > 0 {
			w.logger.Warn("reset stale trends", "count", n)
		}
	}

	// Running generations outlive ctx so Stop can drain them.
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancelJobs = cancel

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, jobCtx, i)
	}
}

// Stop stops polling and waits up to the grace period for running
// generations. Generations still running after that are cancelled.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping", "active", w.active.Load())
		close(w.stop)

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(w.gracePeriod):
			w.logger.Warn("grace period expired, cancelling generations", "active", w.active.Load())
			w.cancelJobs()
			<-done
		}
		w.cancelJobs()
		w.logger.Info("stopped")
	})
}

// IsBusy reports whether a generation is running.
func (w *Worker) IsBusy() bool {
	return w.active.Load() > 0
}

func (w *Worker) runWorker(ctx, jobCtx context.Context, workerID int) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain the queue before waiting for the next tick.
			for w.processNext(jobCtx, workerID) {
				select {
				case <-w.stop:
					return
				case <-ctx.Done():
					return
				default:
				}
			}
		}
	}
}

// processNext claims and runs one trend. It returns true when a trend was
// claimed.
func (w *Worker) processNext(ctx context.Context, workerID int) bool {
	trend, err := w.trends.ClaimPendingGeneration(ctx)
	if err != nil {
		w.logger.Error("failed to claim trend", "worker_id", workerID, "error", err)
		return false
	}
	if trend == nil {
		return false
	}

	w.active.Add(1)
	defer w.active.Add(-1)

	ctx = logging.WithTrendID(ctx, trend.ID)
	log := logging.FromContext(ctx, w.logger)
	log.Info("generating artwork", "worker_id", workerID, "keyword", trend.Keyword)

	report, err := w.generator.GenerateForTrend(ctx, trend.ID, nil)
	if err != nil {
		w.finish(ctx, trend.ID, models.GenerationFailed, err.Error())
		log.Error("generation failed", "error", err)
		return true
	}

	w.finish(ctx, trend.ID, models.GenerationCompleted, "")
	log.Info("generation completed",
		"generated", report.Generated,
		"failed", report.Failed,
		"total_cost", report.TotalCost,
	)
	return true
}

func (w *Worker) finish(ctx context.Context, trendID string, status models.GenerationStatus, errMsg string) {
	// The status write must land even when generation was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := w.trends.UpdateStatus(ctx, trendID, status, errMsg); err != nil {
		w.logger.Error("failed to update trend status", "trend_id", trendID, "status", status, "error", err)
	}
}
