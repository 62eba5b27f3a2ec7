package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
)

// CleanupService removes rejected products and the artwork only they used.
type CleanupService struct {
	repos      *repository.Repositories
	storageSvc *StorageService
	logger     *slog.Logger
	now        func() time.Time
}

// NewCleanupService creates a new cleanup service.
func NewCleanupService(repos *repository.Repositories, storageSvc *StorageService, logger *slog.Logger) *CleanupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupService{
		repos:      repos,
		storageSvc: storageSvc,
		logger:     logger.With("component", "cleanup"),
		now:        time.Now,
	}
}

// CleanupResult contains the results of a cleanup operation.
type CleanupResult struct {
	ProductsDeleted int64
	ArtworkDeleted  int
	ObjectsDeleted  int
	Errors          []error
}

// PurgeRejected removes data older than maxAge:
//   - rejected products
//   - artwork no product references
//   - stored images no artwork references
//
// Trends are kept for keyword dedup and sales history. Each step runs even
// when an earlier one failed; failures are collected in the result.
func (s *CleanupService) PurgeRejected(ctx context.Context, maxAge time.Duration) *CleanupResult {
	result := &CleanupResult{}
	cutoff := s.now().Add(-maxAge)

	s.logger.Info("starting cleanup", "max_age", maxAge.String(), "cutoff", cutoff.UTC().Format(time.RFC3339))

	n, err := s.repos.Product.DeleteByStatusBefore(ctx, models.ProductRejected, cutoff)
	if err != nil {
		s.logger.Error("failed to delete rejected products", "error", err)
		result.Errors = append(result.Errors, err)
	}
	result.ProductsDeleted = n

	deleted, keys, err := s.repos.Artwork.DeleteOrphaned(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete orphaned artwork", "error", err)
		result.Errors = append(result.Errors, err)
	}
	result.ArtworkDeleted = deleted

	if len(keys) > 0 && s.storageSvc != nil {
		objects, err := s.storageSvc.DeleteArtwork(ctx, keys)
		if err != nil {
			s.logger.Error("failed to delete artwork objects", "error", err)
			result.Errors = append(result.Errors, err)
		}
		result.ObjectsDeleted = objects
	}

	s.logger.Info("cleanup completed",
		"products_deleted", result.ProductsDeleted,
		"artwork_deleted", result.ArtworkDeleted,
		"objects_deleted", result.ObjectsDeleted,
		"errors", len(result.Errors),
	)
	return result
}

// RunScheduledCleanup runs the cleanup task until ctx is cancelled.
// It runs immediately on start and then at the specified interval.
func (s *CleanupService) RunScheduledCleanup(ctx context.Context, maxAge, interval time.Duration) {
	s.logger.Info("starting scheduled cleanup", "max_age", maxAge.String(), "interval", interval.String())

	s.PurgeRejected(ctx, maxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduled cleanup stopped")
			return
		case <-ticker.C:
			s.PurgeRejected(ctx, maxAge)
		}
	}
}
