package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/storefront"
)

var (
	// ErrProductNotFound is returned for an unknown product id.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductFinal is returned when changing a published product.
	ErrProductFinal = errors.New("product is already published")
)

// DefaultPendingLimit caps ListPending when no limit is given.
const DefaultPendingLimit = 50

// ApprovalService runs the product approval workflow.
type ApprovalService struct {
	repos     *repository.Repositories
	publisher storefront.Publisher // nil when no storefront is configured
	logger    *slog.Logger
}

// NewApprovalService creates an approval service. publisher may be nil.
func NewApprovalService(repos *repository.Repositories, publisher storefront.Publisher, logger *slog.Logger) *ApprovalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalService{
		repos:     repos,
		publisher: publisher,
		logger:    logger.With("component", "approval_service"),
	}
}

// PublishingEnabled reports whether approvals are published to a storefront.
func (s *ApprovalService) PublishingEnabled() bool {
	return s.publisher != nil
}

// ListPending returns products awaiting approval, newest first.
func (s *ApprovalService) ListPending(ctx context.Context, limit int) ([]*models.ProductWithArtwork, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	return s.repos.Product.ListByStatus(ctx, models.ProductPendingApproval, limit)
}

// ApproveResult reports an approval.
type ApproveResult struct {
	ProductID    string               `json:"product_id"`
	Status       models.ProductStatus `json:"status"`
	StorefrontID string               `json:"storefront_id,omitempty"`
	PublishError string               `json:"publish_error,omitempty"`
}

// Approve marks a product approved and publishes it when a storefront is
// configured. A failed publish leaves the product approved.
func (s *ApprovalService) Approve(ctx context.Context, id string) (*ApproveResult, error) {
	if err := s.transition(ctx, id, models.ProductApproved, ""); err != nil {
		return nil, err
	}
	s.logger.Info("product approved", "product_id", id)

	result := &ApproveResult{ProductID: id, Status: models.ProductApproved}
	if s.publisher == nil {
		return result, nil
	}

	pub, err := s.publish(ctx, id)
	if err != nil {
		s.logger.Warn("failed to publish product", "product_id", id, "error", err)
		result.PublishError = err.Error()
		return result, nil
	}
	result.Status = models.ProductPublished
	result.StorefrontID = pub.ProductID
	return result, nil
}

// Reject marks a product rejected with an optional reason.
func (s *ApprovalService) Reject(ctx context.Context, id, reason string) error {
	if err := s.transition(ctx, id, models.ProductRejected, reason); err != nil {
		return err
	}
	s.logger.Info("product rejected", "product_id", id, "reason", reason)
	return nil
}

// BatchApprove approves several products and returns how many changed.
// Products are not published by batch approval.
func (s *ApprovalService) BatchApprove(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repos.Product.UpdateStatusBatch(ctx, ids, models.ProductApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to approve products: %w", err)
	}
	s.logger.Info("products approved", "requested", len(ids), "approved", n)
	return n, nil
}

// Stats returns approval queue counts.
func (s *ApprovalService) Stats(ctx context.Context) (*models.ApprovalStats, error) {
	return s.repos.Product.Stats(ctx)
}

func (s *ApprovalService) transition(ctx context.Context, id string, status models.ProductStatus, reason string) error {
	changed, err := s.repos.Product.UpdateStatus(ctx, id, status, reason)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if changed {
		return nil
	}
	p, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return ErrProductNotFound
	}
	return ErrProductFinal
}

func (s *ApprovalService) publish(ctx context.Context, id string) (*storefront.Publication, error) {
	p, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	artwork, err := s.repos.Artwork.GetByID(ctx, p.ArtworkID)
	if err != nil {
		return nil, err
	}

	listing := storefront.Listing{
		Title:       p.Title,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.BasePrice,
		Tags:        p.Tags,
	}
	if artwork != nil {
		listing.ImageURL = artwork.ImageURL
	}

	pub, err := s.publisher.CreateProduct(ctx, listing)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Product.MarkPublished(ctx, id, pub.ProductID); err != nil {
		return nil, fmt.Errorf("failed to mark product published: %w", err)
	}
	s.logger.Info("product published", "product_id", id, "storefront_id", pub.ProductID)
	return pub, nil
}
