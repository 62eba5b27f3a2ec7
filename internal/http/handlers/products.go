package handlers

import (
	"context"

	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/service"
)

// Approver moves generated products through review.
type Approver interface {
	ListPending(ctx context.Context, limit int) ([]*models.ProductWithArtwork, error)
	Approve(ctx context.Context, id string) (*service.ApproveResult, error)
	Reject(ctx context.Context, id, reason string) error
	BatchApprove(ctx context.Context, ids []string) (int64, error)
	Stats(ctx context.Context) (*models.ApprovalStats, error)
}

// ProductHandler handles product review endpoints.
type ProductHandler struct {
	approver Approver
}

// NewProductHandler creates a product handler.
func NewProductHandler(approver Approver) *ProductHandler {
	return &ProductHandler{approver: approver}
}

// ListPendingInput represents a pending product listing request.
type ListPendingInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500"`
}

// ListPendingOutput lists products awaiting review.
type ListPendingOutput struct {
	Body struct {
		Products []*models.ProductWithArtwork `json:"products"`
		Count    int                          `json:"count"`
	}
}

// ListPending returns pending products, highest trend score first.
func (h *ProductHandler) ListPending(ctx context.Context, input *ListPendingInput) (*ListPendingOutput, error) {
	list, err := h.approver.ListPending(ctx, input.Limit)
	if err != nil {
		return nil, toHumaError(err, "failed to list pending products")
	}
	if list == nil {
		list = []*models.ProductWithArtwork{}
	}
	out := &ListPendingOutput{}
	out.Body.Products = list
	out.Body.Count = len(list)
	return out, nil
}

// ProductIDInput identifies one product.
type ProductIDInput struct {
	ID string `path:"id" doc:"Product ID"`
}

// ApproveOutput reports an approval.
type ApproveOutput struct {
	Body *service.ApproveResult
}

// Approve approves a product and publishes it when a storefront is configured.
func (h *ProductHandler) Approve(ctx context.Context, input *ProductIDInput) (*ApproveOutput, error) {
	result, err := h.approver.Approve(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err, "failed to approve product")
	}
	return &ApproveOutput{Body: result}, nil
}

// RejectInput represents a rejection.
type RejectInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body struct {
		Reason string `json:"reason,omitempty" maxLength:"1000"`
	} `required:"false"`
}

// RejectOutput reports a rejection.
type RejectOutput struct {
	Body struct {
		ProductID string               `json:"product_id"`
		Status    models.ProductStatus `json:"status"`
	}
}

// Reject rejects a product with an optional reason.
func (h *ProductHandler) Reject(ctx context.Context, input *RejectInput) (*RejectOutput, error) {
	if err := h.approver.Reject(ctx, input.ID, input.Body.Reason); err != nil {
		return nil, toHumaError(err, "failed to reject product")
	}
	out := &RejectOutput{}
	out.Body.ProductID = input.ID
	out.Body.Status = models.ProductRejected
	return out, nil
}

// BatchApproveInput represents a batch approval.
type BatchApproveInput struct {
	Body struct {
		IDs []string `json:"ids" minItems:"1" maxItems:"500"`
	}
}

// BatchApproveOutput reports how many products changed.
type BatchApproveOutput struct {
	Body struct {
		Requested int   `json:"requested"`
		Approved  int64 `json:"approved"`
	}
}

// BatchApprove approves pending products without publishing them.
func (h *ProductHandler) BatchApprove(ctx context.Context, input *BatchApproveInput) (*BatchApproveOutput, error) {
	n, err := h.approver.BatchApprove(ctx, input.Body.IDs)
	if err != nil {
		return nil, toHumaError(err, "failed to approve products")
	}
	out := &BatchApproveOutput{}
	out.Body.Requested = len(input.Body.IDs)
	out.Body.Approved = n
	return out, nil
}

// StatsOutput reports review counts.
type StatsOutput struct {
	Body *models.ApprovalStats
}

// Stats returns counts by product status and the approval rate.
func (h *ProductHandler) Stats(ctx context.Context, input *struct{}) (*StatsOutput, error) {
	stats, err := h.approver.Stats(ctx)
	if err != nil {
		return nil, toHumaError(err, "failed to load stats")
	}
	return &StatsOutput{Body: stats}, nil
}
