// Package routes provides shared route registration for the POD pipeline API.
// This allows both the main server and the OpenAPI generator to use
// the same route definitions, so the OpenAPI document always matches the server.
package routes

import (
	"context"

	"github.com/jmylchreest/pod-pipeline/internal/http/handlers"
)

// ModelHandlers defines the interface for model selection operations.
type ModelHandlers interface {
	ListModels(ctx context.Context, input *struct{}) (*handlers.ListModelsOutput, error)
	SelectModel(ctx context.Context, input *handlers.SelectModelInput) (*handlers.SelectModelOutput, error)
	EstimateCost(ctx context.Context, input *handlers.EstimateCostInput) (*handlers.EstimateCostOutput, error)
}

// TrendHandlers defines the interface for trend operations.
type TrendHandlers interface {
	AnalyzeTrends(ctx context.Context, input *handlers.AnalyzeTrendsInput) (*handlers.AnalyzeTrendsOutput, error)
	ListTrends(ctx context.Context, input *handlers.ListTrendsInput) (*handlers.ListTrendsOutput, error)
	Generate(ctx context.Context, input *handlers.GenerateInput) (*handlers.GenerateOutput, error)
}

// ProductHandlers defines the interface for product review operations.
type ProductHandlers interface {
	ListPending(ctx context.Context, input *handlers.ListPendingInput) (*handlers.ListPendingOutput, error)
	Approve(ctx context.Context, input *handlers.ProductIDInput) (*handlers.ApproveOutput, error)
	Reject(ctx context.Context, input *handlers.RejectInput) (*handlers.RejectOutput, error)
	BatchApprove(ctx context.Context, input *handlers.BatchApproveInput) (*handlers.BatchApproveOutput, error)
	Stats(ctx context.Context, input *struct{}) (*handlers.StatsOutput, error)
}

// Handlers aggregates all handler interfaces for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck func(ctx context.Context, input *struct{}) (*handlers.HealthCheckOutput, error)

	// Kubernetes probes (hidden from docs)
	Livez  func(ctx context.Context, input *struct{}) (*handlers.LivezOutput, error)
	Readyz func(ctx context.Context, input *struct{}) (*handlers.ReadyzOutput, error)

	Model   ModelHandlers
	Trend   TrendHandlers
	Product ProductHandlers
}
