package routes

import (
	"context"

	"github.com/jmylchreest/pod-pipeline/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses - these are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: stubHealthCheck,
		Livez:       stubLivez,
		Readyz:      stubReadyz,
		Model:       &stubModelHandlers{},
		Trend:       &stubTrendHandlers{},
		Product:     &stubProductHandlers{},
	}
}

func stubHealthCheck(_ context.Context, _ *struct{}) (*handlers.HealthCheckOutput, error) {
	return nil, nil
}

func stubLivez(_ context.Context, _ *struct{}) (*handlers.LivezOutput, error) {
	return nil, nil
}

func stubReadyz(_ context.Context, _ *struct{}) (*handlers.ReadyzOutput, error) {
	return nil, nil
}

type stubModelHandlers struct{}

func (s *stubModelHandlers) ListModels(_ context.Context, _ *struct{}) (*handlers.ListModelsOutput, error) {
	return nil, nil
}

func (s *stubModelHandlers) SelectModel(_ context.Context, _ *handlers.SelectModelInput) (*handlers.SelectModelOutput, error) {
	return nil, nil
}

func (s *stubModelHandlers) EstimateCost(_ context.Context, _ *handlers.EstimateCostInput) (*handlers.EstimateCostOutput, error) {
	return nil, nil
}

type stubTrendHandlers struct{}

func (s *stubTrendHandlers) AnalyzeTrends(_ context.Context, _ *handlers.AnalyzeTrendsInput) (*handlers.AnalyzeTrendsOutput, error) {
	return nil, nil
}

func (s *stubTrendHandlers) ListTrends(_ context.Context, _ *handlers.ListTrendsInput) (*handlers.ListTrendsOutput, error) {
	return nil, nil
}

func (s *stubTrendHandlers) Generate(_ context.Context, _ *handlers.GenerateInput) (*handlers.GenerateOutput, error) {
	return nil, nil
}

type stubProductHandlers struct{}

func (s *stubProductHandlers) ListPending(_ context.Context, _ *handlers.ListPendingInput) (*handlers.ListPendingOutput, error) {
	return nil, nil
}

func (s *stubProductHandlers) Approve(_ context.Context, _ *handlers.ProductIDInput) (*handlers.ApproveOutput, error) {
	return nil, nil
}

func (s *stubProductHandlers) Reject(_ context.Context, _ *handlers.RejectInput) (*handlers.RejectOutput, error) {
	return nil, nil
}

func (s *stubProductHandlers) BatchApprove(_ context.Context, _ *handlers.BatchApproveInput) (*handlers.BatchApproveOutput, error) {
	return nil, nil
}

func (s *stubProductHandlers) Stats(_ context.Context, _ *struct{}) (*handlers.StatsOutput, error) {
	return nil, nil
}
