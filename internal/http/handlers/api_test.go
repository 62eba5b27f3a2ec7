package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/http/mw"
	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/service"
	"github.com/jmylchreest/pod-pipeline/internal/trends"
)

type fakeTrends struct {
	lastReq    service.AnalysisRequest
	lastWindow time.Duration
	lastLimit  int
	err        error
}

func (f *fakeTrends) RunAnalysis(_ context.Context, req service.AnalysisRequest) (*service.AnalysisSummary, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &service.AnalysisSummary{RunID: "run-1", Analyzed: len(req.Keywords), Stored: 1}, nil
}

func (f *fakeTrends) ListRecent(_ context.Context, window time.Duration, limit int) ([]*models.Trend, error) {
	f.lastWindow, f.lastLimit = window, limit
	return nil, f.err
}

type fakeGenerator struct {
	enqueued []string
	styles   []string
	err      error
	report   *service.GenerationReport
}

func (f *fakeGenerator) Enqueue(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, id)
	return nil
}

func (f *fakeGenerator) GenerateForTrend(_ context.Context, id string, styles []string) (*service.GenerationReport, error) {
	f.styles = styles
	return f.report, f.err
}

type fakeApprover struct {
	rejected map[string]string
	batch    []string
	err      error
}

func (f *fakeApprover) ListPending(context.Context, int) ([]*models.ProductWithArtwork, error) {
	return []*models.ProductWithArtwork{{Product: models.Product{ID: "p1", Status: models.ProductPendingApproval}}}, f.err
}

func (f *fakeApprover) Approve(_ context.Context, id string) (*service.ApproveResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.ApproveResult{ProductID: id, Status: models.ProductPublished, StorefrontID: "gid://shopify/Product/1"}, nil
}

func (f *fakeApprover) Reject(_ context.Context, id, reason string) error {
	if f.err != nil {
		return f.err
	}
	if f.rejected == nil {
		f.rejected = make(map[string]string)
	}
	f.rejected[id] = reason
	return nil
}

func (f *fakeApprover) BatchApprove(_ context.Context, ids []string) (int64, error) {
	f.batch = ids
	return int64(len(ids)) - 1, f.err
}

func (f *fakeApprover) Stats(context.Context) (*models.ApprovalStats, error) {
	return &models.ApprovalStats{Pending: 2, Approved: 1, Published: 1, Total: 4, ApprovalRate: 50}, f.err
}

func newTestAPI(t *testing.T, tr *fakeTrends, gen *fakeGenerator, appr *fakeApprover) humatest.TestAPI {
	t.Helper()
	cfg := huma.DefaultConfig("POD Pipeline API", "test")
	cfg.CreateHooks = nil
	_, api := humatest.New(t, cfg)

	mh := NewModelHandler(aimodel.NewSelector(aimodel.DefaultCatalog()), aimodel.BudgetBalanced)
	mw.Get(api, "/api/v1/models", mh.ListModels)
	mw.Post(api, "/api/v1/models/select", mh.SelectModel)
	mw.Post(api, "/api/v1/models/estimate", mh.EstimateCost)

	th := NewTrendHandler(tr, gen)
	mw.Post(api, "/api/v1/trends/analyze", th.AnalyzeTrends)
	mw.Get(api, "/api/v1/trends", th.ListTrends)
	mw.Post(api, "/api/v1/trends/{id}/generate", th.Generate)

	ph := NewProductHandler(appr)
	mw.Get(api, "/api/v1/products/pending", ph.ListPending)
	mw.Get(api, "/api/v1/products/stats", ph.Stats)
	mw.Post(api, "/api/v1/products/batch-approve", ph.BatchApprove)
	mw.Post(api, "/api/v1/products/{id}/approve", ph.Approve)
	mw.Post(api, "/api/v1/products/{id}/reject", ph.Reject)
	return api
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

// ========================================
// Model Endpoint Tests
// ========================================

func TestSelectModelEndpoint(t *testing.T) {
	api := newTestAPI(t, &fakeTrends{}, &fakeGenerator{}, &fakeApprover{})
	catalog := aimodel.DefaultCatalog()

	resp := api.Post("/api/v1/models/select", map[string]any{"style": "typography", "keyword": "coffee quotes"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decode[aimodel.SelectionResult](t, resp.Body.Bytes())
	assert.Equal(t, catalog.ForRole(aimodel.RoleText).Key, got.ModelKey)
	assert.NotEmpty(t, got.Reasoning)

	resp = api.Post("/api/v1/models/select", map[string]any{"style": "minimalist", "keyword": "mountains", "budget_mode": "cheap"})
	require.Equal(t, http.StatusOK, resp.Code)
	got = decode[aimodel.SelectionResult](t, resp.Body.Bytes())
	assert.Equal(t, catalog.ForRole(aimodel.RoleCheapest).Key, got.ModelKey)
}

func TestSelectModelEndpoint_Validation(t *testing.T) {
	api := newTestAPI(t, &fakeTrends{}, &fakeGenerator{}, &fakeApprover{})

	resp := api.Post("/api/v1/models/select", map[string]any{"style": "vintage", "keyword": "cats", "quality_priority": 11})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/api/v1/models/select", map[string]any{"style": "vintage", "keyword": "cats", "budget_mode": "lavish"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestEstimateCostEndpoint(t *testing.T) {
	api := newTestAPI(t, &fakeTrends{}, &fakeGenerator{}, &fakeApprover{})

	resp := api.Post("/api/v1/models/estimate", map[string]any{
		"keywords":    []string{"cats", "dogs"},
		"styles":      []string{"minimalist", "vintage", "typography"},
		"budget_mode": "cheap",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	est := decode[aimodel.BatchEstimate](t, resp.Body.Bytes())
	assert.Equal(t, 6, est.TotalImages)
	assert.Len(t, est.Breakdown, 6)
	assert.Greater(t, est.TotalCost, 0.0)

	resp = api.Post("/api/v1/models/estimate", map[string]any{"keywords": []string{}, "styles": []string{"vintage"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestListModelsEndpoint(t *testing.T) {
	api := newTestAPI(t, &fakeTrends{}, &fakeGenerator{}, &fakeApprover{})

	resp := api.Get("/api/v1/models")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[struct {
		Models     []aimodel.ModelSpec `json:"models"`
		Roles      map[string]string   `json:"roles"`
		BudgetMode string              `json:"budget_mode"`
	}](t, resp.Body.Bytes())
	assert.Len(t, body.Models, aimodel.DefaultCatalog().Len())
	assert.Equal(t, aimodel.DefaultBalancedModel, body.Roles["balanced"])
	assert.Equal(t, "balanced", body.BudgetMode)
}

// ========================================
// Trend Endpoint Tests
// ========================================

func TestAnalyzeTrendsEndpoint(t *testing.T) {
	tr := &fakeTrends{}
	api := newTestAPI(t, tr, &fakeGenerator{}, &fakeApprover{})

	resp := api.Post("/api/v1/trends/analyze", map[string]any{"keywords": []string{"cats", "dogs"}, "region": "US", "month": 12})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{"cats", "dogs"}, tr.lastReq.Keywords)
	assert.Equal(t, "US", tr.lastReq.Region)
	assert.Equal(t, 12, tr.lastReq.Month)

	// No body means discover keywords with server defaults.
	resp = api.Post("/api/v1/trends/analyze")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Empty(t, tr.lastReq.Keywords)

	tr.err = trends.ErrInvalidMonth
	resp = api.Post("/api/v1/trends/analyze", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestListTrendsEndpoint(t *testing.T) {
	tr := &fakeTrends{}
	api := newTestAPI(t, tr, &fakeGenerator{}, &fakeApprover{})

	resp := api.Get("/api/v1/trends")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 7*24*time.Hour, tr.lastWindow)
	assert.Equal(t, 50, tr.lastLimit)
	assert.JSONEq(t, `{"trends":[],"count":0}`, resp.Body.String())

	resp = api.Get("/api/v1/trends?days=2&limit=5")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 48*time.Hour, tr.lastWindow)
	assert.Equal(t, 5, tr.lastLimit)
}

func TestGenerateEndpoint_Queue(t *testing.T) {
	gen := &fakeGenerator{}
	api := newTestAPI(t, &fakeTrends{}, gen, &fakeApprover{})

	resp := api.Post("/api/v1/trends/t1/generate")
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())
	assert.Equal(t, []string{"t1"}, gen.enqueued)

	gen.err = service.ErrTrendBusy
	resp = api.Post("/api/v1/trends/t1/generate")
	assert.Equal(t, http.StatusConflict, resp.Code)

	gen.err = service.ErrTrendNotFound
	resp = api.Post("/api/v1/trends/missing/generate")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGenerateEndpoint_Wait(t *testing.T) {
	gen := &fakeGenerator{report: &service.GenerationReport{TrendID: "t1", Generated: 2}}
	api := newTestAPI(t, &fakeTrends{}, gen, &fakeApprover{})

	resp := api.Post("/api/v1/trends/t1/generate?wait=true", map[string]any{"styles": []string{"vintage"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{"vintage"}, gen.styles)
	assert.Contains(t, resp.Body.String(), `"generated":2`)

	// Every style failing still returns the report.
	gen.report = &service.GenerationReport{TrendID: "t1", Failed: 3}
	gen.err = service.ErrAllGenerationsFailed
	resp = api.Post("/api/v1/trends/t1/generate?wait=true")
	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), `"failed":3`)
}

// ========================================
// Product Endpoint Tests
// ========================================

func TestProductEndpoints(t *testing.T) {
	appr := &fakeApprover{}
	api := newTestAPI(t, &fakeTrends{}, &fakeGenerator{}, appr)

	resp := api.Get("/api/v1/products/pending")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"count":1`)

	resp = api.Post("/api/v1/products/p1/approve")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"status":"published"`)

	resp = api.Post("/api/v1/products/p2/reject", map[string]any{"reason": "blurry"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "blurry", appr.rejected["p2"])

	resp = api.Post("/api/v1/products/p3/reject")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "", appr.rejected["p3"])

	resp = api.Post("/api/v1/products/batch-approve", map[string]any{"ids": []string{"a", "b", "c"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"requested":3,"approved":2}`, resp.Body.String())

	resp = api.Post("/api/v1/products/batch-approve", map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Get("/api/v1/products/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"approval_rate":50`)
}

func TestProductEndpoints_Errors(t *testing.T) {
	appr := &fakeApprover{err: service.ErrProductFinal}
	api := newTestAPI(t, &fakeTrends{}, &fakeGenerator{}, appr)

	assert.Equal(t, http.StatusConflict, api.Post("/api/v1/products/p1/approve").Code)
	assert.Equal(t, http.StatusConflict, api.Post("/api/v1/products/p1/reject").Code)

	appr.err = service.ErrProductNotFound
	assert.Equal(t, http.StatusNotFound, api.Post("/api/v1/products/nope/approve").Code)
}
