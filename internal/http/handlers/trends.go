package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/service"
)

// TrendAnalyzer runs trend analysis and lists stored trends.
type TrendAnalyzer interface {
	RunAnalysis(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisSummary, error)
	ListRecent(ctx context.Context, window time.Duration, limit int) ([]*models.Trend, error)
}

// Generator turns a stored trend into products.
type Generator interface {
	Enqueue(ctx context.Context, trendID string) error
	GenerateForTrend(ctx context.Context, trendID string, styles []string) (*service.GenerationReport, error)
}

// TrendHandler handles trend endpoints.
type TrendHandler struct {
	trends    TrendAnalyzer
	generator Generator
}

// NewTrendHandler creates a trend handler.
func NewTrendHandler(trends TrendAnalyzer, generator Generator) *TrendHandler {
	return &TrendHandler{trends: trends, generator: generator}
}

// AnalyzeTrendsInput represents an analysis request.
type AnalyzeTrendsInput struct {
	Body struct {
		Keywords []string `json:"keywords,omitempty" maxItems:"100" doc:"Analyse these keywords instead of discovering them"`
		Region   string   `json:"region,omitempty" doc:"Region code, defaults to the server region"`
		Month    int      `json:"month,omitempty" minimum:"0" maximum:"12" doc:"Month for seasonality, 0 for the current month"`
	} `required:"false"`
}

// AnalyzeTrendsOutput represents an analysis summary.
type AnalyzeTrendsOutput struct {
	Body *service.AnalysisSummary
}

// AnalyzeTrends runs one analysis pass and stores qualifying trends.
func (h *TrendHandler) AnalyzeTrends(ctx context.Context, input *AnalyzeTrendsInput) (*AnalyzeTrendsOutput, error) {
	summary, err := h.trends.RunAnalysis(ctx, service.AnalysisRequest{
		Keywords: input.Body.Keywords,
		Region:   input.Body.Region,
		Month:    input.Body.Month,
	})
	if err != nil {
		return nil, toHumaError(err, "trend analysis failed")
	}
	return &AnalyzeTrendsOutput{Body: summary}, nil
}

// ListTrendsInput represents a trend listing request.
type ListTrendsInput struct {
	Days  int `query:"days" default:"7" minimum:"1" maximum:"90"`
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500"`
}

// ListTrendsOutput represents a trend listing.
type ListTrendsOutput struct {
	Body struct {
		Trends []*models.Trend `json:"trends"`
		Count  int             `json:"count"`
	}
}

// ListTrends returns trends created in the last N days, best first.
func (h *TrendHandler) ListTrends(ctx context.Context, input *ListTrendsInput) (*ListTrendsOutput, error) {
	list, err := h.trends.ListRecent(ctx, time.Duration(input.Days)*24*time.Hour, input.Limit)
	if err != nil {
		return nil, toHumaError(err, "failed to list trends")
	}
	if list == nil {
		list = []*models.Trend{}
	}
	out := &ListTrendsOutput{}
	out.Body.Trends = list
	out.Body.Count = len(list)
	return out, nil
}

// GenerateInput represents a generation request for one trend.
type GenerateInput struct {
	ID   string `path:"id" doc:"Trend ID"`
	Wait bool   `query:"wait" doc:"Generate synchronously and return the report"`
	Body struct {
		Styles []string `json:"styles,omitempty" maxItems:"20" doc:"Only used with wait=true; defaults to the trend's suggested styles"`
	} `required:"false"`
}

// GenerateOutput is either a queued acknowledgement or a full report.
type GenerateOutput struct {
	Status int
	Body   struct {
		TrendID string                    `json:"trend_id"`
		Queued  bool                      `json:"queued"`
		Report  *service.GenerationReport `json:"report,omitempty"`
	}
}

// Generate queues a trend for the worker, or generates inline when wait is set.
// An inline run where every style failed still returns the report with 502.
func (h *TrendHandler) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	out := &GenerateOutput{}
	out.Body.TrendID = input.ID

	if !input.Wait {
		if err := h.generator.Enqueue(ctx, input.ID); err != nil {
			return nil, toHumaError(err, "failed to queue trend")
		}
		out.Status = http.StatusAccepted
		out.Body.Queued = true
		return out, nil
	}

	report, err := h.generator.GenerateForTrend(ctx, input.ID, input.Body.Styles)
	if err != nil {
		if errors.Is(err, service.ErrAllGenerationsFailed) && report != nil {
			out.Status = http.StatusBadGateway
			out.Body.Report = report
			return out, nil
		}
		return nil, toHumaError(err, "generation failed")
	}
	out.Status = http.StatusOK
	out.Body.Report = report
	return out, nil
}
