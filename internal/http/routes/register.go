package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/pod-pipeline/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	mw.Get(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	// Kubernetes probes (hidden from docs - internal use only)
	mw.HiddenGet(api, "/healthz", h.Livez)
	mw.HiddenGet(api, "/readyz", h.Readyz)

	// --- Models ---
	mw.Get(api, "/api/v1/models", h.Model.ListModels,
		mw.WithTags("Models"),
		mw.WithSummary("List image models"),
		mw.WithDescription("Returns the model catalog and the model assigned to each selection role."),
		mw.WithOperationID("listModels"))
	mw.Post(api, "/api/v1/models/select", h.Model.SelectModel,
		mw.WithTags("Models"),
		mw.WithSummary("Select a model"),
		mw.WithDescription("Chooses the image model for a style and keyword under a budget mode, with the reasoning behind the choice."),
		mw.WithOperationID("selectModel"))
	mw.Post(api, "/api/v1/models/estimate", h.Model.EstimateCost,
		mw.WithTags("Models"),
		mw.WithSummary("Estimate batch cost"),
		mw.WithOperationID("estimateCost"))

	// --- Trends ---
	mw.Post(api, "/api/v1/trends/analyze", h.Trend.AnalyzeTrends,
		mw.WithTags("Trends"),
		mw.WithSummary("Run trend analysis"),
		mw.WithDescription("Collects signals for discovered or supplied keywords, scores them and stores the qualifying trends."),
		mw.WithOperationID("analyzeTrends"))
	mw.Get(api, "/api/v1/trends", h.Trend.ListTrends,
		mw.WithTags("Trends"),
		mw.WithSummary("List recent trends"),
		mw.WithOperationID("listTrends"))
	mw.Post(api, "/api/v1/trends/{id}/generate", h.Trend.Generate,
		mw.WithTags("Trends"),
		mw.WithSummary("Generate artwork for a trend"),
		mw.WithDescription("Queues the trend for the generation worker. With wait=true the artwork is generated inline and the report returned."),
		mw.WithStatus(http.StatusAccepted),
		mw.WithErrors(http.StatusNotFound, http.StatusConflict, http.StatusBadGateway),
		mw.WithOperationID("generateForTrend"))

	// --- Products ---
	mw.Get(api, "/api/v1/products/pending", h.Product.ListPending,
		mw.WithTags("Products"),
		mw.WithSummary("List products awaiting review"),
		mw.WithOperationID("listPendingProducts"))
	mw.Get(api, "/api/v1/products/stats", h.Product.Stats,
		mw.WithTags("Products"),
		mw.WithSummary("Get approval statistics"),
		mw.WithOperationID("getApprovalStats"))
	mw.Post(api, "/api/v1/products/batch-approve", h.Product.BatchApprove,
		mw.WithTags("Products"),
		mw.WithSummary("Approve several products"),
		mw.WithDescription("Approves pending products without publishing them."),
		mw.WithOperationID("batchApproveProducts"))
	mw.Post(api, "/api/v1/products/{id}/approve", h.Product.Approve,
		mw.WithTags("Products"),
		mw.WithSummary("Approve a product"),
		mw.WithDescription("Approves the product and publishes it to the storefront when one is configured. A failed publish leaves the product approved."),
		mw.WithErrors(http.StatusNotFound, http.StatusConflict),
		mw.WithOperationID("approveProduct"))
	mw.Post(api, "/api/v1/products/{id}/reject", h.Product.Reject,
		mw.WithTags("Products"),
		mw.WithSummary("Reject a product"),
		mw.WithErrors(http.StatusNotFound, http.StatusConflict),
		mw.WithOperationID("rejectProduct"))
}
