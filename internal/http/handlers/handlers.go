// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/pod-pipeline/internal/version"
)

// HealthStatus describes the running server.
type HealthStatus struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Storage    bool   `json:"storage_enabled"`
	Publishing bool   `json:"publishing_enabled"`
	Testing    bool   `json:"testing_mode"`
}

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body HealthStatus
}

// HealthHandler reports server health and which integrations are enabled.
type HealthHandler struct {
	storage    bool
	publishing bool
	testing    bool
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(storage, publishing, testing bool) *HealthHandler {
	return &HealthHandler{storage: storage, publishing: publishing, testing: testing}
}

// HealthCheck returns the health status of the API.
func (h *HealthHandler) HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	return &HealthCheckOutput{Body: HealthStatus{
		Status:     "healthy",
		Version:    version.Get().Short(),
		Storage:    h.storage,
		Publishing: h.publishing,
		Testing:    h.testing,
	}}, nil
}

// LivezOutput is the liveness probe response.
type LivezOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez reports that the process is running.
func Livez(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// DBPinger checks database connectivity.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// ReadyzOutput is the readiness probe response.
type ReadyzOutput struct {
	Body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

// ReadyzHandler reports readiness based on database connectivity.
type ReadyzHandler struct {
	db DBPinger
}

// NewReadyzHandler creates a readiness handler.
func NewReadyzHandler(db DBPinger) *ReadyzHandler {
	return &ReadyzHandler{db: db}
}

// Readyz returns 503 when the database is unreachable.
func (h *ReadyzHandler) Readyz(ctx context.Context, input *struct{}) (*ReadyzOutput, error) {
	if err := h.db.PingContext(ctx); err != nil {
		return nil, huma.Error503ServiceUnavailable("database unavailable", err)
	}
	out := &ReadyzOutput{}
	out.Body.Status = "ready"
	out.Body.Database = "ok"
	return out, nil
}
