package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/service"
	"github.com/jmylchreest/pod-pipeline/internal/trends"
)

func TestStatusFor(t *testing.T) {
	_, budgetErr := aimodel.ParseBudgetMode("lavish")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", budgetErr, http.StatusUnprocessableEntity},
		{"invalid month", fmt.Errorf("scoring: %w", trends.ErrInvalidMonth), http.StatusUnprocessableEntity},
		{"trend not found", service.ErrTrendNotFound, http.StatusNotFound},
		{"product not found", service.ErrProductNotFound, http.StatusNotFound},
		{"trend busy", service.ErrTrendBusy, http.StatusConflict},
		{"product final", fmt.Errorf("approve: %w", service.ErrProductFinal), http.StatusConflict},
		{"all generations failed", service.ErrAllGenerationsFailed, http.StatusBadGateway},
		{"configuration", aimodel.ErrConfiguration, http.StatusInternalServerError},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
