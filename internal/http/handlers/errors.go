package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
	"github.com/jmylchreest/pod-pipeline/internal/service"
	"github.com/jmylchreest/pod-pipeline/internal/trends"
)

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case aimodel.IsValidation(err), errors.Is(err, trends.ErrInvalidMonth):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTrendNotFound), errors.Is(err, service.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTrendBusy), errors.Is(err, service.ErrProductFinal):
		return http.StatusConflict
	case errors.Is(err, service.ErrAllGenerationsFailed):
		return http.StatusBadGateway
	default:
		// Includes aimodel.ErrConfiguration.
		return http.StatusInternalServerError
	}
}

// toHumaError converts a service error to a huma error prefixed with msg.
func toHumaError(err error, msg string) error {
	return huma.NewError(StatusFor(err), msg+": "+err.Error())
}
