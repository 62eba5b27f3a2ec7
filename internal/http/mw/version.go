// Package mw provides HTTP middleware for the pipeline API.
package mw

import (
	"net/http"

	"github.com/jmylchreest/pod-pipeline/internal/version"
)

const (
	// HeaderAPIVersion carries the server build version.
	HeaderAPIVersion = "X-API-Version"
	// HeaderCatalogRevision carries the model catalog revision. Cost
	// estimates cached by a client are stale once it changes.
	HeaderCatalogRevision = "X-Model-Catalog-Revision"
)

// APIVersion stamps every response with the build version and the revision
// of the model pricing table the server loaded at startup.
func APIVersion(catalogRevision string) func(http.Handler) http.Handler {
	apiVersion := version.Get().Short()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set(HeaderAPIVersion, apiVersion)
			if catalogRevision != "" {
				h.Set(HeaderCatalogRevision, catalogRevision)
			}
			next.ServeHTTP(w, r)
		})
	}
}
