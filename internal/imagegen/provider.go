// Package imagegen calls hosted image-generation models.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
)

var (
	// ErrNoProvider means no configured provider can run the model.
	ErrNoProvider = errors.New("no image provider for model")
	// ErrGenerationFailed means the provider accepted the request but produced no image.
	ErrGenerationFailed = errors.New("image generation failed")
)

// Request is one image to generate.
type Request struct {
	Prompt          string
	ProviderModelID string
	Params          aimodel.GenerationParams
}

// Image is a generated image.
type Image struct {
	Data        []byte
	ContentType string
	SourceURL   string // Provider-hosted URL, empty when returned inline
	Provider    string
	Duration    time.Duration
}

// Provider generates images for the models it supports.
type Provider interface {
	Name() string
	Supports(providerModelID string) bool
	Generate(ctx context.Context, req Request) (*Image, error)
}

// ProviderError wraps a failure with the provider and model that produced it.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Router sends each request to the first provider supporting its model.
type Router struct {
	providers []Provider
}

// NewRouter creates a router. Providers are tried in order, so list the
// specialised ones before catch-all providers.
func NewRouter(providers ...Provider) *Router {
	var ps []Provider
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Router{providers: ps}
}

// Providers returns the names of the configured providers.
func (r *Router) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Route returns the provider for a model.
func (r *Router) Route(providerModelID string) (Provider, error) {
	for _, p := range r.providers {
		if p.Supports(providerModelID) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoProvider, providerModelID)
}

// Generate routes and runs a request.
func (r *Router) Generate(ctx context.Context, req Request) (*Image, error) {
	p, err := r.Route(req.ProviderModelID)
	if err != nil {
		return nil, err
	}
	img, err := p.Generate(ctx, req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: req.ProviderModelID, Err: err}
	}
	return img, nil
}

// isImagenModel reports whether a model id names Google's Imagen family.
func isImagenModel(providerModelID string) bool {
	return strings.Contains(strings.ToLower(providerModelID), "imagen")
}
