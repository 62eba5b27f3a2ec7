package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// imagenModels maps catalog provider ids to Gemini API model names.
var imagenModels = map[string]string{
	"google/imagen-4":       "imagen-4.0-generate-001",
	"google/imagen-4-ultra": "imagen-4.0-ultra-generate-001",
	"google/imagen-4-fast":  "imagen-4.0-fast-generate-001",
	"google/imagen-3":       "imagen-3.0-generate-002",
}

// ImagenFunc generates images with a Gemini API model.
type ImagenFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)

// ImagenProvider runs Imagen models directly through the Gemini API.
type ImagenProvider struct {
	generate ImagenFunc
	logger   *slog.Logger
}

// NewImagenProvider creates a provider backed by a genai client.
func NewImagenProvider(ctx context.Context, apiKey string, logger *slog.Logger) (*ImagenProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewImagenProviderWithFunc(client.Models.GenerateImages, logger), nil
}

// NewImagenProviderWithFunc creates a provider around a generate function.
func NewImagenProviderWithFunc(fn ImagenFunc, logger *slog.Logger) *ImagenProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImagenProvider{generate: fn, logger: logger.With("component", "imagen")}
}

func (p *ImagenProvider) Name() string { return "gemini" }

func (p *ImagenProvider) Supports(providerModelID string) bool {
	return isImagenModel(providerModelID)
}

func (p *ImagenProvider) Generate(ctx context.Context, req Request) (*Image, error) {
	model := imagenModel(req.ProviderModelID)
	start := time.Now()

	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    req.Params.AspectRatio,
		OutputMIMEType: "image/png",
	}
	resp, err := p.generate(ctx, model, req.Prompt, cfg)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("%w: %s returned no images", ErrGenerationFailed, model)
	}

	gen := resp.GeneratedImages[0]
	if len(gen.Image.ImageBytes) == 0 {
		reason := gen.RAIFilteredReason
		if reason == "" {
			reason = "empty image"
		}
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, reason)
	}

	contentType := gen.Image.MIMEType
	if contentType == "" {
		contentType = "image/png"
	}
	p.logger.Debug("image generated", "model", model, "bytes", len(gen.Image.ImageBytes), "duration", time.Since(start))
	return &Image{
		Data:        gen.Image.ImageBytes,
		ContentType: contentType,
		Provider:    p.Name(),
		Duration:    time.Since(start),
	}, nil
}

// imagenModel resolves a catalog id; unknown ids are passed through without the owner prefix.
func imagenModel(providerModelID string) string {
	if m, ok := imagenModels[strings.ToLower(providerModelID)]; ok {
		return m
	}
	if _, name, ok := strings.Cut(providerModelID, "/"); ok {
		return name
	}
	return providerModelID
}
