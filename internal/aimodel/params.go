package aimodel

import "strings"

// Generation defaults applied when a model family has no specific setting.
const (
	DefaultAspectRatio    = "1:1"
	DefaultGuidanceScale  = 7.5
	DefaultInferenceSteps = 50
	DefaultOutputFormat   = "png"
	DefaultOutputQuality  = 90
)

// GenerationParams are the provider inputs for one model family.
// Zero values mean "not sent".
type GenerationParams struct {
	AspectRatio    string         `json:"aspect_ratio"`
	InferenceSteps int            `json:"num_inference_steps,omitempty"`
	GuidanceScale  float64        `json:"guidance_scale,omitempty"`
	OutputFormat   string         `json:"output_format,omitempty"`
	OutputQuality  int            `json:"output_quality,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// ParamsFor returns generation parameters for a provider model id.
// The family is detected from the id so overridden catalogs still match.
func ParamsFor(providerModelID string) GenerationParams {
	id := strings.ToLower(providerModelID)

	switch {
	case strings.Contains(id, "flux-schnell"):
		return GenerationParams{
			AspectRatio:    DefaultAspectRatio,
			InferenceSteps: 4,
			OutputFormat:   DefaultOutputFormat,
			OutputQuality:  90,
		}

	case strings.Contains(id, "flux-dev"):
		return GenerationParams{
			AspectRatio:    DefaultAspectRatio,
			InferenceSteps: DefaultInferenceSteps,
			GuidanceScale:  DefaultGuidanceScale,
			OutputFormat:   DefaultOutputFormat,
			OutputQuality:  95,
		}

	case strings.Contains(id, "flux-1.1-pro"), strings.Contains(id, "flux-kontext"):
		return GenerationParams{
			AspectRatio:   DefaultAspectRatio,
			OutputFormat:  DefaultOutputFormat,
			OutputQuality: 100,
			Extra: map[string]any{
				"prompt_upsampling": true,
				"safety_tolerance":  2,
			},
		}

	case strings.Contains(id, "ideogram"):
		return GenerationParams{
			AspectRatio: DefaultAspectRatio,
			Extra: map[string]any{
				"magic_prompt_option": "Auto",
			},
		}

	case strings.Contains(id, "imagen"):
		// Imagen accepts only the aspect ratio.
		return GenerationParams{AspectRatio: DefaultAspectRatio}

	default:
		return GenerationParams{
			AspectRatio:    DefaultAspectRatio,
			InferenceSteps: DefaultInferenceSteps,
			GuidanceScale:  DefaultGuidanceScale,
			OutputFormat:   DefaultOutputFormat,
			OutputQuality:  DefaultOutputQuality,
		}
	}
}

// Input builds the provider request body for prompt.
func (p GenerationParams) Input(prompt string) map[string]any {
	in := map[string]any{"prompt": prompt}
	if p.AspectRatio != "" {
		in["aspect_ratio"] = p.AspectRatio
	}
	if p.InferenceSteps > 0 {
		in["num_inference_steps"] = p.InferenceSteps
	}
	if p.GuidanceScale > 0 {
		in["guidance_scale"] = p.GuidanceScale
	}
	if p.OutputFormat != "" {
		in["output_format"] = p.OutputFormat
	}
	if p.OutputQuality > 0 {
		in["output_quality"] = p.OutputQuality
	}
	for k, v := range p.Extra {
		in[k] = v
	}
	return in
}
