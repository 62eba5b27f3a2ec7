package aimodel

import (
	"math"
	"slices"
	"sort"
)

// ModelSpec describes one image-generation backend.
type ModelSpec struct {
	Key             string   `json:"key"`
	ProviderModelID string   `json:"provider_model_id"`
	Cost            float64  `json:"cost"`          // USD per image
	SpeedSeconds    int      `json:"speed_seconds"` // Expected wall-clock latency
	Quality         int      `json:"quality"`       // 0-10
	TextRendering   int      `json:"text_rendering"`
	Photorealism    int      `json:"photorealism"`
	StyleControl    int      `json:"style_control"`
	BestForStyles   []string `json:"best_for_styles"`
	Description     string   `json:"description,omitempty"`
}

// Role is a catalog position derived from model ratings.
type Role int

// Catalog roles used by the selection rules.
const (
	RoleCheapest Role = iota
	RoleText
	RoleTopQuality
	RolePhoto
	RoleStyle
	RoleBalanced
)

func (r Role) String() string {
	switch r {
	case RoleCheapest:
		return "cheapest"
	case RoleText:
		return "text"
	case RoleTopQuality:
		return "top_quality"
	case RolePhoto:
		return "photo"
	case RoleStyle:
		return "style"
	case RoleBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// DefaultBalancedModel is the mid-tier model used when budget is balanced
// and no style rule applies.
const DefaultBalancedModel = ModelFluxPro

var defaultModelSpecs = []ModelSpec{
	{
		Key:             ModelFluxSchnell,
		ProviderModelID: "black-forest-labs/flux-schnell",
		Cost:            0.003,
		SpeedSeconds:    5,
		Quality:         7,
		TextRendering:   5,
		Photorealism:    6,
		StyleControl:    6,
		BestForStyles:   []string{"minimalist", "abstract", "general"},
		Description:     "Fast and cheap, good for testing and simple designs",
	},
	{
		Key:             ModelIdeogramTurbo,
		ProviderModelID: "ideogram-ai/ideogram-v3-turbo",
		Cost:            0.025,
		SpeedSeconds:    6,
		Quality:         8,
		TextRendering:   10,
		Photorealism:    7,
		StyleControl:    7,
		BestForStyles:   []string{"typography", "line_art", "posters"},
		Description:     "Best text rendering, ideal for quotes and typography",
	},
	{
		Key:             ModelFluxPro,
		ProviderModelID: "black-forest-labs/flux-1.1-pro",
		Cost:            0.04,
		SpeedSeconds:    10,
		Quality:         9,
		TextRendering:   7,
		Photorealism:    9,
		StyleControl:    8,
		BestForStyles:   []string{"photography", "watercolor", "vintage"},
		Description:     "Excellent all-rounder with strong photorealism",
	},
	{
		Key:             ModelFluxKontext,
		ProviderModelID: "black-forest-labs/flux-kontext-pro",
		Cost:            0.06,
		SpeedSeconds:    12,
		Quality:         9,
		TextRendering:   8,
		Photorealism:    9,
		StyleControl:    10,
		BestForStyles:   []string{"botanical", "vintage", "specific_styles"},
		Description:     "Precise style control for specific artistic directions",
	},
	{
		Key:             ModelImagen4,
		ProviderModelID: "google/imagen-4",
		Cost:            0.08,
		SpeedSeconds:    15,
		Quality:         10,
		TextRendering:   8,
		Photorealism:    10,
		StyleControl:    9,
		BestForStyles:   []string{"photography", "high_end", "print_quality"},
		Description:     "Highest quality for premium print products",
	},
}

// DefaultModelSpecs returns a copy of the built-in model table.
func DefaultModelSpecs() []ModelSpec {
	out := make([]ModelSpec, len(defaultModelSpecs))
	for i, m := range defaultModelSpecs {
		out[i] = m.clone()
	}
	return out
}

// Catalog is an immutable set of models with precomputed roles.
// Safe for concurrent reads.
type Catalog struct {
	models map[string]ModelSpec
	order  []string // keys sorted by cost, then key
	roles  map[Role]string
	rev    string
}

// BuiltinRevision identifies a catalog with no S3 overrides.
const BuiltinRevision = "builtin"

// NewCatalog validates specs and derives the role assignments.
// balancedKey names the mid-tier default and must be present.
func NewCatalog(specs []ModelSpec, balancedKey string) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, configurationError("models", 0, "catalog is empty")
	}

	c := &Catalog{
		models: make(map[string]ModelSpec, len(specs)),
		roles:  make(map[Role]string),
	}
	for _, m := range specs {
		if err := validateSpec(m); err != nil {
			return nil, err
		}
		if _, dup := c.models[m.Key]; dup {
			return nil, configurationError("key", m.Key, "duplicate model key")
		}
		c.models[m.Key] = m.clone()
		c.order = append(c.order, m.Key)
	}

	sort.Slice(c.order, func(i, j int) bool {
		a, b := c.models[c.order[i]], c.models[c.order[j]]
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		return a.Key < b.Key
	})

	if balancedKey == "" {
		balancedKey = DefaultBalancedModel
	}
	if _, ok := c.models[balancedKey]; !ok {
		return nil, configurationError("balanced_model", balancedKey, "not present in catalog")
	}
	c.roles[RoleBalanced] = balancedKey

	// Iteration runs cheapest first, so a strict comparison keeps the
	// lower-cost model on ties.
	c.roles[RoleCheapest] = c.pick(func(best, m ModelSpec) bool {
		if m.Cost != best.Cost {
			return m.Cost < best.Cost
		}
		return m.SpeedSeconds < best.SpeedSeconds
	})
	c.roles[RoleText] = c.pick(func(best, m ModelSpec) bool {
		return m.TextRendering > best.TextRendering
	})
	c.roles[RoleTopQuality] = c.pick(func(best, m ModelSpec) bool {
		if m.Quality != best.Quality {
			return m.Quality > best.Quality
		}
		return m.Photorealism > best.Photorealism
	})
	c.roles[RolePhoto] = c.pick(func(best, m ModelSpec) bool {
		if m.Photorealism != best.Photorealism {
			return m.Photorealism > best.Photorealism
		}
		return m.Quality > best.Quality
	})
	c.roles[RoleStyle] = c.pick(func(best, m ModelSpec) bool {
		return m.StyleControl > best.StyleControl
	})

	return c, nil
}

// MustNewCatalog is like NewCatalog but panics on error.
func MustNewCatalog(specs []ModelSpec, balancedKey string) *Catalog {
	c, err := NewCatalog(specs, balancedKey)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in five-model catalog.
func DefaultCatalog() *Catalog {
	return MustNewCatalog(defaultModelSpecs, DefaultBalancedModel)
}

// pick walks models in cost order and returns the key of the model for
// which better never reports a successor.
func (c *Catalog) pick(better func(best, m ModelSpec) bool) string {
	best := c.models[c.order[0]]
	for _, key := range c.order[1:] {
		m := c.models[key]
		if better(best, m) {
			best = m
		}
	}
	return best.Key
}

// Get returns a model by key.
func (c *Catalog) Get(key string) (ModelSpec, bool) {
	m, ok := c.models[key]
	if !ok {
		return ModelSpec{}, false
	}
	return m.clone(), true
}

// ForRole returns the model filling the given role.
func (c *Catalog) ForRole(r Role) ModelSpec {
	return c.models[c.roles[r]].clone()
}

// All returns every model ordered by cost.
func (c *Catalog) All() []ModelSpec {
	out := make([]ModelSpec, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.models[key].clone())
	}
	return out
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Revision identifies the pricing table in use: the override object's ETag,
// or BuiltinRevision.
func (c *Catalog) Revision() string {
	if c.rev == "" {
		return BuiltinRevision
	}
	return c.rev
}

// FindByProviderModelID looks up a model by its provider identifier.
func (c *Catalog) FindByProviderModelID(id string) (ModelSpec, bool) {
	for _, key := range c.order {
		if c.models[key].ProviderModelID == id {
			return c.models[key].clone(), true
		}
	}
	return ModelSpec{}, false
}

func (m ModelSpec) clone() ModelSpec {
	m.BestForStyles = slices.Clone(m.BestForStyles)
	return m
}

func validateSpec(m ModelSpec) error {
	if m.Key == "" {
		return configurationError("key", "", "model key is required")
	}
	if m.ProviderModelID == "" {
		return configurationError(m.Key+".provider_model_id", "", "provider model id is required")
	}
	if m.Cost < 0 || math.IsNaN(m.Cost) || math.IsInf(m.Cost, 0) {
		return configurationError(m.Key+".cost", m.Cost, "cost must be a non-negative number")
	}
	if m.SpeedSeconds < 0 {
		return configurationError(m.Key+".speed_seconds", m.SpeedSeconds, "speed must be non-negative")
	}
	ratings := []struct {
		name  string
		value int
	}{
		{"quality", m.Quality},
		{"text_rendering", m.TextRendering},
		{"photorealism", m.Photorealism},
		{"style_control", m.StyleControl},
	}
	for _, r := range ratings {
		if r.value < 0 || r.value > 10 {
			return configurationError(m.Key+"."+r.name, r.value, "rating must be within [0,10]")
		}
	}
	return nil
}
