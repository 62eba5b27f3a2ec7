package aimodel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ========================================
// Catalog Role Tests
// ========================================

func TestDefaultCatalog_Roles(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		role Role
		want string
	}{
		{RoleCheapest, ModelFluxSchnell},
		{RoleText, ModelIdeogramTurbo},
		{RoleTopQuality, ModelImagen4},
		{RolePhoto, ModelImagen4},
		{RoleStyle, ModelFluxKontext},
		{RoleBalanced, ModelFluxPro},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := c.ForRole(tt.role).Key; got != tt.want {
				t.Errorf("ForRole(%s) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}

	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
}

func TestCatalog_AllOrderedByCost(t *testing.T) {
	all := DefaultCatalog().All()
	for i := 1; i < len(all); i++ {
		if all[i].Cost < all[i-1].Cost {
			t.Errorf("All()[%d].Cost = %v is below previous %v", i, all[i].Cost, all[i-1].Cost)
		}
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := DefaultCatalog()
	m, ok := c.Get(ModelFluxPro)
	if !ok {
		t.Fatal("Get(flux-pro) not found")
	}
	m.BestForStyles[0] = "mutated"

	again, _ := c.Get(ModelFluxPro)
	if again.BestForStyles[0] == "mutated" {
		t.Error("Get() should return an independent copy")
	}
}

func TestCatalog_FindByProviderModelID(t *testing.T) {
	c := DefaultCatalog()
	m, ok := c.FindByProviderModelID("ideogram-ai/ideogram-v3-turbo")
	if !ok || m.Key != ModelIdeogramTurbo {
		t.Errorf("FindByProviderModelID() = %q, %v", m.Key, ok)
	}
	if _, ok := c.FindByProviderModelID("unknown/model"); ok {
		t.Error("unknown provider id should not be found")
	}
}

func TestCatalog_RoleTieBreaks(t *testing.T) {
	specs := []ModelSpec{
		{Key: "a", ProviderModelID: "x/a", Cost: 0.02, SpeedSeconds: 3, Quality: 9, TextRendering: 9, Photorealism: 8, StyleControl: 5},
		{Key: "b", ProviderModelID: "x/b", Cost: 0.01, SpeedSeconds: 9, Quality: 9, TextRendering: 9, Photorealism: 9, StyleControl: 5},
		{Key: "c", ProviderModelID: "x/c", Cost: 0.01, SpeedSeconds: 4, Quality: 7, TextRendering: 2, Photorealism: 9, StyleControl: 5},
	}
	c, err := NewCatalog(specs, "a")
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	// b and c share the lowest cost; c is faster.
	if got := c.ForRole(RoleCheapest).Key; got != "c" {
		t.Errorf("cheapest = %q, want c", got)
	}
	// a and b share text rendering; b is cheaper.
	if got := c.ForRole(RoleText).Key; got != "b" {
		t.Errorf("text = %q, want b", got)
	}
	// a and b share quality; b has better photorealism.
	if got := c.ForRole(RoleTopQuality).Key; got != "b" {
		t.Errorf("top quality = %q, want b", got)
	}
	// b and c share photorealism; b has better quality.
	if got := c.ForRole(RolePhoto).Key; got != "b" {
		t.Errorf("photo = %q, want b", got)
	}
}

// ========================================
// Catalog Validation Tests
// ========================================

func TestNewCatalog_Validation(t *testing.T) {
	valid := ModelSpec{Key: "m", ProviderModelID: "x/m", Cost: 0.01, Quality: 5}

	tests := []struct {
		name     string
		specs    []ModelSpec
		balanced string
	}{
		{"empty catalog", nil, ""},
		{"missing key", []ModelSpec{{ProviderModelID: "x/y"}}, ""},
		{"missing provider id", []ModelSpec{{Key: "m"}}, "m"},
		{"negative cost", []ModelSpec{{Key: "m", ProviderModelID: "x/m", Cost: -1}}, "m"},
		{"rating above range", []ModelSpec{{Key: "m", ProviderModelID: "x/m", Quality: 11}}, "m"},
		{"rating below range", []ModelSpec{{Key: "m", ProviderModelID: "x/m", StyleControl: -1}}, "m"},
		{"duplicate key", []ModelSpec{valid, valid}, "m"},
		{"balanced missing", []ModelSpec{valid}, "other"},
		{"default balanced missing", []ModelSpec{valid}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.specs, tt.balanced)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("NewCatalog() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

// ========================================
// Override Tests
// ========================================

func TestCatalogFile_Apply(t *testing.T) {
	raw := `{
		"balanced_model": "flux-kontext",
		"models": {"flux-pro": {"cost": 0.05, "quality": 8}},
		"additional": [{"key": "flux-dev", "provider_model_id": "black-forest-labs/flux-dev", "cost": 0.025, "speed_seconds": 8, "quality": 8, "text_rendering": 6, "photorealism": 8, "style_control": 7}]
	}`
	var file CatalogFile
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	c, err := file.Apply(DefaultModelSpecs(), "")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	pro, _ := c.Get(ModelFluxPro)
	if pro.Cost != 0.05 || pro.Quality != 8 {
		t.Errorf("flux-pro = cost %v quality %d, want 0.05 and 8", pro.Cost, pro.Quality)
	}
	if pro.TextRendering != 7 {
		t.Errorf("unset override field changed: TextRendering = %d", pro.TextRendering)
	}
	if c.Len() != 6 {
		t.Errorf("Len() = %d, want 6", c.Len())
	}
	if got := c.ForRole(RoleBalanced).Key; got != ModelFluxKontext {
		t.Errorf("balanced = %q, want %q", got, ModelFluxKontext)
	}

	// Defaults are untouched by the merge.
	if def := DefaultCatalog(); def.ForRole(RoleBalanced).Key != ModelFluxPro {
		t.Error("DefaultCatalog() changed after Apply")
	}
}

func TestCatalogFile_ApplyRejectsInvalid(t *testing.T) {
	bad := 12
	file := CatalogFile{Models: map[string]ModelOverride{ModelImagen4: {Quality: &bad}}}
	if _, err := file.Apply(DefaultModelSpecs(), ""); !IsConfiguration(err) {
		t.Errorf("Apply() error = %v, want configuration error", err)
	}

	unknown := CatalogFile{Models: map[string]ModelOverride{"nope": {}}}
	if _, err := unknown.Apply(DefaultModelSpecs(), ""); !IsConfiguration(err) {
		t.Errorf("Apply() error = %v, want configuration error", err)
	}
}

func TestLoadCatalog_WithoutS3UsesDefaults(t *testing.T) {
	c, err := LoadCatalog(t.Context(), CatalogConfig{})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
	if c.Revision() != BuiltinRevision {
		t.Errorf("Revision() = %q, want %q", c.Revision(), BuiltinRevision)
	}
}

type stubObjectGetter struct {
	body string
	etag string
}

func (s stubObjectGetter) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	out := &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(s.body))}
	if s.etag != "" {
		out.ETag = &s.etag
	}
	return out, nil
}

func TestLoadCatalog_AppliesOverrides(t *testing.T) {
	getter := stubObjectGetter{body: `{"models":{"flux-pro":{"cost":0.05}}}`, etag: `"abc123"`}
	c, err := LoadCatalog(t.Context(), CatalogConfig{S3Client: getter, Bucket: "b", Key: "catalog.json"})
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	m, _ := c.Get(ModelFluxPro)
	if m.Cost != 0.05 {
		t.Errorf("flux-pro cost = %v, want 0.05", m.Cost)
	}
	if c.Revision() != "abc123" {
		t.Errorf("Revision() = %q, want %q", c.Revision(), "abc123")
	}

	bad := stubObjectGetter{body: `{"models":{"unknown":{"cost":1}}}`}
	if _, err := LoadCatalog(t.Context(), CatalogConfig{S3Client: bad, Key: "catalog.json"}); !IsConfiguration(err) {
		t.Errorf("LoadCatalog() error = %v, want configuration error", err)
	}
}
