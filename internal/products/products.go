// Package products turns generated artwork into canvas product listings:
// formats, pricing, titles, descriptions and generation prompts.
package products

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanvasFormat is a canvas product layout.
type CanvasFormat struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Panels     int      `json:"panels"`
	Dimensions []string `json:"dimensions"`
}

// Format keys.
const (
	FormatSingle   = "single"
	FormatDiptych  = "diptych"
	FormatTriptych = "triptych"
)

var formats = []CanvasFormat{
	{Key: FormatSingle, Name: "Single Canvas", Panels: 1, Dimensions: []string{"12x16", "16x20", "18x24", "24x36"}},
	{Key: FormatDiptych, Name: "2-Panel Diptych", Panels: 2, Dimensions: []string{"12x16", "16x20", "20x30"}},
	{Key: FormatTriptych, Name: "3-Panel Triptych", Panels: 3, Dimensions: []string{"12x16", "16x20", "20x30"}},
}

// Formats returns the supported canvas formats.
func Formats() []CanvasFormat {
	out := make([]CanvasFormat, len(formats))
	for i, f := range formats {
		f.Dimensions = append([]string(nil), f.Dimensions...)
		out[i] = f
	}
	return out
}

// FormatByKey looks up a canvas format.
func FormatByKey(key string) (CanvasFormat, bool) {
	for _, f := range Formats() {
		if f.Key == key {
			return f, true
		}
	}
	return CanvasFormat{}, false
}

// DefaultSizePrice is charged for dimensions missing from the size table.
const DefaultSizePrice = 49.99

var sizePrices = map[string]float64{
	"12x16": 29.99,
	"16x20": 39.99,
	"18x24": 49.99,
	"20x30": 59.99,
	"24x36": 79.99,
}

var panelMultipliers = map[int]float64{2: 1.8, 3: 2.5}

// Price returns the listing price for a single-canvas dimension scaled by
// panel count and markup (0.25 = 25%), rounded to cents.
func Price(dimension string, panels int, markup float64) float64 {
	base, ok := sizePrices[dimension]
	if !ok {
		base = DefaultSizePrice
	}
	if m, ok := panelMultipliers[panels]; ok {
		base *= m
	}
	return math.Round(base*(1+markup)*100) / 100
}

var styleGuidance = map[string]string{
	"minimalist": "simple lines, clean composition, lots of white space",
	"abstract":   "bold colors, expressive shapes, dynamic composition",
	"geometric":  "precise shapes, symmetrical patterns, modern aesthetic",
	"watercolor": "soft blended colors, organic flowing forms",
	"vintage":    "aged texture, muted tones, nostalgic feel",
	"modern":     "contemporary design, sleek lines, trendy colors",
	"bohemian":   "eclectic patterns, warm earthy tones, free-spirited",
	"rustic":     "natural textures, wood tones, cozy farmhouse aesthetic",
}

// Prompt builds the image-generation prompt for a keyword, style and panel count.
func Prompt(keyword, style string, panels int) string {
	base := fmt.Sprintf("Create a beautiful %s style canvas wall art", style)

	var b strings.Builder
	switch panels {
	case 2:
		fmt.Fprintf(&b, "%s split into 2 panels (diptych) with the theme '%s', ensuring visual continuity across both panels", base, keyword)
	case 3:
		fmt.Fprintf(&b, "%s split into 3 panels (triptych) with the theme '%s', with a cohesive flow from left to right", base, keyword)
	default:
		fmt.Fprintf(&b, "%s with the theme '%s'", base, keyword)
	}
	if g, ok := styleGuidance[strings.ToLower(style)]; ok {
		b.WriteString(", ")
		b.WriteString(g)
	}
	b.WriteString(". High quality, suitable for home decor, artistic, visually striking.")
	return b.String()
}

var titleCaser = cases.Title(language.English)

// Title builds a listing title such as "Mountain Sunset - Single Canvas - Minimalist #1".
func Title(keyword, formatName, style string, design int) string {
	return fmt.Sprintf("%s - %s - %s #%d", titleCaser.String(keyword), formatName, titleCaser.String(style), design)
}

// Description builds the listing description.
func Description(keyword, style, formatName, dimension string) string {
	return fmt.Sprintf(`Beautiful %s style %s featuring '%s'.

Perfect for living room, bedroom, office, or any space that needs a stylish focal point.

Features:
- High-quality canvas print
- %s inches
- Ready to hang
- Fade-resistant inks
- %s configuration

Add a touch of artistic elegance to your home decor with this stunning piece.`,
		style, strings.ToLower(formatName), keyword, dimension, formatName)
}

// SKU builds a stock-keeping unit from the listing attributes and a unique suffix.
func SKU(keyword, style, formatKey, dimension, unique string) string {
	slug := func(s string) string {
		s = strings.ToUpper(strings.TrimSpace(s))
		s = strings.Join(strings.Fields(s), "-")
		if len(s) > 12 {
			s = s[:12]
		}
		return strings.Trim(s, "-")
	}
	if len(unique) > 8 {
		unique = unique[len(unique)-8:]
	}
	return strings.Join([]string{"POD", slug(keyword), slug(style), slug(formatKey), dimension, unique}, "-")
}

// Tags returns listing tags, lowercased and deduplicated.
func Tags(keyword, style, category string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range append(strings.Fields(keyword), keyword, style, category, "canvas", "wall art", "home decor") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
