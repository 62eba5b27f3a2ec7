// Package aimodel selects image-generation models for artwork requests.
package aimodel

import "strings"

// BudgetMode controls the quality/cost tradeoff when no style rule applies.
type BudgetMode string

// Budget mode constants. Use these instead of string literals.
const (
	BudgetCheap    BudgetMode = "cheap"
	BudgetBalanced BudgetMode = "balanced"
	BudgetQuality  BudgetMode = "quality"
)

// Model key constants for the built-in catalog.
const (
	ModelFluxSchnell   = "flux-schnell"
	ModelIdeogramTurbo = "ideogram-turbo"
	ModelFluxPro       = "flux-pro"
	ModelFluxKontext   = "flux-kontext"
	ModelImagen4       = "imagen-4"
)

// ValidBudgetModes returns all budget modes.
func ValidBudgetModes() []BudgetMode {
	return []BudgetMode{BudgetCheap, BudgetBalanced, BudgetQuality}
}

// IsValid returns true if the budget mode is one of the three known values.
func (b BudgetMode) IsValid() bool {
	switch b {
	case BudgetCheap, BudgetBalanced, BudgetQuality:
		return true
	default:
		return false
	}
}

// ParseBudgetMode converts a case-insensitive string to a BudgetMode.
// An empty string yields BudgetBalanced.
func ParseBudgetMode(s string) (BudgetMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BudgetBalanced, nil
	}
	mode := BudgetMode(s)
	if !mode.IsValid() {
		return "", validationError("budget_mode", s, "expected cheap, balanced or quality")
	}
	return mode, nil
}
