package handlers

import (
	"context"

	"github.com/jmylchreest/pod-pipeline/internal/aimodel"
)

// ModelSelector chooses image models and projects batch costs.
type ModelSelector interface {
	SelectModel(style, keyword string, budget aimodel.BudgetMode, qualityPriority *int) (aimodel.SelectionResult, error)
	EstimateBatchCost(keywords, styles []string, budget aimodel.BudgetMode) (aimodel.BatchEstimate, error)
	Catalog() *aimodel.Catalog
	TestingMode() bool
}

// ModelHandler handles model selection endpoints.
type ModelHandler struct {
	selector      ModelSelector
	defaultBudget aimodel.BudgetMode
}

// NewModelHandler creates a model handler. Requests without a budget mode
// use defaultBudget.
func NewModelHandler(selector ModelSelector, defaultBudget aimodel.BudgetMode) *ModelHandler {
	return &ModelHandler{selector: selector, defaultBudget: defaultBudget}
}

// SelectModelInput represents a model selection request.
type SelectModelInput struct {
	Body struct {
		Style           string `json:"style" minLength:"1" doc:"Artwork style, e.g. minimalist or typography"`
		Keyword         string `json:"keyword" minLength:"1" doc:"Trend keyword the artwork is for"`
		BudgetMode      string `json:"budget_mode,omitempty" enum:"cheap,balanced,quality" doc:"Defaults to the server budget mode"`
		QualityPriority *int   `json:"quality_priority,omitempty" doc:"0-10; 9 or more forces the top-quality model"`
	}
}

// SelectModelOutput represents a model selection response.
type SelectModelOutput struct {
	Body aimodel.SelectionResult
}

// SelectModel picks the model for one style and keyword.
func (h *ModelHandler) SelectModel(ctx context.Context, input *SelectModelInput) (*SelectModelOutput, error) {
	budget, err := h.budget(input.Body.BudgetMode)
	if err != nil {
		return nil, toHumaError(err, "invalid budget mode")
	}
	result, err := h.selector.SelectModel(input.Body.Style, input.Body.Keyword, budget, input.Body.QualityPriority)
	if err != nil {
		return nil, toHumaError(err, "model selection failed")
	}
	return &SelectModelOutput{Body: result}, nil
}

// EstimateCostInput represents a batch cost estimate request.
type EstimateCostInput struct {
	Body struct {
		Keywords   []string `json:"keywords" minItems:"1" maxItems:"500"`
		Styles     []string `json:"styles" minItems:"1" maxItems:"50"`
		BudgetMode string   `json:"budget_mode,omitempty" enum:"cheap,balanced,quality"`
	}
}

// EstimateCostOutput represents a batch cost estimate.
type EstimateCostOutput struct {
	Body aimodel.BatchEstimate
}

// EstimateCost projects the spend for every keyword and style pair.
func (h *ModelHandler) EstimateCost(ctx context.Context, input *EstimateCostInput) (*EstimateCostOutput, error) {
	budget, err := h.budget(input.Body.BudgetMode)
	if err != nil {
		return nil, toHumaError(err, "invalid budget mode")
	}
	est, err := h.selector.EstimateBatchCost(input.Body.Keywords, input.Body.Styles, budget)
	if err != nil {
		return nil, toHumaError(err, "cost estimate failed")
	}
	return &EstimateCostOutput{Body: est}, nil
}

// ListModelsOutput lists the catalog.
type ListModelsOutput struct {
	Body struct {
		Models      []aimodel.ModelSpec `json:"models"`
		Roles       map[string]string   `json:"roles"`
		BudgetMode  aimodel.BudgetMode  `json:"budget_mode"`
		TestingMode bool                `json:"testing_mode"`
	}
}

// ListModels returns the model catalog and which model fills each role.
func (h *ModelHandler) ListModels(ctx context.Context, input *struct{}) (*ListModelsOutput, error) {
	catalog := h.selector.Catalog()
	out := &ListModelsOutput{}
	out.Body.Models = catalog.All()
	out.Body.Roles = make(map[string]string)
	for _, r := range []aimodel.Role{aimodel.RoleCheapest, aimodel.RoleText, aimodel.RoleTopQuality, aimodel.RolePhoto, aimodel.RoleStyle, aimodel.RoleBalanced} {
		out.Body.Roles[r.String()] = catalog.ForRole(r).Key
	}
	out.Body.BudgetMode = h.defaultBudget
	out.Body.TestingMode = h.selector.TestingMode()
	return out, nil
}

func (h *ModelHandler) budget(s string) (aimodel.BudgetMode, error) {
	if s == "" {
		return h.defaultBudget, nil
	}
	return aimodel.ParseBudgetMode(s)
}
