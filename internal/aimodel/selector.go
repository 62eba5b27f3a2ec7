package aimodel

import (
	"fmt"
	"log/slog"
	"strings"
)

// Rule names recorded on each SelectionResult.
const (
	RuleTestingMode     = "testing_mode"
	RuleTextRendering   = "text_rendering"
	RulePhotorealism    = "photorealism"
	RuleStyleControl    = "style_control"
	RuleBudgetCheap     = "budget_cheap"
	RuleQualityPriority = "quality_priority"
	RuleStyleMap        = "style_map"
	RuleDefault         = "default"
)

// QualityPriorityThreshold is the priority at or above which the top-quality
// model is forced.
const QualityPriorityThreshold = 9

// SelectionResult is the outcome of one selection decision.
type SelectionResult struct {
	ModelKey             string   `json:"model_key"`
	ProviderModelID      string   `json:"provider_model_id"`
	Cost                 float64  `json:"cost"`
	QualityScore         int      `json:"quality_score"`
	EstimatedTimeSeconds int      `json:"estimated_time_seconds"`
	Reasoning            []string `json:"reasoning"`
	Intent               Intent   `json:"intent"`
	Rule                 string   `json:"rule"`
}

// styleRoute is one entry of the static style table. The first entry whose
// pattern occurs in the style wins.
type styleRoute struct {
	patterns []string
	role     Role
	byBudget map[BudgetMode]Role
}

var styleRoutes = []styleRoute{
	{patterns: []string{"typography", "text"}, role: RoleText},
	{patterns: []string{"photography", "photorealistic", "realistic"}, role: RoleBalanced},
	{patterns: []string{"botanical"}, role: RoleBalanced, byBudget: map[BudgetMode]Role{BudgetQuality: RoleStyle}},
	{patterns: []string{"vintage", "watercolor"}, role: RoleBalanced},
	{patterns: []string{"minimalist", "abstract"}, role: RoleCheapest},
	{patterns: []string{"line_art"}, role: RoleText, byBudget: map[BudgetMode]Role{BudgetCheap: RoleCheapest}},
}

// Selector chooses a model for each (style, keyword, budget) request.
// It holds no mutable state and is safe for concurrent use.
type Selector struct {
	catalog     *Catalog
	testingMode bool
	logger      *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithTestingMode forces every selection to the cheapest model.
func WithTestingMode(enabled bool) Option {
	return func(s *Selector) {
		s.testingMode = enabled
	}
}

// WithLogger sets the logger used for selection decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSelector creates a selector over catalog. A nil catalog uses the
// built-in defaults.
func NewSelector(catalog *Catalog, opts ...Option) *Selector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	s := &Selector{
		catalog: catalog,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "model_selector")
	return s
}

// Catalog returns the catalog the selector draws from.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// TestingMode reports whether testing mode is active.
func (s *Selector) TestingMode() bool {
	return s.testingMode
}

// SelectModel picks a model. qualityPriority may be nil; when set it must be
// within [0,10]. Rules are evaluated in a fixed order and the first match wins:
// text rendering, photorealism, style control, cheap budget, quality priority,
// static style table, budget default.
func (s *Selector) SelectModel(style, keyword string, budget BudgetMode, qualityPriority *int) (SelectionResult, error) {
	if !budget.IsValid() {
		return SelectionResult{}, validationError("budget_mode", budget, "expected cheap, balanced or quality")
	}
	if qualityPriority != nil && (*qualityPriority < 0 || *qualityPriority > 10) {
		return SelectionResult{}, validationError("quality_priority", *qualityPriority, "must be within [0,10]")
	}

	var result SelectionResult
	if s.testingMode {
		m := s.catalog.ForRole(RoleCheapest)
		result = newResult(m, IntentGeneral, RuleTestingMode,
			fmt.Sprintf("Testing mode enabled, using %s at $%.3f per image", m.Key, m.Cost))
	} else {
		result = s.decide(style, keyword, budget, qualityPriority)
	}

	s.logger.Debug("model selected",
		"style", style,
		"keyword", keyword,
		"budget", string(budget),
		"model", result.ModelKey,
		"cost", result.Cost,
		"rule", result.Rule,
		"reasoning", strings.Join(result.Reasoning, "; "),
	)
	return result, nil
}

func (s *Selector) decide(style, keyword string, budget BudgetMode, qualityPriority *int) SelectionResult {
	c := ClassifyIntent(style, keyword, budget)

	switch c.Intent {
	case IntentTextHeavy:
		m := s.catalog.ForRole(RoleText)
		return newResult(m, c.Intent, RuleTextRendering,
			fmt.Sprintf("Text/typography content detected (%q in %s)", c.Matched, c.Field),
			fmt.Sprintf("%s has the best text rendering (%d/10)", m.Key, m.TextRendering))

	case IntentPhotorealistic:
		if budget == BudgetQuality {
			m := s.catalog.ForRole(RolePhoto)
			return newResult(m, c.Intent, RulePhotorealism,
				fmt.Sprintf("Photography style %q with quality budget", style),
				fmt.Sprintf("%s has the highest photorealism (%d/10)", m.Key, m.Photorealism))
		}
		m := s.catalog.ForRole(RoleBalanced)
		return newResult(m, c.Intent, RulePhotorealism,
			fmt.Sprintf("Photography style %q with balanced budget", style),
			fmt.Sprintf("%s gives strong photorealism (%d/10) at $%.3f", m.Key, m.Photorealism, m.Cost))

	case IntentStyleControlled:
		if budget == BudgetQuality {
			m := s.catalog.ForRole(RoleStyle)
			return newResult(m, c.Intent, RuleStyleControl,
				fmt.Sprintf("Style control needed (%q in %s)", c.Matched, c.Field),
				fmt.Sprintf("%s has the best style control (%d/10)", m.Key, m.StyleControl))
		}
		m := s.catalog.ForRole(RoleBalanced)
		return newResult(m, c.Intent, RuleStyleControl,
			fmt.Sprintf("Style control needed (%q in %s)", c.Matched, c.Field),
			fmt.Sprintf("%s balances style control (%d/10) against cost", m.Key, m.StyleControl))
	}

	if budget == BudgetCheap {
		m := s.catalog.ForRole(RoleCheapest)
		return newResult(m, c.Intent, RuleBudgetCheap,
			"Cheap budget mode",
			fmt.Sprintf("%s is the cheapest model at $%.3f per image", m.Key, m.Cost))
	}

	if qualityPriority != nil && *qualityPriority >= QualityPriorityThreshold {
		m := s.catalog.ForRole(RoleTopQuality)
		return newResult(m, c.Intent, RuleQualityPriority,
			fmt.Sprintf("Quality priority %d requested", *qualityPriority),
			fmt.Sprintf("%s has the highest quality rating (%d/10)", m.Key, m.Quality))
	}

	lowerStyle := strings.ToLower(style)
	for _, route := range styleRoutes {
		for _, p := range route.patterns {
			if lowerStyle == "" || !strings.Contains(lowerStyle, p) {
				continue
			}
			role := route.role
			if r, ok := route.byBudget[budget]; ok {
				role = r
			}
			m := s.catalog.ForRole(role)
			return newResult(m, c.Intent, RuleStyleMap,
				fmt.Sprintf("Style %q matches %q in the style table", style, p),
				fmt.Sprintf("%s is the %s model for this style", m.Key, role))
		}
	}

	var m ModelSpec
	switch budget {
	case BudgetCheap:
		m = s.catalog.ForRole(RoleCheapest)
	case BudgetQuality:
		m = s.catalog.ForRole(RoleTopQuality)
	default:
		m = s.catalog.ForRole(RoleBalanced)
	}
	return newResult(m, c.Intent, RuleDefault,
		"No style-specific rule matched",
		fmt.Sprintf("Default for %s budget: %s", budget, m.Key))
}

func newResult(m ModelSpec, intent Intent, rule string, reasoning ...string) SelectionResult {
	return SelectionResult{
		ModelKey:             m.Key,
		ProviderModelID:      m.ProviderModelID,
		Cost:                 m.Cost,
		QualityScore:         m.Quality,
		EstimatedTimeSeconds: m.SpeedSeconds,
		Reasoning:            reasoning,
		Intent:               intent,
		Rule:                 rule,
	}
}

// PairEstimate is the model assignment for one keyword and style.
type PairEstimate struct {
	Keyword              string  `json:"keyword"`
	Style                string  `json:"style"`
	ModelKey             string  `json:"model_key"`
	Cost                 float64 `json:"cost"`
	EstimatedTimeSeconds int     `json:"estimated_time_seconds"`
	Rule                 string  `json:"rule"`
}

// BatchEstimate is the projected spend for a keyword by style cross product.
type BatchEstimate struct {
	TotalCost        float64        `json:"total_cost"`
	TotalImages      int            `json:"total_images"`
	AvgCost          float64        `json:"avg_cost"`
	TotalTimeSeconds int            `json:"total_time_seconds"`
	Breakdown        []PairEstimate `json:"breakdown"`
	Cheapest         *PairEstimate  `json:"cheapest,omitempty"`
	MostExpensive    *PairEstimate  `json:"most_expensive,omitempty"`
}

// EstimateBatchCost runs SelectModel over every keyword and style pair and
// sums the cost. Pairs are visited keyword-major.
func (s *Selector) EstimateBatchCost(keywords, styles []string, budget BudgetMode) (BatchEstimate, error) {
	est := BatchEstimate{Breakdown: make([]PairEstimate, 0, len(keywords)*len(styles))}

	for _, kw := range keywords {
		for _, style := range styles {
			sel, err := s.SelectModel(style, kw, budget, nil)
			if err != nil {
				return BatchEstimate{}, err
			}
			est.Breakdown = append(est.Breakdown, PairEstimate{
				Keyword:              kw,
				Style:                style,
				ModelKey:             sel.ModelKey,
				Cost:                 sel.Cost,
				EstimatedTimeSeconds: sel.EstimatedTimeSeconds,
				Rule:                 sel.Rule,
			})
			est.TotalCost += sel.Cost
			est.TotalTimeSeconds += sel.EstimatedTimeSeconds
		}
	}

	est.TotalImages = len(est.Breakdown)
	if est.TotalImages == 0 {
		return est, nil
	}
	est.AvgCost = est.TotalCost / float64(est.TotalImages)

	cheapest, priciest := 0, 0
	for i, p := range est.Breakdown {
		if p.Cost < est.Breakdown[cheapest].Cost {
			cheapest = i
		}
		if p.Cost > est.Breakdown[priciest].Cost {
			priciest = i
		}
	}
	c, m := est.Breakdown[cheapest], est.Breakdown[priciest]
	est.Cheapest, est.MostExpensive = &c, &m

	return est, nil
}
