package aimodel

import "strings"

// Intent is the content category inferred from a style and keyword.
type Intent string

// Content intents, in decision priority order.
const (
	IntentTextHeavy       Intent = "text-heavy"
	IntentPhotorealistic  Intent = "photorealistic"
	IntentStyleControlled Intent = "style-controlled"
	IntentSimple          Intent = "simple"
	IntentGeneral         Intent = "general"
)

// Substring lists are matched against lowercased input. Short entries such as
// "sign" and "text" also hit words like "design" and "texture"; that is
// accepted heuristic noise.
var (
	textIndicators = []string{
		"typography", "text", "quote", "saying", "words", "lettering",
		"font", "script", "calligraphy", "message", "sign",
		"motivational", "inspirational", "affirmation", "slogan", "phrase",
	}

	photographyStyles = []string{"photography", "photorealistic", "photo"}

	styleControlIndicators = []string{
		"vintage", "retro", "art deco", "bauhaus", "art nouveau",
		"baroque", "renaissance", "impressionist", "cubist",
		"specific", "precise", "exact", "particular",
		"botanical", "detailed", "intricate", "complex",
	}

	simpleStyles = []string{"minimalist", "abstract"}
)

// Classification is the result of intent classification.
type Classification struct {
	Intent Intent `json:"intent"`

	// Matched is the indicator that triggered the intent, empty for general.
	Matched string `json:"matched,omitempty"`

	// Field is "style" or "keyword", whichever contained Matched.
	Field string `json:"field,omitempty"`
}

// ClassifyIntent maps a style and keyword to a content intent. The budget
// matters only for photorealism, which is not recognised under cheap mode so
// that the request falls through to the later rules.
func ClassifyIntent(style, keyword string, budget BudgetMode) Classification {
	style = strings.ToLower(style)
	keyword = strings.ToLower(keyword)

	if ind, field := matchAny(textIndicators, style, keyword); ind != "" {
		return Classification{Intent: IntentTextHeavy, Matched: ind, Field: field}
	}
	if budget != BudgetCheap {
		if ind, _ := matchAny(photographyStyles, style, ""); ind != "" {
			return Classification{Intent: IntentPhotorealistic, Matched: ind, Field: "style"}
		}
	}
	if ind, field := matchAny(styleControlIndicators, style, keyword); ind != "" {
		return Classification{Intent: IntentStyleControlled, Matched: ind, Field: field}
	}
	if ind, _ := matchAny(simpleStyles, style, ""); ind != "" {
		return Classification{Intent: IntentSimple, Matched: ind, Field: "style"}
	}
	return Classification{Intent: IntentGeneral}
}

// matchAny returns the first indicator found in style, then keyword.
func matchAny(indicators []string, style, keyword string) (string, string) {
	for _, ind := range indicators {
		if style != "" && strings.Contains(style, ind) {
			return ind, "style"
		}
		if keyword != "" && strings.Contains(keyword, ind) {
			return ind, "keyword"
		}
	}
	return "", ""
}
