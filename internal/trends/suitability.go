package trends

import "strings"

// excludedTerms mark topics unsuitable for print products.
var excludedTerms = []string{
	"news", "death", "died", "killed", "murder", "scandal",
	"covid", "virus", "disease", "election", "politics",
	"stocks", "crypto", "bitcoin", "nft",
}

// categoryTerms is checked in order; the first category with a matching term
// wins.
var categoryTerms = []struct {
	name  string
	terms []string
}{
	{"nature", []string{"nature", "landscape", "mountain", "ocean", "forest", "sunset", "beach"}},
	{"animals", []string{"cat", "dog", "bird", "animal", "pet", "wildlife"}},
	{"abstract", []string{"abstract", "geometric", "pattern", "modern art"}},
	{"typography", []string{"quote", "saying", "text", "words", "motivation"}},
	{"vintage", []string{"vintage", "retro", "classic", "antique", "old"}},
	{"minimalist", []string{"minimalist", "simple", "clean", "minimal"}},
	{"floral", []string{"flower", "floral", "botanical", "plant", "garden"}},
	{"urban", []string{"city", "urban", "street", "architecture", "building"}},
}

// CategoryGeneral is used when no category term matches.
const CategoryGeneral = "general"

// IsSuitable reports whether keyword is free of excluded topics.
func IsSuitable(keyword string) bool {
	kw := strings.ToLower(keyword)
	for _, term := range excludedTerms {
		if strings.Contains(kw, term) {
			return false
		}
	}
	return true
}

// FilterSuitable drops unsuitable and blank keywords, preserving order.
func FilterSuitable(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" || !IsSuitable(kw) {
			continue
		}
		out = append(out, kw)
	}
	return out
}

// Categorize assigns a product category to keyword.
func Categorize(keyword string) string {
	kw := strings.ToLower(keyword)
	for _, c := range categoryTerms {
		for _, term := range c.terms {
			if strings.Contains(kw, term) {
				return c.name
			}
		}
	}
	return CategoryGeneral
}
