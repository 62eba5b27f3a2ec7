package trends

import (
	"slices"
	"strings"
)

// SeasonalMultiplier is the boost applied when a keyword is in season.
const SeasonalMultiplier = 2.0

// Season maps a keyword substring to the months it is relevant in.
type Season struct {
	Term   string
	Months []int
}

// seasons is checked in order and only the first in-season match counts.
// A keyword such as "cozy winter" gets one boost, not two.
var seasons = []Season{
	{Term: "christmas", Months: []int{11, 12, 1}},
	{Term: "halloween", Months: []int{9, 10}},
	{Term: "spring", Months: []int{3, 4, 5}},
	{Term: "summer", Months: []int{6, 7, 8}},
	{Term: "autumn", Months: []int{9, 10, 11}},
	{Term: "winter", Months: []int{12, 1, 2}},
	{Term: "valentine", Months: []int{1, 2}},
	{Term: "easter", Months: []int{3, 4}},
	{Term: "beach", Months: []int{5, 6, 7, 8}},
	{Term: "cozy", Months: []int{10, 11, 12, 1}},
}

// Seasons returns a copy of the seasonal table in match order.
func Seasons() []Season {
	out := make([]Season, len(seasons))
	for i, s := range seasons {
		out[i] = Season{Term: s.Term, Months: slices.Clone(s.Months)}
	}
	return out
}

// SeasonalBoost returns SeasonalMultiplier and the matched term when keyword
// contains a seasonal term that is in season for month, otherwise 1.0.
// A month outside 1..12 never matches.
func SeasonalBoost(keyword string, month int) (float64, string) {
	kw := strings.ToLower(keyword)
	for _, s := range seasons {
		if strings.Contains(kw, s.Term) && slices.Contains(s.Months, month) {
			return SeasonalMultiplier, s.Term
		}
	}
	return 1.0, ""
}
