package trends

import (
	"math"
	"sort"
	"strings"
)

// CompetitionLevel is a rough proxy for how crowded a keyword is.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

// Score weights. Volume dominates; the rest only re-rank within a volume band.
const (
	volumeDivisor   = 2000.0
	maxVolumeScore  = 10.0
	risingValue     = 2.0
	perSourceBonus  = 0.5
	weightVolume    = 0.50
	weightMomentum  = 0.20
	weightRising    = 0.20
	weightSources   = 0.15
	weightPenalty   = 0.10
	weightSeasonal  = 0.05
	weightHistory   = 0.10
	highCompetition = 50000
	midCompetition  = 10000
)

// EstimateCompetition derives competition from search volume alone. This is
// an approximation; no source measures competition directly.
func EstimateCompetition(searchVolume int) CompetitionLevel {
	switch {
	case searchVolume > highCompetition:
		return CompetitionHigh
	case searchVolume > midCompetition:
		return CompetitionMedium
	default:
		return CompetitionLow
	}
}

func (c CompetitionLevel) penalty() float64 {
	switch c {
	case CompetitionHigh:
		return -2
	case CompetitionMedium:
		return -1
	default:
		return 0
	}
}

// HistoricalPerformance summarises past sales of a keyword.
type HistoricalPerformance struct {
	HasHistory       bool    `json:"has_history"`
	PerformanceScore float64 `json:"performance_score"`
	TotalOrders      int     `json:"total_orders"`
	AvgOrderValue    float64 `json:"avg_order_value"`
}

// HistoryLookup returns past performance for a keyword. It must not block;
// callers resolve history before scoring.
type HistoryLookup func(keyword string) HistoricalPerformance

// HistoryMap is a HistoryLookup backed by a map keyed by lowercased keyword.
type HistoryMap map[string]HistoricalPerformance

// Lookup implements HistoryLookup.
func (m HistoryMap) Lookup(keyword string) HistoricalPerformance {
	return m[strings.ToLower(keyword)]
}

// TrendScore is the ranked view of one keyword.
type TrendScore struct {
	Keyword      string             `json:"keyword"`
	SearchVolume int                `json:"search_volume"`
	SourceScores map[string]float64 `json:"source_scores"`

	// SourceVolumes holds the raw value each surviving source reported.
	SourceVolumes map[string]float64 `json:"source_volumes"`

	// MomentumScore is the primary source's 0-10 momentum, 0 when the
	// primary source did not contribute.
	MomentumScore              float64          `json:"momentum_score"`
	RisingStatus               bool             `json:"rising_status"`
	CompetitionLevel           CompetitionLevel `json:"competition_level"`
	SeasonalBoost              float64          `json:"seasonal_boost"`
	Season                     string           `json:"season,omitempty"`
	HasHistory                 bool             `json:"has_history"`
	HistoricalPerformanceBoost float64          `json:"historical_performance_boost"`
	Sources                    []string         `json:"sources"`
	FinalScore                 float64          `json:"final_score"`
}

// VolumeScore normalises search volume to 0-10, saturating at 20,000.
func VolumeScore(searchVolume int) float64 {
	return math.Min(float64(searchVolume)/volumeDivisor, maxVolumeScore)
}

// CalculateFinalScore combines the fields of s into the ranking score.
// It depends on nothing but s.
func CalculateFinalScore(s TrendScore) float64 {
	rising := 0.0
	if s.RisingStatus {
		rising = risingValue
	}
	sourceBonus := perSourceBonus * float64(signalSourceCount(s))

	score := VolumeScore(s.SearchVolume)*weightVolume +
		s.MomentumScore*weightMomentum +
		rising*weightRising +
		sourceBonus*weightSources +
		s.CompetitionLevel.penalty()*weightPenalty +
		s.SeasonalBoost*weightSeasonal

	if s.HasHistory {
		score += s.HistoricalPerformanceBoost * weightHistory
	}
	return score
}

// signalSourceCount counts the corroborating signal sources. Sales history
// from the history lookup is listed in Sources but contributes only through
// the history term; a historical_sales volume signal still counts.
func signalSourceCount(s TrendScore) int {
	n := 0
	for _, src := range s.Sources {
		if src == SourceHistoricalSales {
			if _, signal := s.SourceVolumes[src]; !signal {
				continue
			}
		}
		n++
	}
	return n
}

// Scorer ranks keywords from collected signals. It performs no I/O.
type Scorer struct {
	// PrimarySource feeds the momentum term and the search volume.
	PrimarySource string
}

// NewScorer creates a scorer with primary as the designated primary source.
func NewScorer(primary string) *Scorer {
	if primary == "" {
		primary = SourceGoogleTrends
	}
	return &Scorer{PrimarySource: primary}
}

// ScoreTrends scores every keyword with at least one usable signal and returns
// them sorted by FinalScore descending, ties broken by keyword. history may be
// nil. A month outside 1..12 disables the seasonal boost.
func (s *Scorer) ScoreTrends(signals map[string][]TrendSignal, history HistoryLookup, month int) []TrendScore {
	keywords := make([]string, 0, len(signals))
	for kw := range signals {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	scores := make([]TrendScore, 0, len(keywords))
	for _, kw := range keywords {
		score, ok := s.scoreKeyword(kw, signals[kw], history, month)
		if !ok {
			continue
		}
		scores = append(scores, score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].FinalScore != scores[j].FinalScore {
			return scores[i].FinalScore > scores[j].FinalScore
		}
		return scores[i].Keyword < scores[j].Keyword
	})
	return scores
}

func (s *Scorer) scoreKeyword(keyword string, signals []TrendSignal, history HistoryLookup, month int) (TrendScore, bool) {
	score := TrendScore{
		Keyword:       keyword,
		SourceScores:  make(map[string]float64),
		SourceVolumes: make(map[string]float64),
	}

	var primary *TrendSignal
	var maxRaw float64
	for i := range signals {
		sig := signals[i]
		if sig.Source == "" || !usable(sig.RawValue) {
			continue
		}
		// First signal per source wins.
		if _, seen := score.SourceVolumes[sig.Source]; seen {
			continue
		}
		score.SourceVolumes[sig.Source] = sig.RawValue
		score.SourceScores[sig.Source] = math.Min(sig.RawValue/volumeDivisor, maxVolumeScore)
		if sig.IsRising {
			score.RisingStatus = true
		}
		if sig.RawValue > maxRaw {
			maxRaw = sig.RawValue
		}
		if sig.Source == s.PrimarySource {
			primary = &signals[i]
		}
	}

	if len(score.SourceVolumes) == 0 {
		return TrendScore{}, false
	}

	volume := maxRaw
	if primary != nil {
		volume = primary.RawValue
		if usable(primary.MomentumScore) {
			score.MomentumScore = clamp(primary.MomentumScore, 0, 10)
		}
	}
	score.SearchVolume = int(math.Round(volume))

	for src := range score.SourceVolumes {
		score.Sources = append(score.Sources, src)
	}

	if history != nil {
		if h := history(keyword); h.HasHistory && usable(h.PerformanceScore) {
			score.HasHistory = true
			score.HistoricalPerformanceBoost = h.PerformanceScore
			if _, dup := score.SourceVolumes[SourceHistoricalSales]; !dup {
				score.Sources = append(score.Sources, SourceHistoricalSales)
			}
		}
	}
	sort.Strings(score.Sources)

	score.CompetitionLevel = EstimateCompetition(score.SearchVolume)
	score.SeasonalBoost, score.Season = SeasonalBoost(keyword, month)
	score.FinalScore = CalculateFinalScore(score)

	return score, true
}

// usable rejects negative, NaN and infinite values.
func usable(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FilterByMinimumVolume keeps scores with SearchVolume >= minVolume.
// Order is preserved.
func FilterByMinimumVolume(scores []TrendScore, minVolume int) []TrendScore {
	out := make([]TrendScore, 0, len(scores))
	for _, s := range scores {
		if s.SearchVolume >= minVolume {
			out = append(out, s)
		}
	}
	return out
}

// FilterByMinimumScore keeps scores with FinalScore >= minScore.
// Order is preserved.
func FilterByMinimumScore(scores []TrendScore, minScore float64) []TrendScore {
	out := make([]TrendScore, 0, len(scores))
	for _, s := range scores {
		if s.FinalScore >= minScore {
			out = append(out, s)
		}
	}
	return out
}
