// Package trends collects trend signals from external sources and ranks
// keywords for artwork generation.
package trends

import "time"

// Source names.
const (
	SourceGoogleTrends    = "google_trends"
	SourceMarketplace     = "marketplace"
	SourcePinterest       = "pinterest"
	SourceHistoricalSales = "historical_sales"
)

// TrendSignal is one source's observation of one keyword.
type TrendSignal struct {
	Keyword  string
	Source   string
	RawValue float64 // Source-specific magnitude, e.g. mean interest or monthly searches
	IsRising bool

	// MomentumScore is the 0-10 rising-momentum sub-score. Only the primary
	// source sets it.
	MomentumScore float64

	// Series is the interest time series when the source provides one.
	Series []float64

	FetchedAt time.Time
}

// Availability describes whether a source returns real data.
type Availability string

const (
	// AvailabilityLive sources return measured data.
	AvailabilityLive Availability = "live"

	// AvailabilityStub sources return placeholder values. They are counted as
	// weak corroboration only.
	AvailabilityStub Availability = "stub"

	// AvailabilityUnavailable sources are not implemented or not configured
	// and never produce signals.
	AvailabilityUnavailable Availability = "unavailable"
)
