package trends

import (
	"context"
	"fmt"
)

// StubEstimator returns the same placeholder volume for every keyword.
// It stands in for marketplaces without a usable API.
type StubEstimator struct {
	name  string
	value int
}

// NewStubEstimator creates a stub reporting value for every keyword.
func NewStubEstimator(name string, value int) *StubEstimator {
	return &StubEstimator{name: name, value: value}
}

func (s *StubEstimator) Name() string { return s.name }

func (s *StubEstimator) Availability() Availability { return AvailabilityStub }

func (s *StubEstimator) EstimateVolume(_ context.Context, keywords []string) (map[string]int, error) {
	out := make(map[string]int, len(keywords))
	for _, kw := range keywords {
		out[kw] = s.value
	}
	return out, nil
}

// UnavailableEstimator is a source that is not implemented or not
// configured. It never returns data.
type UnavailableEstimator struct {
	name   string
	reason string
}

// NewUnavailableEstimator creates an unavailable source.
func NewUnavailableEstimator(name, reason string) *UnavailableEstimator {
	return &UnavailableEstimator{name: name, reason: reason}
}

func (u *UnavailableEstimator) Name() string { return u.name }

func (u *UnavailableEstimator) Availability() Availability { return AvailabilityUnavailable }

func (u *UnavailableEstimator) EstimateVolume(context.Context, []string) (map[string]int, error) {
	return nil, fmt.Errorf("%w: %s: %s", ErrSourceUnavailable, u.name, u.reason)
}
