package trends

import (
	"errors"
	"fmt"
)

var (
	// ErrSignalSource marks a fetcher that failed or timed out. It is
	// recovered inside the collector and never returned by scoring.
	ErrSignalSource = errors.New("signal source failed")

	// ErrInsufficientData marks a keyword with no usable signals. Such
	// keywords are dropped from results; the error exists for logging.
	ErrInsufficientData = errors.New("insufficient signal data")

	// ErrSourceUnavailable is returned by sources that are not implemented.
	ErrSourceUnavailable = errors.New("signal source unavailable")

	// ErrInvalidMonth is returned for a month outside 1..12.
	ErrInvalidMonth = errors.New("month must be within 1..12")
)

// SourceError records a failed fetch for one source.
type SourceError struct {
	Source   string
	Err      error
	TimedOut bool
}

func (e *SourceError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: %s: timed out", ErrSignalSource, e.Source)
	}
	return fmt.Sprintf("%s: %s: %v", ErrSignalSource, e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSignalSource, e.Err}
}

// ValidateMonth returns ErrInvalidMonth unless month is within 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	return nil
}
