package trends

// DefaultRecentWindow is the number of trailing samples compared against the
// rest of the series. It matches daily samples over a three-month fetch; a
// different timeframe or sampling rate needs a different window.
const DefaultRecentWindow = 30

// MomentumScore rates how strongly a series is rising on a 0-10 scale.
// The mean of the last recentWindow samples is compared with the mean of the
// samples before them, or with the whole series when it is no longer than
// the window. 5 is neutral, +100% growth saturates at 10 and -100% reaches 0.
func MomentumScore(series []float64, recentWindow int) float64 {
	if len(series) < 2 {
		return 5.0
	}
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}

	var recent, older []float64
	if len(series) > recentWindow {
		recent = series[len(series)-recentWindow:]
		older = series[:len(series)-recentWindow]
	} else {
		recent = series
		older = series
	}

	recentMean := mean(recent)
	olderMean := mean(older)

	if olderMean == 0 {
		if recentMean > 0 {
			return 7.0
		}
		return 5.0
	}

	growth := (recentMean - olderMean) / olderMean * 100
	return clamp(5+growth/20, 0, 10)
}

// IsRising reports whether the last sample is above the series mean.
func IsRising(series []float64) bool {
	if len(series) == 0 {
		return false
	}
	return series[len(series)-1] > mean(series)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
