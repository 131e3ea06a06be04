package analysis

import "math"

// GaussianScore maps a measurement onto [0, 100] by its distance from a
// reference center: 100 * exp(-(x-mu)^2 / (2*sigma^2)). Sigma controls
// tolerance (larger = more forgiving); non-positive sigmas are coerced
// to 1.
func GaussianScore(value, center, sigma float64) float64 {
	if sigma <= 0 {
		sigma = 1.0
	}
	d := value - center
	s := 100.0 * math.Exp(-(d*d)/(2.0*sigma*sigma))
	return clampScore(s)
}

// LinearScore maps a measurement onto [0, 100] falling off linearly with
// distance from the center, reaching 0 at the tolerance.
func LinearScore(value, center, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0.0
	}
	d := math.Abs(value - center)
	s := 100.0 * (1.0 - d/tolerance)
	return clampScore(s)
}

// gaussianScoreOpt propagates missing measurements as nil scores.
func gaussianScoreOpt(value *float64, center, sigma float64) *float64 {
	if value == nil {
		return nil
	}
	return ptr(GaussianScore(*value, center, sigma))
}

func clampScore(s float64) float64 {
	return clampRange(s, 0.0, 100.0)
}

func clamp01(v float64) float64 {
	return clampRange(v, 0.0, 1.0)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ptr(v float64) *float64 {
	return &v
}

// argmaxLabel returns the best-scoring label in the given label order
// (ties keep the earlier label) along with the best and second-best
// scores. Missing labels count as 0.
func argmaxLabel(labels []string, scores map[string]float64) (string, float64, float64) {
	best := ""
	bestScore := math.Inf(-1)
	secondScore := math.Inf(-1)
	for _, lab := range labels {
		s := scores[lab]
		if s > bestScore {
			secondScore = bestScore
			bestScore = s
			best = lab
		} else if s > secondScore {
			secondScore = s
		}
	}
	if math.IsInf(secondScore, -1) {
		secondScore = 0.0
	}
	return best, bestScore, secondScore
}
