package tonal

import (
	"math"
	"sort"
)

// PitchFrame is one frame of a pitch contour.
type PitchFrame struct {
	Time     float64 `json:"time"`     // Frame center in seconds
	F0       float64 `json:"f0"`       // Fundamental in Hz, 0 when unvoiced
	Strength float64 `json:"strength"` // Normalized autocorrelation peak [0, 1]
}

// PitchTrack holds a fixed-step pitch contour.
type PitchTrack struct {
	Frames []PitchFrame `json:"frames"`
}

// VoicedFraction returns the fraction of voiced frames, 0 for an empty track.
func (pt *PitchTrack) VoicedFraction() float64 {
	if len(pt.Frames) == 0 {
		return 0.0
	}
	voiced := 0
	for _, f := range pt.Frames {
		if f.F0 > 0 {
			voiced++
		}
	}
	return float64(voiced) / float64(len(pt.Frames))
}

// MedianF0InWindow returns the median F0 of voiced frames whose centers
// fall in [t0, t1], or nil when the window holds no voiced frame.
func (pt *PitchTrack) MedianF0InWindow(t0, t1 float64) *float64 {
	var values []float64
	for _, f := range pt.Frames {
		if f.F0 > 0 && f.Time >= t0 && f.Time <= t1 {
			values = append(values, f.F0)
		}
	}
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	var median float64
	n := len(values)
	if n%2 == 1 {
		median = values[n/2]
	} else {
		median = (values[n/2-1] + values[n/2]) / 2.0
	}
	return &median
}

// PitchTrackerParams configures pitch tracking.
type PitchTrackerParams struct {
	TimeStep         float64 `json:"time_step"`         // Frame step in seconds
	MinFreq          float64 `json:"min_freq"`          // Pitch floor in Hz
	MaxFreq          float64 `json:"max_freq"`          // Pitch ceiling in Hz
	VoicingThreshold float64 `json:"voicing_threshold"` // Minimum ACF peak for voicing
}

// DefaultPitchTrackerParams returns parameters suited to adult speech.
func DefaultPitchTrackerParams() PitchTrackerParams {
	return PitchTrackerParams{
		TimeStep:         0.010,
		MinFreq:          60.0,
		MaxFreq:          500.0,
		VoicingThreshold: 0.30,
	}
}

// PitchTracker extracts a framewise pitch contour using the
// autocorrelation method: each frame is the energy-normalized ACF peak in
// the lag range of [MinFreq, MaxFreq], refined by parabolic
// interpolation, voiced when the peak clears the voicing threshold.
//
// The analysis window spans 2.8 pitch-floor periods centered on the frame
// time and is clamped to the segment edges, so voicing can be assigned
// near segment boundaries.
//
// References:
//   - Boersma, P. (1993). "Accurate short-term analysis of the fundamental
//     frequency and the harmonics-to-noise ratio of a sampled sound"
type PitchTracker struct {
	sampleRate int
	params     PitchTrackerParams
}

// NewPitchTracker creates a pitch tracker with default parameters.
func NewPitchTracker(sampleRate int) *PitchTracker {
	return NewPitchTrackerWithParams(sampleRate, DefaultPitchTrackerParams())
}

// NewPitchTrackerWithParams creates a pitch tracker with explicit parameters.
func NewPitchTrackerWithParams(sampleRate int, params PitchTrackerParams) *PitchTracker {
	return &PitchTracker{
		sampleRate: sampleRate,
		params:     params,
	}
}

// Track computes the pitch contour of the signal. Signals shorter than
// 20 ms yield an empty track.
func (pt *PitchTracker) Track(signal []float64) *PitchTrack {
	track := &PitchTrack{Frames: []PitchFrame{}}

	sr := float64(pt.sampleRate)
	minLen := int(0.02 * sr)
	if len(signal) < minLen || pt.params.MinFreq <= 0 {
		return track
	}

	windowSamples := int(2.8 / pt.params.MinFreq * sr)
	half := windowSamples / 2
	stepSamples := int(pt.params.TimeStep * sr)
	if stepSamples < 1 {
		stepSamples = 1
	}

	lagMin := int(sr / pt.params.MaxFreq)
	lagMax := int(sr / pt.params.MinFreq)
	if lagMin < 1 {
		lagMin = 1
	}

	for center := 0; center < len(signal); center += stepSamples {
		lo := center - half
		if lo < 0 {
			lo = 0
		}
		hi := center + half
		if hi > len(signal) {
			hi = len(signal)
		}

		frame := PitchFrame{Time: float64(center) / sr}
		f0, strength := pt.analyzeFrame(signal[lo:hi], lagMin, lagMax)
		if strength >= pt.params.VoicingThreshold && f0 > pt.params.MinFreq && f0 < pt.params.MaxFreq {
			frame.F0 = f0
		}
		frame.Strength = strength
		track.Frames = append(track.Frames, frame)
	}

	return track
}

// analyzeFrame returns the candidate F0 and normalized ACF peak strength
// for one analysis window.
func (pt *PitchTracker) analyzeFrame(segment []float64, lagMin, lagMax int) (float64, float64) {
	if len(segment) < int(0.02*float64(pt.sampleRate)) {
		return 0, 0
	}

	mean := 0.0
	for _, v := range segment {
		mean += v
	}
	mean /= float64(len(segment))

	denom := 1e-12
	x := make([]float64, len(segment))
	for i, v := range segment {
		x[i] = v - mean
		denom += x[i] * x[i]
	}

	maxLag := lagMax
	if maxLag > len(x)-1 {
		maxLag = len(x) - 1
	}
	if lagMin >= maxLag {
		return 0, 0
	}

	bestLag := 0
	bestCorr := 0.0
	acf := make([]float64, maxLag+1)
	for lag := lagMin; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < len(x); i++ {
			sum += x[i] * x[i+lag]
		}
		acf[lag] = sum / denom
		if acf[lag] > bestCorr {
			bestCorr = acf[lag]
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return 0, 0
	}

	// Parabolic interpolation around the peak for sub-sample lag accuracy.
	refinedLag := float64(bestLag)
	if bestLag > lagMin && bestLag < maxLag {
		y1 := acf[bestLag-1]
		y2 := acf[bestLag]
		y3 := acf[bestLag+1]
		den := y1 - 2*y2 + y3
		if math.Abs(den) > 1e-12 {
			refinedLag += 0.5 * (y1 - y3) / den
		}
	}

	return float64(pt.sampleRate) / refinedLag, bestCorr
}
