package temporal

import (
	"math"

	"github.com/SammyDuDu/kospa-engine/algorithms/filters"
)

// OnsetDetector locates the onset of voiced consonant energy. The signal
// is band-limited to the speech band, rectified and smoothed, and the
// onset is the first point where the envelope reaches 6% of its peak.
type OnsetDetector struct {
	sampleRate int
	lowHz      float64
	highHz     float64
	threshold  float64
}

// NewOnsetDetector creates an onset detector band-limited to 80-4000 Hz.
func NewOnsetDetector(sampleRate int) *OnsetDetector {
	return &OnsetDetector{
		sampleRate: sampleRate,
		lowHz:      80.0,
		highHz:     4000.0,
		threshold:  0.06,
	}
}

// Detect returns the onset time in seconds, or nil when the signal is
// shorter than 50 ms or carries no energy in the analysis band.
func (od *OnsetDetector) Detect(signal []float64) *float64 {
	if len(signal) < int(0.05*float64(od.sampleRate)) {
		return nil
	}

	bp := filters.NewBandPass(od.sampleRate, od.lowHz, od.highHz)
	band := bp.ProcessBuffer(signal)
	for i, v := range band {
		band[i] = math.Abs(v)
	}

	smoothWin := int(0.005 * float64(od.sampleRate))
	if smoothWin < 5 {
		smoothWin = 5
	}
	env := filters.MovingAverage(band, smoothWin)

	peak := 0.0
	for _, v := range env {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return nil
	}

	thr := od.threshold * peak
	for i, v := range env {
		if v >= thr {
			t := float64(i) / float64(od.sampleRate)
			return &t
		}
	}
	return nil
}

// BurstDetector locates the stop release burst: the first intensity frame
// that rises within a margin of the intensity peak. The detector always
// returns a time; when no frame qualifies it falls back to the first
// frame, and to zero for signals shorter than one frame.
type BurstDetector struct {
	sampleRate int
	marginDB   float64
	intensity  *Intensity
}

// NewBurstDetector creates a burst detector with a 30 dB margin.
func NewBurstDetector(sampleRate int) *BurstDetector {
	return &BurstDetector{
		sampleRate: sampleRate,
		marginDB:   30.0,
		intensity:  NewIntensity(sampleRate),
	}
}

// Detect returns the burst time in seconds.
func (bd *BurstDetector) Detect(signal []float64) float64 {
	track := bd.intensity.Compute(signal)
	if len(track.DB) == 0 {
		return 0.0
	}

	threshold := track.Max() - bd.marginDB
	for i, v := range track.DB {
		if v > threshold {
			return track.Times[i]
		}
	}
	return track.Times[0]
}
