package temporal

import (
	"math"
)

// intensityReference is the squared 20 µPa pressure reference, so that a
// full-scale sine lands around 90 dB like conventional speech intensity
// measures.
const intensityReference = 4e-10

// IntensityTrack holds a short-time intensity contour in dB.
type IntensityTrack struct {
	Times []float64 `json:"times"` // Frame center times in seconds
	DB    []float64 `json:"db"`    // Intensity per frame in dB
}

// Max returns the maximum intensity in dB, or -inf for an empty track.
func (t *IntensityTrack) Max() float64 {
	max := math.Inf(-1)
	for _, v := range t.DB {
		if v > max {
			max = v
		}
	}
	return max
}

// Intensity computes short-time intensity contours used for silence
// trimming and burst localization. Frames are 20 ms with a 10 ms step;
// silent frames bottom out near -26 dB through a 1e-12 noise floor
// instead of going to -inf.
type Intensity struct {
	sampleRate int
	windowSize int
	hopSize    int
}

// NewIntensity creates an intensity analyzer for the given sample rate.
func NewIntensity(sampleRate int) *Intensity {
	return &Intensity{
		sampleRate: sampleRate,
		windowSize: int(0.020 * float64(sampleRate)),
		hopSize:    int(0.010 * float64(sampleRate)),
	}
}

// Compute returns the intensity track of the signal. Signals shorter than
// one frame yield an empty track.
func (in *Intensity) Compute(signal []float64) *IntensityTrack {
	track := &IntensityTrack{Times: []float64{}, DB: []float64{}}
	if len(signal) < in.windowSize || in.windowSize <= 0 {
		return track
	}

	numFrames := (len(signal)-in.windowSize)/in.hopSize + 1
	track.Times = make([]float64, numFrames)
	track.DB = make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		start := i * in.hopSize
		end := start + in.windowSize

		sumSquares := 0.0
		for j := start; j < end; j++ {
			sumSquares += signal[j] * signal[j]
		}
		meanSquare := sumSquares / float64(in.windowSize)

		track.Times[i] = (float64(start) + float64(in.windowSize)/2.0) / float64(in.sampleRate)
		track.DB[i] = 10.0 * math.Log10((meanSquare+1e-12)/intensityReference)
	}

	return track
}
