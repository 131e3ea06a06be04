package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSampleRate = 16000

func testSine(freq, amplitude, seconds float64) []float64 {
	n := int(seconds * testSampleRate)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/testSampleRate)
	}
	return out
}

func TestPeriodicityToneScoresHigh(t *testing.T) {
	p := NewPeriodicity(testSampleRate)

	assert.Greater(t, p.Score(testSine(120.0, 0.8, 0.1)), 0.7)
	assert.Greater(t, p.Score(testSine(300.0, 0.3, 0.1)), 0.7)
}

func TestPeriodicityNoiseScoresLow(t *testing.T) {
	p := NewPeriodicity(testSampleRate)

	rng := rand.New(rand.NewSource(5))
	noise := make([]float64, int(0.1*testSampleRate))
	for i := range noise {
		noise[i] = rng.NormFloat64()
	}
	assert.Less(t, p.Score(noise), 0.3)
}

func TestPeriodicityShortSegmentScoresZero(t *testing.T) {
	p := NewPeriodicity(testSampleRate)

	assert.Equal(t, 0.0, p.Score(testSine(120.0, 0.8, 0.01)))
	assert.Equal(t, 0.0, p.Score(nil))
}

func TestPeriodicitySilenceScoresZero(t *testing.T) {
	p := NewPeriodicity(testSampleRate)
	assert.Equal(t, 0.0, p.Score(make([]float64, int(0.1*testSampleRate))))
}

func TestPeriodicityRangeBounds(t *testing.T) {
	// A 1 kHz tone lies outside the 60-500 Hz search range, but its lag
	// multiples still fall inside it, so the score stays bounded rather
	// than meaningful. The clip to [0, 1] must always hold.
	p := NewPeriodicity(testSampleRate)
	score := p.Score(testSine(1000.0, 0.5, 0.1))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestPeriodicityCustomRange(t *testing.T) {
	p := NewPeriodicityWithRange(testSampleRate, 100.0, 200.0)
	assert.Greater(t, p.Score(testSine(150.0, 0.5, 0.1)), 0.7)
}
