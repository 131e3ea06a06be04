package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiquidAnalyzeRejectsUnsupportedSyllable(t *testing.T) {
	la := NewLiquidAnalyzer(testSampleRate)
	_, err := la.Analyze(sine(200.0, 0.5, 0.3), "마")
	require.Error(t, err)
}

func TestLiquidAnalyzeSilenceReportsNoOnset(t *testing.T) {
	la := NewLiquidAnalyzer(testSampleRate)

	result, err := la.Analyze(silence(0.4), "라")
	require.NoError(t, err)

	assert.Equal(t, "라", result.Syllable)
	assert.Equal(t, ClassLiquid, result.Type)
	assert.True(t, result.Targets.Liquid)

	require.NotNil(t, result.Evaluation.IsRejected)
	assert.True(t, *result.Evaluation.IsRejected)
	assert.Equal(t, "no_onset", result.Evaluation.RejectReason)
	require.NotNil(t, result.Evaluation.FinalScore)
	assert.Equal(t, 0.0, *result.Evaluation.FinalScore)
	assert.Empty(t, result.Features)
}

func TestLiquidConfidence(t *testing.T) {
	// All equal: no sharpness, zero confidence.
	flat := map[string]float64{
		"f3": 50, "closure_depth": 50, "smoothness": 50,
		"non_fricative": 50, "voicing": 50,
	}
	assert.Equal(t, 0.0, liquidConfidence(flat))

	// One dominant cue: (max - median) / 60.
	sharp := map[string]float64{
		"f3": 90, "closure_depth": 30, "smoothness": 30,
		"non_fricative": 30, "voicing": 30,
	}
	assert.InDelta(t, 1.0, liquidConfidence(sharp), 1e-9)
}

func TestLiquidFeedbackStrings(t *testing.T) {
	assert.Contains(t, liquidFeedback(true, "too_fricative", 20.0), "hissy")
	assert.Contains(t, liquidFeedback(true, "too_unvoiced", 20.0), "voice on")
	assert.Contains(t, liquidFeedback(true, "no_tongue_contact", 20.0), "tongue touch")
	assert.Contains(t, liquidFeedback(true, "no_onset", 0.0), "Try again")

	assert.Contains(t, liquidFeedback(false, "", 80.0), "Good job!")
	assert.Contains(t, liquidFeedback(false, "", 65.0), "Close!")
	assert.Contains(t, liquidFeedback(false, "", 40.0), "Not quite yet")
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}))

	// Input is left untouched.
	values := []float64{5, 1, 3}
	median(values)
	assert.Equal(t, []float64{5, 1, 3}, values)
}

func TestZeroIfNil(t *testing.T) {
	assert.Equal(t, 0.0, zeroIfNil(nil))
	assert.Equal(t, 42.0, zeroIfNil(ptr(42.0)))
}

// A hissy onset trips the frication gate: the production is rejected
// and its score capped.
func TestLiquidAnalyzeRejectsFricativeOnset(t *testing.T) {
	la := NewLiquidAnalyzer(testSampleRate)

	hiss := mix(
		bandNoise(4000.0, 7000.0, 0.6, 0.150, 17),
		sine(800.0, 0.2, 0.150),
	)
	signal := concat(hiss, sine(140.0, 0.7, 0.350))

	result, err := la.Analyze(signal, "라")
	require.NoError(t, err)

	require.NotNil(t, result.Evaluation.IsRejected)
	assert.True(t, *result.Evaluation.IsRejected)
	assert.Equal(t, "too_fricative", result.Evaluation.RejectReason)

	fricPeak := result.Features["frication_ratio_peak"]
	require.NotNil(t, fricPeak)
	assert.GreaterOrEqual(t, *fricPeak, 2.6)

	require.NotNil(t, result.Evaluation.FinalScore)
	assert.LessOrEqual(t, *result.Evaluation.FinalScore, 35.0)
	assert.Contains(t, result.Feedback.Text, "hissy")
}

// A clean voiced production with a brief dip passes the gates.
func TestLiquidAnalyzeVoicedTapNotRejected(t *testing.T) {
	la := NewLiquidAnalyzer(testSampleRate)

	signal := concat(
		sine(140.0, 0.6, 0.060),
		sine(140.0, 0.15, 0.030), // tap dip
		sine(140.0, 0.7, 0.300),
	)

	result, err := la.Analyze(signal, "라")
	require.NoError(t, err)

	require.NotNil(t, result.Evaluation.IsRejected)
	assert.False(t, *result.Evaluation.IsRejected)
	assert.Empty(t, result.Evaluation.RejectReason)

	voiced := result.Features["voiced_fraction"]
	require.NotNil(t, voiced)
	assert.Greater(t, *voiced, 0.35)

	soft := result.Evaluation.Softscores
	require.Len(t, soft, 5)
	assert.Greater(t, soft["voicing"], 20.0)
	assert.Greater(t, soft["closure_depth"], 50.0)
}
