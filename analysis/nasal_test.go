package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNasalAnalyzeRejectsUnsupportedSyllable(t *testing.T) {
	na := NewNasalAnalyzer(testSampleRate)
	_, err := na.Analyze(sine(200.0, 0.5, 0.3), "라")
	require.Error(t, err)
}

func TestNasalAnalyzeSilenceReportsNoOnset(t *testing.T) {
	na := NewNasalAnalyzer(testSampleRate)

	result, err := na.Analyze(silence(0.4), "마")
	require.NoError(t, err)

	assert.Equal(t, "마", result.Syllable)
	assert.Equal(t, ClassNasal, result.Type)
	assert.Equal(t, "labial", result.Targets.Place)
	assert.True(t, result.Targets.Nasal)

	require.NotNil(t, result.Evaluation.FinalScore)
	assert.Equal(t, 0.0, *result.Evaluation.FinalScore)
	require.NotNil(t, result.Evaluation.Confidence)
	assert.Equal(t, 0.0, *result.Evaluation.Confidence)
	require.NotNil(t, result.Evaluation.PlaceMargin)
	assert.Equal(t, 0.0, *result.Evaluation.PlaceMargin)

	require.Contains(t, result.Features, "f2_onset_hz")
	assert.Nil(t, result.Features["f2_onset_hz"])
	assert.Contains(t, result.Feedback.Text, "nasal onset")
}

func TestNasalityScoreNilPropagation(t *testing.T) {
	na := NewNasalAnalyzer(testSampleRate)

	assert.Nil(t, na.nasalityScore(nil, ptr(500.0)))
	assert.Nil(t, na.nasalityScore(ptr(0.72), nil))

	got := na.nasalityScore(ptr(0.72), ptr(500.0))
	require.NotNil(t, got)
	assert.Equal(t, 100.0, *got)
}

func TestNasalFeedbackStrings(t *testing.T) {
	// Strong correct production: praise per place.
	text := nasalFeedback("labial", "labial", 85.0, 90.0, 40.0, 70.0)
	assert.Contains(t, text, "Good job!")
	assert.Contains(t, text, "'마'")

	text = nasalFeedback("alveolar", "alveolar", 85.0, 90.0, 40.0, 70.0)
	assert.Contains(t, text, "Good job!")
	assert.Contains(t, text, "'나'")

	// Correct but weak nasality stacks the hum tip.
	text = nasalFeedback("labial", "labial", 65.0, 90.0, 40.0, 40.0)
	assert.Contains(t, text, "Close.")
	assert.Contains(t, text, "nasal hum")

	// Correct with a thin place margin stacks the place tip.
	text = nasalFeedback("labial", "labial", 80.0, 70.0, 65.0, 70.0)
	assert.Contains(t, text, "starts with the lips")

	// Low overall score adds the recording tip.
	text = nasalFeedback("alveolar", "alveolar", 50.0, 60.0, 40.0, 60.0)
	assert.Contains(t, text, "closer to the mic")

	// Wrong place names the detected word and corrects toward the target.
	text = nasalFeedback("labial", "alveolar", 40.0, 30.0, 80.0, 60.0)
	assert.Contains(t, text, "'나'")
	assert.Contains(t, text, "lips closed")

	text = nasalFeedback("alveolar", "labial", 40.0, 30.0, 80.0, 60.0)
	assert.Contains(t, text, "'마'")
	assert.Contains(t, text, "ridge behind your upper teeth")
}

func TestSafeSegment(t *testing.T) {
	signal := silence(0.5)

	seg := safeSegment(signal, testSampleRate, 0.1, 0.07)
	require.NotNil(t, seg)
	assert.Len(t, seg, int(0.07*testSampleRate))

	// Too short once clipped to the signal end.
	assert.Nil(t, safeSegment(signal, testSampleRate, 0.49, 0.07))
	assert.Nil(t, safeSegment(signal, testSampleRate, 0.1, 0.01))
}

// A low-frequency hum has all its murmur energy below 500 Hz, so the
// low ratio saturates and the nasality softscore stays meaningful.
func TestNasalAnalyzeLowMurmur(t *testing.T) {
	na := NewNasalAnalyzer(testSampleRate)

	signal := mix(sine(100.0, 0.5, 0.3), sine(300.0, 0.5, 0.3))
	result, err := na.Analyze(signal, "마")
	require.NoError(t, err)

	lowRatio := result.Features["low_ratio_0_500_over_0_2000"]
	require.NotNil(t, lowRatio)
	assert.InDelta(t, 1.0, *lowRatio, 0.05)

	centroid := result.Features["spectral_centroid_hz"]
	require.NotNil(t, centroid)
	assert.Less(t, *centroid, 600.0)

	soft := result.Evaluation.Softscores
	require.Contains(t, soft, "nasality")
	assert.Greater(t, soft["nasality"], 30.0)

	require.NotNil(t, result.Evaluation.FinalScore)
	require.NotNil(t, result.Evaluation.PlaceMargin)
}
