package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPhonationByVOT(t *testing.T) {
	assert.Equal(t, "unknown", classifyPhonationByVOT(nil))
	assert.Equal(t, "fortis", classifyPhonationByVOT(ptr(10.0)))
	assert.Equal(t, "lenis", classifyPhonationByVOT(ptr(35.0)))
	assert.Equal(t, "aspirated", classifyPhonationByVOT(ptr(80.0)))
	assert.Equal(t, "over-aspirated", classifyPhonationByVOT(ptr(120.0)))

	// Boundaries belong to the upper category.
	assert.Equal(t, "lenis", classifyPhonationByVOT(ptr(20.0)))
	assert.Equal(t, "aspirated", classifyPhonationByVOT(ptr(50.0)))
	assert.Equal(t, "over-aspirated", classifyPhonationByVOT(ptr(100.0)))
}

func TestVOTStatus(t *testing.T) {
	assert.Equal(t, "unknown", votStatus(nil))
	assert.Equal(t, "fortis-like", votStatus(ptr(5.0)))
	assert.Equal(t, "lenis-like", votStatus(ptr(30.0)))
	assert.Equal(t, "aspirated-like", votStatus(ptr(70.0)))
	assert.Equal(t, "over-aspirated", votStatus(ptr(150.0)))
}

func TestVOTScoreInsideRange(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	// Category centers score 100.
	assert.Equal(t, 100.0, *sa.votScore(ptr(10.0), "fortis"))
	assert.Equal(t, 100.0, *sa.votScore(ptr(35.0), "lenis"))
	assert.Equal(t, 100.0, *sa.votScore(ptr(80.0), "aspirated"))

	// Range edges fall off linearly toward 0.
	assert.InDelta(t, 0.0, *sa.votScore(ptr(0.0), "fortis"), 1e-9)
	assert.InDelta(t, 50.0, *sa.votScore(ptr(27.5), "lenis"), 1e-9)
}

func TestVOTScoreOutsideRange(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	// 5 ms past the fortis range: 70 * exp(-5/25).
	got := sa.votScore(ptr(25.0), "fortis")
	require.NotNil(t, got)
	assert.InDelta(t, 70.0*math.Exp(-5.0/25.0), *got, 1e-9)

	// Out-of-range scores never reach in-range territory.
	assert.LessOrEqual(t, *sa.votScore(ptr(21.0), "fortis"), 70.0)

	assert.Nil(t, sa.votScore(nil, "fortis"))
	assert.Nil(t, sa.votScore(ptr(10.0), "nope"))
}

func TestNearestBoundary(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	assert.Nil(t, sa.nearestBoundary(nil))
	assert.InDelta(t, 5.0, *sa.nearestBoundary(ptr(55.0)), 1e-9)
	assert.InDelta(t, 2.0, *sa.nearestBoundary(ptr(18.0)), 1e-9)
	assert.InDelta(t, 20.0, *sa.nearestBoundary(ptr(120.0)), 1e-9)
}

func TestPhonationScoreAdaptiveWeighting(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	assert.Nil(t, sa.phonationScore(nil, nil, nil))
	assert.Equal(t, 80.0, *sa.phonationScore(nil, ptr(80.0), nil))
	assert.Equal(t, 60.0, *sa.phonationScore(ptr(60.0), nil, ptr(35.0)))

	// Far from a boundary: VOT dominates (0.8 / 0.2).
	far := sa.phonationScore(ptr(100.0), ptr(0.0), ptr(35.0))
	assert.InDelta(t, 80.0, *far, 1e-9)

	// Near a boundary (within 6 ms): F0 weight rises to 0.45.
	near := sa.phonationScore(ptr(100.0), ptr(0.0), ptr(18.0))
	assert.InDelta(t, 55.0, *near, 1e-9)
}

func TestPlaceSoftscores(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	detected, conf, soft := sa.placeSoftscores(nil)
	assert.Equal(t, "unknown", detected)
	assert.Nil(t, conf)
	assert.Empty(t, soft)

	detected, conf, soft = sa.placeSoftscores(ptr(1200.0))
	require.NotNil(t, conf)
	assert.Equal(t, "labial", detected)
	assert.Equal(t, 100.0, soft["labial"])
	assert.Len(t, soft, 3)

	// Confidence is (best - second) / best.
	alveolar := GaussianScore(1200.0, 1700.0, 700.0)
	assert.InDelta(t, (100.0-alveolar)/(100.0+1e-9), *conf, 1e-6)

	// Midway between two centers the margin collapses.
	_, conf, _ = sa.placeSoftscores(ptr(1450.0))
	require.NotNil(t, conf)
	assert.Less(t, *conf, 0.01)
}

func TestStopFinalScoreBlend(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	assert.Nil(t, sa.finalScore(nil, nil))
	assert.Equal(t, 70.0, *sa.finalScore(nil, ptr(70.0)))
	assert.Equal(t, 80.0, *sa.finalScore(ptr(80.0), nil))
	assert.InDelta(t, 0.4*80.0+0.6*60.0, *sa.finalScore(ptr(80.0), ptr(60.0)), 1e-9)
}

func TestStopF0Score(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	assert.Nil(t, sa.f0Score(nil, "fortis"))
	assert.Equal(t, 100.0, *sa.f0Score(ptr(1.0), "fortis"))

	// A raised F0 against the lenis target scores low.
	low := sa.f0Score(ptr(1.0), "lenis")
	require.NotNil(t, low)
	assert.InDelta(t, 100.0*math.Exp(-math.Pow(1.5/0.8, 2)/2.0), *low, 1e-6)
}

func TestStopFeedbackStrings(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	// Nothing measurable.
	text := sa.feedback("velar", "unknown", "lenis", "unknown", nil, nil, nil)
	assert.Contains(t, text, "record again")

	// Place mismatch gives a direct correction for the target place.
	text = sa.feedback("velar", "labial", "lenis", "lenis", ptr(40.0), ptr(90.0), ptr(0.8))
	assert.Contains(t, text, "back of your tongue")

	// Correct but low-confidence place gets the refinement hint.
	text = sa.feedback("labial", "labial", "lenis", "lenis", ptr(80.0), ptr(90.0), ptr(0.1))
	assert.Contains(t, text, "Almost there")

	// Confident and correct gets articulator-specific praise.
	text = sa.feedback("alveolar", "alveolar", "lenis", "lenis", ptr(90.0), ptr(90.0), ptr(0.9))
	assert.Equal(t, "Your tongue position is good.", text)

	// Phonation mismatch leads the combined message.
	text = sa.feedback("velar", "velar", "aspirated", "lenis", ptr(90.0), ptr(30.0), ptr(0.9))
	assert.Contains(t, text, "It needs more air.")
	assert.Contains(t, text, "tongue-back position")
}

func TestStopAnalyzeRejectsUnsupportedSyllable(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)
	_, err := sa.Analyze(sine(200.0, 0.5, 0.3), "사", nil)
	require.Error(t, err)
}

func TestStopAnalyzeSilenceDegradesGracefully(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	result, err := sa.Analyze(silence(0.4), "가", nil)
	require.NoError(t, err)

	assert.Equal(t, "가", result.Syllable)
	assert.Equal(t, ClassStop, result.Type)
	assert.Equal(t, "velar", result.Targets.Place)
	assert.Equal(t, "lenis", result.Targets.Phonation)

	require.NotNil(t, result.Evaluation.FinalScore)
	assert.Equal(t, 0.0, *result.Evaluation.FinalScore)
	assert.Equal(t, "unknown", result.Evaluation.DetectedPlace)
	assert.Equal(t, "unknown", result.Evaluation.DetectedPhonation)

	// Feature keys are present but unmeasured.
	require.Contains(t, result.Features, "vot_ms")
	assert.Nil(t, result.Features["vot_ms"])
	assert.Nil(t, result.Features["f2_onset_hz"])
	assert.NotEmpty(t, result.Feedback.Text)
}

// A release click followed by a quick voiced vowel should measure a
// short VOT and classify as fortis.
func TestStopAnalyzeShortLagStop(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)

	signal := concat(
		silence(0.050),
		sine(3000.0, 0.6, 0.005), // release burst
		silence(0.010),
		sine(120.0, 0.9, 0.200), // voiced vowel
		silence(0.035),
	)

	result, err := sa.Analyze(signal, "까", nil)
	require.NoError(t, err)

	vot := result.Features["vot_ms"]
	require.NotNil(t, vot)
	assert.Greater(t, *vot, 0.0)
	assert.Less(t, *vot, 20.0)

	assert.Equal(t, "fortis", result.Evaluation.DetectedPhonation)
	require.NotNil(t, result.Evaluation.PhonationScore)
	assert.Greater(t, *result.Evaluation.PhonationScore, 35.0)
	require.NotNil(t, result.Evaluation.FinalScore)
	assert.Greater(t, *result.Evaluation.FinalScore, 20.0)

	require.NotNil(t, result.Evaluation.Diagnostics)
	assert.Equal(t, "fortis-like", result.Evaluation.Diagnostics.VOTStatus)

	// No calibration: the F0 cue is skipped, phonation rides on VOT.
	assert.Nil(t, result.Features["f0_z"])
	assert.Nil(t, result.Evaluation.F0Score)
}

func TestStopAnalyzeDeterministic(t *testing.T) {
	sa := NewStopAnalyzer(testSampleRate)
	signal := concat(
		silence(0.050),
		sine(3000.0, 0.6, 0.005),
		silence(0.010),
		sine(120.0, 0.9, 0.200),
		silence(0.035),
	)

	first, err := sa.Analyze(signal, "까", nil)
	require.NoError(t, err)
	second, err := sa.Analyze(signal, "까", nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
}
