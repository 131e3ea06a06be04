package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/SammyDuDu/kospa-engine/algorithms/speech"
	"github.com/SammyDuDu/kospa-engine/algorithms/spectral"
	"github.com/SammyDuDu/kospa-engine/algorithms/temporal"
	"github.com/SammyDuDu/kospa-engine/logging"
)

// NasalAnalyzer scores 마/나. Place of articulation comes from the F2
// onset frequency; nasality comes from the murmur right after onset —
// low-frequency dominance and a low spectral centroid are the signature
// of sound radiating through the nose while the mouth is closed.
type NasalAnalyzer struct {
	sampleRate int
	refs       *NasalReferences
	trimmer    *temporal.SilenceTrimmer
	onset      *temporal.OnsetDetector
	welch      *spectral.Welch
	formants   *speech.FormantAnalyzer
	logger     logging.Logger
}

// NewNasalAnalyzer creates a nasal analyzer with the default references.
func NewNasalAnalyzer(sampleRate int) *NasalAnalyzer {
	return NewNasalAnalyzerWithReferences(sampleRate, DefaultNasalReferences())
}

// NewNasalAnalyzerWithReferences creates a nasal analyzer with explicit
// scoring references.
func NewNasalAnalyzerWithReferences(sampleRate int, refs *NasalReferences) *NasalAnalyzer {
	return &NasalAnalyzer{
		sampleRate: sampleRate,
		refs:       refs,
		trimmer:    temporal.NewSilenceTrimmer(sampleRate, 40.0),
		onset:      temporal.NewOnsetDetector(sampleRate),
		welch:      spectral.NewWelch(sampleRate),
		formants:   speech.NewFormantAnalyzer(sampleRate),
		logger:     logging.WithFields(logging.Fields{"component": "nasal_analyzer"}),
	}
}

// Analyze scores one recording of a nasal syllable.
func (na *NasalAnalyzer) Analyze(samples []float64, syllable string) (*Result, error) {
	targetPlace, ok := nasalMeta[syllable]
	if !ok {
		return nil, fmt.Errorf("%q is not a supported nasal syllable", syllable)
	}

	result := &Result{
		Syllable: syllable,
		Type:     ClassNasal,
		Targets:  Targets{Place: targetPlace, Nasal: true},
	}

	if tooQuiet(samples, na.sampleRate) {
		return na.noOnsetResult(result), nil
	}

	trimmed, _ := na.trimmer.Trim(samples)

	onsetT := na.onset.Detect(trimmed)
	if onsetT == nil {
		return na.noOnsetResult(result), nil
	}

	lowRatio, centroid := na.murmurFeatures(trimmed, *onsetT)
	f2 := na.f2Onset(trimmed, *onsetT)

	na.logger.Debug("Nasal measurements", logging.Fields{
		"syllable":  syllable,
		"onset_t":   *onsetT,
		"f2_hz":     f2,
		"low_ratio": lowRatio,
	})

	placeScores := make(map[string]float64, len(nasalPlaceLabels))
	for _, place := range nasalPlaceLabels {
		s := gaussianScoreOpt(f2, na.refs.F2OnsetHz[place], na.refs.F2Sigma)
		if s != nil {
			placeScores[place] = *s
		} else {
			placeScores[place] = 0.0
		}
	}
	detectedPlace, _, _ := argmaxLabel(nasalPlaceLabels, placeScores)

	nasality := 0.0
	if s := na.nasalityScore(lowRatio, centroid); s != nil {
		nasality = *s
	}

	placeTarget := placeScores[targetPlace]
	otherPlace := "alveolar"
	if targetPlace == "alveolar" {
		otherPlace = "labial"
	}
	placeOther := placeScores[otherPlace]

	finalScore := na.refs.PlaceWeight*placeTarget + na.refs.NasalityWeight*nasality

	placeMargin := placeTarget - placeOther
	cPlace := clamp01((placeTarget - 50.0) / 50.0)
	cNasal := clamp01((nasality - 40.0) / 60.0)
	overall := clamp01(0.6*cPlace + 0.4*cNasal)

	result.Features = FeatureSet{
		"onset_t":                     onsetT,
		"f2_onset_hz":                 f2,
		"low_ratio_0_500_over_0_2000": lowRatio,
		"spectral_centroid_hz":        centroid,
	}
	result.Evaluation = Evaluation{
		DetectedPlace: detectedPlace,
		Softscores: map[string]float64{
			"place_labial":   placeScores["labial"],
			"place_alveolar": placeScores["alveolar"],
			"nasality":       nasality,
		},
		FinalScore:  ptr(finalScore),
		Confidence:  ptr(overall),
		PlaceMargin: ptr(placeMargin),
	}
	result.Feedback = Feedback{Text: nasalFeedback(
		targetPlace, detectedPlace, finalScore, placeTarget, placeOther, nasality,
	)}
	return result, nil
}

func (na *NasalAnalyzer) noOnsetResult(result *Result) *Result {
	result.Features = FeatureSet{
		"onset_t": nil, "f2_onset_hz": nil,
		"low_ratio_0_500_over_0_2000": nil, "spectral_centroid_hz": nil,
	}
	result.Evaluation = Evaluation{
		FinalScore:  ptr(0.0),
		Confidence:  ptr(0.0),
		PlaceMargin: ptr(0.0),
	}
	result.Feedback = Feedback{Text: "I couldn't find a clear nasal onset. Try recording again closer to the mic with less background noise."}
	return result
}

// murmurFeatures measures the nasal murmur on the 10-80 ms window after
// onset: the 0-500 Hz share of the 0-2 kHz energy and the 0-3 kHz
// spectral centroid.
func (na *NasalAnalyzer) murmurFeatures(signal []float64, onsetT float64) (*float64, *float64) {
	seg := safeSegment(signal, na.sampleRate, onsetT+0.010, 0.070)
	if seg == nil {
		return nil, nil
	}

	demeaned := make([]float64, len(seg))
	copy(demeaned, seg)
	mean := stat.Mean(demeaned, nil)
	for i := range demeaned {
		demeaned[i] -= mean
	}

	psd := na.welch.Compute(demeaned)

	eLow := psd.BandEnergy(0.0, 500.0)
	eFull := psd.BandEnergy(0.0, 2000.0)
	lowRatio := clamp01(eLow / (eFull + 1e-12))

	var centroid *float64
	if c, ok := psd.CentroidInBand(0.0, 3000.0); ok && !math.IsNaN(c) && !math.IsInf(c, 0) {
		centroid = ptr(c)
	}

	return ptr(lowRatio), centroid
}

// f2Onset samples F2 60 ms after onset, clamped to the plausible nasal
// F2 range.
func (na *NasalAnalyzer) f2Onset(signal []float64, onsetT float64) *float64 {
	total := float64(len(signal)) / float64(na.sampleRate)
	t := clampRange(onsetT+0.060, 0.0, math.Max(0.0, total-0.01))
	f2 := na.formants.FrequencyAt(signal, t, 2)
	if f2 == nil {
		return nil
	}
	return ptr(clampRange(*f2, 500.0, 3500.0))
}

// nasalityScore blends low-frequency dominance with the murmur centroid,
// nil when either measurement is missing.
func (na *NasalAnalyzer) nasalityScore(lowRatio, centroid *float64) *float64 {
	sLR := gaussianScoreOpt(lowRatio, na.refs.LowRatio, na.refs.LowRatioSigma)
	sC := gaussianScoreOpt(centroid, na.refs.CentroidHz, na.refs.CentroidSigma)
	if sLR == nil || sC == nil {
		return nil
	}
	return ptr(0.55**sLR + 0.45**sC)
}

// nasalFeedback: praise only with a solid score, a clear place margin
// and real nasality; otherwise stack the specific fixes that apply.
func nasalFeedback(
	targetPlace, detectedPlace string,
	finalScore, placeTargetScore, placeOtherScore, nasalityScore float64,
) string {
	placeMargin := placeTargetScore - placeOtherScore

	detectedWord := "나"
	if detectedPlace == "labial" {
		detectedWord = "마"
	}
	targetWord := "나"
	if targetPlace == "labial" {
		targetWord = "마"
	}

	correct := targetPlace == detectedPlace

	if correct && finalScore >= 75.0 && placeMargin >= 10.0 && nasalityScore >= 55.0 {
		if targetPlace == "labial" {
			return "Good job! This sounds like '마'. " +
				"Start with fully closed lips, then open smoothly while keeping a nasal hum."
		}
		return "Good job! This sounds like '나'. " +
			"Touch your tongue lightly to the ridge behind your teeth and keep the sound nasal and smooth."
	}

	if correct {
		msg := fmt.Sprintf("Close. It is basically '%s', but not very strong/clear yet.", targetWord)
		if nasalityScore < 55.0 {
			msg += " Try to keep a steady nasal hum (feel vibration around the nose) before you move into the vowel."
		}
		if placeMargin < 10.0 {
			if targetPlace == "labial" {
				msg += " Make sure the sound starts with the lips (m). Do not start with the tongue."
			} else {
				msg += " Make sure the sound starts with the tongue touching behind the teeth (n). Keep lips relaxed."
			}
		}
		if finalScore < 60.0 {
			msg += " Record a bit closer to the mic and keep the start clean (no breathy onset)."
		}
		return msg
	}

	if targetPlace == "labial" {
		return fmt.Sprintf("It sounds closer to '%s'. For '마', start with your lips closed (m). ", detectedWord) +
			"Do NOT start with the tongue; let it hum through your nose, then open into '아'."
	}
	return fmt.Sprintf("It sounds closer to '%s'. For '나', use your tongue: ", detectedWord) +
		"touch the ridge behind your upper teeth (n) while keeping your lips relaxed, then move into '아'."
}

// safeSegment slices [t0, t0+dur] in seconds, nil when the slice would
// be shorter than 20 ms.
func safeSegment(signal []float64, sampleRate int, t0, dur float64) []float64 {
	sr := float64(sampleRate)
	a := int(math.Max(0, math.Round(t0*sr)))
	b := int(math.Min(float64(len(signal)), math.Round((t0+dur)*sr)))
	if b-a < int(0.02*sr) {
		return nil
	}
	return signal[a:b]
}
