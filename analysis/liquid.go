package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/SammyDuDu/kospa-engine/algorithms/filters"
	"github.com/SammyDuDu/kospa-engine/algorithms/speech"
	"github.com/SammyDuDu/kospa-engine/algorithms/spectral"
	"github.com/SammyDuDu/kospa-engine/algorithms/temporal"
	"github.com/SammyDuDu/kospa-engine/algorithms/tonal"
	"github.com/SammyDuDu/kospa-engine/logging"
)

// LiquidAnalyzer scores 라. The Korean liquid is a quick alveolar tap:
// voiced, smooth, with a brief energy dip where the tongue touches. The
// soft scores (F3 onset, closure depth, murmur centroid, non-frication,
// voicing) describe quality, but hard reject gates carry the real
// discriminative load — an ㅅ-like hiss, an unvoiced production or a
// tapless vowel is rejected outright and its score capped.
type LiquidAnalyzer struct {
	sampleRate int
	refs       *LiquidReferences
	trimmer    *temporal.SilenceTrimmer
	onset      *temporal.OnsetDetector
	envelope   *temporal.Envelope
	welch      *spectral.Welch
	formants   *speech.FormantAnalyzer
	logger     logging.Logger
}

// NewLiquidAnalyzer creates a liquid analyzer with the default
// references.
func NewLiquidAnalyzer(sampleRate int) *LiquidAnalyzer {
	return NewLiquidAnalyzerWithReferences(sampleRate, DefaultLiquidReferences())
}

// NewLiquidAnalyzerWithReferences creates a liquid analyzer with
// explicit scoring references.
func NewLiquidAnalyzerWithReferences(sampleRate int, refs *LiquidReferences) *LiquidAnalyzer {
	return &LiquidAnalyzer{
		sampleRate: sampleRate,
		refs:       refs,
		trimmer:    temporal.NewSilenceTrimmer(sampleRate, 40.0),
		onset:      temporal.NewOnsetDetector(sampleRate),
		envelope:   temporal.NewEnvelope(),
		welch:      spectral.NewWelch(sampleRate),
		formants:   speech.NewFormantAnalyzer(sampleRate),
		logger:     logging.WithFields(logging.Fields{"component": "liquid_analyzer"}),
	}
}

// Analyze scores one recording of the liquid syllable.
func (la *LiquidAnalyzer) Analyze(samples []float64, syllable string) (*Result, error) {
	targetPlace, ok := liquidMeta[syllable]
	if !ok {
		return nil, fmt.Errorf("%q is not a supported liquid syllable", syllable)
	}

	result := &Result{
		Syllable: syllable,
		Type:     ClassLiquid,
		Targets:  Targets{Place: targetPlace, Liquid: true},
	}

	if tooQuiet(samples, la.sampleRate) {
		return la.noOnsetResult(result), nil
	}

	trimmed, _ := la.trimmer.Trim(samples)

	onsetT := la.onset.Detect(trimmed)
	if onsetT == nil {
		return la.noOnsetResult(result), nil
	}

	f3 := la.f3Onset(trimmed, *onsetT)
	depthDB := la.closureDepthDB(trimmed, *onsetT)
	centroid := la.centroidHz(trimmed, *onsetT)
	fricPeak := la.fricationRatioPeak(trimmed, *onsetT)
	voicedFrac := la.voicedFraction(trimmed, *onsetT)

	la.logger.Debug("Liquid measurements", logging.Fields{
		"syllable":    syllable,
		"onset_t":     *onsetT,
		"depth_db":    depthDB,
		"fric_peak":   fricPeak,
		"voiced_frac": voicedFrac,
	})

	softscores := map[string]float64{
		"f3":            zeroIfNil(gaussianScoreOpt(f3, la.refs.F3OnsetHz, la.refs.F3Sigma)),
		"closure_depth": zeroIfNil(gaussianScoreOpt(depthDB, la.refs.ClosureDepthDB, la.refs.ClosureDepthSigma)),
		"smoothness":    zeroIfNil(gaussianScoreOpt(centroid, la.refs.CentroidHz, la.refs.CentroidSigma)),
		"non_fricative": zeroIfNil(gaussianScoreOpt(fricPeak, la.refs.FricRatioPeak, la.refs.FricRatioSigma)),
		"voicing":       zeroIfNil(gaussianScoreOpt(voicedFrac, la.refs.VoicedFrac, la.refs.VoicedFracSigma)),
	}

	finalScore := la.refs.F3Weight*softscores["f3"] +
		la.refs.ClosureWeight*softscores["closure_depth"] +
		la.refs.CentroidWeight*softscores["smoothness"] +
		la.refs.FricWeight*softscores["non_fricative"] +
		la.refs.VoicedWeight*softscores["voicing"]

	rejected := false
	rejectReason := ""
	switch {
	case fricPeak != nil && *fricPeak >= la.refs.FricRejectThreshold:
		rejected = true
		rejectReason = "too_fricative"
	case voicedFrac != nil && *voicedFrac <= la.refs.VoicedRejectThreshold:
		rejected = true
		rejectReason = "too_unvoiced"
	case depthDB != nil && *depthDB <= la.refs.DepthRejectThreshold:
		rejected = true
		rejectReason = "no_tongue_contact"
	}
	if rejected {
		finalScore = math.Min(finalScore, la.refs.RejectScoreCap)
	}

	confidence := liquidConfidence(softscores)

	result.Features = FeatureSet{
		"onset_t":              onsetT,
		"f3_onset_hz":          f3,
		"closure_depth_db":     depthDB,
		"spectral_centroid_hz": centroid,
		"frication_ratio_peak": fricPeak,
		"voiced_fraction":      voicedFrac,
	}
	result.Evaluation = Evaluation{
		Softscores:   softscores,
		FinalScore:   ptr(finalScore),
		Confidence:   ptr(confidence),
		IsRejected:   boolPtr(rejected),
		RejectReason: rejectReason,
	}
	result.Feedback = Feedback{Text: liquidFeedback(rejected, rejectReason, finalScore)}
	return result, nil
}

func (la *LiquidAnalyzer) noOnsetResult(result *Result) *Result {
	result.Features = FeatureSet{}
	result.Evaluation = Evaluation{
		FinalScore:   ptr(0.0),
		IsRejected:   boolPtr(true),
		RejectReason: "no_onset",
	}
	result.Feedback = Feedback{Text: "I couldn't find a clear onset. Try recording again closer to the mic with less background noise."}
	return result
}

// f3Onset samples F3 60 ms after onset, clamped to a plausible range.
// F3 separates the tap from glides but stays vowel-influenced, hence
// its moderate weight.
func (la *LiquidAnalyzer) f3Onset(signal []float64, onsetT float64) *float64 {
	total := float64(len(signal)) / float64(la.sampleRate)
	t := clampRange(onsetT+0.060, 0.0, math.Max(0.0, total-0.01))
	f3 := la.formants.FrequencyAt(signal, t, 3)
	if f3 == nil {
		return nil
	}
	return ptr(clampRange(*f3, 1200.0, 4500.0))
}

// closureDepthDB measures the energy dip of the tongue tap in the 90 ms
// after onset: median frame energy over minimum, in dB. A vowel-like
// production has no dip; a full stop closure dips too deep.
func (la *LiquidAnalyzer) closureDepthDB(signal []float64, onsetT float64) *float64 {
	sr := float64(la.sampleRate)
	seg := safeSegment(signal, la.sampleRate, onsetT, 0.090)
	if seg == nil {
		return nil
	}

	win := int(0.010 * sr)
	if win < 128 {
		win = 128
	}
	hop := int(0.005 * sr)
	if hop < 64 {
		hop = 64
	}

	energies := la.envelope.ComputeEnergy(seg, win, hop)
	if len(energies) <= 3 {
		return nil
	}

	med := median(energies)
	min := energies[0]
	for _, e := range energies {
		if e < min {
			min = e
		}
	}
	if med <= 0.0 || min <= 0.0 {
		return nil
	}

	depthDB := 10.0 * math.Log10((med+1e-12)/(min+1e-12))
	return ptr(clampRange(depthDB, 0.0, 30.0))
}

// centroidHz measures the 0-3 kHz centroid of the early murmur window.
func (la *LiquidAnalyzer) centroidHz(signal []float64, onsetT float64) *float64 {
	seg := safeSegment(signal, la.sampleRate, onsetT+0.010, 0.060)
	if seg == nil {
		return nil
	}

	demeaned := make([]float64, len(seg))
	copy(demeaned, seg)
	mean := stat.Mean(demeaned, nil)
	for i := range demeaned {
		demeaned[i] -= mean
	}

	psd := la.welch.Compute(demeaned)
	c, ok := psd.CentroidInBand(0.0, 3000.0)
	if !ok || math.IsNaN(c) || math.IsInf(c, 0) {
		return nil
	}
	return ptr(clampRange(c, 0.0, 5000.0))
}

// fricationRatioPeak measures the peak HF/LF RMS ratio in the 120 ms
// after onset. A strong ㅅ-like hiss pushes it high.
func (la *LiquidAnalyzer) fricationRatioPeak(signal []float64, onsetT float64) *float64 {
	sr := float64(la.sampleRate)
	seg := safeSegment(signal, la.sampleRate, onsetT, 0.120)
	if seg == nil {
		return nil
	}

	hf := filters.NewBandPass(la.sampleRate, 3000.0, 8000.0).ProcessBuffer(seg)
	lf := filters.NewBandPass(la.sampleRate, 300.0, 2000.0).ProcessBuffer(seg)

	win := int(0.020 * sr)
	if win < 256 {
		win = 256
	}
	hop := int(0.010 * sr)
	if hop < 128 {
		hop = 128
	}

	rmsH := la.envelope.ComputeRMS(hf, win, hop)
	rmsL := la.envelope.ComputeRMS(lf, win, hop)
	if len(rmsH) <= 2 || len(rmsL) <= 2 {
		return nil
	}

	peak := 0.0
	for i := range rmsH {
		r := rmsH[i] / (rmsL[i] + 1e-12)
		if r > peak {
			peak = r
		}
	}
	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		return nil
	}
	return ptr(clampRange(peak, 0.0, 10.0))
}

// voicedFraction measures how much of the 200 ms after onset is voiced.
func (la *LiquidAnalyzer) voicedFraction(signal []float64, onsetT float64) *float64 {
	seg := safeSegment(signal, la.sampleRate, onsetT, 0.200)
	if seg == nil {
		return nil
	}

	tracker := tonal.NewPitchTrackerWithParams(la.sampleRate, tonal.PitchTrackerParams{
		TimeStep:         0.010,
		MinFreq:          60.0,
		MaxFreq:          500.0,
		VoicingThreshold: 0.30,
	})
	track := tracker.Track(seg)
	if len(track.Frames) == 0 {
		return nil
	}
	return ptr(clamp01(track.VoicedFraction()))
}

// liquidConfidence squashes the sharpness of the soft scores into [0,1].
func liquidConfidence(softscores map[string]float64) float64 {
	values := make([]float64, 0, len(softscores))
	for _, name := range liquidSoftscoreNames {
		values = append(values, softscores[name])
	}
	if len(values) == 0 {
		return 0.0
	}
	max := values[0]
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return clamp01((max - median(values)) / 60.0)
}

func liquidFeedback(rejected bool, rejectReason string, finalScore float64) string {
	if rejected {
		switch rejectReason {
		case "too_fricative":
			return "This sounds too hissy (like '사'). " +
				"For '라', do NOT blow air. Lightly tap your tongue once behind your teeth, then go straight into '아'."
		case "too_unvoiced":
			return "This sounds too unvoiced. " +
				"For '라', keep your voice on (a gentle hum) while you tap your tongue, then move into '아'."
		case "no_tongue_contact":
			return "It sounds too smooth, like it skipped the tongue touch. " +
				"For '라', make one quick tongue tap behind your teeth before the vowel."
		}
		return "Try again: tap your tongue lightly behind your teeth and move into the vowel smoothly."
	}

	if finalScore >= 75.0 {
		return "Good job! This sounds like '라'. " +
			"Touch your tongue quickly to the ridge behind your teeth, then move smoothly into the vowel."
	}
	if finalScore >= 60.0 {
		return "Close! Make the tongue touch clearer but still quick. " +
			"Do not add a hiss—go straight into the vowel."
	}
	return "Not quite yet. For '라', avoid a hissy start. " +
		"Tap your tongue lightly behind your teeth and move into '아' immediately."
}

func zeroIfNil(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}

func boolPtr(v bool) *bool {
	return &v
}

// median returns the middle value, averaging the central pair for even
// counts. The input is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0.0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
