package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/SammyDuDu/kospa-engine/algorithms/filters"
	"github.com/SammyDuDu/kospa-engine/algorithms/spectral"
	"github.com/SammyDuDu/kospa-engine/algorithms/temporal"
	"github.com/SammyDuDu/kospa-engine/logging"
)

// FricativeAnalyzer scores ㅅ/ㅆ/ㅎ (+ 아). The three contrast mainly in
// spectral shape — sibilants carry a strong high-frequency hiss, ㅎ is
// breathy and low — with frication duration as a secondary cue.
//
// References:
//   - Jongman, A., Wayland, R., Wong, S. (2000). "Acoustic characteristics
//     of English fricatives"
type FricativeAnalyzer struct {
	sampleRate int
	refs       *FricativeReferences
	trimmer    *temporal.SilenceTrimmer
	envelope   *temporal.Envelope
	welch      *spectral.Welch
	logger     logging.Logger
}

// NewFricativeAnalyzer creates a fricative analyzer with the default
// references.
func NewFricativeAnalyzer(sampleRate int) *FricativeAnalyzer {
	return NewFricativeAnalyzerWithReferences(sampleRate, DefaultFricativeReferences())
}

// NewFricativeAnalyzerWithReferences creates a fricative analyzer with
// explicit scoring references.
func NewFricativeAnalyzerWithReferences(sampleRate int, refs *FricativeReferences) *FricativeAnalyzer {
	return &FricativeAnalyzer{
		sampleRate: sampleRate,
		refs:       refs,
		trimmer:    temporal.NewSilenceTrimmer(sampleRate, 30.0),
		envelope:   temporal.NewEnvelope(),
		welch:      spectral.NewWelch(sampleRate),
		logger:     logging.WithFields(logging.Fields{"component": "fricative_analyzer"}),
	}
}

// Analyze scores one recording of a fricative syllable.
func (fa *FricativeAnalyzer) Analyze(samples []float64, syllable string) (*Result, error) {
	target, ok := fricativeMeta[syllable]
	if !ok {
		return nil, fmt.Errorf("%q is not a supported fricative syllable", syllable)
	}

	result := &Result{
		Syllable: syllable,
		Type:     ClassFricative,
		Targets:  Targets{Fricative: target},
	}

	if tooQuiet(samples, fa.sampleRate) {
		result.Features = FeatureSet{
			"spectral_centroid_hz": nil, "hf_contrast": nil, "duration_ms": nil,
			"trim_offset_s": nil, "fric_start_t": nil, "fric_end_t": nil,
		}
		result.Evaluation = Evaluation{FinalScore: ptr(0.0)}
		result.Feedback = Feedback{Text: "I couldn't clearly capture the fricative noise. Try again: speak closer to the mic and keep the hiss steady."}
		return result, nil
	}

	trimmed, offset := fa.trimmer.Trim(samples)
	fricStart, fricEnd := fa.fricationRegion(trimmed)
	centroid, hfContrast := fa.spectralFeatures(trimmed, fricStart, fricEnd)
	durationMS := (fricEnd - fricStart) * 1000.0

	fa.logger.Debug("Fricative measurements", logging.Fields{
		"syllable":    syllable,
		"centroid_hz": centroid,
		"duration_ms": durationMS,
	})

	specScore := fa.spectralScore(centroid, hfContrast, target)
	durScore := fa.durationScore(durationMS, target)
	finalScore := fa.finalScore(specScore, durScore)

	soft := make(map[string]float64, len(fricativeLabels))
	for _, lab := range fricativeLabels {
		s := fa.finalScore(fa.spectralScore(centroid, hfContrast, lab), fa.durationScore(durationMS, lab))
		if s != nil {
			soft[lab] = *s
		} else {
			soft[lab] = 0.0
		}
	}
	detected, bestScore, secondScore := argmaxLabel(fricativeLabels, soft)
	conf := clamp01((bestScore - secondScore) / 100.0)

	result.Features = FeatureSet{
		"spectral_centroid_hz": centroid,
		"hf_contrast":          hfContrast,
		"duration_ms":          ptr(durationMS),
		"trim_offset_s":        ptr(offset),
		"fric_start_t":         ptr(fricStart + offset),
		"fric_end_t":           ptr(fricEnd + offset),
	}
	result.Evaluation = Evaluation{
		DetectedFricative: detected,
		SpectralScore:     specScore,
		DurationScore:     durScore,
		FinalScore:        finalScore,
		Softscores:        soft,
		Confidence:        ptr(conf),
	}
	result.Feedback = Feedback{Text: fricativeFeedback(target, detected, centroid, hfContrast)}
	return result, nil
}

// fricationRegion finds the hiss by the peak of the HF/LF RMS ratio and
// extends it both ways down to 35% of the peak, capped at 220 ms.
func (fa *FricativeAnalyzer) fricationRegion(signal []float64) (float64, float64) {
	sr := float64(fa.sampleRate)
	hf := filters.NewBandPass(fa.sampleRate, 1500.0, 8000.0).ProcessBuffer(signal)
	lf := filters.NewBandPass(fa.sampleRate, 300.0, 1500.0).ProcessBuffer(signal)

	win := int(0.025 * sr)
	if win < 32 {
		win = 32
	}
	hop := int(0.010 * sr)
	if hop < 16 {
		hop = 16
	}

	rmsHF := fa.envelope.ComputeRMS(hf, win, hop)
	rmsLF := fa.envelope.ComputeRMS(lf, win, hop)
	if len(rmsHF) == 0 || len(rmsLF) == 0 {
		return 0.0, 0.0
	}

	ratio := make([]float64, len(rmsHF))
	for i := range ratio {
		ratio[i] = rmsHF[i] / (rmsLF[i] + 1e-12)
	}

	peakIdx := 0
	peakVal := ratio[0]
	for i, v := range ratio {
		if v > peakVal {
			peakVal = v
			peakIdx = i
		}
	}
	if peakVal <= 1e-9 {
		return 0.0, 0.0
	}

	thr := 0.35 * peakVal
	left := peakIdx
	for left > 0 && ratio[left] >= thr {
		left--
	}
	right := peakIdx
	for right < len(ratio)-1 && ratio[right] >= thr {
		right++
	}

	tStart := float64(left*hop) / sr
	tEnd := float64(right*hop+win) / sr
	if tEnd-tStart > 0.220 {
		tEnd = tStart + 0.220
	}
	return tStart, tEnd
}

// spectralFeatures measures the band-limited centroid and the HF
// contrast (energy above 4 kHz versus the 0.5-1.5 kHz band, in dB) of
// the pre-emphasized frication region.
func (fa *FricativeAnalyzer) spectralFeatures(signal []float64, tStart, tEnd float64) (*float64, *float64) {
	if tEnd <= tStart {
		return nil, nil
	}

	sr := float64(fa.sampleRate)
	a := int(math.Max(0, math.Floor(tStart*sr)))
	b := int(math.Min(float64(len(signal)), math.Ceil(tEnd*sr)))
	if b <= a {
		return nil, nil
	}
	seg := signal[a:b]
	if len(seg) < int(0.02*sr) {
		return nil, nil
	}

	emphasized := filters.NewPreEmphasisDefault().ProcessBuffer(seg)
	mean := stat.Mean(emphasized, nil)
	for i := range emphasized {
		emphasized[i] -= mean
	}

	psd := fa.welch.Compute(emphasized)
	centroid, ok := psd.CentroidInBand(500.0, 8000.0)
	if !ok {
		return nil, nil
	}

	hfDB := clampRange(psd.BandRatioDB(4000.0, 8000.0, 500.0, 1500.0), -20.0, 40.0)
	return ptr(centroid), ptr(hfDB)
}

// spectralScore blends the centroid and HF-contrast cues, nil when
// either measurement is missing.
func (fa *FricativeAnalyzer) spectralScore(centroid, hfContrast *float64, label string) *float64 {
	if centroid == nil || hfContrast == nil {
		return nil
	}
	s1 := GaussianScore(*centroid, fa.refs.CentroidHz[label], fa.refs.CentroidSigma)
	s2 := GaussianScore(*hfContrast, fa.refs.HFContrastDB[label], fa.refs.HFContrastSigma)
	return ptr(0.6*s1 + 0.4*s2)
}

func (fa *FricativeAnalyzer) durationScore(durationMS float64, label string) *float64 {
	return ptr(GaussianScore(durationMS, fa.refs.DurationMS[label], fa.refs.DurationSigma))
}

func (fa *FricativeAnalyzer) finalScore(spectral, duration *float64) *float64 {
	if spectral == nil && duration == nil {
		return nil
	}
	if duration == nil {
		return spectral
	}
	if spectral == nil {
		return duration
	}
	return ptr(fa.refs.SpectralWeight**spectral + fa.refs.DurationWeight**duration)
}

func fricativeFeedback(target, detected string, centroid, hfContrast *float64) string {
	if centroid == nil || hfContrast == nil {
		return "I couldn't clearly capture the fricative noise. Try again: speak closer to the mic and keep the hiss steady."
	}

	if detected == target {
		switch target {
		case "s":
			return "Good. Your 'ㅅ' hiss is clear. Keep it light and steady (no extra breath from the throat)."
		case "ss":
			return "Good. Your 'ㅆ' is sharp and tense. Keep the tongue constriction tight and the hiss strong."
		case "h":
			return "Good. Your 'ㅎ' is breathy. Keep the throat open and avoid making an 'ㅅ' hiss."
		}
		return "Good."
	}

	if (target == "s" || target == "ss") && detected == "h" {
		return "It sounds breathy like 'ㅎ'. For 'ㅅ/ㅆ', bring the tongue close to the ridge behind the upper teeth " +
			"and make a clear hiss (more high-frequency sound)."
	}
	if target == "h" && (detected == "s" || detected == "ss") {
		return "It sounds like an 'ㅅ' hiss. For 'ㅎ', keep the throat open and let air flow gently—no tongue hiss."
	}
	if target == "ss" && detected == "s" {
		return "It sounds like 'ㅅ' (too soft). For 'ㅆ', make the constriction tighter and the hiss sharper—" +
			"think 'stronger, higher' without adding extra breath from the throat."
	}
	if target == "s" && detected == "ss" {
		return "It sounds too tense/sharp like 'ㅆ'. For 'ㅅ', relax slightly and make a lighter hiss."
	}

	return fmt.Sprintf("Detected as '%s'. Try again with a clearer sound.", detected)
}
