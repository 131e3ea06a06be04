package analysis

import (
	"fmt"
	"math"

	"github.com/SammyDuDu/kospa-engine/algorithms/filters"
	"github.com/SammyDuDu/kospa-engine/algorithms/spectral"
	"github.com/SammyDuDu/kospa-engine/algorithms/stats"
	"github.com/SammyDuDu/kospa-engine/algorithms/temporal"
	"github.com/SammyDuDu/kospa-engine/algorithms/tonal"
	"github.com/SammyDuDu/kospa-engine/logging"
	"gonum.org/v1/gonum/stat"
)

// AffricateAnalyzer scores ㅈ/ㅉ/ㅊ (+ 아). An affricate is a stop
// release into frication, so the cues combine the two: VOT anchored to
// the frication start, frication duration, and the spectral shape of the
// early frication slice. Every candidate category is scored and the
// argmax is the detected category.
type AffricateAnalyzer struct {
	sampleRate  int
	refs        *AffricateReferences
	trimmer     *temporal.SilenceTrimmer
	envelope    *temporal.Envelope
	welch       *spectral.Welch
	periodicity *stats.Periodicity
	logger      logging.Logger
}

// NewAffricateAnalyzer creates an affricate analyzer with the default
// references.
func NewAffricateAnalyzer(sampleRate int) *AffricateAnalyzer {
	return NewAffricateAnalyzerWithReferences(sampleRate, DefaultAffricateReferences())
}

// NewAffricateAnalyzerWithReferences creates an affricate analyzer with
// explicit scoring references.
func NewAffricateAnalyzerWithReferences(sampleRate int, refs *AffricateReferences) *AffricateAnalyzer {
	return &AffricateAnalyzer{
		sampleRate:  sampleRate,
		refs:        refs,
		trimmer:     temporal.NewSilenceTrimmer(sampleRate, 40.0),
		envelope:    temporal.NewEnvelope(),
		welch:       spectral.NewWelch(sampleRate),
		periodicity: stats.NewPeriodicity(sampleRate),
		logger:      logging.WithFields(logging.Fields{"component": "affricate_analyzer"}),
	}
}

// Analyze scores one recording of an affricate syllable.
func (aa *AffricateAnalyzer) Analyze(samples []float64, syllable string) (*Result, error) {
	target, ok := affricateMeta[syllable]
	if !ok {
		return nil, fmt.Errorf("%q is not a supported affricate syllable", syllable)
	}

	result := &Result{
		Syllable: syllable,
		Type:     ClassAffricate,
		Targets:  Targets{Affricate: target},
	}

	if tooQuiet(samples, aa.sampleRate) {
		result.Features = FeatureSet{
			"vot_ms": nil, "frication_duration_ms": nil,
			"spectral_centroid_hz": nil, "hf_contrast_db": nil,
		}
		result.Evaluation = Evaluation{
			DetectedAffricate: "unknown",
			FinalScore:        ptr(0.0),
		}
		result.Feedback = Feedback{Text: "I couldn't measure this recording clearly. Please record again."}
		return result, nil
	}

	trimmed, _ := aa.trimmer.Trim(samples)

	fricT0, fricT1 := aa.fricationRegion(trimmed)
	fricDurMS := (fricT1 - fricT0) * 1000.0

	votMS := aa.estimateVOT(trimmed, fricT0)
	if votMS != nil && *votMS > aa.refs.VOTCapMS {
		votMS = ptr(aa.refs.VOTCapMS)
	}

	centroid, hfDB := aa.fricationFeatures(trimmed, fricT0, fricT1)

	aa.logger.Debug("Affricate measurements", logging.Fields{
		"syllable":     syllable,
		"vot_ms":       votMS,
		"fric_dur_ms":  fricDurMS,
		"centroid_hz":  centroid,
	})

	scores := make(map[string]float64, len(affricateLabels))
	for _, lab := range affricateLabels {
		sVOT := gaussianScoreOpt(votMS, aa.refs.VOTMS[lab], aa.refs.VOTSigma)
		sDur := gaussianScoreOpt(ptr(fricDurMS), aa.refs.FricDurMS[lab], aa.refs.FricDurSigma)
		sCent := gaussianScoreOpt(centroid, aa.refs.CentroidHz[lab], aa.refs.CentroidSigma)
		sHF := gaussianScoreOpt(hfDB, aa.refs.HFContrastDB[lab], aa.refs.HFContrastSigma)

		var sSpec *float64
		if sCent != nil && sHF != nil {
			sSpec = ptr(0.6**sCent + 0.4**sHF)
		}

		// A candidate needs all three cues; anything missing zeroes it.
		final := 0.0
		if sVOT != nil && sSpec != nil && sDur != nil {
			final = aa.refs.VOTWeight**sVOT + aa.refs.SpectralWeight**sSpec + aa.refs.FricDurWeight**sDur
		}
		scores[lab] = final
	}

	detected, _, _ := argmaxLabel(affricateLabels, scores)
	targetScore := scores[target]

	result.Features = FeatureSet{
		"vot_ms":                votMS,
		"frication_duration_ms": ptr(fricDurMS),
		"spectral_centroid_hz":  centroid,
		"hf_contrast_db":        hfDB,
	}
	result.Evaluation = Evaluation{
		DetectedAffricate: detected,
		Softscores:        scores,
		FinalScore:        ptr(targetScore),
	}
	result.Feedback = Feedback{Text: affricateFeedback(target, detected, ptr(targetScore))}
	return result, nil
}

// fricationRegion locates the affricate frication by the smoothed HF/LF
// RMS ratio: backtrack from the peak to 45% for the start, forward to
// 20% for the end, capped at 180 ms.
func (aa *AffricateAnalyzer) fricationRegion(signal []float64) (float64, float64) {
	sr := float64(aa.sampleRate)
	total := float64(len(signal)) / sr

	hf := filters.NewBandPass(aa.sampleRate, 1500.0, 8000.0).ProcessBuffer(signal)
	lf := filters.NewBandPass(aa.sampleRate, 300.0, 1500.0).ProcessBuffer(signal)

	win := int(0.025 * sr)
	if win < 32 {
		win = 32
	}
	hop := int(0.010 * sr)
	if hop < 16 {
		hop = 16
	}

	rmsHF := aa.envelope.ComputeRMS(hf, win, hop)
	rmsLF := aa.envelope.ComputeRMS(lf, win, hop)
	if len(rmsHF) == 0 || len(rmsLF) == 0 {
		return 0.0, math.Min(0.18, total)
	}

	ratio := make([]float64, len(rmsHF))
	for i := range ratio {
		ratio[i] = rmsHF[i] / (rmsLF[i] + 1e-12)
	}
	smoothed := filters.MovingAverage(ratio, 5)

	peakIdx := 0
	peak := smoothed[0]
	for i, v := range smoothed {
		if v > peak {
			peak = v
			peakIdx = i
		}
	}
	if math.IsNaN(peak) || math.IsInf(peak, 0) || peak <= 0.0 {
		return 0.0, math.Min(0.18, total)
	}

	startThr := 0.45 * peak
	endThr := 0.20 * peak

	i0 := peakIdx
	for i0 > 0 && smoothed[i0] >= startThr {
		i0--
	}
	i1 := peakIdx
	for i1 < len(smoothed)-1 && smoothed[i1] >= endThr {
		i1++
	}

	t0 := float64(i0*hop) / sr
	t1 := float64(i1*hop) / sr
	if t1 <= t0 {
		t1 = t0 + 0.08
	}
	t1 = math.Min(t1, t0+0.18)

	t0 = clampRange(t0, 0.0, math.Max(0.0, total-0.02))
	t1 = clampRange(t1, t0+0.02, total)
	return t0, t1
}

// estimateVOT measures VOT from the burst (anchored 10 ms before the
// frication start) to the first stable voicing: three consecutive voiced
// pitch frames within 80 Hz of each other whose surrounding 30 ms window
// clears an autocorrelation periodicity gate.
func (aa *AffricateAnalyzer) estimateVOT(signal []float64, burstHintT float64) *float64 {
	sr := float64(aa.sampleRate)
	if len(signal) < int(0.06*sr) {
		return nil
	}
	total := float64(len(signal)) / sr

	burstT := clampRange(burstHintT-0.010, 0.0, math.Max(0.0, total-0.02))

	tracker := tonal.NewPitchTrackerWithParams(aa.sampleRate, tonal.PitchTrackerParams{
		TimeStep:         0.005,
		MinFreq:          60.0,
		MaxFreq:          500.0,
		VoicingThreshold: 0.30,
	})
	track := tracker.Track(signal)
	if len(track.Frames) == 0 {
		return nil
	}

	frames := track.Frames
	var voicedT *float64

	for i := 0; i < len(frames); i++ {
		if frames[i].Time < burstT {
			continue
		}
		if i+2 >= len(frames) {
			break
		}
		if frames[i].F0 <= 0 || frames[i+1].F0 <= 0 || frames[i+2].F0 <= 0 {
			continue
		}
		lo, hi := frames[i].F0, frames[i].F0
		for _, f := range frames[i : i+3] {
			lo = math.Min(lo, f.F0)
			hi = math.Max(hi, f.F0)
		}
		if hi-lo > 80.0 {
			continue
		}
		if aa.windowPeriodicity(signal, frames[i].Time) >= 0.35 {
			voicedT = ptr(frames[i].Time)
			break
		}
	}

	if voicedT == nil {
		for _, f := range frames {
			if f.Time < burstT || f.F0 <= 0 {
				continue
			}
			if aa.windowPeriodicity(signal, f.Time) >= 0.35 {
				voicedT = ptr(f.Time)
				break
			}
		}
	}
	if voicedT == nil {
		return nil
	}

	return ptr(math.Max(0.0, (*voicedT-burstT)*1000.0))
}

// windowPeriodicity scores the 30 ms window centered at t.
func (aa *AffricateAnalyzer) windowPeriodicity(signal []float64, t float64) float64 {
	sr := float64(aa.sampleRate)
	winN := int(0.030 * sr)
	a := int(math.Max(0, (t-0.015)*sr))
	b := a + winN
	if b > len(signal) {
		b = len(signal)
	}
	return aa.periodicity.Score(signal[a:b])
}

// fricationFeatures measures the spectral centroid (pre-emphasized,
// 0.5-8 kHz) and the raw HF contrast (3.5-8 kHz over 0.5-2 kHz, dB) on
// an early 50 ms slice of the frication, reducing vowel contamination.
func (aa *AffricateAnalyzer) fricationFeatures(signal []float64, t0, t1 float64) (*float64, *float64) {
	if t1 <= t0 {
		return nil, nil
	}

	sr := float64(aa.sampleRate)
	total := float64(len(signal)) / sr

	segT0 := clampRange(t0+0.010, 0.0, math.Max(0.0, total-0.02))
	segT1 := clampRange(t0+0.060, segT0+0.02, total)
	if segT1 > t1 {
		segT1 = math.Max(t0+0.02, t1)
	}
	if segT1 <= segT0 {
		segT0, segT1 = t0, t1
	}

	a := int(segT0 * sr)
	b := int(segT1 * sr)
	if b > len(signal) {
		b = len(signal)
	}
	if b <= a {
		return nil, nil
	}
	segRaw := signal[a:b]
	if len(segRaw) < int(0.02*sr) {
		return nil, nil
	}

	emphasized := filters.NewPreEmphasisDefault().ProcessBuffer(segRaw)
	mean := stat.Mean(emphasized, nil)
	for i := range emphasized {
		emphasized[i] -= mean
	}
	psdCent := aa.welch.Compute(emphasized)
	centroid, ok := psdCent.CentroidInBand(500.0, 8000.0)
	if !ok {
		return nil, nil
	}

	psdRaw := aa.welch.Compute(segRaw)
	hfDB := clampRange(psdRaw.BandRatioDB(3500.0, 8000.0, 500.0, 2000.0), -30.0, 60.0)
	return ptr(centroid), ptr(hfDB)
}

// affricateQualityLabel buckets a score for score-aware feedback.
func affricateQualityLabel(score *float64) string {
	switch {
	case score == nil:
		return "Unknown"
	case *score >= 80:
		return "Excellent"
	case *score >= 65:
		return "Good"
	case *score >= 45:
		return "Close"
	default:
		return "Needs practice"
	}
}

// affricateFeedback builds coaching text. A correct detection with a low
// score says "close" rather than praising, and mismatches get
// compare-to advice against the detected category.
func affricateFeedback(target, detected string, targetScore *float64) string {
	quality := affricateQualityLabel(targetScore)
	praised := quality == "Excellent" || quality == "Good"

	if target == detected {
		switch target {
		case "fortis":
			if praised {
				return fmt.Sprintf("%s! This sounds like '짜'. "+
					"Keep your tongue tight and release it quickly. "+
					"Do not let extra air come out.", quality)
			}
			return fmt.Sprintf("%s. It is basically '짜', but not consistent yet. "+
				"Make it shorter and tighter, and reduce extra airflow.", quality)
		case "lenis":
			if praised {
				return fmt.Sprintf("%s! This sounds like '자'. "+
					"Start comfortably and naturally. "+
					"Do not tense your tongue too much, and do not push out extra air.", quality)
			}
			return fmt.Sprintf("%s. It is close to '자', but it drifts. "+
				"Relax a bit and keep the airflow moderate (not too tight, not too airy).", quality)
		case "aspirated":
			if praised {
				return fmt.Sprintf("%s! This sounds like '차'. "+
					"When you release your tongue, let a small puff of air follow. "+
					"(Light 'ha' feeling.)", quality)
			}
			return fmt.Sprintf("%s. It is basically '차', but the timing is off. "+
				"Try to release and move into the vowel a little sooner (do not hold the hiss too long).", quality)
		}
	}

	switch target {
	case "aspirated":
		if detected == "fortis" {
			return "Right now it sounds more like '짜'. " +
				"Add more air at the release so '차' has a clear puff of breath."
		}
		if detected == "lenis" {
			return "Right now it sounds closer to '자'. " +
				"Push a bit more air at the release to make it sound like '차'."
		}
		return "'차' needs audible air after the release. " +
			"Release your tongue and let the air flow out together."
	case "fortis":
		if detected == "aspirated" {
			return "Right now it sounds like '차' because too much air is coming out. " +
				"Reduce the air and keep your tongue tighter for '짜'."
		}
		if detected == "lenis" {
			return "Right now it sounds like '자'. " +
				"Tighten your tongue more and release it quickly to make a strong '짜'."
		}
		return "'짜' should be short and tense. " +
			"Hold the tongue firmly and release it fast, with almost no extra air."
	case "lenis":
		if detected == "fortis" {
			return "Right now it sounds too strong, like '짜'. " +
				"Relax your tongue a little and make the start more comfortable for '자'."
		}
		if detected == "aspirated" {
			return "Right now it sounds like '차' with too much air. " +
				"Reduce the airflow and aim for a softer, more relaxed '자'."
		}
		return "'자' should be balanced. " +
			"Do not tense too much and do not add extra air—just start naturally."
	}

	return "Focus on how you release your tongue. " +
		"Think clearly about whether you want '짜' (tight), '자' (comfortable), or '차' (with air)."
}
