package analysis

import (
	"fmt"
	"math"

	"github.com/SammyDuDu/kospa-engine/algorithms/speech"
	"github.com/SammyDuDu/kospa-engine/algorithms/temporal"
	"github.com/SammyDuDu/kospa-engine/algorithms/tonal"
	"github.com/SammyDuDu/kospa-engine/logging"
)

// StopAnalyzer scores the nine Korean plosive syllables (ㄱ/ㄲ/ㅋ,
// ㄷ/ㄸ/ㅌ, ㅂ/ㅃ/ㅍ + 아) on two dimensions: place of articulation from
// the F2 onset frequency, and phonation type (lenis/fortis/aspirated)
// from voice onset time with speaker-normalized onset F0 as a secondary
// cue.
//
// References:
//   - Lisker, L., Abramson, A. (1964). "A cross-language study of voicing
//     in initial stops: acoustical measurements"
//   - Cho, T., Jun, S., Ladefoged, P. (2002). "Acoustic and aerodynamic
//     correlates of Korean stops and fricatives"
type StopAnalyzer struct {
	sampleRate int
	refs       *StopReferences
	burst      *temporal.BurstDetector
	intensity  *temporal.Intensity
	formants   *speech.FormantAnalyzer
	logger     logging.Logger
}

// NewStopAnalyzer creates a stop analyzer with the default references.
func NewStopAnalyzer(sampleRate int) *StopAnalyzer {
	return NewStopAnalyzerWithReferences(sampleRate, DefaultStopReferences())
}

// NewStopAnalyzerWithReferences creates a stop analyzer with explicit
// scoring references.
func NewStopAnalyzerWithReferences(sampleRate int, refs *StopReferences) *StopAnalyzer {
	return &StopAnalyzer{
		sampleRate: sampleRate,
		refs:       refs,
		burst:      temporal.NewBurstDetector(sampleRate),
		intensity:  temporal.NewIntensity(sampleRate),
		formants:   speech.NewFormantAnalyzer(sampleRate),
		logger:     logging.WithFields(logging.Fields{"component": "stop_analyzer"}),
	}
}

// Analyze scores one recording of a stop syllable. The calibration is
// optional; without it the F0 cue is skipped and phonation is scored
// from VOT alone. Measurement failures degrade into nil features and
// scores; only an unsupported syllable is an error.
func (sa *StopAnalyzer) Analyze(samples []float64, syllable string, calib *F0Calibration) (*Result, error) {
	meta, ok := stopMeta[syllable]
	if !ok {
		return nil, fmt.Errorf("%q is not a supported stop syllable", syllable)
	}

	result := &Result{
		Syllable: syllable,
		Type:     ClassStop,
		Targets:  Targets{Place: meta.place, Phonation: meta.phonation},
	}

	if tooQuiet(samples, sa.sampleRate) {
		result.Features = FeatureSet{"vot_ms": nil, "f2_onset_hz": nil, "f0_onset_hz": nil, "f0_z": nil}
		result.Evaluation = Evaluation{
			DetectedPlace:     "unknown",
			DetectedPhonation: "unknown",
			FinalScore:        ptr(0.0),
			Diagnostics:       &StopDiagnostics{VOTStatus: "unknown"},
		}
		result.Feedback = Feedback{Text: "I couldn't measure this recording clearly. Please record again."}
		return result, nil
	}

	aspiratedMode := meta.phonation == "aspirated"
	votMS, _, voicedT := sa.measureVOT(samples, aspiratedMode)
	f2Onset := sa.f2Onset(samples, voicedT)
	f0Onset := sa.vowelOnsetF0(samples, voicedT)
	f0Z := calib.ZScore(f0Onset)

	sa.logger.Debug("Stop measurements", logging.Fields{
		"syllable": syllable,
		"vot_ms":   votMS,
		"f2_hz":    f2Onset,
		"f0_hz":    f0Onset,
	})

	detectedPlace, placeConf, placeSoft := sa.placeSoftscores(f2Onset)
	placeScore := sa.placeScore(f2Onset, meta.place)
	detectedPhonation := classifyPhonationByVOT(votMS)
	votScore := sa.votScore(votMS, meta.phonation)
	f0Score := sa.f0Score(f0Z, meta.phonation)
	phonationScore := sa.phonationScore(votScore, f0Score, votMS)
	finalScore := sa.finalScore(placeScore, phonationScore)

	result.Features = FeatureSet{
		"vot_ms":      votMS,
		"f2_onset_hz": f2Onset,
		"f0_onset_hz": f0Onset,
		"f0_z":        f0Z,
	}
	result.Evaluation = Evaluation{
		DetectedPlace:     detectedPlace,
		DetectedPhonation: detectedPhonation,
		PlaceScore:        placeScore,
		PlaceConfidence:   placeConf,
		PlaceSoftscores:   placeSoft,
		VOTScore:          votScore,
		F0Score:           f0Score,
		PhonationScore:    phonationScore,
		FinalScore:        finalScore,
		Diagnostics: &StopDiagnostics{
			VOTStatus:      votStatus(votMS),
			NearBoundaryMS: sa.nearestBoundary(votMS),
		},
	}
	result.Feedback = Feedback{Text: sa.feedback(
		meta.place, detectedPlace,
		meta.phonation, detectedPhonation,
		placeScore, phonationScore, placeConf,
	)}
	return result, nil
}

// measureVOT locates the release burst and the first stable voicing
// frame within 180 ms after it. Aspirated targets use a stricter voicing
// criterion (clear periodicity via HNR) because breathy aspiration fools
// the lenient one.
func (sa *StopAnalyzer) measureVOT(samples []float64, aspiratedMode bool) (*float64, float64, *float64) {
	burstT := sa.burst.Detect(samples)
	duration := float64(len(samples)) / float64(sa.sampleRate)
	endT := math.Min(burstT+0.18, duration)
	if endT <= burstT {
		return nil, burstT, nil
	}

	start := int(burstT * float64(sa.sampleRate))
	end := int(endT * float64(sa.sampleRate))
	if end > len(samples) {
		end = len(samples)
	}
	slice := samples[start:end]

	tracker := tonal.NewPitchTrackerWithParams(sa.sampleRate, tonal.PitchTrackerParams{
		TimeStep:         0.001,
		MinFreq:          60.0,
		MaxFreq:          500.0,
		VoicingThreshold: 0.30,
	})
	track := tracker.Track(slice)
	if len(track.Frames) == 0 {
		return nil, burstT, nil
	}

	intTrack := sa.intensity.Compute(slice)
	intMax := -200.0
	if len(intTrack.DB) > 0 {
		intMax = intTrack.Max()
	}

	var voicedRel *float64
	for _, frame := range track.Frames {
		if frame.F0 <= 70.0 || frame.F0 >= 400.0 {
			continue
		}

		hnr := tonal.HNRFromStrength(frame.Strength)

		frameInt := -200.0
		if len(intTrack.DB) > 0 {
			idx := nearestTimeIndex(intTrack.Times, frame.Time)
			frameInt = intTrack.DB[idx]
		}

		if aspiratedMode {
			if hnr > 5.0 && frameInt > intMax-40.0 {
				voicedRel = ptr(frame.Time)
				break
			}
		} else {
			if frameInt > intMax-50.0 {
				voicedRel = ptr(frame.Time)
				break
			}
		}
	}

	if voicedRel == nil {
		for _, frame := range track.Frames {
			if frame.F0 > 70.0 && frame.F0 < 400.0 {
				voicedRel = ptr(frame.Time)
				break
			}
		}
	}
	if voicedRel == nil {
		return nil, burstT, nil
	}

	voicedT := burstT + *voicedRel
	votMS := math.Max(0.0, (voicedT-burstT)*1000.0)
	return ptr(votMS), burstT, ptr(voicedT)
}

// f2Onset samples F2 20 ms after voicing onset, where the formant
// transition still carries the place cue.
func (sa *StopAnalyzer) f2Onset(samples []float64, voicedT *float64) *float64 {
	if voicedT == nil {
		return nil
	}
	duration := float64(len(samples)) / float64(sa.sampleRate)
	t := clampRange(*voicedT+0.020, 0.0, duration)
	return sa.formants.FrequencyAt(samples, t, 2)
}

// vowelOnsetF0 returns the median voiced F0 in the 30 ms after voicing
// onset, tracked with a raised pitch floor to avoid creak artifacts.
func (sa *StopAnalyzer) vowelOnsetF0(samples []float64, voicedT *float64) *float64 {
	if voicedT == nil {
		return nil
	}
	duration := float64(len(samples)) / float64(sa.sampleRate)
	start := *voicedT
	end := math.Min(start+0.030, duration)
	if end <= start {
		return nil
	}

	a := int(start * float64(sa.sampleRate))
	b := int(end * float64(sa.sampleRate))
	if b > len(samples) {
		b = len(samples)
	}
	seg := samples[a:b]

	tracker := tonal.NewPitchTrackerWithParams(sa.sampleRate, tonal.PitchTrackerParams{
		TimeStep:         0.005,
		MinFreq:          100.0,
		MaxFreq:          500.0,
		VoicingThreshold: 0.30,
	})
	return tracker.Track(seg).MedianF0InWindow(0.0, end-start)
}

// placeSoftscores scores the F2 onset against every place center and
// returns the argmax place, a (best-second)/best confidence in [0, 1]
// and the per-place scores. Without an F2 measurement the place is
// "unknown" with no confidence.
func (sa *StopAnalyzer) placeSoftscores(f2 *float64) (string, *float64, map[string]float64) {
	if f2 == nil {
		return "unknown", nil, map[string]float64{}
	}

	soft := make(map[string]float64, len(sa.refs.PlaceF2CentersHz))
	for _, place := range stopPlaceLabels {
		soft[place] = GaussianScore(*f2, sa.refs.PlaceF2CentersHz[place], sa.refs.PlaceSigmaHz)
	}

	best, bestScore, secondScore := argmaxLabel(stopPlaceLabels, soft)
	conf := clamp01((bestScore - secondScore) / (bestScore + 1e-9))
	return best, ptr(conf), soft
}

func (sa *StopAnalyzer) placeScore(f2 *float64, targetPlace string) *float64 {
	center, ok := sa.refs.PlaceF2CentersHz[targetPlace]
	if f2 == nil || !ok {
		return nil
	}
	return ptr(GaussianScore(*f2, center, sa.refs.PlaceSigmaHz))
}

// votStatus labels the raw VOT region for diagnostics.
func votStatus(votMS *float64) string {
	switch {
	case votMS == nil:
		return "unknown"
	case *votMS < 20.0:
		return "fortis-like"
	case *votMS < 50.0:
		return "lenis-like"
	case *votMS < 100.0:
		return "aspirated-like"
	default:
		return "over-aspirated"
	}
}

// classifyPhonationByVOT assigns a phonation category from VOT alone.
func classifyPhonationByVOT(votMS *float64) string {
	switch {
	case votMS == nil:
		return "unknown"
	case *votMS < 20.0:
		return "fortis"
	case *votMS < 50.0:
		return "lenis"
	case *votMS < 100.0:
		return "aspirated"
	default:
		return "over-aspirated"
	}
}

// votScore scores VOT against the target category: linear toward the
// center inside the reference range, exponential decay outside it capped
// at 70 so an out-of-range VOT never beats an in-range one.
func (sa *StopAnalyzer) votScore(votMS *float64, targetPhonation string) *float64 {
	if votMS == nil {
		return nil
	}
	r, ok := sa.refs.VOTRanges[targetPhonation]
	if !ok {
		return nil
	}

	if r.LowMS <= *votMS && *votMS <= r.HighMS {
		tol := math.Max((r.HighMS-r.LowMS)/2.0, 1.0)
		return ptr(LinearScore(*votMS, r.CenterMS, tol))
	}

	d := *votMS - r.HighMS
	if *votMS < r.LowMS {
		d = r.LowMS - *votMS
	}
	s := 70.0 * math.Exp(-d/25.0)
	return ptr(clampRange(s, 0.0, 70.0))
}

func (sa *StopAnalyzer) f0Score(f0Z *float64, targetPhonation string) *float64 {
	if f0Z == nil {
		return nil
	}
	target, ok := sa.refs.F0ZTargets[targetPhonation]
	if !ok {
		return nil
	}
	return ptr(GaussianScore(*f0Z, target.Center, sa.refs.F0ZSigma))
}

func (sa *StopAnalyzer) nearestBoundary(votMS *float64) *float64 {
	if votMS == nil {
		return nil
	}
	best := math.Inf(1)
	for _, b := range sa.refs.VOTBoundariesMS {
		if d := math.Abs(*votMS - b); d < best {
			best = d
		}
	}
	return ptr(best)
}

// phonationScore blends the primary VOT cue with the secondary F0 cue.
// Near a category boundary the F0 weight rises because VOT alone cannot
// separate the categories there.
func (sa *StopAnalyzer) phonationScore(votScore, f0Score, votMS *float64) *float64 {
	if votScore == nil && f0Score == nil {
		return nil
	}
	if votScore == nil {
		return f0Score
	}
	if f0Score == nil {
		return votScore
	}

	wF0 := 0.25
	if d := sa.nearestBoundary(votMS); d != nil {
		if *d <= sa.refs.VOTBoundaryNearMS {
			wF0 = 0.45
		} else {
			wF0 = 0.20
		}
	}
	return ptr((1.0-wF0)**votScore + wF0**f0Score)
}

func (sa *StopAnalyzer) finalScore(placeScore, phonationScore *float64) *float64 {
	if placeScore == nil && phonationScore == nil {
		return nil
	}
	if placeScore == nil {
		return phonationScore
	}
	if phonationScore == nil {
		return placeScore
	}
	return ptr(sa.refs.PlaceWeight**placeScore + sa.refs.PhonationWeight**phonationScore)
}

// feedback builds short, action-first coaching. Phonation errors lead
// because they drive perceived correctness; praise stays specific to the
// articulator rather than a global "good job".
func (sa *StopAnalyzer) feedback(
	targetPlace, detectedPlace string,
	targetPhonation, detectedPhonation string,
	placeScore, phonationScore, placeConf *float64,
) string {
	if placeScore == nil && phonationScore == nil {
		return "I couldn't measure this recording clearly. Please record again."
	}

	placeHint := ""
	if detectedPlace != "unknown" && detectedPlace != targetPlace {
		switch targetPlace {
		case "velar":
			placeHint = "Press the back of your tongue against the roof of your mouth, then release."
		case "alveolar":
			placeHint = "Touch just behind your upper teeth with your tongue tip, then release."
		case "labial":
			placeHint = "Close your lips firmly, then release smoothly."
		}
	} else if placeConf != nil && *placeConf < sa.refs.LowConfThreshold {
		switch targetPlace {
		case "velar":
			placeHint = "Almost there. Press the back of your tongue a bit more firmly, then release."
		case "alveolar":
			placeHint = "Almost there. Let your tongue tip touch a bit more firmly, then release."
		case "labial":
			placeHint = "Almost there. Close your lips a little more firmly before opening."
		}
	} else {
		switch targetPlace {
		case "labial":
			placeHint = "Your lip position is good."
		case "alveolar":
			placeHint = "Your tongue position is good."
		case "velar":
			placeHint = "Your tongue-back position is good."
		default:
			placeHint = "Your mouth position is good."
		}
	}

	phonHint := ""
	if detectedPhonation != "unknown" && detectedPhonation != targetPhonation {
		switch targetPhonation {
		case "fortis":
			phonHint = "It sounds too soft (like the plain sound). " +
				"Say it very short and hard with NO puff of air. " +
				"Start the voice right away."
		case "lenis":
			phonHint = "It sounds too tense or too breathy. " +
				"Say it gently—do NOT burst air."
		case "aspirated":
			phonHint = "It needs more air. " +
				"Release with a clear puff of breath, then start the voice."
		}
	}

	if phonHint != "" && placeHint != "" {
		return phonHint + " " + placeHint
	}
	if phonHint != "" {
		return phonHint
	}
	if placeHint != "" {
		return placeHint
	}
	return "Good overall. Try to repeat the same feeling again."
}

// nearestTimeIndex returns the index of the frame time closest to t.
func nearestTimeIndex(times []float64, t float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, ft := range times {
		if d := math.Abs(ft - t); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
