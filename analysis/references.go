package analysis

// Syllable metadata: which manner class each supported syllable belongs
// to and what the learner is being asked to produce.

type stopTarget struct {
	place     string
	phonation string
}

var stopMeta = map[string]stopTarget{
	// Velar group
	"가": {place: "velar", phonation: "lenis"},
	"까": {place: "velar", phonation: "fortis"},
	"카": {place: "velar", phonation: "aspirated"},
	// Alveolar group
	"다": {place: "alveolar", phonation: "lenis"},
	"따": {place: "alveolar", phonation: "fortis"},
	"타": {place: "alveolar", phonation: "aspirated"},
	// Labial group
	"바": {place: "labial", phonation: "lenis"},
	"빠": {place: "labial", phonation: "fortis"},
	"파": {place: "labial", phonation: "aspirated"},
}

var fricativeMeta = map[string]string{
	"사": "s",
	"싸": "ss",
	"하": "h",
}

var affricateMeta = map[string]string{
	"자": "lenis",
	"짜": "fortis",
	"차": "aspirated",
}

var nasalMeta = map[string]string{
	"마": "labial",
	"나": "alveolar",
}

var liquidMeta = map[string]string{
	"라": "alveolar",
}

// Label orders for argmax detection. Maps carry the scores; these slices
// fix iteration order so detection is deterministic and ties resolve the
// same way every run.
var (
	stopPlaceLabels      = []string{"labial", "alveolar", "velar"}
	fricativeLabels      = []string{"s", "ss", "h"}
	affricateLabels      = []string{"fortis", "lenis", "aspirated"}
	nasalPlaceLabels     = []string{"labial", "alveolar"}
	liquidSoftscoreNames = []string{"f3", "closure_depth", "smoothness", "non_fricative", "voicing"}
)

// VOTRange is a phonation category's reference VOT interval.
type VOTRange struct {
	LowMS    float64
	HighMS   float64
	CenterMS float64
}

// F0ZTarget is a phonation category's speaker-normalized onset F0 target.
type F0ZTarget struct {
	Center    float64
	Tolerance float64
}

// StopReferences holds the acoustic targets and weights for the nine
// plosive syllables.
//
// References:
//   - Lisker, L., Abramson, A. (1964). "A cross-language study of voicing
//     in initial stops"
//   - Cho, T., Jun, S., Ladefoged, P. (2002). "Acoustic and aerodynamic
//     correlates of Korean stops and fricatives"
type StopReferences struct {
	PlaceF2CentersHz map[string]float64
	PlaceSigmaHz     float64
	PlaceToleranceHz float64
	LowConfThreshold float64

	VOTRanges       map[string]VOTRange
	VOTSoftMarginMS float64

	F0ZTargets map[string]F0ZTarget
	F0ZSigma   float64

	PlaceWeight     float64
	PhonationWeight float64

	// Category boundaries on the VOT axis; near a boundary the F0 cue
	// gets more weight because VOT alone is ambiguous there.
	VOTBoundariesMS   []float64
	VOTBoundaryNearMS float64
}

// DefaultStopReferences returns the stop scoring targets.
func DefaultStopReferences() *StopReferences {
	return &StopReferences{
		PlaceF2CentersHz: map[string]float64{
			"labial":   1200.0,
			"alveolar": 1700.0,
			"velar":    2200.0,
		},
		PlaceSigmaHz:     700.0, // wide, absorbs speaker and measurement variation
		PlaceToleranceHz: 600.0,
		LowConfThreshold: 0.20,
		VOTRanges: map[string]VOTRange{
			"fortis":    {LowMS: 0.0, HighMS: 20.0, CenterMS: 10.0},
			"lenis":     {LowMS: 20.0, HighMS: 50.0, CenterMS: 35.0},
			"aspirated": {LowMS: 60.0, HighMS: 100.0, CenterMS: 80.0},
		},
		VOTSoftMarginMS: 15.0,
		F0ZTargets: map[string]F0ZTarget{
			"lenis":     {Center: -0.5, Tolerance: 0.7},
			"fortis":    {Center: 1.0, Tolerance: 0.7},
			"aspirated": {Center: 0.6, Tolerance: 0.7},
		},
		F0ZSigma:          0.8,
		PlaceWeight:       0.40,
		PhonationWeight:   0.60,
		VOTBoundariesMS:   []float64{20.0, 50.0, 60.0, 100.0},
		VOTBoundaryNearMS: 6.0,
	}
}

// FricativeReferences holds the acoustic targets for ㅅ/ㅆ/ㅎ.
//
// References:
//   - Jongman, A., Wayland, R., Wong, S. (2000). "Acoustic characteristics
//     of English fricatives"
type FricativeReferences struct {
	CentroidHz    map[string]float64
	CentroidSigma float64

	// HF contrast: 10*log10(E[4-8k] / E[0.5-1.5k]) separates sibilant
	// hiss from glottal breath.
	HFContrastDB    map[string]float64
	HFContrastSigma float64

	DurationMS    map[string]float64
	DurationSigma float64

	SpectralWeight float64
	DurationWeight float64
}

// DefaultFricativeReferences returns the fricative scoring targets.
func DefaultFricativeReferences() *FricativeReferences {
	return &FricativeReferences{
		CentroidHz: map[string]float64{
			"s":  4800.0,
			"ss": 6000.0,
			"h":  2800.0,
		},
		CentroidSigma: 1700.0,
		HFContrastDB: map[string]float64{
			"h":  5.0,
			"s":  15.0,
			"ss": 20.0,
		},
		HFContrastSigma: 8.0,
		DurationMS: map[string]float64{
			"s":  120.0,
			"ss": 160.0,
			"h":  90.0,
		},
		DurationSigma:  80.0,
		SpectralWeight: 0.85,
		DurationWeight: 0.15,
	}
}

// AffricateReferences holds the acoustic targets for ㅈ/ㅉ/ㅊ.
type AffricateReferences struct {
	VOTMS    map[string]float64
	VOTSigma float64

	FricDurMS    map[string]float64
	FricDurSigma float64

	CentroidHz    map[string]float64
	CentroidSigma float64

	HFContrastDB    map[string]float64
	HFContrastSigma float64

	VOTWeight     float64
	SpectralWeight float64
	FricDurWeight float64

	// VOTCapMS clamps extreme VOT caused by late voicing detection.
	VOTCapMS float64
}

// DefaultAffricateReferences returns the affricate scoring targets.
func DefaultAffricateReferences() *AffricateReferences {
	return &AffricateReferences{
		VOTMS: map[string]float64{
			"fortis":    15.0,
			"lenis":     40.0,
			"aspirated": 80.0,
		},
		VOTSigma: 25.0,
		FricDurMS: map[string]float64{
			"fortis":    80.0,
			"lenis":     110.0,
			"aspirated": 150.0,
		},
		FricDurSigma: 60.0,
		CentroidHz: map[string]float64{
			"fortis":    6200.0,
			"lenis":     5000.0,
			"aspirated": 4200.0,
		},
		CentroidSigma: 1700.0,
		HFContrastDB: map[string]float64{
			"fortis":    22.0,
			"lenis":     15.0,
			"aspirated": 10.0,
		},
		HFContrastSigma: 8.0,
		VOTWeight:       0.30,
		SpectralWeight:  0.45,
		FricDurWeight:   0.25,
		VOTCapMS:        160.0,
	}
}

// NasalReferences holds the acoustic targets for ㅁ/ㄴ.
type NasalReferences struct {
	F2OnsetHz map[string]float64
	F2Sigma   float64

	// Low-frequency dominance of the nasal murmur: E[0-500] / E[0-2000].
	LowRatio      float64
	LowRatioSigma float64

	CentroidHz    float64
	CentroidSigma float64

	PlaceWeight    float64
	NasalityWeight float64
}

// DefaultNasalReferences returns the nasal scoring targets.
func DefaultNasalReferences() *NasalReferences {
	return &NasalReferences{
		F2OnsetHz: map[string]float64{
			"labial":   1200.0,
			"alveolar": 1700.0,
		},
		F2Sigma:        350.0,
		LowRatio:       0.72,
		LowRatioSigma:  0.22,
		CentroidHz:     500.0,
		CentroidSigma:  350.0,
		PlaceWeight:    0.55,
		NasalityWeight: 0.45,
	}
}

// LiquidReferences holds the acoustic targets and reject gates for ㄹ.
// F3 is vowel-influenced, so its weight stays moderate and the gates do
// the heavy lifting against ㅅ-like and vowel-like productions.
type LiquidReferences struct {
	F3OnsetHz float64
	F3Sigma   float64

	ClosureDepthDB    float64
	ClosureDepthSigma float64

	CentroidHz    float64
	CentroidSigma float64

	FricRatioPeak  float64
	FricRatioSigma float64

	VoicedFrac      float64
	VoicedFracSigma float64

	F3Weight       float64
	ClosureWeight  float64
	CentroidWeight float64
	FricWeight     float64
	VoicedWeight   float64

	// Reject gates, checked in order.
	FricRejectThreshold   float64 // HF/LF ratio peak at or above this: too fricative
	VoicedRejectThreshold float64 // voiced fraction at or below this: too unvoiced
	DepthRejectThreshold  float64 // closure depth at or below this: no tongue contact
	RejectScoreCap        float64
}

// DefaultLiquidReferences returns the liquid scoring targets.
func DefaultLiquidReferences() *LiquidReferences {
	return &LiquidReferences{
		F3OnsetHz:             2500.0,
		F3Sigma:               650.0,
		ClosureDepthDB:        10.0,
		ClosureDepthSigma:     6.0,
		CentroidHz:            900.0,
		CentroidSigma:         650.0,
		FricRatioPeak:         1.2,
		FricRatioSigma:        0.7,
		VoicedFrac:            0.70,
		VoicedFracSigma:       0.20,
		F3Weight:              0.25,
		ClosureWeight:         0.35,
		CentroidWeight:        0.20,
		FricWeight:            0.10,
		VoicedWeight:          0.10,
		FricRejectThreshold:   2.6,
		VoicedRejectThreshold: 0.35,
		DepthRejectThreshold:  3.5,
		RejectScoreCap:        35.0,
	}
}
