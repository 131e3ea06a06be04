package analysis

// Class identifies the manner class of a supported consonant syllable.
type Class int

const (
	ClassStop Class = iota
	ClassFricative
	ClassAffricate
	ClassNasal
	ClassLiquid
)

// String returns the manner class name used in results.
func (c Class) String() string {
	switch c {
	case ClassStop:
		return "stop"
	case ClassFricative:
		return "fricative"
	case ClassAffricate:
		return "affricate"
	case ClassNasal:
		return "nasal"
	case ClassLiquid:
		return "liquid"
	default:
		return "unknown"
	}
}

// MarshalText renders the class name into JSON results.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Targets describes what the learner was asked to produce. Only the
// fields relevant to the syllable's class are set.
type Targets struct {
	Place     string `json:"place,omitempty"`
	Phonation string `json:"phonation,omitempty"`
	Fricative string `json:"fricative,omitempty"`
	Affricate string `json:"affricate,omitempty"`
	Nasal     bool   `json:"nasal,omitempty"`
	Liquid    bool   `json:"liquid,omitempty"`
}

// FeatureSet maps feature names to measured values. Every key a class
// defines is always present; a nil value marks a measurement that could
// not be made, which downstream scoring treats as data, not as an error.
type FeatureSet map[string]*float64

// StopDiagnostics carries auxiliary VOT information for coaching UIs.
type StopDiagnostics struct {
	// VOTStatus labels the raw VOT region ("fortis-like", "lenis-like",
	// "aspirated-like", "over-aspirated" or "unknown").
	VOTStatus string `json:"vot_status"`
	// NearBoundaryMS is the distance to the nearest phonation category
	// boundary; small values mean the production straddles categories.
	NearBoundaryMS *float64 `json:"near_boundary_ms"`
}

// Evaluation holds the per-class detection and scoring outcome. Fields
// foreign to a class are omitted from JSON. All scores live in [0, 100];
// confidences live in [0, 1]. A nil score means the underlying cue could
// not be measured.
type Evaluation struct {
	DetectedPlace     string `json:"detected_place,omitempty"`
	DetectedPhonation string `json:"detected_phonation,omitempty"`
	DetectedFricative string `json:"detected_fricative,omitempty"`
	DetectedAffricate string `json:"detected_affricate,omitempty"`

	PlaceScore      *float64           `json:"place_score,omitempty"`
	PlaceConfidence *float64           `json:"place_confidence,omitempty"`
	PlaceSoftscores map[string]float64 `json:"place_softscores,omitempty"`

	VOTScore       *float64 `json:"vot_score,omitempty"`
	F0Score        *float64 `json:"f0_score,omitempty"`
	PhonationScore *float64 `json:"phonation_score,omitempty"`

	SpectralScore *float64 `json:"spectral_score,omitempty"`
	DurationScore *float64 `json:"duration_score,omitempty"`

	Softscores map[string]float64 `json:"softscores,omitempty"`

	FinalScore *float64 `json:"final_score"`

	Confidence  *float64 `json:"confidence,omitempty"`
	PlaceMargin *float64 `json:"place_margin,omitempty"`

	IsRejected   *bool  `json:"is_rejected,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`

	Diagnostics *StopDiagnostics `json:"diagnostics,omitempty"`
}

// Feedback is the coaching text shown to the learner.
type Feedback struct {
	Text string `json:"text"`
}

// Result is the complete outcome of analyzing one syllable recording.
type Result struct {
	Syllable   string     `json:"syllable"`
	Type       Class      `json:"type"`
	Targets    Targets    `json:"targets"`
	Features   FeatureSet `json:"features"`
	Evaluation Evaluation `json:"evaluation"`
	Feedback   Feedback   `json:"feedback"`
}
