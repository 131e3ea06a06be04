package analysis

import (
	"fmt"

	"github.com/SammyDuDu/kospa-engine/logging"
	"github.com/SammyDuDu/kospa-engine/transcode"
)

// syllableClasses routes every supported syllable to its manner class.
var syllableClasses = map[string]Class{
	"가": ClassStop, "까": ClassStop, "카": ClassStop,
	"다": ClassStop, "따": ClassStop, "타": ClassStop,
	"바": ClassStop, "빠": ClassStop, "파": ClassStop,
	"사": ClassFricative, "싸": ClassFricative, "하": ClassFricative,
	"자": ClassAffricate, "짜": ClassAffricate, "차": ClassAffricate,
	"마": ClassNasal, "나": ClassNasal,
	"라": ClassLiquid,
}

// ClassOf returns the manner class of a syllable and whether it is
// supported.
func ClassOf(syllable string) (Class, bool) {
	class, ok := syllableClasses[syllable]
	return class, ok
}

// SupportedSyllables returns the syllables this package can score, in
// class order.
func SupportedSyllables() []string {
	return []string{
		"가", "까", "카", "다", "따", "타", "바", "빠", "파",
		"사", "싸", "하",
		"자", "짜", "차",
		"마", "나",
		"라",
	}
}

// ConsonantAnalyzer routes a syllable recording to the analyzer for its
// manner class. It is the single entry point for scoring: one instance
// per sample rate, safe to reuse across recordings.
type ConsonantAnalyzer struct {
	sampleRate int
	stop       *StopAnalyzer
	fricative  *FricativeAnalyzer
	affricate  *AffricateAnalyzer
	nasal      *NasalAnalyzer
	liquid     *LiquidAnalyzer
	logger     logging.Logger
}

// NewConsonantAnalyzer creates a dispatcher over all five class
// analyzers with their default references.
func NewConsonantAnalyzer(sampleRate int) *ConsonantAnalyzer {
	return &ConsonantAnalyzer{
		sampleRate: sampleRate,
		stop:       NewStopAnalyzer(sampleRate),
		fricative:  NewFricativeAnalyzer(sampleRate),
		affricate:  NewAffricateAnalyzer(sampleRate),
		nasal:      NewNasalAnalyzer(sampleRate),
		liquid:     NewLiquidAnalyzer(sampleRate),
		logger:     logging.WithFields(logging.Fields{"component": "consonant_analyzer"}),
	}
}

// Analyze scores one mono recording of a supported syllable. The F0
// calibration only affects stops; other classes ignore it. An
// unsupported syllable is the only error; analysis failures degrade into
// nil features and zero scores inside the result.
func (ca *ConsonantAnalyzer) Analyze(samples []float64, syllable string, calib *F0Calibration) (*Result, error) {
	class, ok := ClassOf(syllable)
	if !ok {
		return nil, fmt.Errorf("unsupported syllable %q", syllable)
	}

	ca.logger.Debug("Dispatching syllable", logging.Fields{
		"syllable": syllable,
		"class":    class.String(),
		"samples":  len(samples),
	})

	switch class {
	case ClassStop:
		return ca.stop.Analyze(samples, syllable, calib)
	case ClassFricative:
		return ca.fricative.Analyze(samples, syllable)
	case ClassAffricate:
		return ca.affricate.Analyze(samples, syllable)
	case ClassNasal:
		return ca.nasal.Analyze(samples, syllable)
	case ClassLiquid:
		return ca.liquid.Analyze(samples, syllable)
	default:
		return nil, fmt.Errorf("no analyzer for class %q", class)
	}
}

// AudioDecoder converts a recording file into mono PCM. The transcode
// package provides the FFmpeg-backed implementation.
type AudioDecoder interface {
	DecodeFile(filename string) (*transcode.AudioData, error)
}

// AnalyzeFile decodes a recording and scores it, building the analyzer
// at the decoder's output sample rate.
func AnalyzeFile(decoder AudioDecoder, filename, syllable string, calib *F0Calibration) (*Result, error) {
	audio, err := decoder.DecodeFile(filename)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	return NewConsonantAnalyzer(audio.SampleRate).Analyze(audio.PCM, syllable, calib)
}
