package temporal

// SilenceTrimmer removes leading and trailing silence using the intensity
// contour. It never fails: when the recording is too quiet to trust the
// contour, or no frame clears the threshold, the input comes back
// untouched with a zero offset.
type SilenceTrimmer struct {
	sampleRate int
	marginDB   float64
	padSeconds float64
	intensity  *Intensity
}

// NewSilenceTrimmer creates a trimmer that keeps every frame within
// marginDB of the intensity peak, padded by 50 ms on both sides.
func NewSilenceTrimmer(sampleRate int, marginDB float64) *SilenceTrimmer {
	return &SilenceTrimmer{
		sampleRate: sampleRate,
		marginDB:   marginDB,
		padSeconds: 0.05,
		intensity:  NewIntensity(sampleRate),
	}
}

// Trim returns the trimmed signal and the offset of its first sample in
// seconds relative to the input. The offset lets callers report event
// times in original-recording coordinates.
func (st *SilenceTrimmer) Trim(signal []float64) ([]float64, float64) {
	track := st.intensity.Compute(signal)
	if len(track.DB) == 0 {
		return signal, 0.0
	}

	peak := track.Max()
	if peak <= 0 {
		// Nothing in the recording rises above the noise floor.
		return signal, 0.0
	}

	threshold := peak - st.marginDB
	firstIdx, lastIdx := -1, -1
	for i, v := range track.DB {
		if v > threshold {
			if firstIdx < 0 {
				firstIdx = i
			}
			lastIdx = i
		}
	}
	if firstIdx < 0 {
		return signal, 0.0
	}

	duration := float64(len(signal)) / float64(st.sampleRate)
	t0 := track.Times[firstIdx] - st.padSeconds
	if t0 < 0 {
		t0 = 0
	}
	t1 := track.Times[lastIdx] + st.padSeconds
	if t1 > duration {
		t1 = duration
	}

	startSample := int(t0 * float64(st.sampleRate))
	endSample := int(t1 * float64(st.sampleRate))
	if endSample <= startSample {
		return signal, 0.0
	}

	return signal[startSample:endSample], t0
}
