package filters

// MovingAverage smooths a signal with a centered box window and returns an
// output of the same length. Windows smaller than 3 are coerced to 3 and
// even windows are rounded up to the next odd value so the window stays
// centered. Edge samples average over the part of the window that exists
// but keep the full-window normalization, matching "same"-mode convolution
// with a box kernel.
func MovingAverage(x []float64, window int) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}

	half := window / 2
	output := make([]float64, len(x))
	for i := range x {
		sum := 0.0
		for j := i - half; j <= i+half; j++ {
			if j >= 0 && j < len(x) {
				sum += x[j]
			}
		}
		output[i] = sum / float64(window)
	}
	return output
}
