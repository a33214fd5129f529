package browser

// FitSize scales w by h down so neither side exceeds maxDim, keeping the
// aspect ratio. A maxDim of 0 or less keeps the size.
func FitSize(w, h, maxDim int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}

	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}

	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
