package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// NewBlocks returns rows slices of length frames that share one contiguous
// backing array. Used for per-band scratch storage that is allocated once
// and reused for every block.
func NewBlocks(rows, frames int) [][]float64 {
	if rows <= 0 || frames <= 0 {
		return nil
	}
	backing := make([]float64, rows*frames)
	out := make([][]float64, rows)
	for i := range out {
		out[i] = backing[i*frames : (i+1)*frames : (i+1)*frames]
	}
	return out
}

// PeakPositive returns the largest positive value in buf, or 0 when buf
// holds no positive samples.
func PeakPositive(buf []float64) float64 {
	peak := 0.0
	for _, v := range buf {
		if v > peak {
			peak = v
		}
	}
	return peak
}
