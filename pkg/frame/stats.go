package frame

// Stats summarizes the pixel distribution of a frame. Live viewers use
// it to judge exposure without rendering the full frame.
type Stats struct {
	Min  uint16
	Max  uint16
	Mean float64
}

// Stats computes min, max and mean over the pixel data in one pass.
// A zero-pixel frame yields zero stats.
func (f *Frame) Stats() Stats {
	if len(f.Pix) == 0 {
		return Stats{}
	}

	min := f.Pix[0]
	max := f.Pix[0]
	var sum uint64
	for _, p := range f.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
		sum += uint64(p)
	}

	return Stats{
		Min:  min,
		Max:  max,
		Mean: float64(sum) / float64(len(f.Pix)),
	}
}

// Saturated reports whether any pixel sits at the ceiling for the given
// bit depth. Use the camera's reported bit depth, not 16.
func (f *Frame) Saturated(bitDepth int) bool {
	if bitDepth <= 0 || bitDepth > 16 {
		bitDepth = 16
	}
	ceil := uint16(1<<uint(bitDepth) - 1)
	for _, p := range f.Pix {
		if p >= ceil {
			return true
		}
	}
	return false
}
