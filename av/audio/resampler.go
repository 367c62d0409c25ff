package audio

// Resample converts mono samples between rates with linear interpolation.
func Resample(pcm []int16, fromRate, toRate int) []int16 {
	if fromRate <= 0 || toRate <= 0 || fromRate == toRate || len(pcm) == 0 {
		return pcm
	}

	step := float64(fromRate) / float64(toRate)
	out := make([]int16, len(pcm)*toRate/fromRate)
	last := len(pcm) - 1
	for i := range out {
		src := float64(i) * step
		i0 := int(src)
		if i0 > last {
			i0 = last
		}
		i1 := min(i0+1, last)
		frac := src - float64(i0)
		out[i] = int16(float64(pcm[i0])*(1-frac) + float64(pcm[i1])*frac)
	}
	return out
}
