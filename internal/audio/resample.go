package audio

import "math"

// Resample converts mono 16-bit PCM from one sample rate to another with a
// polyphase FIR filter: upsample by to/gcd, low-pass, decimate by from/gcd.
// Equal rates return an unmodified copy. The input slice is never mutated
// and the output depends only on the inputs.
func Resample(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		out := make([]int16, len(samples))
		copy(out, samples)
		return out
	}
	if len(samples) == 0 {
		return []int16{}
	}

	g := gcd(fromRate, toRate)
	up := toRate / g
	down := fromRate / g

	h, half := lowpassFilter(up, down)

	nOut := (len(samples)*up + down - 1) / down
	out := make([]int16, nOut)

	for m := 0; m < nOut; m++ {
		// Index into the conceptual upsampled stream, shifted by the
		// filter's center tap so the output is not delayed.
		t := m*down + half

		var acc float64
		for k := t % up; k < len(h); k += up {
			j := (t - k) / up
			if j < 0 {
				break
			}
			if j >= len(samples) {
				continue
			}
			acc += h[k] * float64(samples[j])
		}
		out[m] = clampInt16(acc)
	}

	return out
}

// lowpassFilter builds a Hamming-windowed sinc low-pass with cutoff at the
// Nyquist frequency of the slower rate, half-length 10*max(up, down). The
// taps are normalized so every polyphase branch preserves DC, which folds
// the up-factor gain into the filter.
func lowpassFilter(up, down int) (taps []float64, half int) {
	maxRate := up
	if down > maxRate {
		maxRate = down
	}
	half = 10 * maxRate
	n := 2*half + 1

	fc := 1.0 / float64(maxRate)
	taps = make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		t := float64(i - half)
		var v float64
		if t == 0 {
			v = fc
		} else {
			v = math.Sin(math.Pi*fc*t) / (math.Pi * t)
		}
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		taps[i] = v * w
		sum += taps[i]
	}

	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}
	return taps, half
}

func clampInt16(v float64) int16 {
	r := math.Round(v)
	if r > math.MaxInt16 {
		return math.MaxInt16
	}
	if r < math.MinInt16 {
		return math.MinInt16
	}
	return int16(r)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
