package effects

import (
	"math"
)

const (
	pitchFrameSize = 2048

	// Detection range, C2 to C7.
	pitchMinHz = 65.406
	pitchMaxHz = 2093.005

	// voicingThreshold is the minimum normalised autocorrelation peak for a
	// frame to count as pitched.
	voicingThreshold = 0.6
	// silenceRMS marks frames too quiet to analyse.
	silenceRMS = 1e-3
)

// pitchCorrect pulls the pitch of each voiced frame toward the nearest
// equal-tempered semitone (A4 = 440 Hz) by amount. Frames with no detectable
// pitch are left alone, and samples covered only by such frames come out
// bit-identical to the input.
func pitchCorrect(x []float64, rate, channels int, amount float64) ([]float64, error) {
	frames := len(x) / channels
	out := make([]float64, len(x))
	copy(out, x)

	minLag := int(float64(rate) / pitchMaxHz)
	if minLag < 2 {
		minLag = 2
	}
	maxLag := int(math.Ceil(float64(rate) / pitchMinHz))
	size := pitchFrameSize
	if n := nextPow2(2 * maxLag); n > size {
		size = n
	}
	hop := size / 2
	if frames < size {
		return out, nil
	}

	mono := mixDown(x, channels)
	window := hann(size)

	type grain struct {
		start  int
		ratio  float64 // 0 for unvoiced
		source float64 // read centre in input frames
	}
	var grains []grain
	prevVoiced := false
	var prevSource float64
	voicedAny := false

	for start := 0; start < frames; start += hop {
		seg := make([]float64, size)
		copy(seg, mono[start:min(start+size, frames)])

		g := grain{start: start}
		f0, ok := detectPitch(seg, rate, minLag, maxLag)
		if ok {
			target := f0 + amount*(nearestSemitone(f0)-f0)
			g.ratio = target / f0
			centre := float64(start + size/2)
			if prevVoiced {
				// Keep the waveform phase continuous across grains by jumping
				// the read position in whole periods.
				period := float64(rate) / f0
				next := prevSource + float64(hop)*g.ratio
				g.source = next + math.Round((centre-next)/period)*period
			} else {
				g.source = centre
			}
			prevSource = g.source
			voicedAny = true
		}
		prevVoiced = ok
		grains = append(grains, g)
	}
	if !voicedAny {
		return out, nil
	}

	chans := deinterleave(x, channels)
	acc := make([][]float64, channels)
	for c := range acc {
		acc[c] = make([]float64, frames)
	}
	wsum := make([]float64, frames)
	touched := make([]bool, frames)

	for _, g := range grains {
		for j := 0; j < size; j++ {
			i := g.start + j
			if i >= frames {
				break
			}
			w := window[j]
			wsum[i] += w
			if g.ratio == 0 {
				for c := range chans {
					acc[c][i] += chans[c][i] * w
				}
				continue
			}
			touched[i] = true
			pos := g.source + float64(j-size/2)*g.ratio
			for c := range chans {
				acc[c][i] += sampleAt(chans[c], pos) * w
			}
		}
	}

	for i := 0; i < frames; i++ {
		if !touched[i] || wsum[i] < 1e-6 {
			continue
		}
		for c := range chans {
			out[i*channels+c] = acc[c][i] / wsum[i]
		}
	}
	return out, nil
}

// detectPitch estimates the fundamental of seg by autocorrelation. It
// reports false for silent or unpitched frames.
func detectPitch(seg []float64, rate, minLag, maxLag int) (float64, bool) {
	n := len(seg)
	if maxLag >= n {
		maxLag = n - 1
	}
	if minLag >= maxLag {
		return 0, false
	}

	centred := make([]float64, n)
	var mean float64
	for _, v := range seg {
		mean += v
	}
	mean /= float64(n)
	var energy float64
	for i, v := range seg {
		centred[i] = v - mean
		energy += centred[i] * centred[i]
	}
	if math.Sqrt(energy/float64(n)) < silenceRMS {
		return 0, false
	}

	r := autocorrelation(centred, maxLag+1)
	if len(r) <= maxLag || r[0] <= 0 {
		return 0, false
	}
	norm := func(lag int) float64 {
		return r[lag] / r[0] * float64(n) / float64(n-lag)
	}

	best := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if v := norm(lag); v > best {
			best = v
		}
	}
	if best < voicingThreshold {
		return 0, false
	}
	// Take the first local peak close to the best one so a strong
	// subharmonic does not drop the estimate an octave.
	lag := 0
	for l := minLag; l <= maxLag; l++ {
		v := norm(l)
		if v >= 0.9*best && v >= norm(l-1) && (l == maxLag || v >= norm(l+1)) {
			lag = l
			break
		}
	}
	if lag == 0 {
		return 0, false
	}

	refined := float64(lag)
	if lag > minLag && lag < maxLag {
		a, b, c := norm(lag-1), norm(lag), norm(lag+1)
		if d := a - 2*b + c; d != 0 {
			refined += 0.5 * (a - c) / d
		}
	}
	f0 := float64(rate) / refined
	if f0 < pitchMinHz || f0 > pitchMaxHz {
		return 0, false
	}
	return f0, true
}

// nearestSemitone rounds f to the closest equal-tempered pitch.
func nearestSemitone(f float64) float64 {
	midi := 69 + 12*math.Log2(f/440)
	return 440 * math.Pow(2, (math.Round(midi)-69)/12)
}

// hann returns a periodic Hann window, which sums to a constant at 50% overlap.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func mixDown(x []float64, channels int) []float64 {
	frames := len(x) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += x[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// sampleAt linearly interpolates ch at a fractional position, zero outside.
func sampleAt(ch []float64, pos float64) float64 {
	if pos < 0 || pos > float64(len(ch)-1) {
		return 0
	}
	i := int(pos)
	frac := pos - float64(i)
	if i+1 >= len(ch) {
		return ch[i]
	}
	return ch[i]*(1-frac) + ch[i+1]*frac
}
