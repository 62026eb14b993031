package pulse

import (
	"math"

	timestats "github.com/cwbudde/algo-shpb/stats/time"
)

// Segment extracts a pulse of exactly nPoints samples around window w.
//
// The window is widened symmetrically to nPoints (clipped at the trace
// start, zero-padded past the trace end), circularly shifted so its energy
// centroid sits at nPoints/2, and cleaned: samples below threshRatio times
// the peak magnitude, or with the wrong sign for the polarity, become zero.
// With PolarityAuto the sign of the largest sample decides.
//
// An all-zero input yields an all-zero pulse.
func Segment(signal []float32, w Window, nPoints int, opts ...Option) ([]float32, error) {
	if err := validatePulsePoints(nPoints); err != nil {
		return nil, err
	}
	if err := validateWindow(w, len(signal)); err != nil {
		return nil, err
	}

	cfg := applyOptions(opts)
	if err := validateThreshRatio(cfg.threshRatio); err != nil {
		return nil, err
	}

	seg := expandWindow(signal, w, nPoints)
	seg = centerOnEnergy(seg)
	cleanPolarity(seg, cfg.threshRatio, cfg.polarity)

	out := make([]float32, nPoints)
	for i := range out {
		out[i] = float32(seg[i])
	}
	return out, nil
}

func expandWindow(signal []float32, w Window, nPoints int) []float64 {
	halfPad := max(0, (nPoints-w.Len())/2)
	start := max(0, w.Start-halfPad)
	end := min(len(signal), start+nPoints)

	seg := make([]float64, nPoints)
	for i, v := range signal[start:end] {
		seg[i] = float64(v)
	}
	return seg
}

// centerOnEnergy rolls seg so that round(Σ i·s² / Σ s²) lands on len/2.
// Samples shifted off one end re-enter at the other.
func centerOnEnergy(seg []float64) []float64 {
	n := len(seg)

	energy := timestats.Energy(seg)
	if energy == 0 {
		return seg
	}
	var moment float64
	for i, v := range seg {
		moment += float64(i) * v * v
	}

	centroid := int(math.RoundToEven(moment / energy))
	shift := n/2 - centroid

	return roll(seg, shift)
}

// roll returns x circularly shifted right by k samples.
func roll(x []float64, k int) []float64 {
	n := len(x)
	k = ((k % n) + n) % n
	if k == 0 {
		return x
	}

	out := make([]float64, n)
	copy(out[k:], x[:n-k])
	copy(out[:k], x[n-k:])
	return out
}

func cleanPolarity(seg []float64, threshRatio float64, p Polarity) {
	peakIdx := timestats.PeakIndex(seg)
	magMax := math.Abs(seg[peakIdx])

	if p == PolarityAuto {
		p = Tensile
		if seg[peakIdx] < 0 {
			p = Compressive
		}
	}

	floor := threshRatio * magMax
	for i, v := range seg {
		keep := math.Abs(v) >= floor
		if p == Compressive {
			keep = keep && v < 0
		} else {
			keep = keep && v > 0
		}
		if !keep {
			seg[i] = 0
		}
	}
}
