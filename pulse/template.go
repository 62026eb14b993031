package pulse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// HalfSineTemplate returns the matched-filter kernel: n samples of sin(t)
// over [-0.2π, 0.8π), scaled to unit L2 norm. The phase offset puts the
// steep rising part of the sine early in the kernel so the filter locks
// onto pulse fronts. Compressive templates are negated.
func HalfSineTemplate(n int, p Polarity) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pulse: template length must be > 0: %d", n)
	}

	h := make([]float64, n)
	step := math.Pi / float64(n)
	for i := range h {
		h[i] = math.Sin(-0.2*math.Pi + float64(i)*step)
	}

	scale := 1 / floats.Norm(h, 2)
	if p == Compressive {
		scale = -scale
	}
	floats.Scale(scale, h)

	return h, nil
}
