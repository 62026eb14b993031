package trace

import (
	"fmt"
	"strings"
)

// Bridge is the Wheatstone bridge wiring of a strain gauge.
type Bridge int

const (
	FullBridge Bridge = iota
	HalfBridge
	QuarterBridge
)

// String returns the bridge name.
func (b Bridge) String() string {
	switch b {
	case HalfBridge:
		return "half"
	case QuarterBridge:
		return "quarter"
	default:
		return "full"
	}
}

// ParseBridge parses "full", "half" or "quarter".
func ParseBridge(s string) (Bridge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return FullBridge, nil
	case "half":
		return HalfBridge, nil
	case "quarter", "qurt":
		return QuarterBridge, nil
	default:
		return FullBridge, fmt.Errorf("trace: unknown bridge %q", s)
	}
}

// divisor is the number of active arms relative to a full bridge.
func (b Bridge) divisor() float64 {
	switch b {
	case HalfBridge:
		return 2
	case QuarterBridge:
		return 4
	default:
		return 1
	}
}

// Gauge converts bridge output voltage to strain.
type Gauge struct {
	// Coefficient is the full-bridge calibration factor in strain per volt.
	Coefficient float64
	Bridge      Bridge
}

// Strain returns volts · Coefficient / arms for every sample.
func (g Gauge) Strain(volts []float32) ([]float32, error) {
	if g.Coefficient == 0 {
		return nil, fmt.Errorf("trace: gauge coefficient must be non-zero")
	}

	k := g.Coefficient / g.Bridge.divisor()
	out := make([]float32, len(volts))
	for i, v := range volts {
		out[i] = float32(float64(v) * k)
	}
	return out, nil
}
