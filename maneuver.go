package astro

import (
	"fmt"
	"strings"
)

// Maneuver is one impulsive burn: at the absolute simulation time Time, add
// DeltaV to the object's velocity, exactly once. The delta is expressed in
// a non-rotating frame, which makes it invariant under the body-relative vs
// absolute frame choice of the executor.
type Maneuver struct {
	Time   float64
	DeltaV []float64
}

// Magnitude returns |Δv|.
func (m Maneuver) Magnitude() float64 {
	return norm(m.DeltaV)
}

func (m Maneuver) String() string {
	return fmt.Sprintf("t=%.1f Δv=%.3f m/s %+v", m.Time, m.Magnitude(), m.DeltaV)
}

// Plan is an ordered sequence of maneuvers, earliest first. The contract on
// any executor is to apply each burn at its time, once.
type Plan []Maneuver

// TotalDeltaV returns the summed burn magnitudes.
func (p Plan) TotalDeltaV() float64 {
	total := 0.0
	for _, m := range p {
		total += m.Magnitude()
	}
	return total
}

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, m := range p {
		parts[i] = m.String()
	}
	return strings.Join(parts, "\n")
}
