package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// testEarth returns a standalone Earth pinned at the frame origin, for
// two-body tests that do not need the full catalog.
func testEarth() *Body {
	e := NewBodyGM("Earth", 3.98600433e14, 6.3781363e6, 8.61641e4)
	e.State = NewObjectState(0, []float64{0, 0, 0}, []float64{0, 0, 0})
	return e
}

// testSun returns a standalone Sun pinned at the frame origin.
func testSun() *Body {
	s := NewBodyGM("Sun", 1.32712440017987e20, 6.957e8, 2.192832e6)
	s.State = NewObjectState(0, []float64{0, 0, 0}, []float64{0, 0, 0})
	return s
}

// anglesEqual compares two angles modulo 2π within the package angle
// tolerance.
func anglesEqual(a, b float64) (bool, error) {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	if math.Abs(d) > angleε {
		return false, fmt.Errorf("angles %f and %f differ by %f rad", a, b, d)
	}
	return true, nil
}

func vectorsEqual(a, b []float64, ε float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !scalar.EqualWithinAbs(a[i], b[i], ε) {
			return false
		}
	}
	return true
}

// circularState returns the state of an object on a circular orbit of the
// given radius around body at phase angle θ in the equatorial plane, in the
// body's frame at time t.
func circularState(body *Body, radius, θ, t float64) ObjectState {
	v := math.Sqrt(body.GM / radius)
	sθ, cθ := math.Sincos(θ)
	rel := NewObjectState(t, []float64{radius * cθ, radius * sθ, 0}, []float64{-v * sθ, v * cθ, 0})
	return rel.InFrameOf(body.State)
}
