package astro

import (
	"fmt"
	"math"
)

const (
	// G is the gravitational constant in m³/(kg·s²).
	G = 6.67430e-11
	// AU is one astronomical unit in meters.
	AU = 1.49597870700e11
)

// Body is a gravitating object: a star, planet, moon or spacecraft. It
// collapses the usual physics-object interface zoo into one data-holding
// type; the engine only needs the numbers, not behavior dispatch.
//
// Every body except the object of reference holds a pointer to exactly one
// primary; the primary graph is a tree rooted at the object of reference.
// Body states are set at scenario setup and advanced by an external
// propagation step. The solver operations in this package are pure: they
// read body fields and return new values.
type Body struct {
	Name           string
	GM             float64 // standard gravitational parameter μ, m³/s²
	Mass           float64 // kg
	Radius         float64 // m; 0 for point masses such as spacecraft
	RotationPeriod float64 // s
	RotationAxis   []float64
	Primary        *Body
	State          ObjectState
}

// NewBody creates a body from its mass; μ is derived as mass×G.
func NewBody(name string, mass, radius, rotationPeriod float64) *Body {
	return &Body{
		Name:           name,
		GM:             mass * G,
		Mass:           mass,
		Radius:         radius,
		RotationPeriod: rotationPeriod,
		RotationAxis:   []float64{0, 0, 1},
	}
}

// NewBodyGM creates a body directly from its gravitational parameter, for
// catalog values where μ is known more precisely than the mass.
func NewBodyGM(name string, gm, radius, rotationPeriod float64) *Body {
	b := NewBody(name, gm/G, radius, rotationPeriod)
	b.GM = gm
	return b
}

// IsObjectOfReference reports whether this body roots the reference tree.
func (b *Body) IsObjectOfReference() bool {
	return b.Primary == nil
}

// HasRadius reports whether the body has a physical surface to impact.
func (b *Body) HasRadius() bool {
	return b.Radius > 0
}

// Equals returns whether the provided body is the same.
func (b *Body) Equals(o *Body) bool {
	return b.Name == o.Name && b.GM == o.GM && b.Radius == o.Radius
}

func (b *Body) String() string {
	return b.Name + " body"
}

// SOIRadius returns the radius of this body's sphere of influence with
// respect to its own primary, a·(m/M)^(2/5). The semi-major axis is derived
// from the body's current state, so the states must be set.
func (b *Body) SOIRadius() (float64, error) {
	if b.Primary == nil {
		return 0, geomErrorf("soi", "%s is the object of reference and has no sphere of influence", b.Name)
	}
	op := NewOrbitPosition(b.Primary.State, b.State, b.Primary)
	a := op.Orbit.SemiMajorAxis()
	if a <= 0 || math.IsInf(a, 0) {
		return 0, geomErrorf("soi", "%s is not on a bound orbit around %s", b.Name, b.Primary.Name)
	}
	return a * math.Pow(b.GM/b.Primary.GM, 2.0/5.0), nil
}

// CircularAbout places the body on a circular orbit of the given radius
// around primary, at phase angle θ in the primary's equatorial plane, at
// simulation time t.
func (b *Body) CircularAbout(primary *Body, radius, θ, t float64) {
	v := math.Sqrt(primary.GM / radius)
	sθ, cθ := math.Sincos(θ)
	rel := NewObjectState(t, []float64{radius * cθ, radius * sθ, 0}, []float64{-v * sθ, v * cθ, 0})
	b.Primary = primary
	b.State = rel.InFrameOf(primary.State)
}

/* Catalog (SI units) */

// SolarSystem returns a fresh Sun-rooted body tree with the major bodies on
// circular orbits at their mean distances, all at phase angle 0 at time t.
// Scenario files refine phases and elements when the defaults do not fit.
func SolarSystem(t float64) map[string]*Body {
	sun := NewBodyGM("Sun", 1.32712440017987e20, 6.957e8, 2.192832e6)
	sun.State = NewObjectState(t, []float64{0, 0, 0}, []float64{0, 0, 0})

	bodies := map[string]*Body{"Sun": sun}
	for _, def := range []struct {
		name            string
		gm, radius, rot float64
		a               float64
	}{
		{"Venus", 3.24858599e14, 6.0518e6, 2.0996798e7, 1.08208601e11},
		{"Earth", 3.98600433e14, 6.3781363e6, 8.61641e4, 1.49598023e11},
		{"Mars", 4.282831e13, 3.39619e6, 8.86427e4, 2.279392825616e11},
		{"Jupiter", 1.266865361e17, 7.1492e7, 3.573e4, 7.78298361e11},
	} {
		b := NewBodyGM(def.name, def.gm, def.radius, def.rot)
		b.CircularAbout(sun, def.a, 0, t)
		bodies[def.name] = b
	}

	moon := NewBodyGM("Moon", 4.9028e12, 1.7374e6, 2.360591e6)
	moon.CircularAbout(bodies["Earth"], 3.844e8, 0, t)
	bodies["Moon"] = moon
	return bodies
}

// BodyFromMap returns the named body from a scenario tree.
func BodyFromMap(bodies map[string]*Body, name string) (*Body, error) {
	if b, ok := bodies[name]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("undefined body %q", name)
}
