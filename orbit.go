package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// eccentricityε bounds the circular regime: e at or below it is circular.
	eccentricityε = 1e-4
	// parabolicε bounds the parabolic regime around e=1.
	parabolicε = 1e-4
	// angleε is the threshold under which an inclination counts as equatorial.
	angleε = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	// distanceε and velocityε are the tolerances used by Equals.
	distanceε = 2e4  // 20 km
	velocityε = 1e-3 // 1 mm/s
)

// OrbitClass is the conic-section regime of an orbit, derived from its
// eccentricity against fixed thresholds.
type OrbitClass uint8

const (
	// Circular orbits have e ≤ 1e-4.
	Circular OrbitClass = iota + 1
	// Elliptic orbits have 1e-4 < e < 1-1e-4.
	Elliptic
	// Parabolic orbits have e within 1e-4 of 1.
	Parabolic
	// Hyperbolic orbits have e > 1+1e-4.
	Hyperbolic
)

func (c OrbitClass) String() string {
	switch c {
	case Circular:
		return "circular"
	case Elliptic:
		return "elliptic"
	case Parabolic:
		return "parabolic"
	case Hyperbolic:
		return "hyperbolic"
	default:
		return "unknown"
	}
}

// Orbit defines an orbit via its classical elements: semi-latus rectum p,
// eccentricity, inclination, right ascension of the ascending node and
// argument of periapsis, around a given primary body. The semi-latus rectum
// is the size parameter because it stays finite in the parabolic regime.
// Orbits are immutable values.
type Orbit struct {
	p, e, i, Ω, ω float64
	Body          *Body
}

// NewOrbit builds an orbit from its elements in radians.
// Degenerate Ω and ω default to 0 rather than NaN.
func NewOrbit(p, e, i, Ω, ω float64, body *Body) Orbit {
	if math.IsNaN(Ω) {
		Ω = 0
	}
	if math.IsNaN(ω) {
		ω = 0
	}
	return Orbit{p, e, i, math.Mod(Ω+2*math.Pi, 2*math.Pi), math.Mod(ω+2*math.Pi, 2*math.Pi), body}
}

// NewOrbitFromOE builds an orbit position from the six classical elements
// with the semi-major axis as the size parameter.
// WARNING: angles must be in degrees, not radians.
func NewOrbitFromOE(a, e, i, Ω, ω, ν float64, body *Body) OrbitPosition {
	p := a * (1 - e*e)
	if math.Abs(1-e) <= parabolicε {
		// Parabolic input: a is meaningless, treat it as the periapsis radius.
		p = 2 * a
	}
	return OrbitPosition{NewOrbit(p, e, Deg2rad(i), Deg2rad(Ω), Deg2rad(ω), body), Deg2rad(ν)}
}

// SemiParameter returns the semi-latus rectum p.
func (o Orbit) SemiParameter() float64 { return o.p }

// Eccentricity returns e.
func (o Orbit) Eccentricity() float64 { return o.e }

// Inclination returns i in radians.
func (o Orbit) Inclination() float64 { return o.i }

// RAAN returns the right ascension of the ascending node Ω in radians.
func (o Orbit) RAAN() float64 { return o.Ω }

// ArgPeriapsis returns the argument of periapsis ω in radians.
func (o Orbit) ArgPeriapsis() float64 { return o.ω }

// Class returns the conic regime of this orbit.
func (o Orbit) Class() OrbitClass {
	switch {
	case o.e <= eccentricityε:
		return Circular
	case math.Abs(o.e-1) <= parabolicε:
		return Parabolic
	case o.e < 1:
		return Elliptic
	default:
		return Hyperbolic
	}
}

// IsBound reports whether the orbit is closed (circular or elliptic).
func (o Orbit) IsBound() bool {
	c := o.Class()
	return c == Circular || c == Elliptic
}

// SemiMajorAxis returns a = p/(1-e²); +Inf for parabolic orbits and
// negative for hyperbolic ones.
func (o Orbit) SemiMajorAxis() float64 {
	if o.Class() == Parabolic {
		return math.Inf(1)
	}
	return o.p / (1 - o.e*o.e)
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	if o.Class() == Parabolic {
		return 0
	}
	return -o.Body.GM / (2 * o.SemiMajorAxis())
}

// Periapsis returns the periapsis radius.
func (o Orbit) Periapsis() float64 {
	return o.p / (1 + o.e)
}

// Apoapsis returns the apoapsis radius; +Inf for unbound orbits.
func (o Orbit) Apoapsis() float64 {
	if !o.IsBound() {
		return math.Inf(1)
	}
	return o.p / (1 - o.e)
}

// Period returns the orbital period in seconds; +Inf for unbound orbits.
func (o Orbit) Period() float64 {
	if !o.IsBound() {
		return math.Inf(1)
	}
	a := o.SemiMajorAxis()
	return 2 * math.Pi * math.Sqrt(a*a*a/o.Body.GM)
}

// MeanMotion returns the mean angular rate in rad/s. For hyperbolic orbits
// this is the hyperbolic mean motion.
func (o Orbit) MeanMotion() float64 {
	a := math.Abs(o.SemiMajorAxis())
	return math.Sqrt(o.Body.GM / (a * a * a))
}

// RadiusAt returns the orbital radius at the given true anomaly.
func (o Orbit) RadiusAt(ν float64) float64 {
	return o.p / (1 + o.e*math.Cos(ν))
}

// SpeedAt returns the orbital speed at the given true anomaly via vis-viva.
func (o Orbit) SpeedAt(ν float64) float64 {
	r := o.RadiusAt(ν)
	if o.Class() == Parabolic {
		return math.Sqrt(2 * o.Body.GM / r)
	}
	return math.Sqrt(o.Body.GM * (2/r - 1/o.SemiMajorAxis()))
}

// MaxTrueAnomaly returns the asymptotic true anomaly ν∞ for unbound orbits
// and π for bound ones.
func (o Orbit) MaxTrueAnomaly() float64 {
	if o.e <= 1 {
		return math.Pi
	}
	return math.Acos(-1 / o.e)
}

// Equals returns whether two orbits share all elements within the package
// tolerances, ignoring the position on the orbit.
func (o Orbit) Equals(o1 Orbit) bool {
	if !o.Body.Equals(o1.Body) {
		return false
	}
	if !scalar.EqualWithinAbs(o.p, o1.p, distanceε) ||
		!scalar.EqualWithinAbs(o.e, o1.e, eccentricityε) ||
		!scalar.EqualWithinAbs(o.i, o1.i, angleε) {
		return false
	}
	if o.i > angleε && !scalar.EqualWithinAbs(o.Ω, o1.Ω, angleε) {
		return false
	}
	if o.e > eccentricityε && !scalar.EqualWithinAbs(o.ω, o1.ω, angleε) {
		return false
	}
	return true
}

func (o Orbit) String() string {
	return fmt.Sprintf("p=%.1f e=%.6f i=%.3f Ω=%.3f ω=%.3f [%s, %s]",
		o.p, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), o.Class(), o.Body.Name)
}

// OrbitPosition is an orbit plus the true anomaly locating the object on
// it. All element-state conversions round-trip through this pair.
type OrbitPosition struct {
	Orbit Orbit
	ν     float64
}

// TrueAnomaly returns ν in radians.
func (op OrbitPosition) TrueAnomaly() float64 { return op.ν }

// WithTrueAnomaly returns the same orbit at a different true anomaly.
func (op OrbitPosition) WithTrueAnomaly(ν float64) OrbitPosition {
	return OrbitPosition{op.Orbit, ν}
}

// RNorm returns the current orbital radius without building the vector.
func (op OrbitPosition) RNorm() float64 { return op.Orbit.RadiusAt(op.ν) }

// VNorm returns the current speed without building the vector.
func (op OrbitPosition) VNorm() float64 { return op.Orbit.SpeedAt(op.ν) }

// CosΦfpa returns the cosine of the flight path angle. Recover the angle
// with math.Atan2(op.SinΦfpa(), op.CosΦfpa()), not math.Acos, or the
// quadrant is lost (Vallado page 105).
func (op OrbitPosition) CosΦfpa() float64 {
	e := op.Orbit.e
	ecosν := e * math.Cos(op.ν)
	return (1 + ecosν) / math.Sqrt(1+2*ecosν+e*e)
}

// SinΦfpa returns the sine of the flight path angle.
func (op OrbitPosition) SinΦfpa() float64 {
	e := op.Orbit.e
	sinν, cosν := math.Sincos(op.ν)
	return (e * sinν) / math.Sqrt(1+2*e*cosν+e*e)
}

// ArgLatitudeU returns the argument of latitude u = ω+ν.
func (op OrbitPosition) ArgLatitudeU() float64 {
	return math.Mod(op.ν+op.Orbit.ω, 2*math.Pi)
}

// TrueLongλ returns the true longitude Ω+ω+ν, the only well defined
// position angle on circular equatorial orbits.
func (op OrbitPosition) TrueLongλ() float64 {
	return math.Mod(op.Orbit.Ω+op.Orbit.ω+op.ν, 2*math.Pi)
}

func (op OrbitPosition) String() string {
	return fmt.Sprintf("%s ν=%.3f", op.Orbit, Rad2deg(op.ν))
}

// NewOrbitPosition derives the orbital elements of an object around a
// primary body from their states. Both states must be in the same frame;
// the relative transform is applied here, explicitly.
func NewOrbitPosition(primary ObjectState, obj ObjectState, body *Body) OrbitPosition {
	rel := obj.RelativeTo(primary)
	return orbitFromRV(rel.R, rel.V, body)
}

// NewOrbitPositionFromRV derives the elements from a primary-relative
// position and velocity.
func NewOrbitPositionFromRV(R, V []float64, body *Body) OrbitPosition {
	return orbitFromRV(R, V, body)
}

// orbitFromRV implements the state→elements conversion with the full
// quadrant disambiguation. The regimes (circular/eccentric crossed with
// equatorial/inclined) each carry their own sign rules; the boundary cases
// are pinned by tests rather than rederived.
func orbitFromRV(R, V []float64, body *Body) OrbitPosition {
	μ := body.GM
	r := norm(R)
	v := norm(V)
	h := cross(R, V)
	hNorm := norm(h)
	p := hNorm * hNorm / μ

	eVec := scale(1/μ, sub(scale(v*v-μ/r, R), scale(dot(R, V), V)))
	e := norm(eVec)
	i := math.Acos(clampAcosArg(h[2] / hNorm))
	// Node vector up×h.
	n := []float64{-h[1], h[0], 0}
	nNorm := norm(n)

	equatorial := i < angleε || i > math.Pi-angleε || nNorm == 0
	circular := e <= eccentricityε

	var Ω, ω, ν float64
	if !equatorial {
		Ω = math.Acos(clampAcosArg(n[0] / nNorm))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
	}

	switch {
	case circular && equatorial:
		// True longitude from the position vector.
		ν = math.Acos(clampAcosArg(R[0] / r))
		if R[1] < 0 {
			ν = 2*math.Pi - ν
		}
	case circular:
		// Argument of latitude from the node.
		ν = math.Acos(clampAcosArg(dot(n, R) / (nNorm * r)))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		cosν := clampAcosArg(dot(eVec, R) / (e * r))
		ν = math.Acos(cosν)
		if math.IsNaN(ν) {
			// Degenerate geometry; default to periapsis.
			ν = 0
		}
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
		if equatorial {
			// ω measured straight from the x axis, with the sign taken from
			// the orbital momentum z component.
			ω = math.Atan2(eVec[1], eVec[0])
			if h[2] < 0 {
				ω = -ω
			}
			if ω < 0 {
				ω += 2 * math.Pi
			}
		} else {
			ω = math.Acos(clampAcosArg(dot(n, eVec) / (nNorm * e)))
			if math.IsNaN(ω) {
				ω = 0
			}
			if eVec[2] < 0 {
				ω = 2*math.Pi - ω
			}
		}
	}

	// Fold rounding errors.
	i = math.Mod(i, 2*math.Pi)
	Ω = math.Mod(Ω, 2*math.Pi)
	ω = math.Mod(ω, 2*math.Pi)
	ν = math.Mod(ν, 2*math.Pi)
	return OrbitPosition{Orbit{p, e, i, Ω, ω, body}, ν}
}

// RV returns the primary-relative position and velocity vectors through the
// perifocal frame and the 3-1-3 rotation.
func (op OrbitPosition) RV() (R, V []float64) {
	o := op.Orbit
	ν := op.ν
	ω := o.ω
	Ω := o.Ω
	// Support the degenerate orbits: fold the undefined angles into the one
	// position angle that remains well defined.
	if o.e <= eccentricityε {
		ω = 0
		if o.i < angleε {
			Ω = 0
			ν = op.TrueLongλ()
		} else {
			ν = op.ArgLatitudeU()
		}
	} else if o.i < angleε {
		Ω = 0
		ω = math.Mod(o.ω+o.Ω, 2*math.Pi)
	}

	sinν, cosν := math.Sincos(ν)
	denom := 1 + o.e*cosν
	R = PQW2ECI(o.i, ω, Ω, []float64{o.p * cosν / denom, o.p * sinν / denom, 0})
	vScale := math.Sqrt(o.Body.GM / o.p)
	V = PQW2ECI(o.i, ω, Ω, []float64{-vScale * sinν, vScale * (o.e + cosν), 0})
	return R, V
}

// StateAt translates the orbit position into an absolute state in the frame
// of the given primary state, stamped at time t.
func (op OrbitPosition) StateAt(primary ObjectState, t float64) ObjectState {
	R, V := op.RV()
	return NewObjectState(t, R, V).InFrameOf(primary)
}
