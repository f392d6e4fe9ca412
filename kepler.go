package astro

import "math"

const (
	anomalyTolerance = 1e-12
	anomalyMaxIter   = 60
)

// normalizeν maps a true anomaly from [0,2π) to (-π,π], the range the
// hyperbolic and parabolic time formulas work in.
func normalizeν(ν float64) float64 {
	ν = math.Mod(ν, 2*math.Pi)
	if ν > math.Pi {
		ν -= 2 * math.Pi
	} else if ν < -math.Pi {
		ν += 2 * math.Pi
	}
	return ν
}

// EccentricFromTrue converts true to eccentric anomaly for e<1.
func EccentricFromTrue(ν, e float64) float64 {
	sinν, cosν := math.Sincos(ν)
	return math.Atan2(math.Sqrt(1-e*e)*sinν, e+cosν)
}

// TrueFromEccentric converts eccentric to true anomaly for e<1.
func TrueFromEccentric(E, e float64) float64 {
	sinE, cosE := math.Sincos(E)
	return math.Atan2(math.Sqrt(1-e*e)*sinE, cosE-e)
}

// HyperbolicFromTrue converts true to hyperbolic anomaly for e>1. The true
// anomaly must lie strictly inside the asymptotic range.
func HyperbolicFromTrue(ν, e float64) float64 {
	return 2 * math.Atanh(math.Sqrt((e-1)/(e+1))*math.Tan(normalizeν(ν)/2))
}

// TrueFromHyperbolic converts hyperbolic to true anomaly for e>1.
func TrueFromHyperbolic(H, e float64) float64 {
	return 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2))
}

// EccentricFromMean inverts Kepler's equation M = E - e·sinE by Newton
// iteration.
func EccentricFromMean(M, e float64) (float64, error) {
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for k := 0; k < anomalyMaxIter; k++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) < anomalyTolerance {
			return E, nil
		}
		E -= f / (1 - e*math.Cos(E))
	}
	return 0, ConvergenceError{Solver: "kepler-equation", Iterations: anomalyMaxIter}
}

// HyperbolicFromMean inverts the hyperbolic Kepler equation
// M = e·sinhH - H by Newton iteration.
func HyperbolicFromMean(M, e float64) (float64, error) {
	H := math.Asinh(M / e)
	for k := 0; k < anomalyMaxIter; k++ {
		f := e*math.Sinh(H) - H - M
		if math.Abs(f) < anomalyTolerance {
			return H, nil
		}
		H -= f / (e*math.Cosh(H) - 1)
	}
	return 0, ConvergenceError{Solver: "hyperbolic-kepler-equation", Iterations: anomalyMaxIter}
}

// TimeSincePeriapsis returns the signed time from the last periapsis
// passage to the current position: Kepler's equation for bound orbits, the
// hyperbolic Kepler equation for hyperbolic ones, Barker's equation for
// parabolic ones.
func (op OrbitPosition) TimeSincePeriapsis() (float64, error) {
	o := op.Orbit
	switch o.Class() {
	case Parabolic:
		D := math.Tan(normalizeν(op.ν) / 2)
		return 0.5 * math.Sqrt(o.p*o.p*o.p/o.Body.GM) * (D + D*D*D/3), nil
	case Hyperbolic:
		ν := normalizeν(op.ν)
		if math.Abs(ν) >= o.MaxTrueAnomaly() {
			return 0, geomErrorf("time-since-periapsis", "true anomaly %.4f outside the hyperbolic range ±%.4f", ν, o.MaxTrueAnomaly())
		}
		H := HyperbolicFromTrue(ν, o.e)
		return (o.e*math.Sinh(H) - H) / o.MeanMotion(), nil
	default:
		E := EccentricFromTrue(op.ν, o.e)
		M := E - o.e*math.Sin(E)
		return M / o.MeanMotion(), nil
	}
}

// TimeBetween returns the time of flight from the current true anomaly to
// ν2 along the direction of motion. For bound orbits a negative raw result
// wraps forward by one period; for unbound orbits the signed value is
// returned as is (a negative value means ν2 is in the past).
func (op OrbitPosition) TimeBetween(ν2 float64) (float64, error) {
	t1, err := op.TimeSincePeriapsis()
	if err != nil {
		return 0, err
	}
	t2, err := op.WithTrueAnomaly(ν2).TimeSincePeriapsis()
	if err != nil {
		return 0, err
	}
	Δt := t2 - t1
	if op.Orbit.IsBound() && Δt < 0 {
		Δt += op.Orbit.Period()
	}
	return Δt, nil
}

// TimeToPeriapsis returns the time until the next periapsis passage
// (the ν=2π query). For unbound orbits past periapsis it is negative.
func (op OrbitPosition) TimeToPeriapsis() (float64, error) {
	if op.Orbit.IsBound() {
		return op.TimeBetween(2 * math.Pi)
	}
	t, err := op.TimeSincePeriapsis()
	if err != nil {
		return 0, err
	}
	return -t, nil
}

// TimeToApoapsis returns the time until the next apoapsis passage (the ν=π
// query); apoapsis is undefined for unbound orbits.
func (op OrbitPosition) TimeToApoapsis() (float64, error) {
	if !op.Orbit.IsBound() {
		return 0, geomErrorf("time-to-apoapsis", "%s orbit has no apoapsis", op.Orbit.Class())
	}
	return op.TimeBetween(math.Pi)
}

// PropagateAnalytic advances the position along its own orbit by Δt using
// the regime-specific anomaly formulas. It complements the universal
// variable solver for callers which already hold an orbit position.
func (op OrbitPosition) PropagateAnalytic(Δt float64) (OrbitPosition, error) {
	o := op.Orbit
	switch o.Class() {
	case Parabolic:
		t0, err := op.TimeSincePeriapsis()
		if err != nil {
			return op, err
		}
		// Invert Barker's equation with the closed-form cubic root.
		t := t0 + Δt
		A := 3.0 / 2.0 * math.Sqrt(o.Body.GM/(o.p*o.p*o.p)) * 2 * t
		B := math.Cbrt(A + math.Sqrt(A*A+1))
		D := B - 1/B
		return op.WithTrueAnomaly(2 * math.Atan(D)), nil
	case Hyperbolic:
		t0, err := op.TimeSincePeriapsis()
		if err != nil {
			return op, err
		}
		M := (t0 + Δt) * o.MeanMotion()
		H, err := HyperbolicFromMean(M, o.e)
		if err != nil {
			return op, err
		}
		return op.WithTrueAnomaly(TrueFromHyperbolic(H, o.e)), nil
	default:
		E0 := EccentricFromTrue(op.ν, o.e)
		M := E0 - o.e*math.Sin(E0) + o.MeanMotion()*Δt
		M = math.Mod(M, 2*math.Pi)
		E, err := EccentricFromMean(M, o.e)
		if err != nil {
			return op, err
		}
		ν := TrueFromEccentric(E, o.e)
		if ν < 0 {
			ν += 2 * math.Pi
		}
		return op.WithTrueAnomaly(ν), nil
	}
}
