package astro

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestAnomalyRoundTrips(t *testing.T) {
	for _, e := range []float64{0.01, 0.3, 0.7, 0.95} {
		for ν := -3.0; ν <= 3.0; ν += 0.25 {
			E := EccentricFromTrue(ν, e)
			if ok, err := anglesEqual(ν, TrueFromEccentric(E, e)); !ok {
				t.Fatalf("e=%f ν=%f: %s", e, ν, err)
			}
		}
	}
	for _, e := range []float64{1.1, 1.5, 3.0} {
		νMax := math.Acos(-1 / e)
		for ν := -0.95 * νMax; ν <= 0.95*νMax; ν += νMax / 7 {
			H := HyperbolicFromTrue(ν, e)
			if ok, err := anglesEqual(ν, TrueFromHyperbolic(H, e)); !ok {
				t.Fatalf("e=%f ν=%f: %s", e, ν, err)
			}
		}
	}
}

func TestEccentricFromMean(t *testing.T) {
	for _, e := range []float64{0.1, 0.5, 0.85, 0.97} {
		for M := 0.1; M < 2*math.Pi; M += 0.5 {
			E, err := EccentricFromMean(M, e)
			if err != nil {
				t.Fatalf("e=%f M=%f: %s", e, M, err)
			}
			if !scalar.EqualWithinAbs(E-e*math.Sin(E), M, 1e-10) {
				t.Fatalf("e=%f M=%f: residual %e", e, M, E-e*math.Sin(E)-M)
			}
		}
	}
}

func TestHyperbolicFromMean(t *testing.T) {
	for _, e := range []float64{1.1, 1.7, 4.0} {
		for M := -8.0; M < 8.0; M += 1.3 {
			H, err := HyperbolicFromMean(M, e)
			if err != nil {
				t.Fatalf("e=%f M=%f: %s", e, M, err)
			}
			if !scalar.EqualWithinAbs(e*math.Sinh(H)-H, M, 1e-9) {
				t.Fatalf("e=%f M=%f: residual %e", e, M, e*math.Sinh(H)-H-M)
			}
		}
	}
}

func TestTimeSincePeriapsisFractions(t *testing.T) {
	earth := testEarth()
	op := NewOrbitFromOE(20000e3, 0.4, 10, 20, 30, 0, earth)
	T := op.Orbit.Period()

	atApo, err := op.WithTrueAnomaly(math.Pi).TimeSincePeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(atApo, T/2, 1e-6*T) {
		t.Fatalf("apoapsis is %f s after periapsis, want %f", atApo, T/2)
	}

	full, err := op.TimeBetween(2 * math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(full, T, 1e-6*T) {
		t.Fatalf("full revolution takes %f s, want the period %f", full, T)
	}
}

func TestTimeBetweenWrapsForward(t *testing.T) {
	earth := testEarth()
	op := NewOrbitFromOE(20000e3, 0.4, 10, 20, 30, 90, earth)
	// A target anomaly behind the current one lies one period minus the
	// direct flight time ahead.
	dt, err := op.TimeBetween(Deg2rad(45))
	if err != nil {
		t.Fatal(err)
	}
	if dt <= 0 || dt >= op.Orbit.Period() {
		t.Fatalf("wrapped time of flight %f outside (0, T)", dt)
	}
}

func TestTimeToApsides(t *testing.T) {
	earth := testEarth()
	op := NewOrbitFromOE(20000e3, 0.4, 10, 20, 30, 90, earth)
	toPeri, err := op.TimeToPeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	toApo, err := op.TimeToApoapsis()
	if err != nil {
		t.Fatal(err)
	}
	if toPeri <= 0 || toApo <= 0 {
		t.Fatalf("apsis times must be positive: peri %f apo %f", toPeri, toApo)
	}
	// From ν=90° the apoapsis comes first.
	if toApo >= toPeri {
		t.Fatalf("apoapsis (%f) must come before periapsis (%f) from ν=90°", toApo, toPeri)
	}

	hyp := NewOrbitFromOE(-20000e3, 1.5, 10, 20, 30, 0, earth)
	var gerr GeometryError
	if _, err := hyp.TimeToApoapsis(); !errors.As(err, &gerr) {
		t.Fatalf("hyperbolic apoapsis query must fail with a geometry error, got %v", err)
	}
}

func TestHyperbolicTimeRange(t *testing.T) {
	earth := testEarth()
	hyp := NewOrbitFromOE(-20000e3, 1.5, 0, 0, 0, 0, earth)
	νMax := hyp.Orbit.MaxTrueAnomaly()
	var gerr GeometryError
	if _, err := hyp.WithTrueAnomaly(νMax + 0.01).TimeSincePeriapsis(); !errors.As(err, &gerr) {
		t.Fatalf("anomaly beyond ν∞ must fail with a geometry error, got %v", err)
	}
	// Inside the range the time must be antisymmetric about periapsis.
	tPlus, err := hyp.WithTrueAnomaly(0.5).TimeSincePeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	tMinus, err := hyp.WithTrueAnomaly(-0.5).TimeSincePeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(tPlus, -tMinus, 1e-6) {
		t.Fatalf("hyperbolic time not antisymmetric: %f vs %f", tPlus, tMinus)
	}
}

func TestBarkerEquation(t *testing.T) {
	earth := testEarth()
	par := NewOrbitFromOE(7000e3, 1, 0, 0, 0, 0, earth)
	t0, err := par.TimeSincePeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	if t0 != 0 {
		t.Fatalf("parabolic time at periapsis is %f, want 0", t0)
	}
	tPlus, err := par.WithTrueAnomaly(1.0).TimeSincePeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	tMinus, err := par.WithTrueAnomaly(-1.0).TimeSincePeriapsis()
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(tPlus, -tMinus, 1e-9) {
		t.Fatalf("Barker time not antisymmetric: %f vs %f", tPlus, tMinus)
	}
}

func TestPropagateAnalytic(t *testing.T) {
	earth := testEarth()
	cases := []OrbitPosition{
		NewOrbitFromOE(20000e3, 0.4, 10, 20, 30, 40, earth),
		NewOrbitFromOE(-20000e3, 1.5, 10, 20, 30, 10, earth),
		NewOrbitFromOE(7000e3, 1, 10, 20, 30, 10, earth),
	}
	for _, op := range cases {
		t.Run(op.Orbit.Class().String(), func(t *testing.T) {
			Δt := 1800.0
			fwd, err := op.PropagateAnalytic(Δt)
			if err != nil {
				t.Fatal(err)
			}
			back, err := fwd.PropagateAnalytic(-Δt)
			if err != nil {
				t.Fatal(err)
			}
			if ok, err := anglesEqual(op.ν, back.ν); !ok {
				t.Fatalf("forward-backward drifted: %s", err)
			}
		})
	}
}

func TestPropagateAnalyticFullPeriod(t *testing.T) {
	earth := testEarth()
	op := NewOrbitFromOE(20000e3, 0.4, 10, 20, 30, 40, earth)
	after, err := op.PropagateAnalytic(op.Orbit.Period())
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := anglesEqual(op.ν, after.ν); !ok {
		t.Fatalf("full period did not return to the start: %s", err)
	}
}
