package astro

import (
	"errors"
	"testing"
)

// Vallado's Lambert example: Earth orbit, 76 minute transfer, both branches.
func TestLambertVallado(t *testing.T) {
	earth := testEarth()
	gs := NewUniversalGaussSolver()
	R1 := []float64{15945.34e3, 0, 0}
	R2 := []float64{12214.83899e3, 10249.46731e3, 0}
	tof := 76.0 * 60

	V1, V2, err := gs.Solve(earth, R1, R2, tof, true)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(V1, []float64{2.058913e3, 2.915965e3, 0}, 5e-2) {
		t.Fatalf("short way V1 = %+v", V1)
	}
	if !vectorsEqual(V2, []float64{-3.451565e3, 0.910315e3, 0}, 5e-2) {
		t.Fatalf("short way V2 = %+v", V2)
	}

	V1, V2, err = gs.Solve(earth, R1, R2, tof, false)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(V1, []float64{-3.811158e3, -2.003854e3, 0}, 5e-2) {
		t.Fatalf("long way V1 = %+v", V1)
	}
	if !vectorsEqual(V2, []float64{4.207569e3, 0.914724e3, 0}, 5e-2) {
		t.Fatalf("long way V2 = %+v", V2)
	}
}

// The arc the solver returns must actually fly: propagating (R1, V1) by the
// time of flight must land on R2 with the arrival velocity V2.
func TestLambertSelfConsistent(t *testing.T) {
	earth := testEarth()
	gs := NewUniversalGaussSolver()
	ks := NewUniversalKeplerSolver()
	R1 := []float64{15945.34e3, 0, 0}
	R2 := []float64{12214.83899e3, 10249.46731e3, 0}
	tof := 76.0 * 60

	for _, shortWay := range []bool{true, false} {
		V1, V2, err := gs.Solve(earth, R1, R2, tof, shortWay)
		if err != nil {
			t.Fatal(err)
		}
		R, V, err := ks.PropagateRV(R1, V1, earth.GM, tof)
		if err != nil {
			t.Fatal(err)
		}
		if !vectorsEqual(R, R2, 1e3) {
			t.Fatalf("shortWay=%v: arc missed the target:\n%+v\n%+v", shortWay, R, R2)
		}
		if !vectorsEqual(V, V2, 1) {
			t.Fatalf("shortWay=%v: arrival velocity off:\n%+v\n%+v", shortWay, V, V2)
		}
	}
}

func TestLambertHeliocentric(t *testing.T) {
	sun := testSun()
	gs := NewUniversalGaussSolver()
	ks := NewUniversalKeplerSolver()
	// Quarter-turn arc from Earth's distance to Mars's distance.
	R1 := []float64{1.496e11, 0, 0}
	R2 := []float64{0, 2.2794e11, 0}
	tof := 150.0 * 86400

	V1, _, err := gs.Solve(sun, R1, R2, tof, true)
	if err != nil {
		t.Fatal(err)
	}
	R, _, err := ks.PropagateRV(R1, V1, sun.GM, tof)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(R, R2, 1e6) {
		t.Fatalf("heliocentric arc missed by %+v", sub(R, R2))
	}
}

func TestLambertRejectsPiTransfer(t *testing.T) {
	earth := testEarth()
	gs := NewUniversalGaussSolver()
	R1 := []float64{15945.34e3, 0, 0}
	R2 := scale(-1, R1)
	var gerr GeometryError
	if _, _, err := gs.Solve(earth, R1, R2, 3600, true); !errors.As(err, &gerr) {
		t.Fatalf("π transfer must fail with a geometry error, got %v", err)
	}
}

func TestLambertDeterministic(t *testing.T) {
	sun := testSun()
	gs := NewUniversalGaussSolver()
	R1 := []float64{1.496e11, 1e9, 0}
	R2 := []float64{-1.9e11, 1.2e11, 0}
	tof := 300.0 * 86400
	V1a, _, err := gs.Solve(sun, R1, R2, tof, true)
	if err != nil {
		t.Fatal(err)
	}
	V1b, _, err := gs.Solve(sun, R1, R2, tof, true)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(V1a, V1b, 0) {
		t.Fatalf("identical inputs produced different solutions:\n%+v\n%+v", V1a, V1b)
	}
}
