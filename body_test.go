package astro

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestBodyConstruction(t *testing.T) {
	b := NewBody("rock", 1e20, 1e5, 3600)
	if !scalar.EqualWithinAbs(b.GM, 1e20*G, 1) {
		t.Fatalf("μ = %e", b.GM)
	}
	gm := NewBodyGM("precise", 3.98600433e14, 6.3781363e6, 86164)
	if gm.GM != 3.98600433e14 {
		t.Fatal("NewBodyGM must keep μ exactly")
	}
	if !gm.HasRadius() {
		t.Fatal("a planet has a radius")
	}
	if NewBody("craft", 1e3, 0, 0).HasRadius() {
		t.Fatal("a point mass has no radius")
	}
}

func TestSolarSystemCatalog(t *testing.T) {
	bodies := SolarSystem(0)
	sun := bodies["Sun"]
	if !sun.IsObjectOfReference() {
		t.Fatal("the Sun roots the catalog")
	}
	for _, name := range []string{"Venus", "Earth", "Mars", "Jupiter"} {
		b := bodies[name]
		if b.Primary != sun {
			t.Fatalf("%s does not orbit the Sun", name)
		}
		op := NewOrbitPosition(sun.State, b.State, sun)
		if op.Orbit.Class() != Circular {
			t.Fatalf("%s seeded on a %s orbit", name, op.Orbit.Class())
		}
	}
	if bodies["Moon"].Primary != bodies["Earth"] {
		t.Fatal("the Moon orbits Earth")
	}
	if _, err := BodyFromMap(bodies, "Pluto"); err == nil {
		t.Fatal("undefined body lookups must fail")
	}
}

func TestSOIRadius(t *testing.T) {
	bodies := SolarSystem(0)
	soi, err := bodies["Earth"].SOIRadius()
	if err != nil {
		t.Fatal(err)
	}
	// The textbook value is about 0.93e9 m.
	if !scalar.EqualWithinAbs(soi, 0.93e9, 0.05e9) {
		t.Fatalf("Earth SOI %e m", soi)
	}
	if _, err := bodies["Sun"].SOIRadius(); err == nil {
		t.Fatal("the object of reference has no SOI")
	}
}

func TestCircularAbout(t *testing.T) {
	earth := testEarth()
	sat := NewBody("sat", 1e3, 0, 0)
	sat.CircularAbout(earth, 7000e3, math.Pi/2, 5)
	rel := sat.State.RelativeTo(earth.State)
	if !scalar.EqualWithinAbs(norm(rel.R), 7000e3, 1e-3) {
		t.Fatalf("radius %f", norm(rel.R))
	}
	if !scalar.EqualWithinAbs(norm(rel.V), math.Sqrt(earth.GM/7000e3), 1e-6) {
		t.Fatalf("speed %f", norm(rel.V))
	}
	if d := dot(rel.R, rel.V); !scalar.EqualWithinAbs(d, 0, 1) {
		t.Fatalf("circular state not tangential: r·v = %e", d)
	}
	if sat.State.Time != 5 {
		t.Fatalf("state stamped %f", sat.State.Time)
	}
}
