package astro

import (
	"math"
)

// phaseAngle returns the signed in-plane angle from r1 to r2 about the
// orbit normal h, folded into [0,2π).
func phaseAngle(r1, r2, h []float64) float64 {
	θ := math.Atan2(dot(cross(r1, r2), unit(h)), dot(r1, r2))
	if θ < 0 {
		θ += 2 * math.Pi
	}
	return θ
}

// PlanRendezvous plans the burns bringing the chaser to the target. Two
// configurations are supported: both orbits circular and coplanar (a
// phase-aligned Hohmann transfer), and both objects sharing one orbit at
// different phase angles (a phasing-orbit maneuver over revolutions
// repetitions). Any other relationship is rejected explicitly rather than
// producing a silently wrong maneuver.
func PlanRendezvous(ks KeplerSolver, body *Body, primaryState, chaser, target ObjectState, now float64, revolutions int) (Plan, error) {
	if revolutions < 1 {
		revolutions = 1
	}
	opC := NewOrbitPosition(primaryState, chaser, body)
	opT := NewOrbitPosition(primaryState, target, body)
	relC := chaser.RelativeTo(primaryState)
	relT := target.RelativeTo(primaryState)

	if opC.Orbit.Equals(opT.Orbit) {
		return planPhasing(opC, opT, relC, now, revolutions)
	}

	coplanar := math.Abs(opC.Orbit.i-opT.Orbit.i) < angleε &&
		(opC.Orbit.i < angleε || math.Abs(opC.Orbit.Ω-opT.Orbit.Ω) < angleε)
	if opC.Orbit.Class() == Circular && opT.Orbit.Class() == Circular && coplanar {
		h := cross(relC.R, relC.V)
		θ := phaseAngle(relC.R, relT.R, h)
		plan, _, err := PlanHohmann(opC, now, opT.RNorm(), θ)
		return plan, err
	}

	return nil, geomErrorf("rendezvous",
		"unsupported configuration: %s vs %s orbits", opC.Orbit.Class(), opT.Orbit.Class())
}

// planPhasing handles two objects on the same orbit separated in phase: a
// temporary orbit whose period differs by the phase lag divided by the
// repetition count, entered and left at the chaser's current position.
func planPhasing(opC, opT OrbitPosition, relC ObjectState, now float64, revolutions int) (Plan, error) {
	o := opC.Orbit
	τ, err := opC.TimeBetween(opT.ν)
	if err != nil {
		return nil, err
	}
	if τ < 1e-6 || o.Period()-τ < 1e-6 {
		// Already co-located.
		return Plan{}, nil
	}

	T := o.Period()
	μ := o.Body.GM
	r := norm(relC.R)
	v := norm(relC.V)

	// Prefer the faster (lower) phasing orbit; fall back to the slower one
	// when the lower orbit would dip below the body surface.
	for _, Tp := range []float64{T - τ/float64(revolutions), T + (T-τ)/float64(revolutions)} {
		if Tp <= 0 {
			continue
		}
		ap := math.Cbrt(μ * math.Pow(Tp/(2*math.Pi), 2))
		arg := μ * (2/r - 1/ap)
		if arg <= 0 {
			continue
		}
		vp := math.Sqrt(arg)
		Δv1 := scale(vp-v, unit(relC.V))
		phasing := NewOrbitPositionFromRV(relC.R, add(relC.V, Δv1), o.Body)
		if o.Body.HasRadius() && phasing.Orbit.Periapsis() < o.Body.Radius {
			continue
		}
		total := float64(revolutions) * Tp
		return Plan{
			{Time: now, DeltaV: Δv1},
			{Time: now + total, DeltaV: scale(-1, Δv1)},
		}, nil
	}
	return nil, geomErrorf("rendezvous", "no feasible phasing orbit above the surface of %s", o.Body.Name)
}
