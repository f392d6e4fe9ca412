package astro

import (
	"math"
)

/* Single-burn closed-form maneuvers. */

// ChangeApoapsis plans the single prograde/retrograde burn at periapsis
// that moves the apoapsis to targetRadius. The request is rejected when the
// target sits below the current periapsis.
func ChangeApoapsis(op OrbitPosition, now, targetRadius float64) (Plan, error) {
	o := op.Orbit
	if !o.IsBound() {
		return nil, geomErrorf("change-apoapsis", "%s orbit has no apoapsis to move", o.Class())
	}
	rp := o.Periapsis()
	if targetRadius < rp {
		return nil, geomErrorf("change-apoapsis", "target apoapsis %.0f below current periapsis %.0f", targetRadius, rp)
	}
	Δt, err := op.TimeToPeriapsis()
	if err != nil {
		return nil, err
	}
	_, V0 := op.WithTrueAnomaly(0).RV()
	target := orbitFromApsides(o, rp, targetRadius)
	_, V1 := OrbitPosition{target, 0}.RV()
	return Plan{{Time: now + Δt, DeltaV: sub(V1, V0)}}, nil
}

// ChangePeriapsis plans the single burn at apoapsis that moves the
// periapsis to targetRadius. The request is rejected when the target sits
// above the current apoapsis.
func ChangePeriapsis(op OrbitPosition, now, targetRadius float64) (Plan, error) {
	o := op.Orbit
	if !o.IsBound() {
		return nil, geomErrorf("change-periapsis", "%s orbit has no apoapsis to burn at", o.Class())
	}
	ra := o.Apoapsis()
	if targetRadius > ra {
		return nil, geomErrorf("change-periapsis", "target periapsis %.0f above current apoapsis %.0f", targetRadius, ra)
	}
	Δt, err := op.TimeToApoapsis()
	if err != nil {
		return nil, err
	}
	_, V0 := op.WithTrueAnomaly(math.Pi).RV()
	target := orbitFromApsides(o, targetRadius, ra)
	_, V1 := OrbitPosition{target, math.Pi}.RV()
	return Plan{{Time: now + Δt, DeltaV: sub(V1, V0)}}, nil
}

// ChangeInclination plans the single burn at the nearer node that rotates
// the orbital plane to the new inclination, keeping all other elements.
func ChangeInclination(op OrbitPosition, now, newInclination float64) (Plan, error) {
	o := op.Orbit
	// The node line is at argument of latitude 0 and π.
	ascending := math.Mod(2*math.Pi-o.ω, 2*math.Pi)
	descending := math.Mod(3*math.Pi-o.ω, 2*math.Pi)
	burnν := ascending
	Δt, err := op.TimeBetween(ascending)
	if err != nil {
		return nil, err
	}
	if dtDesc, errD := op.TimeBetween(descending); errD == nil {
		if dtDesc > 0 && (Δt <= 0 || dtDesc < Δt) {
			Δt = dtDesc
			burnν = descending
		}
	}
	if Δt < 0 {
		return nil, geomErrorf("change-inclination", "no node crossing ahead on this orbit")
	}
	_, V0 := op.WithTrueAnomaly(burnν).RV()
	rotated := NewOrbit(o.p, o.e, newInclination, o.Ω, o.ω, o.Body)
	_, V1 := OrbitPosition{rotated, burnν}.RV()
	return Plan{{Time: now + Δt, DeltaV: sub(V1, V0)}}, nil
}

// orbitFromApsides keeps the plane of o and replaces its shape by the given
// periapsis and apoapsis radii.
func orbitFromApsides(o Orbit, rp, ra float64) Orbit {
	a := (rp + ra) / 2
	e := (ra - rp) / (ra + rp)
	return NewOrbit(a*(1-e*e), e, o.i, o.Ω, o.ω, o.Body)
}

/* Hohmann transfer. */

// HohmannTransfer is the closed-form two-burn transfer between circular
// coplanar orbits: signed prograde burn magnitudes, the coast between them,
// and the phase-alignment wait before departure.
type HohmannTransfer struct {
	DepartureDV float64
	ArrivalDV   float64
	CoastTime   float64
	WaitTime    float64
}

// TotalDV returns |Δv1|+|Δv2|.
func (h HohmannTransfer) TotalDV() float64 {
	return math.Abs(h.DepartureDV) + math.Abs(h.ArrivalDV)
}

// HohmannBurn computes the transfer between circular orbits of radius r1
// and r2 around a body of gravitational parameter μ. Closed form, no
// iteration. Negative burn values mean retrograde (inward transfer).
func HohmannBurn(μ, r1, r2 float64) HohmannTransfer {
	sum := r1 + r2
	return HohmannTransfer{
		DepartureDV: math.Sqrt(μ/r1) * (math.Sqrt(2*r2/sum) - 1),
		ArrivalDV:   math.Sqrt(μ/r2) * (1 - math.Sqrt(2*r1/sum)),
		CoastTime:   math.Pi * math.Sqrt(sum*sum*sum/(8*μ)),
	}
}

// HohmannAlignmentAngle returns the phase angle (target ahead of chaser, at
// departure) for which the coast arc meets the target: the target covers
// the rest of the half revolution during the coast.
func HohmannAlignmentAngle(μ, r1, r2 float64) float64 {
	n2 := math.Sqrt(μ / (r2 * r2 * r2))
	return math.Pi - n2*HohmannBurn(μ, r1, r2).CoastTime
}

// HohmannWaitTime returns the time until the target-chaser phase angle
// reaches the alignment angle, given the current phase angle θ (target
// minus chaser, radians) and the two circular radii.
func HohmannWaitTime(μ, r1, r2, θ float64) float64 {
	α := HohmannAlignmentAngle(μ, r1, r2)
	n1 := math.Sqrt(μ / (r1 * r1 * r1))
	n2 := math.Sqrt(μ / (r2 * r2 * r2))
	rate := n2 - n1
	Δ := math.Mod(α-θ, 2*math.Pi)
	if rate > 0 && Δ < 0 {
		Δ += 2 * math.Pi
	} else if rate < 0 && Δ > 0 {
		Δ -= 2 * math.Pi
	}
	return Δ / rate
}

// PlanHohmann emits the timed two-burn plan moving the chaser from its
// circular orbit to the circular orbit of radius targetRadius, phased so
// that an object currently leading the chaser by θ is met on arrival.
// Pass θ=NaN to skip phasing and depart immediately.
func PlanHohmann(op OrbitPosition, now, targetRadius, θ float64) (Plan, HohmannTransfer, error) {
	o := op.Orbit
	if o.Class() != Circular {
		return nil, HohmannTransfer{}, geomErrorf("hohmann", "departure orbit is %s, not circular", o.Class())
	}
	r1 := op.RNorm()
	μ := o.Body.GM
	ht := HohmannBurn(μ, r1, targetRadius)
	if !math.IsNaN(θ) {
		ht.WaitTime = HohmannWaitTime(μ, r1, targetRadius, θ)
	}

	n1 := math.Sqrt(μ / (r1 * r1 * r1))
	νDep := math.Mod(op.ν+n1*ht.WaitTime, 2*math.Pi)
	depart := op.WithTrueAnomaly(νDep)
	R0, V0 := depart.RV()
	Δv1 := scale(ht.DepartureDV, unit(V0))

	// Second burn at the far apsis of the transfer orbit.
	transfer := NewOrbitPositionFromRV(R0, add(V0, Δv1), o.Body)
	farν := math.Pi
	if targetRadius < r1 {
		// Inward transfer departs at apoapsis and burns at periapsis.
		farν = 0
	}
	_, Vfar := transfer.WithTrueAnomaly(farν).RV()
	Δv2 := scale(ht.ArrivalDV, unit(Vfar))

	tDep := now + ht.WaitTime
	return Plan{
		{Time: tDep, DeltaV: Δv1},
		{Time: tDep + ht.CoastTime, DeltaV: Δv2},
	}, ht, nil
}
