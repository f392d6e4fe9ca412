package astro

import (
	"math"
)

// Encounter is the result of a closest-approach search: the absolute time
// of minimum separation and the separation itself.
type Encounter struct {
	Time     float64
	Distance float64
}

// ClosestApproach finds the minimum separation between two objects orbiting
// the same primary within one synodic period of their common epoch. Both
// states must share the epoch and the frame of primaryState.
//
// The scan widens its step while the separation grows and narrows it when
// the separation is dropping, concentrating samples near the minimum, then
// polishes the winner with a golden-section pass.
func ClosestApproach(ks KeplerSolver, body *Body, primaryState, s1, s2 ObjectState) (Encounter, error) {
	op1 := NewOrbitPosition(primaryState, s1, body)
	op2 := NewOrbitPosition(primaryState, s2, body)
	if !op1.Orbit.IsBound() || !op2.Orbit.IsBound() {
		return Encounter{}, ErrNoFeasibleSolution
	}
	n1 := op1.Orbit.MeanMotion()
	n2 := op2.Orbit.MeanMotion()
	if math.Abs(n1-n2) < 1e-13*math.Max(n1, n2) {
		// Equal periods: the geometry never changes, the synodic period is
		// degenerate.
		return Encounter{}, ErrNoFeasibleSolution
	}
	synodic := 2 * math.Pi / math.Abs(n1-n2)

	sep := func(Δt float64) (float64, error) {
		p1, err := ks.Propagate(primaryState, s1, body, Δt)
		if err != nil {
			return 0, err
		}
		p2, err := ks.Propagate(primaryState, s2, body, Δt)
		if err != nil {
			return 0, err
		}
		return norm(sub(p1.R, p2.R)), nil
	}

	base := synodic / 400
	minStep := synodic / 40000
	maxStep := synodic / 40
	step := base

	bestT := 0.0
	bestD := norm(sub(s1.R, s2.R))
	prev := bestD
	stepAtBest := step
	for t := step; t <= synodic; t += step {
		d, err := sep(t)
		if err != nil {
			return Encounter{}, err
		}
		if d < bestD {
			bestD = d
			bestT = t
			stepAtBest = step
		}
		if d > prev {
			step = math.Min(step*1.6, maxStep)
		} else {
			step = math.Max(step*0.6, minStep)
		}
		prev = d
	}

	// Golden-section polish around the coarse winner.
	lo := math.Max(0, bestT-2*stepAtBest)
	hi := math.Min(synodic, bestT+2*stepAtBest)
	const φinv = 0.6180339887498949
	a, b := lo, hi
	x1 := b - φinv*(b-a)
	x2 := a + φinv*(b-a)
	f1, err := sep(x1)
	if err != nil {
		return Encounter{}, err
	}
	f2, err := sep(x2)
	if err != nil {
		return Encounter{}, err
	}
	for k := 0; k < 60 && b-a > 1e-3; k++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - φinv*(b-a)
			if f1, err = sep(x1); err != nil {
				return Encounter{}, err
			}
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + φinv*(b-a)
			if f2, err = sep(x2); err != nil {
				return Encounter{}, err
			}
		}
	}
	mid := (a + b) / 2
	d, err := sep(mid)
	if err != nil {
		return Encounter{}, err
	}
	if d < bestD {
		bestD = d
		bestT = mid
	}
	return Encounter{Time: s1.Time + bestT, Distance: bestD}, nil
}

// ClosestApproachBodies is ClosestApproach for two catalog bodies; they
// must share the same primary, otherwise there is no defined result.
func ClosestApproachBodies(ks KeplerSolver, a, b *Body) (Encounter, error) {
	if a.Primary == nil || b.Primary == nil || a.Primary != b.Primary {
		return Encounter{}, ErrNoFeasibleSolution
	}
	return ClosestApproach(ks, a.Primary, a.Primary.State, a.State, b.State)
}

// TimeToLeaveSOI returns the time until the orbit crosses the sphere of
// influence of its primary body, counted from the current true anomaly.
// There is no result when the orbit never reaches the SOI radius or the
// crossing lies in the past.
func TimeToLeaveSOI(op OrbitPosition) (float64, error) {
	soi, err := op.Orbit.Body.SOIRadius()
	if err != nil {
		return 0, err
	}
	return timeToRadius(op, soi)
}

// TimeToImpact returns the time until the orbit descends to the primary
// body's surface radius.
func TimeToImpact(op OrbitPosition) (float64, error) {
	if !op.Orbit.Body.HasRadius() {
		return 0, geomErrorf("time-to-impact", "%s has no physical radius", op.Orbit.Body.Name)
	}
	return timeToRadius(op, op.Orbit.Body.Radius)
}

// timeToRadius solves |r(ν)| = radius analytically: cosν* = (p/radius-1)/e
// gives the two crossing anomalies ±ν*; the nearer one ahead of the current
// anomaly wins. No result when the orbit never crosses the radius or only
// crossed it in the past.
func timeToRadius(op OrbitPosition, radius float64) (float64, error) {
	o := op.Orbit
	if o.e <= eccentricityε {
		// Circular orbits hold their radius forever.
		return 0, ErrNoFeasibleSolution
	}
	cosν := (o.p/radius - 1) / o.e
	if math.Abs(cosν) > 1 {
		return 0, ErrNoFeasibleSolution
	}
	ν := math.Acos(cosν)
	best := math.Inf(1)
	for _, root := range []float64{ν, 2*math.Pi - ν} {
		Δt, err := op.TimeBetween(root)
		if err != nil {
			continue
		}
		if Δt > 0 && Δt < best {
			best = Δt
		}
	}
	if math.IsInf(best, 1) {
		return 0, ErrNoFeasibleSolution
	}
	return best, nil
}
