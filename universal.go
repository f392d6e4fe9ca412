package astro

import (
	"math"
)

// KeplerSolver propagates an object state along its two-body orbit by any
// time offset, positive or negative, without the caller branching on the
// conic type. Implementations must be pure: no shared state, safe for
// concurrent use.
type KeplerSolver interface {
	Propagate(primary ObjectState, obj ObjectState, body *Body, Δt float64) (ObjectState, error)
}

// UniversalKeplerSolver solves the universal Kepler equation for the
// universal anomaly χ by Newton iteration over the Stumpff functions. It is
// the single most reused primitive in the engine: every grid search loop
// funnels through it.
type UniversalKeplerSolver struct {
	// Tolerance is the relative convergence threshold on χ.
	Tolerance float64
	// MaxIterations bounds the Newton loop; exceeding it surfaces a
	// ConvergenceError rather than looping forever near pathological inputs.
	MaxIterations int
}

// NewUniversalKeplerSolver returns a solver with the package defaults.
func NewUniversalKeplerSolver() *UniversalKeplerSolver {
	cfg := DefaultConfig()
	return &UniversalKeplerSolver{Tolerance: cfg.KeplerTolerance, MaxIterations: cfg.KeplerMaxIterations}
}

// Propagate advances obj by Δt around the given body. The primary state
// anchors the frame: the object state is made body-relative, propagated,
// and re-anchored to the same primary state. The returned state is stamped
// Impacted when it ends up below the body's surface radius.
func (s *UniversalKeplerSolver) Propagate(primary ObjectState, obj ObjectState, body *Body, Δt float64) (ObjectState, error) {
	rel := obj.RelativeTo(primary)
	R, V, err := s.PropagateRV(rel.R, rel.V, body.GM, Δt)
	if err != nil {
		return ObjectState{}, err
	}
	out := NewObjectState(obj.Time+Δt, R, V).InFrameOf(primary)
	out.Rotation = obj.Rotation
	if body.RotationPeriod > 0 {
		out.Rotation = math.Mod(obj.Rotation+2*math.Pi*Δt/body.RotationPeriod, 2*math.Pi)
	}
	out.Impacted = obj.Impacted || (body.HasRadius() && norm(R) < body.Radius)
	return out, nil
}

// PropagateRV advances a body-relative position and velocity by Δt for the
// gravitational parameter μ, using Vallado's universal variable algorithm.
func (s *UniversalKeplerSolver) PropagateRV(R0, V0 []float64, μ, Δt float64) (R, V []float64, err error) {
	if Δt == 0 {
		return clone(R0), clone(V0), nil
	}
	r0 := norm(R0)
	v0 := norm(V0)
	rdotv := dot(R0, V0)
	sqrtμ := math.Sqrt(μ)
	α := 2/r0 - v0*v0/μ // 1/a

	χ := s.initialGuess(R0, V0, r0, rdotv, μ, α, Δt)
	var ψ, c2, c3, r float64
	converged := false
	for k := 0; k < s.MaxIterations; k++ {
		ψ = χ * χ * α
		c2 = stumpffC(ψ)
		c3 = stumpffS(ψ)
		r = χ*χ*c2 + (rdotv/sqrtμ)*χ*(1-ψ*c3) + r0*(1-ψ*c2)
		χNew := χ + (sqrtμ*Δt-χ*χ*χ*c3-(rdotv/sqrtμ)*χ*χ*c2-r0*χ*(1-ψ*c3))/r
		if math.Abs(χNew-χ) < s.Tolerance*math.Max(1, math.Abs(χNew)) {
			χ = χNew
			converged = true
			break
		}
		χ = χNew
	}
	if !converged {
		return nil, nil, ConvergenceError{Solver: "universal-kepler", Iterations: s.MaxIterations}
	}

	// Final Stumpff evaluation at the converged χ.
	ψ = χ * χ * α
	c2 = stumpffC(ψ)
	c3 = stumpffS(ψ)
	r = χ*χ*c2 + (rdotv/sqrtμ)*χ*(1-ψ*c3) + r0*(1-ψ*c2)

	f := 1 - χ*χ*c2/r0
	g := Δt - χ*χ*χ*c3/sqrtμ
	fDot := sqrtμ * χ * (ψ*c3 - 1) / (r * r0)
	gDot := 1 - χ*χ*c2/r

	R = add(scale(f, R0), scale(g, V0))
	V = add(scale(fDot, R0), scale(gDot, V0))
	return R, V, nil
}

// initialGuess seeds χ per conic regime (Vallado algorithm 8). The regimes
// are told apart by the dimensionless α·r0.
func (s *UniversalKeplerSolver) initialGuess(R0, V0 []float64, r0, rdotv, μ, α, Δt float64) float64 {
	sqrtμ := math.Sqrt(μ)
	switch {
	case α*r0 > 1e-6:
		// Elliptical.
		return sqrtμ * Δt * α
	case math.Abs(α*r0) <= 1e-6:
		// Near-parabolic.
		h := cross(R0, V0)
		p := dot(h, h) / μ
		cot2s := 3 * math.Sqrt(μ/(p*p*p)) * Δt
		sAngle := math.Atan(1/cot2s) / 2
		w := math.Atan(math.Cbrt(math.Tan(sAngle)))
		return math.Sqrt(p) * 2 / math.Tan(2*w)
	default:
		// Hyperbolic.
		a := 1 / α
		sgn := sign(Δt)
		num := -2 * μ * α * Δt
		den := rdotv + sgn*math.Sqrt(-μ*a)*(1-r0*α)
		return sgn * math.Sqrt(-a) * math.Log(num/den)
	}
}
