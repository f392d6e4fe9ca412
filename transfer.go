package astro

import (
	"context"
	"math"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// TransferRequest describes an interplanetary transfer: a spacecraft on a
// circular parking orbit around From, bound for To, both orbiting Primary.
// All states share the epoch From.State.Time and Primary's frame.
type TransferRequest struct {
	Primary *Body
	From    *Body
	To      *Body

	// Parking is the spacecraft state on its parking orbit around From, in
	// Primary's frame at the shared epoch.
	Parking ObjectState

	LaunchStart, LaunchEnd, LaunchStep     float64 // offsets from the epoch
	DurationMin, DurationMax, DurationStep float64

	// AcceptableDV is forwarded to both grid searches to stop them early.
	AcceptableDV float64
	// MidcourseDV bounds the correction burn; a correction above it means
	// the injection geometry was too far off and the plan is rejected.
	MidcourseDV float64
	Workers     int
	Logger      kitlog.Logger
}

// PlanetaryTransfer is the assembled result: the heliocentric solution that
// sized the trip, the departure geometry, and the executable two-burn plan.
type PlanetaryTransfer struct {
	// Heliocentric is the planet-to-planet solution from the coarse search;
	// its DeltaV is the hyperbolic excess velocity at departure.
	Heliocentric Intercept
	// InjectionTime is the absolute time of the escape burn.
	InjectionTime float64
	// InjectionDV is the prograde escape burn magnitude.
	InjectionDV float64
	// EjectionAngle is the angle from the escape hyperbola's periapsis to
	// its outgoing asymptote.
	EjectionAngle float64
	// SOIExitTime is the absolute time the spacecraft leaves From's sphere
	// of influence.
	SOIExitTime float64
	// ExitState is the heliocentric spacecraft state at SOI departure, the
	// state the midcourse correction was planned from.
	ExitState ObjectState
	Plan      Plan
}

// PlanPlanetaryTransfer plans an interplanetary trip in stages: a coarse
// heliocentric planet-to-planet search sizes the hyperbolic excess; the
// parking orbit geometry converts it into a timed escape burn; the escape
// hyperbola is coasted to the sphere-of-influence boundary; and a bounded
// midcourse search absorbs the error between the idealized heliocentric arc
// and the actual post-escape state.
func PlanPlanetaryTransfer(ctx context.Context, ks KeplerSolver, gs GaussSolver, req TransferRequest) (PlanetaryTransfer, error) {
	logger := req.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	epoch := req.From.State.Time

	// The parking orbit gates every later stage; reject it before paying for
	// the search.
	park := NewOrbitPosition(req.From.State, req.Parking, req.From)
	if park.Orbit.Class() != Circular {
		return PlanetaryTransfer{}, geomErrorf("planetary-transfer",
			"parking orbit around %s is %s, not circular", req.From.Name, park.Orbit.Class())
	}

	// Stage 1: heliocentric planet-to-planet solution.
	helio, _, err := PlanIntercept(ctx, ks, gs, InterceptRequest{
		Body:         req.Primary,
		PrimaryState: req.Primary.State,
		From:         req.From.State,
		To:           req.To.State,
		LaunchStart:  req.LaunchStart,
		LaunchEnd:    req.LaunchEnd,
		LaunchStep:   req.LaunchStep,
		DurationMin:  req.DurationMin,
		DurationMax:  req.DurationMax,
		DurationStep: req.DurationStep,
		AcceptableDV: req.AcceptableDV,
		Workers:      req.Workers,
		Logger:       logger,
	})
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	vInf := helio.DeltaV
	vInfMag := norm(vInf)

	// Stage 2: escape burn geometry on the parking orbit.
	μ := req.From.GM
	rp := park.RNorm()
	vCirc := math.Sqrt(μ / rp)
	vInj := math.Sqrt(vInfMag*vInfMag + 2*μ/rp)
	eH := 1 + rp*vInfMag*vInfMag/μ
	η := math.Acos(clampAcosArg(-1 / eH))

	parkRel := req.Parking.RelativeTo(req.From.State)
	h := cross(parkRel.R, parkRel.V)
	// Project the asymptote direction into the parking plane; a large
	// out-of-plane component cannot be flown with a tangential burn.
	hHat := unit(h)
	vInfPlane := sub(vInf, scale(dot(vInf, hHat), hHat))
	if norm(vInfPlane) < 0.5*vInfMag {
		return PlanetaryTransfer{}, geomErrorf("planetary-transfer",
			"hyperbolic excess mostly out of the parking plane around %s", req.From.Name)
	}

	// Exit duration from the escape hyperbola, measured from its periapsis.
	// The hyperbola shape does not depend on the burn epoch, so the coast to
	// the SOI boundary can be sized before the burn is timed.
	burnDirSample := unit(parkRel.V)
	hypSample := NewOrbitPositionFromRV(parkRel.R, scale(vInj, burnDirSample), req.From)
	tExit, err := TimeToLeaveSOI(hypSample.WithTrueAnomaly(0))
	if err != nil {
		return PlanetaryTransfer{}, err
	}

	// Stage 3: time the burn so that the SOI exit lands near the
	// heliocentric launch, then wait the fraction of a revolution that puts
	// the spacecraft at the periapsis angle of the escape hyperbola.
	n := math.Sqrt(μ / (rp * rp * rp))
	T := 2 * math.Pi / n
	tWant := helio.Launch - tExit
	for tWant < epoch {
		tWant += T
	}
	atWant, err := ks.Propagate(req.From.State, req.Parking, req.From, tWant-epoch)
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	relWant := atWant.RelativeTo(req.From.State)
	// Periapsis of the hyperbola sits the ejection angle short of the
	// outgoing asymptote, measured against the orbital motion.
	toAsymptote := phaseAngle(relWant.R, vInfPlane, h)
	travel := math.Mod(toAsymptote-η+2*math.Pi, 2*math.Pi)
	tInj := tWant + travel/n

	fromAtInj, err := ks.Propagate(req.Primary.State, req.From.State, req.Primary, tInj-epoch)
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	atInj, err := ks.Propagate(req.From.State, req.Parking, req.From, tInj-epoch)
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	// Re-anchor the parking state to where the planet actually is at the
	// burn time before applying the delta.
	relInj := atInj.RelativeTo(req.From.State)
	absInj := relInj.InFrameOf(fromAtInj)
	ΔvInj := scale(vInj-vCirc, unit(relInj.V))
	burned := absInj.WithVelocityDelta(ΔvInj)

	// Stage 4: coast the hyperbola to the SOI boundary. The planet-relative
	// arc is re-anchored to where the planet is at the exit epoch, not at the
	// burn: the planet covers several SOI radii during the escape coast.
	tExitAbs := tInj + tExit
	atExit, err := ks.Propagate(fromAtInj, burned, req.From, tExit)
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	fromAtExit, err := ks.Propagate(req.Primary.State, req.From.State, req.Primary, tExitAbs-epoch)
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	exitState := atExit.RelativeTo(fromAtInj).InFrameOf(fromAtExit)

	// Stage 5: bounded midcourse correction against the real target state.
	toAtExit, err := ks.Propagate(req.Primary.State, req.To.State, req.Primary, tExitAbs-epoch)
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	remaining := helio.Launch + helio.Duration - tExitAbs
	if remaining <= 0 {
		remaining = helio.Duration
	}
	mid, _, err := PlanIntercept(ctx, ks, gs, InterceptRequest{
		Body:         req.Primary,
		PrimaryState: req.Primary.State,
		From:         exitState,
		To:           toAtExit,
		LaunchStart:  0,
		LaunchEnd:    remaining / 10,
		LaunchStep:   remaining / 40,
		DurationMin:  remaining / 2,
		DurationMax:  remaining * 3 / 2,
		DurationStep: remaining / 40,
		AcceptableDV: req.AcceptableDV,
		Workers:      req.Workers,
		Logger:       logger,
	})
	if err != nil {
		return PlanetaryTransfer{}, err
	}
	if req.MidcourseDV > 0 && norm(mid.DeltaV) > req.MidcourseDV {
		return PlanetaryTransfer{}, geomErrorf("planetary-transfer",
			"midcourse correction %.1f m/s exceeds budget %.1f m/s", norm(mid.DeltaV), req.MidcourseDV)
	}

	level.Debug(logger).Log("subsys", "transfer",
		"injection", tInj, "injectionΔv", vInj-vCirc, "soiExit", tExitAbs, "midcourseΔv", norm(mid.DeltaV))

	return PlanetaryTransfer{
		Heliocentric:  helio,
		InjectionTime: tInj,
		InjectionDV:   vInj - vCirc,
		EjectionAngle: η,
		SOIExitTime:   tExitAbs,
		ExitState:     exitState,
		Plan: Plan{
			{Time: tInj, DeltaV: ΔvInj},
			{Time: mid.Launch, DeltaV: mid.DeltaV},
		},
	}, nil
}
