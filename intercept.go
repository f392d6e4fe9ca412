package astro

import (
	"context"
	"math"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// InterceptPoint is one feasible grid cell, reported to the observer for
// external visualization (pork-chop style plots).
type InterceptPoint struct {
	Launch   float64 // absolute time of departure
	Duration float64 // transfer time of flight
	DeltaV   float64 // departure burn magnitude
	ShortWay bool
}

// InterceptRequest describes a two-dimensional (launch time × transfer
// duration) search for the cheapest transfer arc between two objects
// orbiting the same primary. All states share the epoch From.Time and the
// frame of PrimaryState.
type InterceptRequest struct {
	Body         *Body
	PrimaryState ObjectState
	From         ObjectState
	To           ObjectState

	// FromSurface marks a departure from this body's surface: candidate
	// escape trajectories are sampled against the body radius and rejected
	// when they re-intersect it inside the look-ahead window.
	FromSurface *Body
	// EscapeLookahead bounds the re-impact sampling window in seconds;
	// 0 means a quarter of the candidate transfer duration.
	EscapeLookahead float64

	LaunchStart, LaunchEnd, LaunchStep     float64 // offsets from the epoch
	DurationMin, DurationMax, DurationStep float64

	// AcceptableDV, when positive, stops the search early once any worker
	// finds a burn at or below it.
	AcceptableDV float64
	Workers      int

	Observer func(InterceptPoint)
	Logger   kitlog.Logger
}

// Intercept is the winning cell of the search.
type Intercept struct {
	Launch   float64
	Duration float64
	DeltaV   []float64
	ShortWay bool
	// ArrivalRelativeSpeed is the closing speed at the target, useful to
	// callers planning a capture burn.
	ArrivalRelativeSpeed float64
}

type interceptCandidate struct {
	found    bool
	mag      float64
	launch   float64 // offset from epoch
	duration float64
	Δv       []float64
	shortWay bool
	arrSpeed float64
}

// better implements the deterministic reduction order: lower Δv wins, then
// the earlier launch.
func (c interceptCandidate) better(o interceptCandidate) bool {
	if !o.found {
		return c.found
	}
	if !c.found {
		return false
	}
	if c.mag != o.mag {
		return c.mag < o.mag
	}
	return c.launch < o.launch
}

// PlanIntercept runs the grid search. Each cell is an independent unit of
// work (propagate + Lambert + feasibility); the launch axis is partitioned
// across workers which keep local bests, merged by an ordered reduction at
// the end. Reaching AcceptableDV cancels the remaining work cooperatively:
// in-flight cells finish cleanly and still participate in the merge.
func PlanIntercept(ctx context.Context, ks KeplerSolver, gs GaussSolver, req InterceptRequest) (Intercept, Plan, error) {
	logger := req.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if req.LaunchStep <= 0 || req.DurationStep <= 0 ||
		req.LaunchEnd < req.LaunchStart || req.DurationMax < req.DurationMin || req.DurationMin <= 0 {
		return Intercept{}, nil, ErrNoFeasibleSolution
	}
	var launches []float64
	for l := req.LaunchStart; l <= req.LaunchEnd+1e-9; l += req.LaunchStep {
		launches = append(launches, l)
	}
	if len(launches) == 0 {
		return Intercept{}, nil, ErrNoFeasibleSolution
	}

	workers := req.Workers
	if workers <= 0 {
		workers = LoadConfig().Workers()
	}
	if workers > len(launches) {
		workers = len(launches)
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var observerMu sync.Mutex
	observe := func(p InterceptPoint) {
		if req.Observer == nil {
			return
		}
		observerMu.Lock()
		req.Observer(p)
		observerMu.Unlock()
	}

	locals := make([]interceptCandidate, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			best := interceptCandidate{}
			for li := w; li < len(launches); li += workers {
				select {
				case <-searchCtx.Done():
					locals[w] = best
					return
				default:
				}
				launch := launches[li]
				for dur := req.DurationMin; dur <= req.DurationMax+1e-9; dur += req.DurationStep {
					cand, ok := evalInterceptCell(ks, gs, &req, launch, dur)
					if !ok {
						continue
					}
					observe(InterceptPoint{
						Launch:   req.From.Time + cand.launch,
						Duration: cand.duration,
						DeltaV:   cand.mag,
						ShortWay: cand.shortWay,
					})
					if cand.better(best) {
						best = cand
					}
					if req.AcceptableDV > 0 && best.found && best.mag <= req.AcceptableDV {
						locals[w] = best
						cancel()
						return
					}
				}
			}
			locals[w] = best
		}(w)
	}
	wg.Wait()

	merged := interceptCandidate{}
	for _, c := range locals {
		if c.better(merged) {
			merged = c
		}
	}
	if !merged.found {
		return Intercept{}, nil, ErrNoFeasibleSolution
	}
	level.Debug(logger).Log("subsys", "intercept",
		"launch", req.From.Time+merged.launch, "duration", merged.duration, "Δv", merged.mag)

	result := Intercept{
		Launch:               req.From.Time + merged.launch,
		Duration:             merged.duration,
		DeltaV:               merged.Δv,
		ShortWay:             merged.shortWay,
		ArrivalRelativeSpeed: merged.arrSpeed,
	}
	return result, Plan{{Time: result.Launch, DeltaV: merged.Δv}}, nil
}

// evalInterceptCell works one grid cell: propagate both ends, solve Lambert
// both ways, apply the surface-escape feasibility check, keep the cheaper
// passing branch. Solver non-convergence means "this cell has no solution".
func evalInterceptCell(ks KeplerSolver, gs GaussSolver, req *InterceptRequest, launch, dur float64) (interceptCandidate, bool) {
	fromL, err := ks.Propagate(req.PrimaryState, req.From, req.Body, launch)
	if err != nil {
		return interceptCandidate{}, false
	}
	toArr, err := ks.Propagate(req.PrimaryState, req.To, req.Body, launch+dur)
	if err != nil {
		return interceptCandidate{}, false
	}
	rel1 := fromL.RelativeTo(req.PrimaryState)
	rel2 := toArr.RelativeTo(req.PrimaryState)

	var surfState ObjectState
	if req.FromSurface != nil {
		surfState, err = ks.Propagate(req.PrimaryState, req.FromSurface.State, req.Body, launch)
		if err != nil {
			return interceptCandidate{}, false
		}
	}

	best := interceptCandidate{}
	for _, shortWay := range []bool{true, false} {
		v1, v2, err := gs.Solve(req.Body, rel1.R, rel2.R, dur, shortWay)
		if err != nil {
			continue
		}
		Δv := sub(v1, rel1.V)
		mag := norm(Δv)
		if best.found && mag >= best.mag {
			continue
		}
		if req.FromSurface != nil {
			window := req.EscapeLookahead
			if window <= 0 {
				window = dur / 4
			}
			if window > dur {
				window = dur
			}
			burned := fromL.WithVelocityDelta(Δv)
			if !escapeClearsBody(ks, req.FromSurface, surfState, burned, window) {
				continue
			}
		}
		best = interceptCandidate{
			found:    true,
			mag:      mag,
			launch:   launch,
			duration: dur,
			Δv:       Δv,
			shortWay: shortWay,
			arrSpeed: norm(sub(v2, rel2.V)),
		}
	}
	return best, best.found
}

// escapeClearsBody samples the post-burn trajectory relative to the
// departure body at fixed intervals over the look-ahead window and reports
// whether it stays above the surface.
func escapeClearsBody(ks KeplerSolver, body *Body, bodyState, burned ObjectState, window float64) bool {
	samples := LoadConfig().EscapeSamples
	if samples < 1 {
		samples = 1
	}
	step := window / float64(samples)
	if step <= 0 || math.IsNaN(step) {
		return true
	}
	for k := 1; k <= samples; k++ {
		p, err := ks.Propagate(bodyState, burned, body, step*float64(k))
		if err != nil {
			return false
		}
		if p.Impacted {
			return false
		}
	}
	return true
}
