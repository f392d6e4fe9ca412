package astro

import (
	"fmt"
	"sort"
)

// FlyPlan executes a maneuver plan: the object is propagated from its
// current state to each burn time, the burn's Δv is applied once, and the
// state after the last burn is returned. Every planner in this package
// emits plans under this contract, so flying a plan is also how the test
// suite verifies them.
//
// A burn scheduled before the object's current time is an error: plans are
// anchored to absolute simulation times and cannot be replayed into the
// past.
func FlyPlan(ks KeplerSolver, primary ObjectState, body *Body, obj ObjectState, plan Plan) (ObjectState, error) {
	if !sort.SliceIsSorted(plan, func(i, j int) bool { return plan[i].Time < plan[j].Time }) {
		return ObjectState{}, fmt.Errorf("plan is not ordered by time")
	}
	state := obj
	for i, m := range plan {
		if m.Time < state.Time {
			return ObjectState{}, fmt.Errorf("burn %d at t=%f lies before the state time %f", i, m.Time, state.Time)
		}
		var err error
		state, err = ks.Propagate(primary, state, body, m.Time-state.Time)
		if err != nil {
			return ObjectState{}, fmt.Errorf("coasting to burn %d: %w", i, err)
		}
		state = state.WithVelocityDelta(m.DeltaV)
	}
	return state, nil
}

// FlyPlanTo flies the plan and then coasts to the absolute time t, which
// must not precede the last burn.
func FlyPlanTo(ks KeplerSolver, primary ObjectState, body *Body, obj ObjectState, plan Plan, t float64) (ObjectState, error) {
	state, err := FlyPlan(ks, primary, body, obj, plan)
	if err != nil {
		return ObjectState{}, err
	}
	if t < state.Time {
		return ObjectState{}, fmt.Errorf("target time %f precedes the last burn at %f", t, state.Time)
	}
	return ks.Propagate(primary, state, body, t-state.Time)
}
