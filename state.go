package astro

import "fmt"

// ObjectState is the kinematic state of an object at a given simulation
// time: position and velocity in a single consistent reference frame, plus
// the rotation angle about the object's spin axis. States are values:
// every operation returns a new state and never mutates its inputs.
//
// Simulation time is a plain scalar of seconds; the engine does not own a
// clock, callers supply epochs.
type ObjectState struct {
	Time     float64
	R        []float64
	V        []float64
	Rotation float64
	Impacted bool
}

// NewObjectState returns a state at the given time, copying both vectors so
// the caller cannot alias the state's storage.
func NewObjectState(t float64, R, V []float64) ObjectState {
	return ObjectState{Time: t, R: clone(R), V: clone(V)}
}

// RelativeTo re-expresses this state relative to the given primary state.
// Both states must already be in the same frame; the transform is explicit
// and never applied implicitly by any solver.
func (s ObjectState) RelativeTo(p ObjectState) ObjectState {
	return ObjectState{
		Time:     s.Time,
		R:        sub(s.R, p.R),
		V:        sub(s.V, p.V),
		Rotation: s.Rotation,
		Impacted: s.Impacted,
	}
}

// InFrameOf is the inverse of RelativeTo: it translates and boosts a
// primary-relative state back into the primary's own frame.
func (s ObjectState) InFrameOf(p ObjectState) ObjectState {
	return ObjectState{
		Time:     s.Time,
		R:        add(s.R, p.R),
		V:        add(s.V, p.V),
		Rotation: s.Rotation,
		Impacted: s.Impacted,
	}
}

// WithVelocityDelta returns the state after an impulsive burn Δv. Velocity
// deltas are invariant across non-rotating frames, so the same Δv applies
// whether the state is body-relative or absolute.
func (s ObjectState) WithVelocityDelta(Δv []float64) ObjectState {
	return ObjectState{
		Time:     s.Time,
		R:        clone(s.R),
		V:        add(s.V, Δv),
		Rotation: s.Rotation,
		Impacted: s.Impacted,
	}
}

// AtTime returns a copy of the state stamped with a new simulation time.
// It does not move the object; use a KeplerSolver for that.
func (s ObjectState) AtTime(t float64) ObjectState {
	c := s
	c.R = clone(s.R)
	c.V = clone(s.V)
	c.Time = t
	return c
}

func (s ObjectState) String() string {
	return fmt.Sprintf("t=%.1f R=%+v V=%+v", s.Time, s.R, s.V)
}
