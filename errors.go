package astro

import (
	"errors"
	"fmt"
)

// ErrNoFeasibleSolution is returned when a search exhausts its domain
// without finding any solvable and physically valid candidate. It is an
// explicit absence, never a zero-Δv maneuver.
var ErrNoFeasibleSolution = errors.New("no feasible solution in search domain")

// GeometryError reports a physically impossible request given the current
// orbit, e.g. a target periapsis above the current apoapsis. It is raised
// before any partial computation.
type GeometryError struct {
	Op     string
	Reason string
}

func (e GeometryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func geomErrorf(op, format string, args ...interface{}) GeometryError {
	return GeometryError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// ConvergenceError reports that an iterative solver exceeded its iteration
// budget or lost its solution domain. Grid searches treat it as "this cell
// has no solution"; single-shot callers see it as a failure.
type ConvergenceError struct {
	Solver     string
	Iterations int
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations", e.Solver, e.Iterations)
}
