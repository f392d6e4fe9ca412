package astro

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// GaussSolver solves Lambert's problem: given two primary-relative position
// vectors and a time of flight, find the velocity vectors of the unique
// two-body arc connecting them. shortWay=false takes the 2π-complement
// transfer angle. Implementations must be pure and safe for concurrent use.
type GaussSolver interface {
	Solve(body *Body, R1, R2 []float64, tof float64, shortWay bool) (V1, V2 []float64, err error)
}

// UniversalGaussSolver is the universal-variable Lambert formulation:
// Newton iteration on z so that the time of flight computed through the
// Stumpff functions matches the target, safeguarded by a maintained
// bisection bracket. When y(z) loses its domain the iterate is first nudged
// and then reseeded from a deterministic per-call RNG, so parallel searches
// stay reproducible.
type UniversalGaussSolver struct {
	// Tolerance is the absolute time-of-flight convergence threshold in
	// seconds.
	Tolerance float64
	// MaxIterations bounds the z iteration.
	MaxIterations int
}

// NewUniversalGaussSolver returns a solver with the package defaults.
func NewUniversalGaussSolver() *UniversalGaussSolver {
	cfg := DefaultConfig()
	return &UniversalGaussSolver{Tolerance: cfg.LambertTolerance, MaxIterations: cfg.LambertMaxIterations}
}

// Solve returns the departure and arrival velocities of the transfer arc.
func (s *UniversalGaussSolver) Solve(body *Body, R1, R2 []float64, tof float64, shortWay bool) (V1, V2 []float64, err error) {
	if tof <= 0 {
		return nil, nil, geomErrorf("lambert", "non-positive time of flight %f", tof)
	}
	μ := body.GM
	r1 := norm(R1)
	r2 := norm(R2)
	if r1 == 0 || r2 == 0 {
		return nil, nil, geomErrorf("lambert", "degenerate position vector")
	}
	cosΔν := clampAcosArg(dot(R1, R2) / (r1 * r2))
	dm := 1.0
	if !shortWay {
		dm = -1.0
	}
	A := dm * math.Sqrt(r1*r2*(1+cosΔν))
	if A == 0 {
		// 180° transfer: the plane is undefined.
		return nil, nil, geomErrorf("lambert", "transfer angle of π has no unique plane")
	}

	var rng *rand.Rand // lazily created, deterministically seeded
	zLow := -4 * math.Pi
	zUp := 4 * math.Pi * math.Pi
	z := 0.0
	domainMisses := 0
	var y float64
	for k := 0; k < s.MaxIterations; k++ {
		c2 := stumpffC(z)
		c3 := stumpffS(z)
		y = r1 + r2 + A*(z*c3-1)/math.Sqrt(c2)
		if A > 0 && y < 0 {
			// Lost the solution domain. Nudge upward first, as the bound
			// usually sits just above; after a few misses reseed inside the
			// bracket.
			domainMisses++
			if domainMisses <= 4 {
				z += 0.1
			} else {
				if rng == nil {
					rng = rand.New(rand.NewSource(lambertSeed(R1, R2, tof)))
				}
				z = zLow + rng.Float64()*(zUp-zLow)
			}
			continue
		}
		χ := math.Sqrt(y / c2)
		t := (χ*χ*χ*c3 + A*math.Sqrt(y)) / math.Sqrt(μ)
		if math.Abs(t-tof) < s.Tolerance {
			return s.velocities(R1, R2, r1, r2, y, A, μ)
		}
		// Maintain the bracket: t grows with z for zero-revolution arcs.
		if t <= tof {
			zLow = z
		} else {
			zUp = z
		}
		// Newton step on dt/dz, bisect when it escapes the bracket.
		dtdz := (χ*χ*χ*(stumpffSPrime(z)-3*c3*stumpffCPrime(z)/(2*c2)) +
			(A/8)*(3*c3*math.Sqrt(y)/c2+A/χ)) / math.Sqrt(μ)
		zNew := z + (tof-t)/dtdz
		if dtdz == 0 || math.IsNaN(zNew) || zNew <= zLow || zNew >= zUp {
			zNew = (zUp + zLow) / 2
		}
		z = zNew
	}
	return nil, nil, ConvergenceError{Solver: "universal-lambert", Iterations: s.MaxIterations}
}

// velocities recovers V1 and V2 through the f and g Lagrange coefficients.
func (s *UniversalGaussSolver) velocities(R1, R2 []float64, r1, r2, y, A, μ float64) (V1, V2 []float64, err error) {
	f := 1 - y/r1
	gDot := 1 - y/r2
	g := A * math.Sqrt(y/μ)
	V1 = scale(1/g, sub(R2, scale(f, R1)))
	V2 = scale(1/g, sub(scale(gDot, R2), R1))
	return V1, V2, nil
}

// lambertSeed derives a deterministic RNG seed from the call inputs, never
// from wall clock or shared global state, so that restarts are reproducible
// across parallel runs.
func lambertSeed(R1, R2 []float64, tof float64) int64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	put := func(v float64) {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf)
	}
	for _, v := range R1 {
		put(v)
	}
	for _, v := range R2 {
		put(v)
	}
	put(tof)
	return int64(h.Sum64())
}
