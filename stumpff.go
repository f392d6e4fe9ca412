package astro

import "math"

// stumpffC and stumpffS are the Stumpff functions C(z) and S(z) of the
// universal variable formulation. Near z=0 (near-parabolic) both switch to
// their series expansions to avoid the 0/0 in the closed forms.

func stumpffC(z float64) float64 {
	if math.Abs(z) < 1e-6 {
		return 1.0/2.0 - z/24 + z*z/720
	}
	if z > 0 {
		sz := math.Sqrt(z)
		return (1 - math.Cos(sz)) / z
	}
	sz := math.Sqrt(-z)
	return (1 - math.Cosh(sz)) / z
}

func stumpffS(z float64) float64 {
	if math.Abs(z) < 1e-6 {
		return 1.0/6.0 - z/120 + z*z/5040
	}
	if z > 0 {
		sz := math.Sqrt(z)
		return (sz - math.Sin(sz)) / (sz * sz * sz)
	}
	sz := math.Sqrt(-z)
	return (math.Sinh(sz) - sz) / (sz * sz * sz)
}

// stumpffCPrime and stumpffSPrime are dC/dz and dS/dz, used by the Newton
// step of the Lambert solver.

func stumpffCPrime(z float64) float64 {
	if math.Abs(z) < 1e-6 {
		return -1.0/24.0 + z/360
	}
	return (1 - z*stumpffS(z) - 2*stumpffC(z)) / (2 * z)
}

func stumpffSPrime(z float64) float64 {
	if math.Abs(z) < 1e-6 {
		return -1.0/120.0 + z/2520
	}
	return (stumpffC(z) - 3*stumpffS(z)) / (2 * z)
}
