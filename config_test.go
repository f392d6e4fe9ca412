package astro

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.KeplerTolerance <= 0 || cfg.LambertTolerance <= 0 {
		t.Fatal("default tolerances must be positive")
	}
	if cfg.KeplerMaxIterations <= 0 || cfg.LambertMaxIterations <= 0 {
		t.Fatal("default iteration budgets must be positive")
	}
	if cfg.EscapeSamples <= 0 {
		t.Fatal("default escape sampling must be positive")
	}
	if cfg.Workers() < 1 {
		t.Fatalf("effective workers %d", cfg.Workers())
	}
	cfg.InterceptWorkers = 5
	if cfg.Workers() != 5 {
		t.Fatalf("explicit worker count not honored: %d", cfg.Workers())
	}
}

func TestLoadConfigWithoutEnv(t *testing.T) {
	// Without $ASTRO_CONFIG the loaded configuration is exactly the default.
	cfg := LoadConfig()
	if cfg.KeplerTolerance != DefaultConfig().KeplerTolerance {
		t.Fatalf("loaded tolerance %e differs from the default", cfg.KeplerTolerance)
	}
}

func TestSolverDefaults(t *testing.T) {
	ks := NewUniversalKeplerSolver()
	if ks.Tolerance != DefaultConfig().KeplerTolerance || ks.MaxIterations != DefaultConfig().KeplerMaxIterations {
		t.Fatal("Kepler solver must start from the default tuning")
	}
	gs := NewUniversalGaussSolver()
	if gs.Tolerance != DefaultConfig().LambertTolerance || gs.MaxIterations != DefaultConfig().LambertMaxIterations {
		t.Fatal("Gauss solver must start from the default tuning")
	}
}
