package astro

import (
	"os"
	"runtime"
	"sync"

	"github.com/spf13/viper"
)

// Config carries the numeric tuning of the engine: convergence tolerances,
// iteration budgets and search resolutions. The zero configuration is not
// usable; start from DefaultConfig or LoadConfig.
type Config struct {
	KeplerTolerance      float64
	KeplerMaxIterations  int
	LambertTolerance     float64
	LambertMaxIterations int
	// InterceptWorkers is the number of goroutines an intercept grid search
	// fans out to; 0 means one per CPU.
	InterceptWorkers int
	// EscapeSamples is how many points of a surface-departure trajectory
	// are checked against the body radius.
	EscapeSamples int
}

// DefaultConfig returns the tuning the test suite and the solvers are
// calibrated against.
func DefaultConfig() Config {
	return Config{
		KeplerTolerance:      1e-12,
		KeplerMaxIterations:  100,
		LambertTolerance:     1e-4,
		LambertMaxIterations: 10000,
		InterceptWorkers:     0,
		EscapeSamples:        32,
	}
}

// Workers resolves the effective worker count.
func (c Config) Workers() int {
	if c.InterceptWorkers > 0 {
		return c.InterceptWorkers
	}
	return runtime.NumCPU()
}

var (
	cfgOnce   sync.Once
	cfgLoaded Config
)

// LoadConfig loads conf.toml from the directory named by $ASTRO_CONFIG,
// overriding the defaults. A missing variable or file is not an error: the
// engine must stay usable as a plain library, so defaults win.
func LoadConfig() Config {
	cfgOnce.Do(func() {
		cfgLoaded = DefaultConfig()
		confPath := os.Getenv("ASTRO_CONFIG")
		if confPath == "" {
			return
		}
		v := viper.New()
		v.SetConfigName("conf")
		v.AddConfigPath(confPath)
		if err := v.ReadInConfig(); err != nil {
			return
		}
		if v.IsSet("solvers.kepler_tolerance") {
			cfgLoaded.KeplerTolerance = v.GetFloat64("solvers.kepler_tolerance")
		}
		if v.IsSet("solvers.kepler_max_iterations") {
			cfgLoaded.KeplerMaxIterations = v.GetInt("solvers.kepler_max_iterations")
		}
		if v.IsSet("solvers.lambert_tolerance") {
			cfgLoaded.LambertTolerance = v.GetFloat64("solvers.lambert_tolerance")
		}
		if v.IsSet("solvers.lambert_max_iterations") {
			cfgLoaded.LambertMaxIterations = v.GetInt("solvers.lambert_max_iterations")
		}
		if v.IsSet("search.intercept_workers") {
			cfgLoaded.InterceptWorkers = v.GetInt("search.intercept_workers")
		}
		if v.IsSet("search.escape_samples") {
			cfgLoaded.EscapeSamples = v.GetInt("search.escape_samples")
		}
	})
	return cfgLoaded
}
