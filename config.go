package repsel

import (
	"fmt"
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"
)

// Config controls model selection and the k-means trials it runs.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// KMin, KMax and KStep describe the candidate group counts
	// KMin, KMin+KStep, ... up to min(KMax, N/2). Defaults: 2, 20, 1.
	KMin  int
	KMax  int
	KStep int

	// FixedK skips the search and partitions into exactly min(FixedK, N)
	// groups with seed 0. 0 means search. Only used by Represent.
	FixedK int

	// Seeds holds one seed per trial for every candidate K. The same seeds are
	// reused for each K. Default: DeriveSeeds(0, 10).
	Seeds []int64

	// Restarts is the number of k-means++ initializations per trial; the
	// lowest-inertia run is kept. Must be >= 1. Default: 10.
	Restarts int

	// MaxIterations caps Lloyd iterations per restart. Default: 300.
	MaxIterations int

	// Tolerance is the relative centroid-shift threshold for convergence,
	// scaled by the mean feature variance. Default: 1e-4.
	Tolerance float64

	// Metric is used for silhouette distances. Default: EuclideanMetric.
	Metric DistanceMetric

	// TieTolerance is the slack under which two mean scores count as equal
	// when choosing the best K. Default: 1e-9.
	TieTolerance float64

	// Workers bounds the number of concurrent trials. 0 means runtime.NumCPU().
	Workers int

	// PrecomputeLimit is the largest N for which the full pairwise distance
	// matrix is cached for the whole search. Default: 4096.
	PrecomputeLimit int

	// Logger receives trial diagnostics. nil discards them.
	Logger *zerolog.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		KMin:            2,
		KMax:            20,
		KStep:           1,
		Seeds:           DeriveSeeds(0, 10),
		Restarts:        10,
		MaxIterations:   300,
		Tolerance:       1e-4,
		Metric:          EuclideanMetric{},
		TieTolerance:    1e-9,
		PrecomputeLimit: 4096,
	}
}

// DeriveSeeds draws n trial seeds in [0, 999999) from a stream seeded with
// master. The same master always yields the same seeds.
func DeriveSeeds(master int64, n int) []int64 {
	rng := rand.New(rand.NewSource(master))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63n(999999)
	}
	return seeds
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.KStep == 0 {
		cfg.KStep = 1
	}
	if cfg.Seeds == nil {
		cfg.Seeds = DeriveSeeds(0, 10)
	}
	if cfg.Restarts == 0 {
		cfg.Restarts = 10
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 300
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.PrecomputeLimit == 0 {
		cfg.PrecomputeLimit = 4096
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.FixedK < 0 {
		return fmt.Errorf("repsel: FixedK must be >= 0, got %d", cfg.FixedK)
	}
	if cfg.FixedK == 0 {
		if cfg.KMin < 1 {
			return fmt.Errorf("repsel: KMin must be >= 1, got %d", cfg.KMin)
		}
		if cfg.KMax < cfg.KMin {
			return fmt.Errorf("repsel: KMax (%d) must be >= KMin (%d)", cfg.KMax, cfg.KMin)
		}
		if cfg.KStep < 1 {
			return fmt.Errorf("repsel: KStep must be >= 1, got %d", cfg.KStep)
		}
		if len(cfg.Seeds) == 0 {
			return fmt.Errorf("repsel: at least one seed is required")
		}
	}
	if cfg.Restarts < 1 {
		return fmt.Errorf("repsel: Restarts must be >= 1, got %d", cfg.Restarts)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("repsel: MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("repsel: Tolerance must be >= 0, got %g", cfg.Tolerance)
	}
	if cfg.TieTolerance < 0 {
		return fmt.Errorf("repsel: TieTolerance must be >= 0, got %g", cfg.TieTolerance)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("repsel: Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.PrecomputeLimit < 0 {
		return fmt.Errorf("repsel: PrecomputeLimit must be >= 0, got %d", cfg.PrecomputeLimit)
	}
	return nil
}

func (cfg *Config) kmeansOptions() KMeansOptions {
	return KMeansOptions{
		Restarts:      cfg.Restarts,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
	}
}
