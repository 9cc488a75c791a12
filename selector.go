package repsel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// KStatistics summarizes the trials of one candidate group count.
type KStatistics struct {
	K int

	// Mean and Variance are the population mean and variance of the
	// robustness scores of the non-degenerate trials. Both are NaN when every
	// trial for this K was degenerate.
	Mean     float64
	Variance float64

	// Trials is the number of scored trials; Degenerate the number dropped.
	Trials     int
	Degenerate int
}

// Defined reports whether at least one trial for this K survived.
func (s KStatistics) Defined() bool { return s.Trials > 0 }

// Selection is the outcome of a model-selection search.
type Selection struct {
	// BestK is the group count with the highest mean robustness score.
	// Among counts whose means tie within Config.TieTolerance, the largest wins.
	BestK int

	// BestMeanScore is the mean robustness score of BestK.
	BestMeanScore float64

	// Stats lists every candidate K in ascending order.
	Stats []KStatistics

	// Best is the trial for BestK with the highest robustness score, ties
	// broken by lower inertia and then by lower seed.
	Best *ClusterResult

	// Trials and Degenerate count all trials run and dropped.
	Trials     int
	Degenerate int

	// Elapsed is the wall time of the search.
	Elapsed time.Duration
}

// CandidateKs returns the group counts the selector will try for n rows:
// kMin, kMin+step, ... up to min(kMax, n/2). The result is empty when that
// bound is below kMin.
func CandidateKs(n, kMin, kMax, step int) []int {
	upper := min(kMax, n/2)
	var ks []int
	for k := kMin; k <= upper; k += max(step, 1) {
		ks = append(ks, k)
	}
	return ks
}

// SelectBestPartition searches the configured range of group counts. For
// every candidate K it runs one Partition trial per seed, drops degenerate
// trials, and aggregates the scores. The result does not depend on the number
// of workers or on the order of cfg.Seeds.
//
// It returns ErrInsufficientSamples when no candidate K fits N, and
// ErrDegenerateClustering when every trial of every K was degenerate.
func SelectBestPartition(ctx context.Context, m *FeatureMatrix, cfg Config) (*Selection, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if cfg.FixedK != 0 {
		return nil, fmt.Errorf("repsel: SelectBestPartition called with FixedK=%d", cfg.FixedK)
	}
	log := cfg.Logger

	n := m.Rows()
	ks := CandidateKs(n, cfg.KMin, cfg.KMax, cfg.KStep)
	if len(ks) == 0 {
		return nil, fmt.Errorf("%w: N=%d allows K <= %d, below KMin=%d", ErrInsufficientSamples, n, min(cfg.KMax, n/2), cfg.KMin)
	}

	start := time.Now()
	dist := newPairDistancer(m, cfg.Metric, cfg.PrecomputeLimit, cfg.Workers)
	opts := cfg.kmeansOptions()
	seeds := cfg.Seeds

	// Slots are fixed before any trial runs, so aggregation never depends on
	// completion order.
	results := make([]*ClusterResult, len(ks)*len(seeds))
	degenerate := make([]error, len(results))

	err := forEachTrial(ctx, len(results), cfg.Workers, func(ctx context.Context, i int) error {
		k, seed := ks[i/len(seeds)], seeds[i%len(seeds)]
		res, err := partition(ctx, m, dist, k, seed, opts)
		switch {
		case errors.Is(err, ErrDegenerateClustering):
			degenerate[i] = err
			return nil
		case err != nil:
			return err
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	sel := &Selection{Stats: make([]KStatistics, len(ks)), Trials: len(results)}
	for ki, k := range ks {
		trials := results[ki*len(seeds) : (ki+1)*len(seeds)]
		st := KStatistics{K: k, Mean: math.NaN(), Variance: math.NaN()}
		scores := make([]float64, 0, len(trials))
		for si, res := range trials {
			if res == nil {
				st.Degenerate++
				log.Debug().Int("k", k).Int64("seed", seeds[si]).Err(degenerate[ki*len(seeds)+si]).Msg("dropping degenerate trial")
				continue
			}
			scores = append(scores, res.RobustnessScore)
		}
		st.Trials = len(scores)
		if st.Trials > 0 {
			// Sorting makes the sums independent of seed order.
			sort.Float64s(scores)
			st.Mean, st.Variance = stat.PopMeanVariance(scores, nil)
		}
		sel.Degenerate += st.Degenerate
		sel.Stats[ki] = st
	}

	bestIdx := bestKIndex(sel.Stats, cfg.TieTolerance)
	if bestIdx < 0 {
		return nil, fmt.Errorf("%w: all %d trials over K in [%d, %d] were degenerate", ErrDegenerateClustering, len(results), ks[0], ks[len(ks)-1])
	}
	sel.BestK = sel.Stats[bestIdx].K
	sel.BestMeanScore = sel.Stats[bestIdx].Mean
	sel.Best = bestTrial(results[bestIdx*len(seeds) : (bestIdx+1)*len(seeds)])
	sel.Elapsed = time.Since(start)

	log.Info().
		Int("best_k", sel.BestK).
		Float64("mean_score", sel.BestMeanScore).
		Int64("seed", sel.Best.Seed).
		Int("trials", sel.Trials).
		Int("degenerate", sel.Degenerate).
		Dur("elapsed", sel.Elapsed).
		Msg("selected group count")
	return sel, nil
}

// bestKIndex returns the index of the largest K whose mean is within tol of
// the maximum mean, or -1 when no K has a defined mean.
func bestKIndex(stats []KStatistics, tol float64) int {
	maxMean := math.Inf(-1)
	for _, s := range stats {
		if s.Defined() && s.Mean > maxMean {
			maxMean = s.Mean
		}
	}
	best := -1
	for i, s := range stats {
		if !s.Defined() || s.Mean < maxMean-tol {
			continue
		}
		if best < 0 || s.K > stats[best].K {
			best = i
		}
	}
	return best
}

// bestTrial picks the highest-scoring result, then the lowest inertia, then
// the lowest seed. nil entries are skipped.
func bestTrial(trials []*ClusterResult) *ClusterResult {
	var best *ClusterResult
	for _, r := range trials {
		if r == nil {
			continue
		}
		switch {
		case best == nil,
			r.RobustnessScore > best.RobustnessScore,
			r.RobustnessScore == best.RobustnessScore && r.Inertia < best.Inertia,
			r.RobustnessScore == best.RobustnessScore && r.Inertia == best.Inertia && r.Seed < best.Seed:
			best = r
		}
	}
	return best
}
