package repsel

import "context"

// Outcome is the result of [Represent].
type Outcome struct {
	// Indices are the selected row indices, grouped as returned by
	// PickRepresentatives.
	Indices []int

	// Result is the partition the indices were picked from. nil when the
	// input had a single row.
	Result *ClusterResult

	// Selection is the search summary. nil in fixed-K mode and for a single row.
	Selection *Selection
}

// Represent runs the full pipeline on a feature matrix: it chooses a
// partition (searching the K range of cfg, or using cfg.FixedK), then picks
// representatives from it with budget and sampleSeed.
//
// A single-row matrix bypasses clustering and selects row 0.
func Represent(ctx context.Context, m *FeatureMatrix, cfg Config, budget Budget, sampleSeed int64) (*Outcome, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := budget.validate(); err != nil {
		return nil, err
	}

	n := m.Rows()
	if n == 1 {
		cfg.Logger.Debug().Msg("single row, skipping clustering")
		return &Outcome{Indices: []int{0}}, nil
	}

	out := &Outcome{}
	if cfg.FixedK > 0 {
		k := min(cfg.FixedK, n)
		res, err := KMeans(m, k, 0, cfg.kmeansOptions())
		if err != nil {
			return nil, err
		}
		cfg.Logger.Info().Int("k", k).Float64("inertia", res.Inertia).Msg("fixed group count")
		out.Result = res
	} else {
		sel, err := SelectBestPartition(ctx, m, cfg)
		if err != nil {
			return nil, err
		}
		out.Selection = sel
		out.Result = sel.Best
	}

	idx, err := PickRepresentatives(m, out.Result, budget, sampleSeed)
	if err != nil {
		return nil, err
	}
	out.Indices = idx
	cfg.Logger.Info().Int("groups", out.Result.K).Int("selected", len(idx)).Msg("picked representatives")
	return out, nil
}
