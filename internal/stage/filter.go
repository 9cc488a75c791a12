package stage

import (
	"context"
	"fmt"
	"time"

	"github.com/TrevorS/repsel/integrity"
)

const filterStage = "filter"

// FilterSummary counts the verdicts of a filter run.
type FilterSummary struct {
	Inputs   int
	Rejected int
	Failed   int // unreadable or unsupported files
	Passed   []string
}

// Filter copies the structures of inDir that pass the integrity check into
// outDir, which is recreated first. It fails with ErrNothingPassed when no
// structure survives.
func Filter(ctx context.Context, inDir, outDir string, d Deps) (*FilterSummary, error) {
	d = d.withMetrics()
	start := time.Now()
	log := d.Logger.With().Str("stage", filterStage).Logger()

	if err := prepareOutput(inDir, outDir); err != nil {
		return nil, err
	}
	files, err := Discover(inDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputs, inDir)
	}

	opts := d.Config.IntegrityOptions()
	log.Info().Int("files", len(files)).Str("mode", string(opts.Mode)).Float64("threshold", opts.Threshold).Msg("testing integrity")
	verdicts, err := integrity.Filter(ctx, files, opts)
	if err != nil {
		return nil, err
	}

	sum := &FilterSummary{Inputs: len(files)}
	for _, v := range verdicts {
		switch {
		case v.Err != nil:
			sum.Failed++
			log.Warn().Err(v.Err).Str("file", v.Path).Msg("skipping file")
		case !v.Pass:
			sum.Rejected++
			log.Debug().Str("file", v.Path).Msg("rejected")
		default:
			name, err := copyInto(v.Path, outDir)
			if err != nil {
				return nil, err
			}
			sum.Passed = append(sum.Passed, name)
		}
	}
	elapsed := time.Since(start)

	d.Metrics.CountFiles(filterStage, "pass", len(sum.Passed))
	d.Metrics.CountFiles(filterStage, "reject", sum.Rejected)
	d.Metrics.CountFiles(filterStage, "error", sum.Failed)
	d.Metrics.ObserveStage(filterStage, elapsed)
	log.Info().Int("passed", len(sum.Passed)).Int("rejected", sum.Rejected).Int("failed", sum.Failed).
		Dur("elapsed", elapsed).Msg("integrity test done")

	if err := d.writeMetrics(); err != nil {
		return nil, err
	}
	if len(sum.Passed) == 0 {
		return sum, fmt.Errorf("%w: %s", ErrNothingPassed, inDir)
	}
	return sum, nil
}
