package stage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TrevorS/repsel"
	"github.com/TrevorS/repsel/descriptor"
	"github.com/TrevorS/repsel/internal/report"
	"github.com/TrevorS/repsel/xyz"
)

const selectStage = "select"

// Select copies the representative structures of inDir into outDir, which
// is recreated first. A folder with a single structure copies it unchanged.
// The returned report lists the selected file names in pick order.
func Select(ctx context.Context, inDir, outDir string, d Deps) (*report.Report, error) {
	d = d.withMetrics()
	start := time.Now()
	log := d.Logger.With().Str("stage", selectStage).Logger()

	if err := prepareOutput(inDir, outDir); err != nil {
		return nil, err
	}
	log.Info().Str("input", inDir).Msg("loading files")
	files, err := Discover(inDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputs, inDir)
	}
	log.Info().Int("files", len(files)).Msg("files loaded")

	rep := &report.Report{
		RunID:    d.RunID,
		Created:  start.UTC(),
		InputDir: inDir,
		Inputs:   len(files),
		Mode:     report.ModeSingle,
	}

	indices := []int{0}
	var sel *repsel.Selection
	if len(files) > 1 {
		out, seeds, err := represent(ctx, files, d)
		if errors.Is(err, repsel.ErrInsufficientSamples) {
			return nil, fmt.Errorf("stage: %d structures in %s are too few for k_min %d: %w",
				len(files), inDir, d.Config.Selection.KMin, err)
		}
		if err != nil {
			return nil, err
		}
		indices = out.Indices
		if out.Selection != nil {
			sel = out.Selection
			rep.FromSelection(sel, seeds)
			d.Metrics.ObserveSelection(sel)
		} else {
			rep.FromFixed(out.Result)
		}
	}

	for _, i := range indices {
		name, err := copyInto(files[i], outDir)
		if err != nil {
			return nil, err
		}
		rep.Selected = append(rep.Selected, name)
	}
	elapsed := time.Since(start)
	rep.Elapsed = elapsed.Seconds()

	d.Metrics.Selected.Add(float64(len(indices)))
	d.Metrics.CountFiles(selectStage, "selected", len(indices))
	d.Metrics.CountFiles(selectStage, "skipped", len(files)-len(indices))
	d.Metrics.ObserveStage(selectStage, elapsed)
	log.Info().Int("selected", len(indices)).Str("output", outDir).Dur("elapsed", elapsed).Msg("selection done")

	if err := writeArtifacts(rep, sel, d); err != nil {
		return nil, err
	}
	return rep, nil
}

// represent reads and encodes files, then runs the selection pipeline. It
// also returns the seeds the search used.
func represent(ctx context.Context, files []string, d Deps) (*repsel.Outcome, []int64, error) {
	structures := make([]*xyz.Structure, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.Config.Selection.Workers, 1))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := xyz.ReadFile(path)
			if err != nil {
				return err
			}
			structures[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	m, err := descriptor.Encode(ctx, structures, d.Config.DescriptorOptions())
	if err != nil {
		return nil, nil, err
	}

	cfg := d.Config.RepselConfig()
	log := d.Logger.With().Str("stage", selectStage).Logger()
	cfg.Logger = &log
	out, err := repsel.Represent(ctx, m, cfg, d.Config.SelectionBudget(), d.Config.Selection.SampleSeed)
	if err != nil {
		return nil, nil, err
	}
	return out, cfg.Seeds, nil
}

func writeArtifacts(rep *report.Report, sel *repsel.Selection, d Deps) error {
	out := d.Config.Output
	if out.Report != "" {
		if err := rep.Write(out.Report); err != nil {
			return err
		}
		d.Logger.Debug().Str("path", out.Report).Msg("report written")
	}
	if out.Plot != "" && sel != nil {
		if err := report.PlotScores(sel.Stats, sel.BestK, out.Plot); err != nil {
			return err
		}
		d.Logger.Debug().Str("path", out.Plot).Msg("plot written")
	}
	return d.writeMetrics()
}
