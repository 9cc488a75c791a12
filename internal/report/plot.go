package report

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/TrevorS/repsel"
)

// errPoints is a line with symmetric vertical error bars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// PlotScores draws the mean robustness score of every scored K with one
// standard deviation error bars and saves the figure to path. The image
// format follows the extension (.png, .svg, .pdf).
func PlotScores(stats []repsel.KStatistics, bestK int, path string) error {
	var pts errPoints
	for _, s := range stats {
		if !s.Defined() || !isFinite(s.Mean) {
			continue
		}
		sd := math.Sqrt(s.Variance)
		pts.XYs = append(pts.XYs, plotter.XY{X: float64(s.K), Y: s.Mean})
		pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{sd, sd})
	}
	if len(pts.XYs) == 0 {
		return errors.New("report: no scored group counts to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Robustness score per K (best K = %d)", bestK)
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "K"
	p.Y.Label.Text = "mean robustness score"
	p.Y.Min, p.Y.Max = 0, 1.05
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts.XYs)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	scatter, err := plotter.NewScatter(pts.XYs)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	p.Add(line, scatter, bars)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save plot: %w", err)
	}
	return nil
}
