package descriptor

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/TrevorS/repsel"
	"github.com/TrevorS/repsel/xyz"
)

// Mismatch decides what happens when structures in one batch have different
// atom counts.
type Mismatch string

const (
	// MismatchReject fails the batch.
	MismatchReject Mismatch = "reject"
	// MismatchPad appends zeros to shorter spectra.
	MismatchPad Mismatch = "pad"
)

// Options controls batch encoding.
type Options struct {
	// Truncate truncates Coulomb matrix entries to integers before the
	// eigen-decomposition.
	Truncate bool

	// Mismatch selects how spectra of different length are handled.
	// Empty means MismatchReject.
	Mismatch Mismatch

	// EnergyColumn appends the standardized structure energies as an extra
	// feature when they are not all equal. Missing energies take the largest
	// observed value.
	EnergyColumn bool

	// Workers bounds the number of structures encoded concurrently.
	// <= 0 means one.
	Workers int
}

// DefaultOptions returns truncation on, mismatched batches rejected and no
// energy column.
func DefaultOptions() Options {
	return Options{Truncate: true, Mismatch: MismatchReject}
}

// Encode computes the spectrum of every structure and returns the
// column-standardized feature matrix, one row per structure in input order.
func Encode(ctx context.Context, structures []*xyz.Structure, opts Options) (*repsel.FeatureMatrix, error) {
	if len(structures) == 0 {
		return nil, fmt.Errorf("%w: no structures", ErrEncoding)
	}
	switch opts.Mismatch {
	case "", MismatchReject, MismatchPad:
	default:
		return nil, fmt.Errorf("descriptor: unknown mismatch policy %q", opts.Mismatch)
	}

	spectra := make([][]float64, len(structures))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, s := range structures {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := Spectrum(s, opts.Truncate)
			if err != nil {
				return fmt.Errorf("structure %d: %w", i, err)
			}
			spectra[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dims := 0
	for _, v := range spectra {
		dims = max(dims, len(v))
	}
	for i, v := range spectra {
		if len(v) == dims {
			continue
		}
		if opts.Mismatch != MismatchPad {
			return nil, fmt.Errorf("%w: structure %d has %d atoms, batch has %d", ErrEncoding, i, len(v), dims)
		}
		spectra[i] = append(v, make([]float64, dims-len(v))...)
	}

	m, err := repsel.NewFeatureMatrix(spectra)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	m = m.Standardize()

	if opts.EnergyColumn {
		if col, ok := EnergyColumn(structures); ok {
			if m, err = m.AppendColumn(col); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
			}
		}
	}
	return m, nil
}

// EnergyColumn returns the standardized energies of structures, with
// missing energies replaced by the largest observed one. ok is false when the
// energies carry no information: none are known or all are equal.
func EnergyColumn(structures []*xyz.Structure) (col []float64, ok bool) {
	highest := math.Inf(-1)
	for _, s := range structures {
		if s.HasEnergy {
			highest = math.Max(highest, s.Energy)
		}
	}
	if math.IsInf(highest, -1) {
		return nil, false
	}

	col = make([]float64, len(structures))
	for i, s := range structures {
		col[i] = highest
		if s.HasEnergy {
			col[i] = s.Energy
		}
	}
	mean, variance := stat.PopMeanVariance(col, nil)
	if variance == 0 {
		return nil, false
	}
	sd := math.Sqrt(variance)
	for i := range col {
		col[i] = (col[i] - mean) / sd
	}
	return col, true
}
