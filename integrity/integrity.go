// Package integrity rejects physically implausible structures.
//
// Two checks are available. Connectivity mode bonds atoms i and j when
// d(i,j) < threshold·(ri + rj), with ri the covalent radius, and accepts a
// structure whose bond graph is a single connected component. Clash mode,
// meant for complexes, rejects a structure when any pair closer than twice
// the largest radius satisfies d(i,j)·threshold < ri + rj.
package integrity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/TrevorS/repsel/periodic"
	"github.com/TrevorS/repsel/xyz"
)

// Mode selects the integrity check.
type Mode string

const (
	Connectivity Mode = "connectivity"
	Clash        Mode = "clash"
)

// ErrUnknownElement is returned for atoms without a tabulated covalent radius.
var ErrUnknownElement = errors.New("integrity: no covalent radius for element")

// Options configures a check.
type Options struct {
	Mode      Mode
	Threshold float64

	// Workers bounds the number of files checked concurrently by Filter.
	// <= 0 means one.
	Workers int
}

// DefaultOptions returns connectivity mode with a threshold of 1.
func DefaultOptions() Options {
	return Options{Mode: Connectivity, Threshold: 1}
}

func (o Options) validate() error {
	switch o.Mode {
	case Connectivity, Clash:
	default:
		return fmt.Errorf("integrity: unknown mode %q", o.Mode)
	}
	if o.Threshold <= 0 {
		return fmt.Errorf("integrity: threshold must be > 0, got %g", o.Threshold)
	}
	return nil
}

// Check reports whether s passes the configured check.
func Check(s *xyz.Structure, opts Options) (bool, error) {
	if err := opts.validate(); err != nil {
		return false, err
	}
	if opts.Mode == Clash {
		clash, err := Clashes(s, opts.Threshold)
		return !clash && err == nil, err
	}
	return Connected(s, opts.Threshold)
}

// Connected reports whether the bond graph of s is one connected component.
// A structure without atoms is not connected.
func Connected(s *xyz.Structure, threshold float64) (bool, error) {
	radii, rmax, err := covalentRadii(s)
	if err != nil {
		return false, err
	}
	n := s.NumAtoms()
	if n == 0 {
		return false, nil
	}

	tree := newKDTree(s.Coords, 8)
	uf := newUnionFind(n)
	for i := 0; i < n && uf.components > 1; i++ {
		tree.within(s.Coords[i], threshold*(radii[i]+rmax), func(j int, d float64) {
			if j > i && d < threshold*(radii[i]+radii[j]) {
				uf.union(i, j)
			}
		})
	}
	return uf.components == 1, nil
}

// Clashes reports whether any two atoms of s overlap: within a cutoff of
// twice the largest covalent radius, d·threshold < ri + rj.
func Clashes(s *xyz.Structure, threshold float64) (bool, error) {
	radii, rmax, err := covalentRadii(s)
	if err != nil {
		return false, err
	}
	tree := newKDTree(s.Coords, 8)
	for i := range s.Coords {
		clash := false
		tree.within(s.Coords[i], 2*rmax, func(j int, d float64) {
			if j != i && d*threshold < radii[i]+radii[j] {
				clash = true
			}
		})
		if clash {
			return true, nil
		}
	}
	return false, nil
}

func covalentRadii(s *xyz.Structure) ([]float64, float64, error) {
	radii := make([]float64, s.NumAtoms())
	var rmax float64
	for i, sym := range s.Symbols {
		r, ok := periodic.CovalentRadius(sym)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q at atom %d", ErrUnknownElement, sym, i+1)
		}
		radii[i] = r
		rmax = max(rmax, r)
	}
	return radii, rmax, nil
}

// Verdict is the outcome of checking one file.
type Verdict struct {
	Path string
	Pass bool

	// Err is set when the file could not be read or checked; such files
	// never pass.
	Err error
}

// Filter checks every file in paths and returns one verdict per path in
// input order. Unreadable files are reported in their verdict rather than
// failing the batch; only invalid options and cancellation return an error.
func Filter(ctx context.Context, paths []string, opts Options) ([]Verdict, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	verdicts := make([]Verdict, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := Verdict{Path: path}
			s, err := xyz.ReadFile(path)
			if err == nil {
				v.Pass, err = Check(s, opts)
			}
			v.Err = err
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}
