// Package descriptor turns molecular structures into fixed-length feature
// vectors: the eigenvalue spectrum of each structure's Coulomb matrix.
package descriptor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/TrevorS/repsel/periodic"
	"github.com/TrevorS/repsel/xyz"
)

// ErrEncoding is returned when a structure cannot be encoded.
var ErrEncoding = errors.New("descriptor: encoding failed")

// CoulombMatrix returns the symmetric n×n Coulomb matrix of s:
// 0.5·Zi^2.4 on the diagonal and Zi·Zj/|ri - rj| elsewhere.
func CoulombMatrix(s *xyz.Structure) (*mat.SymDense, error) {
	n := s.NumAtoms()
	if n == 0 {
		return nil, fmt.Errorf("%w: structure has no atoms", ErrEncoding)
	}
	z := make([]float64, n)
	for i, sym := range s.Symbols {
		zi, ok := periodic.AtomicNumber(sym)
		if !ok {
			return nil, fmt.Errorf("%w: unknown element %q at atom %d", ErrEncoding, sym, i+1)
		}
		z[i] = float64(zi)
	}

	cm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		cm.SetSym(i, i, 0.5*math.Pow(z[i], 2.4))
		for j := i + 1; j < n; j++ {
			d := s.Distance(i, j)
			if d == 0 {
				return nil, fmt.Errorf("%w: atoms %d and %d coincide", ErrEncoding, i+1, j+1)
			}
			cm.SetSym(i, j, z[i]*z[j]/d)
		}
	}
	return cm, nil
}

// Spectrum returns the eigenvalues of the Coulomb matrix of s in descending
// order. With truncate set the matrix entries are first truncated toward zero,
// which reproduces descriptors produced by older pipelines.
//
// Eigenvalues are computed with the general solver; when any imaginary part
// survives the symmetric solver is used instead.
func Spectrum(s *xyz.Structure, truncate bool) ([]float64, error) {
	cm, err := CoulombMatrix(s)
	if err != nil {
		return nil, err
	}
	n := cm.SymmetricDim()
	if truncate {
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				cm.SetSym(i, j, math.Trunc(cm.At(i, j)))
			}
		}
	}

	vals, err := eigenvalues(cm)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	return vals, nil
}

func eigenvalues(cm *mat.SymDense) ([]float64, error) {
	n := cm.SymmetricDim()

	var eig mat.Eigen
	if eig.Factorize(cm, mat.EigenNone) {
		cv := eig.Values(nil)
		vals := make([]float64, n)
		allReal := true
		for i, v := range cv {
			if imag(v) != 0 {
				allReal = false
				break
			}
			vals[i] = real(v)
		}
		if allReal && finite(vals) {
			return vals, nil
		}
	}

	var sym mat.EigenSym
	if !sym.Factorize(cm, false) {
		return nil, fmt.Errorf("%w: eigen-decomposition did not converge", ErrEncoding)
	}
	vals := sym.Values(nil)
	if !finite(vals) {
		return nil, fmt.Errorf("%w: non-finite eigenvalue", ErrEncoding)
	}
	return vals, nil
}

func finite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
