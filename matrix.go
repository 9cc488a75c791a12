package repsel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FeatureMatrix holds N descriptor vectors of dimension D in flat row-major
// order. Clustering code only reads from it; operations that change values
// (Standardize, AppendColumn) return a new matrix.
type FeatureMatrix struct {
	data []float64
	n    int
	dims int
}

// NewFeatureMatrix copies rows into a FeatureMatrix. All rows must have the
// same, non-zero length and contain only finite values.
func NewFeatureMatrix(rows [][]float64) (*FeatureMatrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidMatrix)
	}
	dims := len(rows[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: zero-length rows", ErrInvalidMatrix)
	}
	data := make([]float64, 0, len(rows)*dims)
	for i, row := range rows {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrInvalidMatrix, i, len(row), dims)
		}
		data = append(data, row...)
	}
	return newChecked(data, len(rows), dims)
}

// NewFeatureMatrixFlat wraps a copy of flat row-major data with n rows and
// dims columns.
func NewFeatureMatrixFlat(data []float64, n, dims int) (*FeatureMatrix, error) {
	if n <= 0 || dims <= 0 {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrInvalidMatrix, n, dims)
	}
	if len(data) != n*dims {
		return nil, fmt.Errorf("%w: data length %d does not match %dx%d", ErrInvalidMatrix, len(data), n, dims)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return newChecked(cp, n, dims)
}

func newChecked(data []float64, n, dims int) (*FeatureMatrix, error) {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at row %d column %d", ErrInvalidMatrix, i/dims, i%dims)
		}
	}
	return &FeatureMatrix{data: data, n: n, dims: dims}, nil
}

// Rows returns N.
func (m *FeatureMatrix) Rows() int { return m.n }

// Dims returns D.
func (m *FeatureMatrix) Dims() int { return m.dims }

// Row returns a view of row i. Callers must not modify it.
func (m *FeatureMatrix) Row(i int) []float64 {
	return m.data[i*m.dims : (i+1)*m.dims]
}

// At returns the value at row i, column j.
func (m *FeatureMatrix) At(i, j int) float64 { return m.data[i*m.dims+j] }

// Column returns a copy of column j.
func (m *FeatureMatrix) Column(j int) []float64 {
	col := make([]float64, m.n)
	for i := range col {
		col[i] = m.data[i*m.dims+j]
	}
	return col
}

// ToRows returns a copy of the matrix as a slice of rows.
func (m *FeatureMatrix) ToRows() [][]float64 {
	rows := make([][]float64, m.n)
	for i := range rows {
		rows[i] = append([]float64(nil), m.Row(i)...)
	}
	return rows
}

// Standardize returns a copy with every column shifted to zero mean and
// scaled to unit population variance. Constant columns are only centered.
func (m *FeatureMatrix) Standardize() *FeatureMatrix {
	out := make([]float64, len(m.data))
	for j := 0; j < m.dims; j++ {
		mean, variance := stat.PopMeanVariance(m.Column(j), nil)
		scale := math.Sqrt(variance)
		if scale == 0 {
			scale = 1
		}
		for i := 0; i < m.n; i++ {
			out[i*m.dims+j] = (m.data[i*m.dims+j] - mean) / scale
		}
	}
	return &FeatureMatrix{data: out, n: m.n, dims: m.dims}
}

// AppendColumn returns a copy of m with col added as the last column.
func (m *FeatureMatrix) AppendColumn(col []float64) (*FeatureMatrix, error) {
	if len(col) != m.n {
		return nil, fmt.Errorf("%w: column length %d, want %d", ErrInvalidMatrix, len(col), m.n)
	}
	dims := m.dims + 1
	out := make([]float64, 0, m.n*dims)
	for i := 0; i < m.n; i++ {
		out = append(out, m.Row(i)...)
		out = append(out, col[i])
	}
	return newChecked(out, m.n, dims)
}

// varianceMean is the mean of the per-column population variances. k-means
// scales its convergence tolerance by it.
func (m *FeatureMatrix) varianceMean() float64 {
	var sum float64
	for j := 0; j < m.dims; j++ {
		sum += stat.PopVariance(m.Column(j), nil)
	}
	return sum / float64(m.dims)
}
