package descriptor

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/TrevorS/repsel/xyz"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func hydrogen(d float64) *xyz.Structure {
	return &xyz.Structure{
		Symbols: []string{"H", "H"},
		Coords:  [][3]float64{{0, 0, 0}, {0, 0, d}},
	}
}

func water() *xyz.Structure {
	return &xyz.Structure{
		Symbols: []string{"O", "H", "H"},
		Coords:  [][3]float64{{0, 0, 0.117}, {0, 0.757, -0.467}, {0, -0.757, -0.467}},
	}
}

func TestCoulombMatrix(t *testing.T) {
	cm, err := CoulombMatrix(water())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 0.5 * math.Pow(8, 2.4); !almostEqual(cm.At(0, 0), want, floatTol) {
		t.Errorf("O diagonal: got %v, want %v", cm.At(0, 0), want)
	}
	if !almostEqual(cm.At(1, 1), 0.5, floatTol) {
		t.Errorf("H diagonal: got %v, want 0.5", cm.At(1, 1))
	}
	if want := 1 / 1.514; !almostEqual(cm.At(1, 2), want, 1e-9) || cm.At(2, 1) != cm.At(1, 2) {
		t.Errorf("H-H: got %v/%v, want %v", cm.At(1, 2), cm.At(2, 1), want)
	}
}

func TestCoulombMatrix_Errors(t *testing.T) {
	unknown := &xyz.Structure{Symbols: []string{"Qq"}, Coords: [][3]float64{{0, 0, 0}}}
	if _, err := CoulombMatrix(unknown); !errors.Is(err, ErrEncoding) {
		t.Errorf("unknown element: got %v, want ErrEncoding", err)
	}
	if _, err := CoulombMatrix(hydrogen(0)); !errors.Is(err, ErrEncoding) {
		t.Errorf("coincident atoms: got %v, want ErrEncoding", err)
	}
	if _, err := CoulombMatrix(&xyz.Structure{}); !errors.Is(err, ErrEncoding) {
		t.Errorf("empty structure: got %v, want ErrEncoding", err)
	}
}

func TestSpectrum(t *testing.T) {
	tests := []struct {
		name     string
		truncate bool
		want     []float64
	}{
		// [[0.5 1] [1 0.5]] has eigenvalues 1.5 and -0.5.
		{"exact", false, []float64{1.5, -0.5}},
		// Truncation gives [[0 1] [1 0]].
		{"truncated", true, []float64{1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spectrum(hydrogen(1), tt.truncate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range tt.want {
				if !almostEqual(got[i], tt.want[i], 1e-9) {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestSpectrum_PermutationInvariant(t *testing.T) {
	w := water()
	swapped := &xyz.Structure{
		Symbols: []string{"H", "O", "H"},
		Coords:  [][3]float64{w.Coords[1], w.Coords[0], w.Coords[2]},
	}
	a, err := Spectrum(w, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Spectrum(swapped, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if !almostEqual(a[i], b[i], 1e-8) {
			t.Errorf("eigenvalue %d: %v vs %v", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i] > a[i-1] {
			t.Errorf("not descending: %v", a)
		}
	}
}

func TestEncode_Standardized(t *testing.T) {
	batch := []*xyz.Structure{hydrogen(1), hydrogen(2), hydrogen(4)}
	m, err := Encode(context.Background(), batch, Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Rows() != 3 || m.Dims() != 2 {
		t.Fatalf("shape: got %dx%d, want 3x2", m.Rows(), m.Dims())
	}
	for j := 0; j < m.Dims(); j++ {
		var sum float64
		for _, v := range m.Column(j) {
			sum += v
		}
		if !almostEqual(sum, 0, 1e-9) {
			t.Errorf("column %d mean: got %v, want 0", j, sum/3)
		}
	}
	// Largest eigenvalue 0.5 + 1/d shrinks with distance.
	if !(m.At(0, 0) > m.At(1, 0) && m.At(1, 0) > m.At(2, 0)) {
		t.Errorf("column 0 not ordered by distance: %v", m.Column(0))
	}
}

func TestEncode_Mismatch(t *testing.T) {
	batch := []*xyz.Structure{hydrogen(1), water()}
	if _, err := Encode(context.Background(), batch, DefaultOptions()); !errors.Is(err, ErrEncoding) {
		t.Errorf("reject: got %v, want ErrEncoding", err)
	}
	opts := DefaultOptions()
	opts.Mismatch = MismatchPad
	m, err := Encode(context.Background(), batch, opts)
	if err != nil {
		t.Fatalf("pad: unexpected error: %v", err)
	}
	if m.Dims() != 3 {
		t.Errorf("pad: got %d columns, want 3", m.Dims())
	}
	opts.Mismatch = "guess"
	if _, err := Encode(context.Background(), batch, opts); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestEncode_Empty(t *testing.T) {
	if _, err := Encode(context.Background(), nil, DefaultOptions()); !errors.Is(err, ErrEncoding) {
		t.Errorf("got %v, want ErrEncoding", err)
	}
}

func TestEnergyColumn(t *testing.T) {
	a, b, c := hydrogen(1), hydrogen(2), hydrogen(3)
	a.Energy, a.HasEnergy = 1, true
	b.Energy, b.HasEnergy = 2, true

	col, ok := EnergyColumn([]*xyz.Structure{a, b, c})
	if !ok {
		t.Fatal("expected an energy column")
	}
	// Missing energy takes the largest one, so rows 1 and 2 match.
	if col[1] != col[2] || col[0] >= col[1] {
		t.Errorf("got %v", col)
	}

	b.Energy = 1
	if _, ok := EnergyColumn([]*xyz.Structure{a, b}); ok {
		t.Error("equal energies should not produce a column")
	}
	if _, ok := EnergyColumn([]*xyz.Structure{c}); ok {
		t.Error("unknown energies should not produce a column")
	}
}

func TestEncode_EnergyColumn(t *testing.T) {
	a, b, c := hydrogen(1), hydrogen(2), hydrogen(4)
	a.Energy, a.HasEnergy = -3, true
	b.Energy, b.HasEnergy = -1, true
	opts := DefaultOptions()
	opts.EnergyColumn = true
	m, err := Encode(context.Background(), []*xyz.Structure{a, b, c}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Dims() != 3 {
		t.Errorf("got %d columns, want 2 eigenvalues plus energy", m.Dims())
	}
}
