package periodic

import "testing"

func TestAtomicNumber(t *testing.T) {
	tests := []struct {
		symbol string
		want   int
	}{
		{"H", 1},
		{"C", 6},
		{"cu", 29},
		{"AU", 79},
		{" Pt ", 78},
		{"Og", 118},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, ok := AtomicNumber(tt.symbol)
			if !ok || got != tt.want {
				t.Errorf("AtomicNumber(%q): got %d, %v, want %d", tt.symbol, got, ok, tt.want)
			}
		})
	}
	if _, ok := AtomicNumber("Xx"); ok {
		t.Error("unknown symbol reported as known")
	}
	if _, ok := AtomicNumber(""); ok {
		t.Error("empty symbol reported as known")
	}
}

func TestSymbolRoundTrip(t *testing.T) {
	if NumElements() != 118 {
		t.Fatalf("NumElements: got %d, want 118", NumElements())
	}
	for z := 1; z <= NumElements(); z++ {
		s, ok := Symbol(z)
		if !ok {
			t.Fatalf("Symbol(%d) missing", z)
		}
		if back, _ := AtomicNumber(s); back != z {
			t.Errorf("Symbol(%d) = %q maps back to %d", z, s, back)
		}
	}
	if _, ok := Symbol(0); ok {
		t.Error("Symbol(0) reported as known")
	}
}

func TestCovalentRadius(t *testing.T) {
	tests := []struct {
		symbol string
		want   float64
	}{
		{"H", 0.31},
		{"C", 0.76},
		{"Cu", 1.32},
		{"Ag", 1.45},
		{"Au", 1.36},
		{"At", 1.50},
		{"Cm", 1.69},
	}
	for _, tt := range tests {
		got, ok := CovalentRadius(tt.symbol)
		if !ok || got != tt.want {
			t.Errorf("CovalentRadius(%q): got %v, %v, want %v", tt.symbol, got, ok, tt.want)
		}
	}
	if _, ok := CovalentRadius("Bk"); ok {
		t.Error("Bk has no tabulated radius")
	}
}
