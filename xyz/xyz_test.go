package xyz

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

const water = `3
water -76.4
O 0.000 0.000 0.117
H 0.000 0.757 -0.467
H 0.000 -0.757 -0.467
`

func TestRead(t *testing.T) {
	s, err := Read(strings.NewReader(water))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.NumAtoms() != 3 {
		t.Fatalf("NumAtoms: got %d, want 3", s.NumAtoms())
	}
	if s.Symbols[0] != "O" || s.Symbols[2] != "H" {
		t.Errorf("Symbols: got %v", s.Symbols)
	}
	if s.Coords[1][1] != 0.757 {
		t.Errorf("Coords[1]: got %v", s.Coords[1])
	}
	if !s.HasEnergy || s.Energy != -76.4 {
		t.Errorf("energy: got %v, %v, want -76.4", s.Energy, s.HasEnergy)
	}
	if d := s.Distance(1, 2); math.Abs(d-1.514) > 1e-12 {
		t.Errorf("Distance(1,2): got %v, want 1.514", d)
	}
}

func TestRead_EnergyVariants(t *testing.T) {
	tests := []struct {
		comment string
		energy  float64
		ok      bool
	}{
		{"Energy = 0.0", 0, true},
		{"E 12", 12, true},
		{"generated structure", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			src := "1\n" + tt.comment + "\nAu 0 0 0\n"
			s, err := Read(strings.NewReader(src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.HasEnergy != tt.ok || s.Energy != tt.energy {
				t.Errorf("got %v, %v, want %v, %v", s.Energy, s.HasEnergy, tt.energy, tt.ok)
			}
		})
	}
}

func TestRead_NoTrailingNewline(t *testing.T) {
	s, err := Read(strings.NewReader("1\n\nC 1 2 3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Coords[0] != [3]float64{1, 2, 3} {
		t.Errorf("Coords: got %v", s.Coords[0])
	}
}

func TestRead_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"bad count":    "three\n\n",
		"short":        "2\n\nC 0 0 0\n",
		"missing axis": "1\n\nC 0 0\n",
		"bad float":    "1\n\nC 0 x 0\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(src)); !errors.Is(err, ErrFormat) {
				t.Errorf("got %v, want ErrFormat", err)
			}
		})
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	in, err := Read(strings.NewReader(water))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "3\nEnergy = -76.4\n") {
		t.Errorf("header: got %q", buf.String()[:20])
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Energy != in.Energy || out.Coords[2] != in.Coords[2] {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}

func TestFiles_Compressed(t *testing.T) {
	in, err := Read(strings.NewReader(water))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"w.xyz", "w.xyz.gz", "w.xyz.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, in); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			out, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if out.NumAtoms() != 3 || out.Symbols[0] != "O" || out.Energy != -76.4 {
				t.Errorf("got %+v", out)
			}
		})
	}
}

func TestHasExt(t *testing.T) {
	for name, want := range map[string]bool{
		"a.xyz":     true,
		"dir/B.XYZ": true,
		"a.xyz.gz":  true,
		"a.xyz.zst": true,
		"a.pdb":     false,
		"xyz":       false,
		"a.xyz.bak": false,
	} {
		if got := HasExt(name); got != want {
			t.Errorf("HasExt(%q): got %v, want %v", name, got, want)
		}
	}
}
