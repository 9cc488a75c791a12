// Package xyz reads and writes molecular structures in the XYZ format:
// an atom count line, a comment line, then one "symbol x y z" row per atom.
//
// The last token of the comment line is read as the structure's energy when
// it parses as a number. Files ending in .gz or .zst are decompressed
// transparently.
package xyz

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
)

// ErrFormat is returned for malformed XYZ input.
var ErrFormat = errors.New("xyz: malformed input")

// Structure is one XYZ frame.
type Structure struct {
	// Symbols holds the element symbol of every atom, as written in the file.
	Symbols []string

	// Coords holds Cartesian coordinates in Angstrom, one entry per atom.
	Coords [][3]float64

	// Comment is the raw comment line without its trailing newline.
	Comment string

	// Energy is the value parsed from the comment line. Only meaningful
	// when HasEnergy is true.
	Energy    float64
	HasEnergy bool
}

// NumAtoms returns the number of atoms.
func (s *Structure) NumAtoms() int { return len(s.Symbols) }

// Distance returns the Euclidean distance between atoms i and j.
func (s *Structure) Distance(i, j int) float64 {
	a, b := s.Coords[i], s.Coords[j]
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HasExt reports whether name is an XYZ file, optionally compressed.
func HasExt(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	for _, ext := range []string{".xyz", ".xyz.gz", ".xyz.zst"} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}
