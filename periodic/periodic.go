// Package periodic maps chemical element symbols to atomic numbers and
// covalent radii.
package periodic

import "strings"

var byName map[string]int

func init() {
	byName = make(map[string]int, len(symbols))
	for i, s := range symbols {
		byName[s] = i + 1
	}
}

// Normalize returns symbol with the first letter upper case and the rest
// lower case, so "CU", "cu" and "Cu" all map to "Cu".
func Normalize(symbol string) string {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// AtomicNumber returns the atomic number of symbol. Case is ignored.
func AtomicNumber(symbol string) (int, bool) {
	z, ok := byName[Normalize(symbol)]
	return z, ok
}

// Symbol returns the element symbol for atomic number z.
func Symbol(z int) (string, bool) {
	if z < 1 || z > len(symbols) {
		return "", false
	}
	return symbols[z-1], true
}

// CovalentRadius returns the covalent radius of symbol in Angstrom.
func CovalentRadius(symbol string) (float64, bool) {
	z, ok := AtomicNumber(symbol)
	if !ok || z > len(covalentRadii) {
		return 0, false
	}
	return covalentRadii[z-1], true
}

// NumElements is the number of known element symbols.
func NumElements() int { return len(symbols) }
