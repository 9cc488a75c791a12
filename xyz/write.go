package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Write writes s as one XYZ frame. Structures with an energy get an
// "Energy = <e>" comment; otherwise the stored comment is written.
func Write(w io.Writer, s *Structure) error {
	if len(s.Coords) != len(s.Symbols) {
		return fmt.Errorf("%w: %d symbols for %d coordinates", ErrFormat, len(s.Symbols), len(s.Coords))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(s.Symbols))
	if s.HasEnergy {
		fmt.Fprintf(bw, "Energy = %s\n", strconv.FormatFloat(s.Energy, 'g', -1, 64))
	} else {
		fmt.Fprintf(bw, "%s\n", strings.ReplaceAll(s.Comment, "\n", " "))
	}
	for i, sym := range s.Symbols {
		c := s.Coords[i]
		fmt.Fprintf(bw, " %s %.10f %.10f %.10f\n", sym, c[0], c[1], c[2])
	}
	return bw.Flush()
}

// WriteFile writes s to the named file, compressing by extension as in
// [Open]. An existing file is truncated.
func WriteFile(name string, s *Structure) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var enc io.WriteCloser
	switch lower := strings.ToLower(name); {
	case strings.HasSuffix(lower, ".gz"):
		enc = gzip.NewWriter(f)
	case strings.HasSuffix(lower, ".zst"):
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return err
		}
	default:
		return Write(f, s)
	}
	if err := Write(enc, s); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
