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

// Read parses one frame from r.
func Read(r io.Reader) (*Structure, error) {
	br := bufio.NewReader(r)

	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("%w: missing atom count: %v", ErrFormat, err)
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms < 0 {
		return nil, fmt.Errorf("%w: bad atom count %q", ErrFormat, strings.TrimSpace(line))
	}

	comment, err := readLine(br)
	if err != nil && !(err == io.EOF && natoms == 0) {
		return nil, fmt.Errorf("%w: missing comment line: %v", ErrFormat, err)
	}

	s := &Structure{
		Symbols: make([]string, natoms),
		Coords:  make([][3]float64, natoms),
		Comment: comment,
	}
	s.Energy, s.HasEnergy = parseEnergy(comment)

	for i := 0; i < natoms; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("%w: atom %d of %d: %v", ErrFormat, i+1, natoms, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: atom %d: want symbol and 3 coordinates, got %q", ErrFormat, i+1, line)
		}
		s.Symbols[i] = fields[0]
		for c := 0; c < 3; c++ {
			v, err := strconv.ParseFloat(fields[c+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: atom %d coordinate %d: %v", ErrFormat, i+1, c, err)
			}
			s.Coords[i][c] = v
		}
	}
	return s, nil
}

// readLine returns the next line without its line terminator. A final line
// without a newline is returned with a nil error.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseEnergy(comment string) (float64, bool) {
	fields := strings.Fields(comment)
	if len(fields) == 0 {
		return 0, false
	}
	e, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, false
	}
	return e, true
}

// ReadFile reads the first frame of the named file. See [Open] for the
// supported compressions.
func ReadFile(name string) (*Structure, error) {
	rc, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	s, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Open opens the named file for reading, decompressing gzip (.gz) and
// zstandard (.zst) content according to the extension.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	var dec io.ReadCloser
	switch lower := strings.ToLower(name); {
	case strings.HasSuffix(lower, ".gz"):
		dec, err = gzip.NewReader(bufio.NewReader(f))
	case strings.HasSuffix(lower, ".zst"):
		var zr *zstd.Decoder
		zr, err = zstd.NewReader(bufio.NewReader(f))
		if err == nil {
			dec = zr.IOReadCloser()
		}
	default:
		return f, nil
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &stackedCloser{ReadCloser: dec, under: f}, nil
}

// stackedCloser closes a decompressor and then the file beneath it.
type stackedCloser struct {
	io.ReadCloser
	under io.Closer
}

func (s *stackedCloser) Close() error {
	err := s.ReadCloser.Close()
	if uerr := s.under.Close(); err == nil {
		err = uerr
	}
	return err
}
