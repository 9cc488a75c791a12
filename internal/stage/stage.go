// Package stage runs the file-level pipeline stages: the integrity filter
// and representative selection over a folder of XYZ structures.
package stage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TrevorS/repsel/internal/config"
	"github.com/TrevorS/repsel/internal/metrics"
	"github.com/TrevorS/repsel/xyz"
)

var (
	// ErrNoInputs is returned when the input folder holds no XYZ files.
	ErrNoInputs = errors.New("stage: folder has no xyz files")

	// ErrNothingPassed is returned when every structure fails the filter.
	ErrNothingPassed = errors.New("stage: no structure passed the integrity test")

	// ErrOutputOverlapsInput is returned when recreating the output folder
	// would delete the input folder.
	ErrOutputOverlapsInput = errors.New("stage: output folder contains the input folder")
)

// Deps carries what every stage needs.
type Deps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	RunID   string
}

// Discover returns the XYZ files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && xyz.HasExt(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// prepareOutput recreates outDir empty after checking that doing so leaves
// inDir untouched: outDir may be neither inDir nor one of its ancestors.
func prepareOutput(inDir, outDir string) error {
	in, err := filepath.Abs(inDir)
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	out, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(in); err == nil {
		in = resolved
	}
	if resolved, err := filepath.EvalSymlinks(out); err == nil {
		out = resolved
	}
	rel, err := filepath.Rel(out, in)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s contains %s", ErrOutputOverlapsInput, outDir, inDir)
	}
	return resetDir(outDir)
}

// resetDir removes dir and creates it empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	return nil
}

// copyInto copies src into dir keeping its base name and returns that name.
func copyInto(src, dir string) (string, error) {
	name := filepath.Base(src)
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("stage: copy %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}
	return name, nil
}

// withMetrics returns d with a fresh collector set when none was given.
func (d Deps) withMetrics() Deps {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	return d
}

func (d Deps) writeMetrics() error {
	path := d.Config.Output.MetricsFile
	if path == "" {
		return nil
	}
	if err := d.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("stage: write metrics: %w", err)
	}
	return nil
}
