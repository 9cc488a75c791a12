// Package report writes the run summary as YAML and plots per-K scores.
package report

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/repsel"
)

// Mode names how the partition was obtained.
const (
	ModeSearch = "search"
	ModeFixed  = "fixed"
	ModeSingle = "single"
)

// Report is the persisted summary of a selection run.
type Report struct {
	RunID    string    `yaml:"run_id"`
	Created  time.Time `yaml:"created"`
	InputDir string    `yaml:"input_dir"`
	Inputs   int       `yaml:"inputs"`
	Mode     string    `yaml:"mode"`

	BestK         int      `yaml:"best_k,omitempty"`
	BestMeanScore *float64 `yaml:"best_mean_score,omitempty"`
	BestSeed      *int64   `yaml:"best_seed,omitempty"`
	Seeds         []int64  `yaml:"seeds,omitempty"`
	Stats         []KStat  `yaml:"stats,omitempty"`
	GroupSizes    []int    `yaml:"group_sizes,omitempty"`
	Selected      []string `yaml:"selected"`
	Elapsed       float64  `yaml:"elapsed_seconds"`
}

// KStat is one row of per-K statistics. Mean and Variance are omitted for
// group counts whose trials were all degenerate.
type KStat struct {
	K          int      `yaml:"k"`
	Mean       *float64 `yaml:"mean,omitempty"`
	Variance   *float64 `yaml:"variance,omitempty"`
	Trials     int      `yaml:"trials"`
	Degenerate int      `yaml:"degenerate"`
}

// FromSelection fills the search fields of r from sel and seeds.
func (r *Report) FromSelection(sel *repsel.Selection, seeds []int64) {
	r.Mode = ModeSearch
	r.BestK = sel.BestK
	r.BestMeanScore = ptr(sel.BestMeanScore)
	r.BestSeed = ptr(sel.Best.Seed)
	r.Seeds = seeds
	r.GroupSizes = sel.Best.GroupSizes()
	r.Stats = make([]KStat, len(sel.Stats))
	for i, s := range sel.Stats {
		r.Stats[i] = KStat{K: s.K, Trials: s.Trials, Degenerate: s.Degenerate}
		if s.Defined() {
			r.Stats[i].Mean = ptr(s.Mean)
			r.Stats[i].Variance = ptr(s.Variance)
		}
	}
}

// FromFixed fills the fixed-K fields of r from res.
func (r *Report) FromFixed(res *repsel.ClusterResult) {
	r.Mode = ModeFixed
	r.BestK = res.K
	r.GroupSizes = res.GroupSizes()
}

// Write encodes r as YAML to path.
func (r *Report) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		f.Close()
		return fmt.Errorf("report: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("report: encode: %w", err)
	}
	return f.Close()
}

// Read decodes a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", path, err)
	}
	return &r, nil
}

func ptr[T any](v T) *T { return &v }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
