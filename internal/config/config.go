// Package config loads repsel run settings from YAML and REPSEL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TrevorS/repsel"
	"github.com/TrevorS/repsel/descriptor"
	"github.com/TrevorS/repsel/integrity"
)

// Config is the full program configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Selection  SelectionConfig  `mapstructure:"selection"`
	Budget     BudgetConfig     `mapstructure:"budget"`
	Descriptor DescriptorConfig `mapstructure:"descriptor"`
	Integrity  IntegrityConfig  `mapstructure:"integrity"`
	Output     OutputConfig     `mapstructure:"output"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// SelectionConfig drives the group-count search.
type SelectionConfig struct {
	KMin          int     `mapstructure:"k_min"`
	KMax          int     `mapstructure:"k_max"`
	KStep         int     `mapstructure:"k_step"`
	FixedK        int     `mapstructure:"fixed_k"`
	Seeds         int     `mapstructure:"seeds"`
	MasterSeed    int64   `mapstructure:"master_seed"`
	Restarts      int     `mapstructure:"restarts"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Metric        string  `mapstructure:"metric"`
	Workers       int     `mapstructure:"workers"`
	SampleSeed    int64   `mapstructure:"sample_seed"`
}

// BudgetConfig bounds how many structures are selected.
type BudgetConfig struct {
	MaxSamples int    `mapstructure:"max_samples"`
	MaxTotal   int    `mapstructure:"max_total"`
	CapPolicy  string `mapstructure:"cap_policy"`
}

// DescriptorConfig controls feature encoding.
type DescriptorConfig struct {
	Truncate     bool   `mapstructure:"truncate"`
	EnergyColumn bool   `mapstructure:"energy_column"`
	Mismatch     string `mapstructure:"mismatch"`
}

// IntegrityConfig controls the structure filter.
type IntegrityConfig struct {
	Mode      string  `mapstructure:"mode"`
	Threshold float64 `mapstructure:"threshold"`
	Workers   int     `mapstructure:"workers"`
}

// OutputConfig names optional artifacts. Empty paths disable them.
type OutputConfig struct {
	Report      string `mapstructure:"report"`
	Plot        string `mapstructure:"plot"`
	MetricsFile string `mapstructure:"metrics_file"`
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	s := c.Selection
	if s.FixedK < 0 {
		errs = append(errs, fmt.Errorf("selection.fixed_k: must be >= 0, got %d", s.FixedK))
	}
	if s.FixedK == 0 {
		if s.KMin < 1 {
			errs = append(errs, fmt.Errorf("selection.k_min: must be >= 1, got %d", s.KMin))
		}
		if s.KMax < s.KMin {
			errs = append(errs, fmt.Errorf("selection.k_max: %d is below k_min %d", s.KMax, s.KMin))
		}
		if s.KStep < 1 {
			errs = append(errs, fmt.Errorf("selection.k_step: must be >= 1, got %d", s.KStep))
		}
		if s.Seeds < 1 {
			errs = append(errs, fmt.Errorf("selection.seeds: must be >= 1, got %d", s.Seeds))
		}
	}
	if s.Restarts < 1 {
		errs = append(errs, fmt.Errorf("selection.restarts: must be >= 1, got %d", s.Restarts))
	}
	if s.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("selection.max_iterations: must be >= 1, got %d", s.MaxIterations))
	}
	if s.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("selection.tolerance: must be >= 0, got %g", s.Tolerance))
	}
	if _, ok := repsel.MetricByName(s.Metric); !ok {
		errs = append(errs, fmt.Errorf("selection.metric: unknown metric %q", s.Metric))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("selection.workers: must be >= 0, got %d", s.Workers))
	}

	switch repsel.CapPolicy(c.Budget.CapPolicy) {
	case repsel.CapAdvisory, repsel.CapTotal:
	default:
		errs = append(errs, fmt.Errorf("budget.cap_policy: unknown policy %q", c.Budget.CapPolicy))
	}
	if repsel.CapPolicy(c.Budget.CapPolicy) == repsel.CapTotal && c.Budget.MaxTotal < 1 {
		errs = append(errs, fmt.Errorf("budget.max_total: must be >= 1 with cap_policy total, got %d", c.Budget.MaxTotal))
	}
	if c.Budget.MaxSamples < 1 {
		errs = append(errs, fmt.Errorf("budget.max_samples: must be >= 1, got %d", c.Budget.MaxSamples))
	}

	switch descriptor.Mismatch(c.Descriptor.Mismatch) {
	case descriptor.MismatchReject, descriptor.MismatchPad:
	default:
		errs = append(errs, fmt.Errorf("descriptor.mismatch: unknown policy %q", c.Descriptor.Mismatch))
	}

	switch integrity.Mode(c.Integrity.Mode) {
	case integrity.Connectivity, integrity.Clash:
	default:
		errs = append(errs, fmt.Errorf("integrity.mode: unknown mode %q", c.Integrity.Mode))
	}
	if c.Integrity.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("integrity.threshold: must be > 0, got %g", c.Integrity.Threshold))
	}
	return errors.Join(errs...)
}

// RepselConfig converts the selection section into a library Config.
func (c *Config) RepselConfig() repsel.Config {
	s := c.Selection
	cfg := repsel.DefaultConfig()
	cfg.KMin, cfg.KMax, cfg.KStep = s.KMin, s.KMax, s.KStep
	cfg.FixedK = s.FixedK
	cfg.Seeds = repsel.DeriveSeeds(s.MasterSeed, max(s.Seeds, 1))
	cfg.Restarts = s.Restarts
	cfg.MaxIterations = s.MaxIterations
	cfg.Tolerance = s.Tolerance
	cfg.Workers = s.Workers
	if m, ok := repsel.MetricByName(s.Metric); ok {
		cfg.Metric = m
	}
	return cfg
}

// SelectionBudget converts the budget section. max_samples keeps its legacy
// meaning: one closest member plus max_samples-1 extras per group.
func (c *Config) SelectionBudget() repsel.Budget {
	b := repsel.LegacyBudget(c.Budget.MaxSamples)
	b.Policy = repsel.CapPolicy(c.Budget.CapPolicy)
	b.MaxTotal = c.Budget.MaxTotal
	return b
}

// DescriptorOptions converts the descriptor section.
func (c *Config) DescriptorOptions() descriptor.Options {
	return descriptor.Options{
		Truncate:     c.Descriptor.Truncate,
		Mismatch:     descriptor.Mismatch(c.Descriptor.Mismatch),
		EnergyColumn: c.Descriptor.EnergyColumn,
		Workers:      c.Selection.Workers,
	}
}

// IntegrityOptions converts the integrity section.
func (c *Config) IntegrityOptions() integrity.Options {
	return integrity.Options{
		Mode:      integrity.Mode(c.Integrity.Mode),
		Threshold: c.Integrity.Threshold,
		Workers:   c.Integrity.Workers,
	}
}
