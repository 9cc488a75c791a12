package config

import "runtime"

// Default values for every key. They are also registered with viper so that
// REPSEL_* variables can override keys absent from the file.
var defaults = map[string]any{
	"log.level":  "info",
	"log.format": "console",

	"selection.k_min":          2,
	"selection.k_max":          20,
	"selection.k_step":         1,
	"selection.fixed_k":        0,
	"selection.seeds":          10,
	"selection.master_seed":    0,
	"selection.restarts":       10,
	"selection.max_iterations": 300,
	"selection.tolerance":      1e-4,
	"selection.metric":         "euclidean",
	"selection.workers":        0,
	"selection.sample_seed":    0,

	"budget.max_samples": 1,
	"budget.max_total":   0,
	"budget.cap_policy":  "advisory",

	"descriptor.truncate":      true,
	"descriptor.energy_column": false,
	"descriptor.mismatch":      "reject",

	"integrity.mode":      "connectivity",
	"integrity.threshold": 1.0,
	"integrity.workers":   0,

	"output.report":       "",
	"output.plot":         "",
	"output.metrics_file": "",
}

// ApplyDefaults fills settings that depend on the host. Zero worker counts
// become the number of CPUs.
func ApplyDefaults(cfg *Config) {
	if cfg.Selection.Workers == 0 {
		cfg.Selection.Workers = runtime.NumCPU()
	}
	if cfg.Integrity.Workers == 0 {
		cfg.Integrity.Workers = runtime.NumCPU()
	}
}
