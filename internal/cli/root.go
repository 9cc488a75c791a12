// Package cli defines the repsel command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TrevorS/repsel/internal/config"
	"github.com/TrevorS/repsel/internal/logging"
	"github.com/TrevorS/repsel/internal/metrics"
	"github.com/TrevorS/repsel/internal/stage"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// app holds the dependencies built by the root pre-run hook.
type app struct {
	deps stage.Deps
}

// NewRootCommand creates the root command with its global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	rt := &app{}

	cmd := &cobra.Command{
		Use:   "repsel",
		Short: "Select representative structures from a folder of XYZ files",
		Long: "repsel encodes every structure with its sorted Coulomb matrix spectrum,\n" +
			"searches the number of k-means groups that gives the most robust\n" +
			"silhouette profile, and copies a few representatives of each group.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return rt.init(opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format override (console, json)")

	cmd.AddCommand(
		newSelectCommand(rt),
		newFilterCommand(rt),
		newVersionCommand(),
	)
	return cmd
}

func (rt *app) init(opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	runID := logging.NewRunID()
	log, err := logging.New(cfg.Log, os.Stderr, runID)
	if err != nil {
		return err
	}
	rt.deps = stage.Deps{Config: cfg, Logger: log, Metrics: metrics.New(), RunID: runID}
	return nil
}

// Execute runs the command tree with os.Args. An interrupt cancels the
// running stage.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
