package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrevorS/repsel/internal/stage"
)

type selectOptions struct {
	Input      string
	Output     string
	FixedK     int
	MaxSamples int
	Report     string
	Plot       string
}

func newSelectCommand(rt *app) *cobra.Command {
	opts := &selectOptions{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Copy representative structures of a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.deps.Config
			if cmd.Flags().Changed("fixed-k") {
				cfg.Selection.FixedK = opts.FixedK
			}
			if cmd.Flags().Changed("max-samples") {
				cfg.Budget.MaxSamples = opts.MaxSamples
			}
			if opts.Report != "" {
				cfg.Output.Report = opts.Report
			}
			if opts.Plot != "" {
				cfg.Output.Plot = opts.Plot
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			rep, err := stage.Select(cmd.Context(), opts.Input, opts.Output, rt.deps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %d of %d structures into %s\n",
				len(rep.Selected), rep.Inputs, opts.Output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "folder of XYZ files")
	f.StringVarP(&opts.Output, "output", "o", "", "folder receiving the selection (recreated)")
	f.IntVar(&opts.FixedK, "fixed-k", 0, "use this group count instead of searching")
	f.IntVar(&opts.MaxSamples, "max-samples", 1, "structures per group: the closest plus max-samples-1 random members")
	f.StringVar(&opts.Report, "report", "", "write a YAML run report to this path")
	f.StringVar(&opts.Plot, "plot", "", "write a plot of robustness per group count to this path")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

type filterOptions struct {
	Input     string
	Output    string
	Mode      string
	Threshold float64
}

func newFilterCommand(rt *app) *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Copy the structures that pass the integrity test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.deps.Config
			if opts.Mode != "" {
				cfg.Integrity.Mode = opts.Mode
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Integrity.Threshold = opts.Threshold
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			sum, err := stage.Filter(cmd.Context(), opts.Input, opts.Output, rt.deps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d structures passed (%d rejected, %d unreadable) into %s\n",
				len(sum.Passed), sum.Inputs, sum.Rejected, sum.Failed, opts.Output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "folder of XYZ files")
	f.StringVarP(&opts.Output, "output", "o", "", "folder receiving passing structures (recreated)")
	f.StringVar(&opts.Mode, "mode", "", "integrity check: connectivity or clash")
	f.Float64Var(&opts.Threshold, "threshold", 1.0, "covalent radius scaling factor")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "repsel %s\ncommit: %s\nbuilt: %s\n", Version, GitCommit, BuildDate)
		},
	}
}
