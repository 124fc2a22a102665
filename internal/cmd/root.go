// Package cmd implements the weigh command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Weigh/internal/config"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath string
	format     string
	strict     bool
}

// loadConfig reads the config file and applies command line overrides.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Evaluation.Strict = o.strict
	}
	return cfg, nil
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "weigh",
		Short: "Best-Worst Method criteria weighting",
		Long: `weigh derives criterion weights from Best-Worst Method comparisons and
reports how consistent those comparisons are.

Problems are YAML or JSON documents listing the criteria, the best and worst
criterion, and the best-to-others and others-to-worst comparison vectors.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "terminal", "Output format (terminal, json)")
	cmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Reject comparisons outside [1, 9] and best == worst")

	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
