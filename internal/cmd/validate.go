package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check problem files without evaluating them",
		Long: `Validate checks each problem document against the problem schema and the
engine preconditions: a known best and worst criterion, unique criterion ids and
positive comparison values. With --strict, values must lie in [1, 9] and best
and worst must differ.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			var result *multierror.Error
			for _, path := range args {
				_, p, err := loadProblem(path, cfg.Evaluation, cmd.InOrStdin())
				if err == nil {
					err = bwm.Validate(p, cfg.Evaluation.Strict)
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s\n", path)
					result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
			}
			return result.ErrorOrNil()
		},
	}
}
