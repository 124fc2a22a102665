package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
	"github.com/MikeSquared-Agency/Weigh/internal/config"
	"github.com/MikeSquared-Agency/Weigh/internal/report"
	"github.com/MikeSquared-Agency/Weigh/internal/validation"
)

func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate FILE...",
		Short: "Compute weights and consistency for problem files",
		Long: `Evaluate one or more BWM problem documents and print the weight of every
criterion together with the consistency ratio. Use "-" to read stdin.

Examples:
  weigh evaluate laptop.yaml
  weigh evaluate --format json a.yaml b.json > results.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			renderer, err := report.New(opts.format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var (
				evals  []report.Evaluation
				result *multierror.Error
			)
			for _, r := range evaluateFiles(args, cfg.Evaluation, cmd.InOrStdin()) {
				if r.err != nil {
					result = multierror.Append(result, r.err)
					continue
				}
				evals = append(evals, r.eval)
			}
			if len(evals) > 0 {
				if err := renderer.Render(evals...); err != nil {
					return err
				}
			}
			return result.ErrorOrNil()
		},
	}
}

type fileResult struct {
	eval report.Evaluation
	err  error
}

// evaluateFiles evaluates every path concurrently, keeping argument order.
func evaluateFiles(paths []string, cfg config.EvaluationConfig, stdin io.Reader) []fileResult {
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(cfg.BatchConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			eval, err := evaluateFile(path, cfg, stdin)
			if err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fileResult{eval: eval, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func evaluateFile(path string, cfg config.EvaluationConfig, stdin io.Reader) (report.Evaluation, error) {
	name, p, err := loadProblem(path, cfg, stdin)
	if err != nil {
		return report.Evaluation{}, err
	}

	var opts []bwm.Option
	if cfg.Strict {
		opts = append(opts, bwm.WithStrict())
	}
	res, err := bwm.Evaluate(p, opts...)
	if err != nil {
		return report.Evaluation{}, err
	}
	return report.Evaluation{Name: name, Criteria: p.Criteria, Result: res}, nil
}

// loadProblem reads and parses a problem document and applies the criteria
// limit. Unnamed problems are named after their file.
func loadProblem(path string, cfg config.EvaluationConfig, stdin io.Reader) (string, bwm.Problem, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", bwm.Problem{}, err
	}

	name, p, err := validation.ParseProblem(data)
	if err != nil {
		return "", bwm.Problem{}, err
	}
	if err := validation.CheckCriteriaLimit(p, cfg.MaxCriteria); err != nil {
		return "", bwm.Problem{}, err
	}
	if name == "" && path != "-" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return name, p, nil
}
