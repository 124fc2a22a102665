// Package report renders BWM results for people (terminal) and programs (JSON).
package report

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

const (
	consistentMessage   = "The comparisons are consistent (CR ≤ 0.1)"
	inconsistentMessage = "Warning: The comparisons may be inconsistent (CR > 0.1). Consider revising your comparisons."
)

// Evaluation is a named result together with the criteria it was computed for.
type Evaluation struct {
	Name     string
	Criteria []bwm.Criterion
	Result   bwm.Result
}

// Renderer writes evaluations to an output.
type Renderer interface {
	Render(evals ...Evaluation) error
}

// Percent formats a weight as a percentage with one decimal.
func Percent(w float64) string {
	return fmt.Sprintf("%.1f%%", w*100)
}

// Ratio formats a consistency ratio with three decimals.
func Ratio(r float64) string {
	return fmt.Sprintf("%.3f", r)
}

// Verdict is the human-readable consistency message for res.
func Verdict(res bwm.Result) string {
	if res.IsConsistent {
		return consistentMessage
	}
	return inconsistentMessage
}

// New returns the renderer for format ("terminal" or "json").
func New(format string, w io.Writer) (Renderer, error) {
	switch format {
	case "json":
		return NewJSONRenderer(w), nil
	case "", "terminal":
		return NewTerminalRenderer(w, isTerminal(w)), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func criterionName(criteria []bwm.Criterion, id bwm.CriterionID) string {
	for _, c := range criteria {
		if c.ID == id {
			if c.Name != "" {
				return c.Name
			}
			break
		}
	}
	return fmt.Sprintf("Criterion %d", id)
}
