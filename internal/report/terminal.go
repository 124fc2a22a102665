package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Header  lipgloss.Style
	Name    lipgloss.Style
	Weight  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns colored styles, or no-op styles when enabled is false.
func NewStyles(enabled bool) Styles {
	if !enabled {
		return Styles{
			Header:  lipgloss.NewStyle(),
			Name:    lipgloss.NewStyle(),
			Weight:  lipgloss.NewStyle(),
			Success: lipgloss.NewStyle(),
			Warning: lipgloss.NewStyle(),
			Muted:   lipgloss.NewStyle(),
		}
	}
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Name:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Weight:  lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// TerminalRenderer prints a weight table and the consistency verdict.
type TerminalRenderer struct {
	w      io.Writer
	styles Styles
}

// NewTerminalRenderer creates a renderer writing to w.
func NewTerminalRenderer(w io.Writer, color bool) *TerminalRenderer {
	return &TerminalRenderer{w: w, styles: NewStyles(color)}
}

func (r *TerminalRenderer) Render(evals ...Evaluation) error {
	for i, e := range evals {
		if i > 0 {
			fmt.Fprintln(r.w)
		}
		if err := r.render(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *TerminalRenderer) render(e Evaluation) error {
	s := r.styles
	title := e.Name
	if title == "" {
		title = "Results"
	}
	if _, err := fmt.Fprintln(r.w, s.Header.Render(title)); err != nil {
		return err
	}

	width := 0
	names := make([]string, len(e.Result.Weights))
	for i, cw := range e.Result.Weights {
		names[i] = criterionName(e.Criteria, cw.ID)
		if len(names[i]) > width {
			width = len(names[i])
		}
	}

	for i, cw := range e.Result.Weights {
		pad := strings.Repeat(" ", width-len(names[i]))
		fmt.Fprintf(r.w, "  %s%s  %s\n", s.Name.Render(names[i]), pad, s.Weight.Render(fmt.Sprintf("%6s", Percent(cw.Weight))))
	}

	c := e.Result.Consistency
	fmt.Fprintf(r.w, "  %s\n", s.Muted.Render(fmt.Sprintf("aBW %g, CI %.2f, max violation %.4f", c.ABW, c.Index, c.MaxViolation)))
	fmt.Fprintf(r.w, "Consistency Ratio: %s\n", Ratio(e.Result.ConsistencyRatio))

	verdict := s.Warning
	if e.Result.IsConsistent {
		verdict = s.Success
	}
	_, err := fmt.Fprintln(r.w, verdict.Render(Verdict(e.Result)))
	return err
}
