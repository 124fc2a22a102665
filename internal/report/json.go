package report

import (
	"encoding/json"
	"io"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

// JSONWeight is one row of the weight table.
type JSONWeight struct {
	ID      bwm.CriterionID `json:"id"`
	Name    string          `json:"name"`
	Weight  float64         `json:"weight"`
	Percent string          `json:"percent"`
}

// JSONEvaluation is the JSON form of an Evaluation.
type JSONEvaluation struct {
	Name             string          `json:"name,omitempty"`
	Weights          []JSONWeight    `json:"weights"`
	ConsistencyRatio float64         `json:"consistency_ratio"`
	IsConsistent     bool            `json:"is_consistent"`
	Verdict          string          `json:"verdict"`
	Consistency      bwm.Consistency `json:"consistency"`
}

// NewJSONEvaluation flattens e with names and display strings.
func NewJSONEvaluation(e Evaluation) JSONEvaluation {
	out := JSONEvaluation{
		Name:             e.Name,
		Weights:          make([]JSONWeight, 0, len(e.Result.Weights)),
		ConsistencyRatio: e.Result.ConsistencyRatio,
		IsConsistent:     e.Result.IsConsistent,
		Verdict:          Verdict(e.Result),
		Consistency:      e.Result.Consistency,
	}
	for _, cw := range e.Result.Weights {
		out.Weights = append(out.Weights, JSONWeight{
			ID:      cw.ID,
			Name:    criterionName(e.Criteria, cw.ID),
			Weight:  cw.Weight,
			Percent: Percent(cw.Weight),
		})
	}
	return out
}

// JSONRenderer writes one JSON document per call: an object for a single
// evaluation, an array otherwise.
type JSONRenderer struct {
	w io.Writer
}

// NewJSONRenderer creates a renderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{w: w}
}

func (r *JSONRenderer) Render(evals ...Evaluation) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")

	if len(evals) == 1 {
		return encoder.Encode(NewJSONEvaluation(evals[0]))
	}
	out := make([]JSONEvaluation, 0, len(evals))
	for _, e := range evals {
		out = append(out, NewJSONEvaluation(e))
	}
	return encoder.Encode(out)
}
