package hermes

import (
	"encoding/json"
	"time"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

type DecisionEvent struct {
	DecisionID string `json:"decision_id"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
}

type WeightEntry struct {
	CriterionID int     `json:"criterion_id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
}

// NewWeightEntries pairs each weight with its criterion name, in criteria order.
func NewWeightEntries(criteria []bwm.Criterion, weights bwm.WeightVector) []WeightEntry {
	out := make([]WeightEntry, 0, len(weights))
	for _, cw := range weights {
		e := WeightEntry{CriterionID: int(cw.ID), Weight: cw.Weight}
		for _, c := range criteria {
			if c.ID == cw.ID {
				e.Name = c.Name
				break
			}
		}
		out = append(out, e)
	}
	return out
}

type DecisionEvaluatedEvent struct {
	DecisionID       string        `json:"decision_id"`
	Weights          []WeightEntry `json:"weights"`
	ConsistencyRatio float64       `json:"consistency_ratio"`
	IsConsistent     bool          `json:"is_consistent"`
	EvaluatedAt      time.Time     `json:"evaluated_at"`
}

// EvaluateRequestEvent carries a problem document in the same JSON shape
// accepted by POST /api/v1/evaluate.
type EvaluateRequestEvent struct {
	RequestID string          `json:"request_id"`
	Problem   json.RawMessage `json:"problem"`
}

type EvaluateCompletedEvent struct {
	RequestID        string        `json:"request_id"`
	Name             string        `json:"name,omitempty"`
	Weights          []WeightEntry `json:"weights"`
	ConsistencyRatio float64       `json:"consistency_ratio"`
	IsConsistent     bool          `json:"is_consistent"`
	Verdict          string        `json:"verdict"`
}

type EvaluateFailedEvent struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}
