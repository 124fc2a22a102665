// Package bwm implements the Best-Worst Method: criteria weights derived from a
// best-to-others and an others-to-worst comparison vector, and the consistency
// ratio of those judgments.
package bwm

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// Scale bounds of a pairwise comparison. 1 is equal importance, 9 extreme dominance.
const (
	ScaleMin = 1.0
	ScaleMax = 9.0
)

var (
	ErrMissingSelection   = errors.New("best and worst criteria must be selected from at least 2 criteria")
	ErrDuplicateCriterion = errors.New("duplicate criterion id")
	ErrInvalidComparison  = errors.New("comparison value must be a positive finite number")
	ErrDegenerateInput    = errors.New("degenerate input")
	ErrZeroWeightSum      = fmt.Errorf("%w: raw weight sum is zero or not finite", ErrDegenerateInput)
)

// CriterionID identifies a criterion. Ids are assigned by the caller.
type CriterionID int

// Criterion is a decision criterion. Name is carried for display only.
type Criterion struct {
	ID   CriterionID `json:"id" yaml:"id"`
	Name string      `json:"name" yaml:"name"`
}

// Problem is one complete set of BWM inputs.
type Problem struct {
	Criteria      []Criterion
	Best          CriterionID
	Worst         CriterionID
	BestToOthers  map[CriterionID]float64
	OthersToWorst map[CriterionID]float64
}

// Result is the output of Evaluate.
type Result struct {
	Weights          WeightVector `json:"weights"`
	ConsistencyRatio float64      `json:"consistency_ratio"`
	IsConsistent     bool         `json:"is_consistent"`
	Consistency      Consistency  `json:"consistency"`
}

type options struct {
	strict bool
}

// Option tunes Evaluate.
type Option func(*options)

// WithStrict rejects comparison values outside [1, 9] and best == worst.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// ValueOrDefault returns m[id] when present, def otherwise.
func ValueOrDefault(m map[CriterionID]float64, id CriterionID, def float64) float64 {
	if v, ok := m[id]; ok {
		return v
	}
	return def
}

// Evaluate computes weights and consistency for p.
func Evaluate(p Problem, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := Validate(p, o.strict); err != nil {
		return Result{}, err
	}

	weights, err := ComputeWeights(p)
	if err != nil {
		return Result{}, err
	}
	c := ComputeConsistency(p, weights)

	return Result{
		Weights:          weights,
		ConsistencyRatio: c.Ratio,
		IsConsistent:     c.IsConsistent,
		Consistency:      c,
	}, nil
}

// Validate checks the preconditions of Evaluate. Selection and comparison errors
// are always fatal; strict adds the scale range and best != worst checks.
func Validate(p Problem, strict bool) error {
	if len(p.Criteria) < 2 {
		return fmt.Errorf("%w: got %d criteria", ErrMissingSelection, len(p.Criteria))
	}

	seen := make(map[CriterionID]bool, len(p.Criteria))
	for _, c := range p.Criteria {
		if seen[c.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateCriterion, c.ID)
		}
		seen[c.ID] = true
	}
	if !seen[p.Best] {
		return fmt.Errorf("%w: best criterion %d not found", ErrMissingSelection, p.Best)
	}
	if !seen[p.Worst] {
		return fmt.Errorf("%w: worst criterion %d not found", ErrMissingSelection, p.Worst)
	}

	for _, m := range []map[CriterionID]float64{p.BestToOthers, p.OthersToWorst} {
		for id, v := range m {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: criterion %d has %v", ErrInvalidComparison, id, v)
			}
		}
	}

	if !strict {
		return nil
	}

	var result *multierror.Error
	if p.Best == p.Worst {
		result = multierror.Append(result, fmt.Errorf("%w: best and worst are both criterion %d", ErrDegenerateInput, p.Best))
	}
	result = appendOutOfScale(result, "best_to_others", p.BestToOthers)
	result = appendOutOfScale(result, "others_to_worst", p.OthersToWorst)
	return result.ErrorOrNil()
}

func appendOutOfScale(result *multierror.Error, name string, m map[CriterionID]float64) *multierror.Error {
	for _, id := range sortedKeys(m) {
		v := m[id]
		if v < ScaleMin || v > ScaleMax {
			result = multierror.Append(result, fmt.Errorf("%w: %s[%d] = %v outside [1, 9]", ErrDegenerateInput, name, id, v))
		}
	}
	return result
}
