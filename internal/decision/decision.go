// Package decision models an editable BWM decision: the list of criteria, the
// best/worst selection and the two comparison vectors collected from a user.
package decision

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/MikeSquared-Agency/Weigh/internal/bwm"
)

var (
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrMinimumCriteria   = errors.New("a decision needs at least 2 criteria")
	ErrSelfComparison    = errors.New("criterion cannot be compared with itself")
)

// MinCriteria is the fewest criteria a decision can be reduced to.
const MinCriteria = 2

// Decision is the mutable input side of a BWM evaluation.
type Decision struct {
	Name          string                      `json:"name"`
	Criteria      []bwm.Criterion             `json:"criteria"`
	Best          *bwm.CriterionID            `json:"best,omitempty"`
	Worst         *bwm.CriterionID            `json:"worst,omitempty"`
	BestToOthers  map[bwm.CriterionID]float64 `json:"best_to_others"`
	OthersToWorst map[bwm.CriterionID]float64 `json:"others_to_worst"`
}

// New returns a decision seeded with the default Price, Quality and Durability criteria.
func New(name string) *Decision {
	return &Decision{
		Name: name,
		Criteria: []bwm.Criterion{
			{ID: 1, Name: "Price"},
			{ID: 2, Name: "Quality"},
			{ID: 3, Name: "Durability"},
		},
		BestToOthers:  map[bwm.CriterionID]float64{},
		OthersToWorst: map[bwm.CriterionID]float64{},
	}
}

// NewWithCriteria returns a decision over the given criterion names, numbered
// from 1. Empty names get the "Criterion <id>" default.
func NewWithCriteria(name string, names ...string) (*Decision, error) {
	if len(names) < MinCriteria {
		return nil, ErrMinimumCriteria
	}
	d := &Decision{
		Name:          name,
		BestToOthers:  map[bwm.CriterionID]float64{},
		OthersToWorst: map[bwm.CriterionID]float64{},
	}
	for _, n := range names {
		d.AddCriterion(n)
	}
	return d, nil
}

// FromProblem builds a decision holding the inputs of p.
func FromProblem(name string, p bwm.Problem) *Decision {
	d := &Decision{
		Name:          name,
		Criteria:      append([]bwm.Criterion(nil), p.Criteria...),
		BestToOthers:  make(map[bwm.CriterionID]float64, len(p.BestToOthers)),
		OthersToWorst: make(map[bwm.CriterionID]float64, len(p.OthersToWorst)),
	}
	best, worst := p.Best, p.Worst
	d.Best, d.Worst = &best, &worst
	for k, v := range p.BestToOthers {
		d.BestToOthers[k] = v
	}
	for k, v := range p.OthersToWorst {
		d.OthersToWorst[k] = v
	}
	return d
}

func (d *Decision) index(id bwm.CriterionID) int {
	for i, c := range d.Criteria {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (d *Decision) has(id bwm.CriterionID) bool { return d.index(id) >= 0 }

// AddCriterion appends a criterion with the next free id. An empty name becomes
// "Criterion <id>".
func (d *Decision) AddCriterion(name string) bwm.Criterion {
	var next bwm.CriterionID
	for _, c := range d.Criteria {
		if c.ID > next {
			next = c.ID
		}
	}
	next++

	if name == "" {
		name = fmt.Sprintf("Criterion %d", next)
	}
	c := bwm.Criterion{ID: next, Name: name}
	d.Criteria = append(d.Criteria, c)
	return c
}

// RenameCriterion changes the display name of id.
func (d *Decision) RenameCriterion(id bwm.CriterionID, name string) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrCriterionNotFound, id)
	}
	d.Criteria[i].Name = name
	return nil
}

// RemoveCriterion deletes id together with its comparisons. A best or worst
// selection pointing at it is cleared.
func (d *Decision) RemoveCriterion(id bwm.CriterionID) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrCriterionNotFound, id)
	}
	if len(d.Criteria) <= MinCriteria {
		return ErrMinimumCriteria
	}

	d.Criteria = append(d.Criteria[:i], d.Criteria[i+1:]...)
	delete(d.BestToOthers, id)
	delete(d.OthersToWorst, id)
	if d.Best != nil && *d.Best == id {
		d.Best = nil
	}
	if d.Worst != nil && *d.Worst == id {
		d.Worst = nil
	}
	return nil
}

// SelectBest marks id as the most important criterion, dropping any
// best-to-others entry it had.
func (d *Decision) SelectBest(id bwm.CriterionID) error {
	if !d.has(id) {
		return fmt.Errorf("%w: %d", ErrCriterionNotFound, id)
	}
	d.Best = &id
	delete(d.BestToOthers, id)
	return nil
}

// SelectWorst marks id as the least important criterion, dropping any
// others-to-worst entry it had.
func (d *Decision) SelectWorst(id bwm.CriterionID) error {
	if !d.has(id) {
		return fmt.Errorf("%w: %d", ErrCriterionNotFound, id)
	}
	d.Worst = &id
	delete(d.OthersToWorst, id)
	return nil
}

// SetBestToOther records how strongly the best criterion dominates id.
func (d *Decision) SetBestToOther(id bwm.CriterionID, v float64) error {
	if !d.has(id) {
		return fmt.Errorf("%w: %d", ErrCriterionNotFound, id)
	}
	if d.Best != nil && *d.Best == id {
		return fmt.Errorf("%w: best criterion %d", ErrSelfComparison, id)
	}
	if d.BestToOthers == nil {
		d.BestToOthers = map[bwm.CriterionID]float64{}
	}
	d.BestToOthers[id] = v
	return nil
}

// SetOtherToWorst records how strongly id dominates the worst criterion.
func (d *Decision) SetOtherToWorst(id bwm.CriterionID, v float64) error {
	if !d.has(id) {
		return fmt.Errorf("%w: %d", ErrCriterionNotFound, id)
	}
	if d.Worst != nil && *d.Worst == id {
		return fmt.Errorf("%w: worst criterion %d", ErrSelfComparison, id)
	}
	if d.OthersToWorst == nil {
		d.OthersToWorst = map[bwm.CriterionID]float64{}
	}
	d.OthersToWorst[id] = v
	return nil
}

// ReplaceComparisons swaps in both comparison vectors. Every entry must name an
// existing criterion, hold a positive finite value and not be a self-entry of
// the current selection. On error d is left unchanged.
func (d *Decision) ReplaceComparisons(bestToOthers, othersToWorst map[bwm.CriterionID]float64) error {
	next := *d
	next.BestToOthers = make(map[bwm.CriterionID]float64, len(bestToOthers))
	next.OthersToWorst = make(map[bwm.CriterionID]float64, len(othersToWorst))

	for _, id := range slices.Sorted(maps.Keys(bestToOthers)) {
		v := bestToOthers[id]
		if err := checkValue(id, v); err != nil {
			return err
		}
		if err := next.SetBestToOther(id, v); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(othersToWorst)) {
		v := othersToWorst[id]
		if err := checkValue(id, v); err != nil {
			return err
		}
		if err := next.SetOtherToWorst(id, v); err != nil {
			return err
		}
	}

	*d = next
	return nil
}

func checkValue(id bwm.CriterionID, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: criterion %d has %v", bwm.ErrInvalidComparison, id, v)
	}
	return nil
}

// Problem snapshots the decision as engine input.
func (d *Decision) Problem() (bwm.Problem, error) {
	if d.Best == nil || d.Worst == nil {
		return bwm.Problem{}, fmt.Errorf("%w: best and worst must be selected", bwm.ErrMissingSelection)
	}
	p := bwm.Problem{
		Criteria:      append([]bwm.Criterion(nil), d.Criteria...),
		Best:          *d.Best,
		Worst:         *d.Worst,
		BestToOthers:  make(map[bwm.CriterionID]float64, len(d.BestToOthers)),
		OthersToWorst: make(map[bwm.CriterionID]float64, len(d.OthersToWorst)),
	}
	for k, v := range d.BestToOthers {
		p.BestToOthers[k] = v
	}
	for k, v := range d.OthersToWorst {
		p.OthersToWorst[k] = v
	}
	return p, nil
}

// Evaluate runs the BWM engine over the current inputs.
func (d *Decision) Evaluate(opts ...bwm.Option) (bwm.Result, error) {
	p, err := d.Problem()
	if err != nil {
		return bwm.Result{}, err
	}
	return bwm.Evaluate(p, opts...)
}
