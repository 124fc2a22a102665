package bwm

import (
	"maps"
	"math"
	"slices"
)

// CriterionWeight is the normalized weight of one criterion.
type CriterionWeight struct {
	ID     CriterionID `json:"id"`
	Weight float64     `json:"weight"`
}

// WeightVector holds weights in the order the criteria were supplied.
type WeightVector []CriterionWeight

// Get returns the weight of id.
func (v WeightVector) Get(id CriterionID) (float64, bool) {
	for _, cw := range v {
		if cw.ID == id {
			return cw.Weight, true
		}
	}
	return 0, false
}

// Sum returns the total of all weights.
func (v WeightVector) Sum() float64 {
	var sum float64
	for _, cw := range v {
		sum += cw.Weight
	}
	return sum
}

// Map returns the weights keyed by criterion id.
func (v WeightVector) Map() map[CriterionID]float64 {
	m := make(map[CriterionID]float64, len(v))
	for _, cw := range v {
		m[cw.ID] = cw.Weight
	}
	return m
}

// ComputeWeights derives normalized weights with the geometric-mean estimator
//
//	raw(c) = 1 / sqrt(b(c) * w(c))
//
// where b and w read the two comparison vectors with absent entries as 1.
func ComputeWeights(p Problem) (WeightVector, error) {
	raw := make([]float64, len(p.Criteria))
	var sum float64
	for i, c := range p.Criteria {
		b := ValueOrDefault(p.BestToOthers, c.ID, 1)
		w := ValueOrDefault(p.OthersToWorst, c.ID, 1)
		raw[i] = 1 / math.Sqrt(b*w)
		sum += raw[i]
	}

	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, ErrZeroWeightSum
	}

	weights := make(WeightVector, len(p.Criteria))
	for i, c := range p.Criteria {
		weights[i] = CriterionWeight{ID: c.ID, Weight: raw[i] / sum}
	}
	return weights, nil
}

func sortedKeys(m map[CriterionID]float64) []CriterionID {
	return slices.Sorted(maps.Keys(m))
}
