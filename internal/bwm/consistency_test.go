package bwm

import (
	"math"
	"testing"
)

func TestConsistencyIndex(t *testing.T) {
	tests := []struct {
		aBW  float64
		want float64
	}{
		{1, 0.00},
		{1.9, 0.00},
		{2, 0.44},
		{3, 1.00},
		{3.7, 1.00},
		{4, 1.63},
		{5, 2.30},
		{6, 3.15},
		{7, 3.73},
		{8, 4.23},
		{8.99, 4.23},
		{9, 4.35},
		{9.5, 4.35},
		{10, 4.35},
		{250, 4.35},
		{0.5, 4.35},
		{0, 4.35},
		{-3, 4.35},
		{math.Inf(1), 4.35},
		{math.NaN(), 4.35},
	}
	for _, tt := range tests {
		if got := ConsistencyIndex(tt.aBW); got != tt.want {
			t.Errorf("ConsistencyIndex(%v) = %v, want %v", tt.aBW, got, tt.want)
		}
	}
}

func TestIsConsistentThreshold(t *testing.T) {
	tests := []struct {
		ratio float64
		want  bool
	}{
		{0, true},
		{0.05, true},
		{0.10, true},
		{0.1000001, false},
		{0.5, false},
	}
	for _, tt := range tests {
		if got := IsConsistent(tt.ratio); got != tt.want {
			t.Errorf("IsConsistent(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestMaxComparison(t *testing.T) {
	p := Problem{
		BestToOthers:  map[CriterionID]float64{2: 4, 3: 6},
		OthersToWorst: map[CriterionID]float64{1: 7.5, 2: 2},
	}
	if got := MaxComparison(p); got != 7.5 {
		t.Errorf("expected 7.5, got %f", got)
	}
	if got := MaxComparison(Problem{}); got != 0 {
		t.Errorf("expected 0 for empty comparisons, got %f", got)
	}
}

func TestComputeConsistencyBothAnchorsFire(t *testing.T) {
	// Best and worst are the same criterion, so every pair touching it
	// contributes from both rows.
	p := Problem{
		Criteria:      []Criterion{{ID: 1}, {ID: 2}},
		Best:          1,
		Worst:         1,
		BestToOthers:  map[CriterionID]float64{2: 2},
		OthersToWorst: map[CriterionID]float64{2: 5},
	}
	weights := WeightVector{{ID: 1, Weight: 0.6}, {ID: 2, Weight: 0.4}}

	c := ComputeConsistency(p, weights)
	// best row: |2*0.4 - 0.6| = 0.2; worst column: |5*0.4 - 0.6| = 1.4
	if math.Abs(c.MaxViolation-1.4) > tolerance {
		t.Errorf("expected max violation 1.4, got %f", c.MaxViolation)
	}
	if c.Index != 2.30 {
		t.Errorf("expected CI 2.30, got %f", c.Index)
	}
	if math.Abs(c.Ratio-1.4/2.30) > tolerance {
		t.Errorf("unexpected ratio %f", c.Ratio)
	}
	if c.IsConsistent {
		t.Error("expected inconsistent")
	}
}

func TestComputeConsistencyZeroIndex(t *testing.T) {
	// Largest comparison 1.5 floors to 1 whose index is 0; the ratio is defined as 0
	// even though the violation is not.
	p := Problem{
		Criteria:      []Criterion{{ID: 1}, {ID: 2}, {ID: 3}},
		Best:          1,
		Worst:         3,
		BestToOthers:  map[CriterionID]float64{2: 1.5, 3: 1.5},
		OthersToWorst: map[CriterionID]float64{1: 1.5, 2: 1.2},
	}
	w, err := ComputeWeights(p)
	if err != nil {
		t.Fatal(err)
	}
	c := ComputeConsistency(p, w)
	if c.Index != 0 {
		t.Fatalf("expected CI 0, got %f", c.Index)
	}
	if c.MaxViolation == 0 {
		t.Error("expected a nonzero violation")
	}
	if c.Ratio != 0 || !c.IsConsistent {
		t.Errorf("expected ratio 0 and consistent, got %f/%v", c.Ratio, c.IsConsistent)
	}
}

func TestComputeConsistencyNineFallsBackToMaxIndex(t *testing.T) {
	p := Problem{
		Criteria:      []Criterion{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		Best:          1,
		Worst:         4,
		BestToOthers:  map[CriterionID]float64{2: 2, 3: 4, 4: 9},
		OthersToWorst: map[CriterionID]float64{1: 9, 2: 4, 3: 2},
	}
	w, err := ComputeWeights(p)
	if err != nil {
		t.Fatal(err)
	}
	c := ComputeConsistency(p, w)
	if c.Index != 4.35 {
		t.Errorf("expected CI 4.35, got %f", c.Index)
	}
	if math.Abs(c.Ratio-c.MaxViolation/4.35) > tolerance {
		t.Errorf("ratio %f should be violation / 4.35", c.Ratio)
	}
}
