package bwm

import (
	"math"
	"testing"
)

func TestComputeWeightsRawEstimator(t *testing.T) {
	p := Problem{
		Criteria:      []Criterion{{ID: 1}, {ID: 2}, {ID: 3}},
		Best:          1,
		Worst:         3,
		BestToOthers:  map[CriterionID]float64{2: 4, 3: 9},
		OthersToWorst: map[CriterionID]float64{1: 9, 2: 1},
	}
	w, err := ComputeWeights(p)
	if err != nil {
		t.Fatal(err)
	}

	raw := []float64{1 / math.Sqrt(9), 1 / math.Sqrt(4), 1 / math.Sqrt(9)}
	sum := raw[0] + raw[1] + raw[2]
	for i, cw := range w {
		if cw.ID != p.Criteria[i].ID {
			t.Errorf("weight %d out of criteria order: got id %d", i, cw.ID)
		}
		if math.Abs(cw.Weight-raw[i]/sum) > tolerance {
			t.Errorf("weight[%d] = %f, want %f", cw.ID, cw.Weight, raw[i]/sum)
		}
	}
}

func TestWeightVectorAccessors(t *testing.T) {
	v := WeightVector{{ID: 4, Weight: 0.25}, {ID: 9, Weight: 0.75}}

	if got, ok := v.Get(9); !ok || got != 0.75 {
		t.Errorf("Get(9) = %f, %v", got, ok)
	}
	if _, ok := v.Get(5); ok {
		t.Error("expected Get(5) to miss")
	}
	if v.Sum() != 1 {
		t.Errorf("expected sum 1, got %f", v.Sum())
	}
	m := v.Map()
	if len(m) != 2 || m[4] != 0.25 {
		t.Errorf("unexpected map %v", m)
	}
}
