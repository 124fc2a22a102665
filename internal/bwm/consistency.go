package bwm

import "math"

// ConsistencyThreshold is the largest ratio still accepted as consistent.
const ConsistencyThreshold = 0.10

// maxConsistencyIndex is used for any aBW outside the table.
const maxConsistencyIndex = 4.35

// consistencyIndices[k] is the consistency index for floor(aBW) == k.
var consistencyIndices = [...]float64{
	1: 0.00,
	2: 0.44,
	3: 1.00,
	4: 1.63,
	5: 2.30,
	6: 3.15,
	7: 3.73,
	8: 4.23,
	9: 4.35,
}

// Consistency is the consistency assessment of a set of judgments.
type Consistency struct {
	// ABW approximates the best-to-worst judgment as the largest stated comparison.
	ABW          float64 `json:"a_bw"`
	Index        float64 `json:"consistency_index"`
	MaxViolation float64 `json:"max_violation"`
	Ratio        float64 `json:"ratio"`
	IsConsistent bool    `json:"is_consistent"`
}

// ConsistencyIndex looks up the index for aBW, floored. Values outside 1..9
// (including NaN) fall back to the table maximum.
func ConsistencyIndex(aBW float64) float64 {
	if !(aBW >= 1 && aBW < 10) {
		return maxConsistencyIndex
	}
	return consistencyIndices[int(math.Floor(aBW))]
}

// IsConsistent reports whether ratio is within ConsistencyThreshold.
func IsConsistent(ratio float64) bool {
	return ratio <= ConsistencyThreshold
}

// MaxComparison returns the largest value in either comparison vector, or 0 when
// both are empty.
func MaxComparison(p Problem) float64 {
	var largest float64
	for _, m := range []map[CriterionID]float64{p.BestToOthers, p.OthersToWorst} {
		for _, v := range m {
			if v > largest {
				largest = v
			}
		}
	}
	return largest
}

// ComputeConsistency measures how far weights stray from the stated best-to-others
// and others-to-worst ratios and scales the worst deviation by the consistency index.
func ComputeConsistency(p Problem, weights WeightVector) Consistency {
	aBW := MaxComparison(p)
	ci := ConsistencyIndex(aBW)

	var maxViolation float64
	for _, wi := range weights {
		for _, wj := range weights {
			if wi.ID == wj.ID {
				continue
			}
			if wi.ID == p.Best {
				b := ValueOrDefault(p.BestToOthers, wj.ID, 1)
				maxViolation = math.Max(maxViolation, math.Abs(b*wj.Weight-wi.Weight))
			}
			if wj.ID == p.Worst {
				w := ValueOrDefault(p.OthersToWorst, wi.ID, 1)
				maxViolation = math.Max(maxViolation, math.Abs(w*wi.Weight-wj.Weight))
			}
		}
	}

	var ratio float64
	if ci > 0 {
		ratio = maxViolation / ci
	}

	return Consistency{
		ABW:          aBW,
		Index:        ci,
		MaxViolation: maxViolation,
		Ratio:        ratio,
		IsConsistent: IsConsistent(ratio),
	}
}
