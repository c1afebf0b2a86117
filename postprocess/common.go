package postprocess

import (
	"math"
	"sort"
)

// clamp restricts the value to be within the range min and max
func clamp(val, min, max float64) float64 {

	if val > min {

		if val < max {
			return val
		}

		return max
	}

	return min
}

// sortIndicesByScore returns the indices of scores ordered by descending score
func sortIndicesByScore(scores []float64) []int {

	order := make([]int, len(scores))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	return order
}

// nms implements a Non-Maximum Suppression (NMS) algorithm.  order holds box
// indices sorted by descending score, suppressed entries are set to -1.
func nms(boxes []Box, order []int, threshold float64) {

	for i := 0; i < len(order); i++ {

		if order[i] == -1 {
			continue
		}

		n := order[i]

		for j := i + 1; j < len(order); j++ {
			m := order[j]

			if m == -1 {
				continue
			}

			if calculateOverlap(boxes[n], boxes[m]) > threshold {
				order[j] = -1
			}
		}
	}
}

// calculateOverlap works out the Intersection of Union (IoU) value of two
// boxes
func calculateOverlap(a, b Box) float64 {

	w := math.Max(0.0, math.Min(a.Right, b.Right)-math.Max(a.Left, b.Left))
	h := math.Max(0.0, math.Min(a.Bottom, b.Bottom)-math.Max(a.Top, b.Top))
	intersection := w * h

	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0.0
	}

	return intersection / union
}
