// Package postprocess converts raw model output into ranked classification
// entries.
package postprocess

import (
	"math"
	"sort"

	"classifyd/internal/labels"
	"classifyd/pkg/types"
)

// DefaultTopK is the number of ranked entries produced for
// classification-shaped output.
const DefaultTopK = 5

// LabelResolver maps a class index to a display name. *labels.Store
// satisfies it.
type LabelResolver interface {
	Resolve(index int) string
}

// Softmax computes a numerically stable softmax: the input maximum is
// subtracted before exponentiating. The output sums to 1 within
// floating-point tolerance and preserves the input ordering.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxVal := float32(math.Inf(-1))
	for _, v := range logits {
		if v > maxVal {
			maxVal = v
		}
	}
	out := make([]float32, len(logits))
	var sum float32
	for i, v := range logits {
		e := float32(math.Exp(float64(v - maxVal)))
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// TopK ranks class indices by descending probability and returns the first
// min(k, len(probs)) entries with labels resolved. Exact-probability ties
// break by ascending class index.
func TopK(probs []float32, k int, resolver LabelResolver) []types.Prediction {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	out := make([]types.Prediction, 0, k)
	for _, i := range idx[:k] {
		out = append(out, types.Prediction{
			ClassID:    i,
			ClassName:  resolver.Resolve(i),
			Confidence: probs[i],
		})
	}
	return out
}

// Classify treats raw as a classification distribution only when it carries
// at least labels.MinClassCount elements; smaller outputs (detection,
// segmentation heads) are passed through unranked.
func Classify(raw []float32, resolver LabelResolver) (bool, []types.Prediction) {
	if len(raw) < labels.MinClassCount {
		return false, nil
	}
	probs := Softmax(raw)
	return true, TopK(probs, DefaultTopK, resolver)
}
