package postprocess

import (
	"math"
	"testing"

	"classifyd/internal/labels"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	cases := [][]float32{
		{1, 2, 3},
		{-5, 0, 5},
		{100, 100.5, 99},
		{0.001, 0.002, 0.003, 0.004},
	}
	for _, logits := range cases {
		out := Softmax(logits)
		var sum float64
		for _, v := range out {
			sum += float64(v)
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Fatalf("softmax(%v) sums to %f", logits, sum)
		}
	}
}

func TestSoftmaxMonotonic(t *testing.T) {
	logits := []float32{1, 2, 3}
	out := Softmax(logits)
	if !(out[0] < out[1] && out[1] < out[2]) {
		t.Fatalf("softmax not monotonic: %v", out)
	}
}

func TestSoftmaxLargeValuesStable(t *testing.T) {
	out := Softmax([]float32{1000, 1001})
	for _, v := range out {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("softmax overflowed: %v", out)
		}
	}
	if out[1] <= out[0] {
		t.Fatalf("ordering lost: %v", out)
	}
}

func TestTopKRanking(t *testing.T) {
	store := labels.NewStore()
	probs := []float32{0.1, 0.7, 0.2}
	got := TopK(probs, 2, store)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ClassID != 1 || got[0].Confidence != 0.7 {
		t.Fatalf("unexpected top entry: %+v", got[0])
	}
	if got[1].ClassID != 2 || got[1].Confidence != 0.2 {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
	if got[0].ClassName != "goldfish" {
		t.Fatalf("expected label goldfish for index 1, got %q", got[0].ClassName)
	}
}

func TestTopKClampsToLength(t *testing.T) {
	store := labels.NewStore()
	got := TopK([]float32{0.6, 0.4}, 5, store)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
}

func TestTopKNonIncreasing(t *testing.T) {
	store := labels.NewStore()
	probs := []float32{0.05, 0.3, 0.1, 0.3, 0.25}
	got := TopK(probs, len(probs), store)
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Fatalf("confidence increased at %d: %v", i, got)
		}
	}
}

func TestTopKTiesBreakByAscendingIndex(t *testing.T) {
	store := labels.NewStore()
	probs := []float32{0.25, 0.25, 0.25, 0.25}
	got := TopK(probs, 4, store)
	for i, p := range got {
		if p.ClassID != i {
			t.Fatalf("expected tie-break by ascending index, got %v", got)
		}
	}
}

func TestClassifyBelowThreshold(t *testing.T) {
	store := labels.NewStore()
	raw := make([]float32, labels.MinClassCount-1)
	isClassification, preds := Classify(raw, store)
	if isClassification {
		t.Fatal("expected non-classification output below threshold")
	}
	if len(preds) != 0 {
		t.Fatalf("expected no predictions, got %d", len(preds))
	}
}

func TestClassifyAtThreshold(t *testing.T) {
	store := labels.NewStore()
	raw := make([]float32, labels.MinClassCount)
	raw[42] = 10 // clear winner
	isClassification, preds := Classify(raw, store)
	if !isClassification {
		t.Fatal("expected classification-shaped output")
	}
	if len(preds) != DefaultTopK {
		t.Fatalf("expected %d predictions, got %d", DefaultTopK, len(preds))
	}
	if preds[0].ClassID != 42 {
		t.Fatalf("expected class 42 on top, got %+v", preds[0])
	}
	var sum float64
	for _, p := range preds {
		sum += float64(p.Confidence)
	}
	if sum > 1.0+1e-6 {
		t.Fatalf("top-k confidences exceed 1: %f", sum)
	}
}
