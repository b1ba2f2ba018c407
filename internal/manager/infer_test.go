package manager

import (
	"context"
	"math"
	"testing"

	"classifyd/internal/engine"
	"classifyd/internal/labels"
)

func loadedManager(t *testing.T, sess *fakeSession) (*Manager, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{next: sess}
	m := New(nil, eng)
	p := createModelFile(t, t.TempDir(), "m.onnx")
	if _, err := m.Load(p); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m, eng
}

func TestRunInferenceEmptyCache(t *testing.T) {
	m := New(nil, &fakeEngine{})
	_, err := m.RunInference(context.Background(), pngBytes(t))
	if err == nil || !IsModelNotFound(err) {
		t.Fatalf("expected model-not-found, got %v", err)
	}
	if m.LastResult() != nil {
		t.Fatal("no outcome must be retained on failure")
	}
}

func TestRunInferenceInvalidImage(t *testing.T) {
	m, _ := loadedManager(t, nil)
	_, err := m.RunInference(context.Background(), []byte("not an image"))
	if err == nil {
		t.Fatal("expected error for invalid image")
	}
	if IsInference(err) || IsModelNotFound(err) {
		t.Fatalf("decode failure must not masquerade as engine error: %v", err)
	}
	if m.LastResult() != nil {
		t.Fatal("no outcome must be retained on failure")
	}
}

func TestRunInferenceClassification(t *testing.T) {
	out := make([]float32, labels.MinClassCount)
	out[7] = 9 // argmax
	sess := &fakeSession{out: out, shape: []int64{1, int64(len(out))}}
	m, _ := loadedManager(t, sess)

	res, err := m.RunInference(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("run inference: %v", err)
	}
	if !res.IsClassification {
		t.Fatal("expected classification-shaped result")
	}
	if len(res.TopPredictions) != 5 {
		t.Fatalf("expected 5 predictions, got %d", len(res.TopPredictions))
	}
	if res.TopPredictions[0].ClassID != 7 {
		t.Fatalf("expected class 7 on top, got %+v", res.TopPredictions[0])
	}
	if res.TopPredictions[0].ClassName != "cock" {
		t.Fatalf("expected fallback label for class 7, got %q", res.TopPredictions[0].ClassName)
	}
	if sess.runs != 1 {
		t.Fatalf("expected one engine run, got %d", sess.runs)
	}
	if got := m.LastResult(); got != res {
		t.Fatal("outcome must be retained for later retrieval")
	}
}

func TestRunInferenceNonClassificationOutput(t *testing.T) {
	sess := &fakeSession{out: []float32{1, 2, 3, 4}, shape: []int64{1, 4}}
	m, _ := loadedManager(t, sess)

	res, err := m.RunInference(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("run inference: %v", err)
	}
	if res.IsClassification {
		t.Fatal("small output must not be treated as classification")
	}
	if len(res.TopPredictions) != 0 {
		t.Fatalf("expected no predictions, got %d", len(res.TopPredictions))
	}
	if res.Len() != 4 {
		t.Fatalf("expected raw data passthrough, got %d elements", res.Len())
	}
}

func TestRunInferenceTimingsAdditive(t *testing.T) {
	sess := &fakeSession{out: []float32{1}, shape: []int64{1, 1}}
	m, _ := loadedManager(t, sess)

	res, err := m.RunInference(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("run inference: %v", err)
	}
	sum := res.PreprocessingTimeMs + res.InferenceTimeMs + res.PostprocessingTimeMs
	if math.Abs(float64(res.TotalTimeMs-sum)) > 1e-3 {
		t.Fatalf("total %.4f != stage sum %.4f", res.TotalTimeMs, sum)
	}
	if res.PreprocessingTimeMs < 0 || res.InferenceTimeMs < 0 || res.PostprocessingTimeMs < 0 {
		t.Fatalf("negative stage timing: %+v", res)
	}
}

func TestRunInferenceEngineFailure(t *testing.T) {
	sess := &fakeSession{runErr: errBoom}
	m, _ := loadedManager(t, sess)

	_, err := m.RunInference(context.Background(), pngBytes(t))
	if err == nil || !IsInference(err) {
		t.Fatalf("expected inference error, got %v", err)
	}
	if m.LastResult() != nil {
		t.Fatal("no outcome must be retained on engine failure")
	}
}

func TestRunInferenceOutputProcessingFailure(t *testing.T) {
	sess := &fakeSession{runErr: engine.ErrOutputProcessing("no output from model")}
	m, _ := loadedManager(t, sess)

	_, err := m.RunInference(context.Background(), pngBytes(t))
	if err == nil || !engine.IsOutputProcessing(err) {
		t.Fatalf("expected output-processing error, got %v", err)
	}
	if IsInference(err) {
		t.Fatal("output-processing failure must keep its own kind")
	}
}

func TestRunInferenceCanceledContext(t *testing.T) {
	sess := &fakeSession{out: []float32{1}, shape: []int64{1, 1}}
	m, _ := loadedManager(t, sess)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.RunInference(ctx, pngBytes(t)); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if sess.runs != 0 {
		t.Fatal("engine must not run after cancellation")
	}
}

func TestRunInferenceOutcomeReplacedOnNextSuccess(t *testing.T) {
	out := make([]float32, labels.MinClassCount)
	sess := &fakeSession{out: out, shape: []int64{1, int64(len(out))}}
	m, _ := loadedManager(t, sess)

	first, err := m.RunInference(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := m.RunInference(context.Background(), pngBytes(t))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if m.LastResult() != second || m.LastResult() == first {
		t.Fatal("last outcome must track the most recent success")
	}
}
