package manager

import (
	"context"

	"classifyd/internal/engine"
	"classifyd/internal/postprocess"
	"classifyd/internal/preprocess"
	"classifyd/pkg/types"
)

// RunInference sequences preprocessing, engine execution, and postprocessing
// over imageBytes, measuring each stage. The total timing is the sum of the
// three stages. On any stage failure the remaining stages are skipped, that
// stage's error is returned, and no outcome is retained.
//
// ctx is consulted between stages only; the engine call itself is synchronous
// and cannot be interrupted.
func (m *Manager) RunInference(ctx context.Context, imageBytes []byte) (*types.InferenceResult, error) {
	prepStart := nowFunc()
	tensor, err := preprocess.FromBytes(imageBytes)
	if err != nil {
		inferencesTotal.WithLabelValues("invalid_image").Inc()
		return nil, err
	}
	prepMs := float32(nowFunc().Sub(prepStart).Seconds() * 1000)
	stageDuration.WithLabelValues("preprocess").Observe(nowFunc().Sub(prepStart).Seconds())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The engine call runs under the cache lock: loads and runs are
	// linearized against each other.
	inferStart := nowFunc()
	m.mu.Lock()
	sess := m.session
	if sess == nil {
		m.mu.Unlock()
		inferencesTotal.WithLabelValues("no_model").Inc()
		return nil, ErrModelNotFound("no model loaded, load a model first")
	}
	data, shape, err := sess.Run(tensor.Data, tensor.Shape)
	m.mu.Unlock()
	if err != nil {
		inferencesTotal.WithLabelValues("error").Inc()
		if engine.IsOutputProcessing(err) {
			return nil, err
		}
		return nil, ErrInference(err.Error())
	}
	inferMs := float32(nowFunc().Sub(inferStart).Seconds() * 1000)
	stageDuration.WithLabelValues("inference").Observe(nowFunc().Sub(inferStart).Seconds())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	postStart := nowFunc()
	isClassification, top := postprocess.Classify(data, m.labels)
	postMs := float32(nowFunc().Sub(postStart).Seconds() * 1000)
	stageDuration.WithLabelValues("postprocess").Observe(nowFunc().Sub(postStart).Seconds())

	result := types.NewInferenceResult(data, shape, isClassification, top, prepMs, inferMs, postMs)

	m.mu.Lock()
	m.lastResult = result
	m.mu.Unlock()

	m.publisher.Publish(Event{Name: "infer_done", ModelPath: m.LoadedPath(), Fields: map[string]any{
		"elements":          len(data),
		"is_classification": isClassification,
		"total_ms":          result.TotalTimeMs,
	}})
	inferencesTotal.WithLabelValues("ok").Inc()
	return result, nil
}
