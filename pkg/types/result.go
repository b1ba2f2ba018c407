package types

import "fmt"

// Prediction is a single ranked classification entry.
type Prediction struct {
	// Zero-based class index into the active label set.
	// example: 1
	ClassID int `json:"class_id" example:"1"`
	// Resolved human-readable label for the class.
	// example: goldfish
	ClassName string `json:"class_name" example:"goldfish"`
	// Softmax confidence in [0,1].
	// example: 0.87
	Confidence float32 `json:"confidence" example:"0.87"`
}

func (p Prediction) String() string {
	return fmt.Sprintf("Class %d (%s): %.2f%%", p.ClassID, p.ClassName, p.Confidence*100)
}

// InferenceResult is the full outcome of one inference call: the raw output
// tensor, its shape, the ranked top predictions when the output is
// classification-shaped, and per-stage timings in milliseconds.
// Total is additive over the three stages, not wall-clock.
type InferenceResult struct {
	Data                 []float32    `json:"data"`
	Shape                []int64      `json:"shape"`
	IsClassification     bool         `json:"is_classification"`
	TopPredictions       []Prediction `json:"top_predictions"`
	PreprocessingTimeMs  float32      `json:"preprocessing_time_ms"`
	InferenceTimeMs      float32      `json:"inference_time_ms"`
	PostprocessingTimeMs float32      `json:"postprocessing_time_ms"`
	TotalTimeMs          float32      `json:"total_time_ms"`
}

// NewInferenceResult assembles a result and derives the total from the three
// stage timings.
func NewInferenceResult(data []float32, shape []int64, isClassification bool, top []Prediction, prepMs, inferMs, postMs float32) *InferenceResult {
	return &InferenceResult{
		Data:                 data,
		Shape:                shape,
		IsClassification:     isClassification,
		TopPredictions:       top,
		PreprocessingTimeMs:  prepMs,
		InferenceTimeMs:      inferMs,
		PostprocessingTimeMs: postMs,
		TotalTimeMs:          prepMs + inferMs + postMs,
	}
}

// Len returns the number of elements in the raw output.
func (r *InferenceResult) Len() int { return len(r.Data) }

// TopPrediction returns the highest-confidence entry, or nil if there is none.
func (r *InferenceResult) TopPrediction() *Prediction {
	if len(r.TopPredictions) == 0 {
		return nil
	}
	return &r.TopPredictions[0]
}

func (r *InferenceResult) String() string {
	s := fmt.Sprintf("InferenceResult: %d elements, %.2fms total", len(r.Data), r.TotalTimeMs)
	if r.IsClassification && len(r.TopPredictions) > 0 {
		s += ", Top: " + r.TopPredictions[0].String()
	}
	return s + fmt.Sprintf(" (prep: %.2fms, inference: %.2fms, post: %.2fms)",
		r.PreprocessingTimeMs, r.InferenceTimeMs, r.PostprocessingTimeMs)
}
