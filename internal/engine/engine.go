// Package engine abstracts the neural-network execution runtime used by the
// session cache. The concrete backend is ONNX Runtime; the interfaces keep
// the manager and its tests independent of the native library.
package engine

// Engine builds inference sessions from raw model bytes.
type Engine interface {
	// NewSession parses modelBytes and returns a ready-to-run session.
	NewSession(modelBytes []byte) (Session, error)
}

// Session is a loaded, ready-to-run instance of the execution engine bound to
// one model's weights. Run is synchronous and runs to completion on the
// calling goroutine.
type Session interface {
	// Run submits an input tensor and returns the first output tensor's data
	// and shape.
	Run(data []float32, shape []int64) ([]float32, []int64, error)
	// Close releases the native resources backing the session.
	Close() error
}

// outputProcessingError signals a missing or untyped model output.
type outputProcessingError struct{ msg string }

func (e outputProcessingError) Error() string { return "failed to process output: " + e.msg }

// ErrOutputProcessing constructs an outputProcessingError.
func ErrOutputProcessing(msg string) error { return outputProcessingError{msg: msg} }

// IsOutputProcessing reports whether err indicates output extraction failure
// rather than engine execution failure.
func IsOutputProcessing(err error) bool {
	_, ok := err.(outputProcessingError)
	return ok
}
