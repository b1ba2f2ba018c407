package manager

// modelNotFoundError covers both a missing model file and an empty session
// cache. The HTTP layer maps it to 404.
type modelNotFoundError struct{ path string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.path }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(path string) error { return modelNotFoundError{path: path} }

// IsModelNotFound reports whether the error indicates a missing model.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// sessionCreationError signals that the execution engine rejected the model.
type sessionCreationError struct{ msg string }

func (e sessionCreationError) Error() string { return "failed to create session: " + e.msg }

// ErrSessionCreation constructs a sessionCreationError.
func ErrSessionCreation(msg string) error { return sessionCreationError{msg: msg} }

// IsSessionCreation reports whether err indicates session construction failure.
func IsSessionCreation(err error) bool {
	_, ok := err.(sessionCreationError)
	return ok
}

// modelLoadingError signals a failure reading model bytes from disk.
type modelLoadingError struct{ msg string }

func (e modelLoadingError) Error() string { return "failed to load model: " + e.msg }

// ErrModelLoading constructs a modelLoadingError.
func ErrModelLoading(msg string) error { return modelLoadingError{msg: msg} }

// IsModelLoading reports whether err indicates a model read failure.
func IsModelLoading(err error) bool {
	_, ok := err.(modelLoadingError)
	return ok
}

// inferenceError signals an engine execution failure.
type inferenceError struct{ msg string }

func (e inferenceError) Error() string { return "inference execution failed: " + e.msg }

// ErrInference constructs an inferenceError.
func ErrInference(msg string) error { return inferenceError{msg: msg} }

// IsInference reports whether err indicates engine execution failure.
func IsInference(err error) bool {
	_, ok := err.(inferenceError)
	return ok
}
