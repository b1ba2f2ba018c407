package labels

// labelsLoadingError signals an empty or unreadable label source.
type labelsLoadingError struct{ msg string }

func (e labelsLoadingError) Error() string { return "failed to load labels: " + e.msg }

// ErrLabelsLoading constructs a labelsLoadingError.
func ErrLabelsLoading(msg string) error { return labelsLoadingError{msg: msg} }

// IsLabelsLoading reports whether err indicates a label-loading failure.
func IsLabelsLoading(err error) bool {
	_, ok := err.(labelsLoadingError)
	return ok
}
