package preprocess

// invalidImageError signals undecodable or unsupported image bytes.
type invalidImageError struct{ msg string }

func (e invalidImageError) Error() string { return "invalid image data: " + e.msg }

// ErrInvalidImage constructs an invalidImageError.
func ErrInvalidImage(msg string) error { return invalidImageError{msg: msg} }

// IsInvalidImage reports whether err indicates bad image input.
func IsInvalidImage(err error) bool {
	_, ok := err.(invalidImageError)
	return ok
}
