package types

// LoadRequest asks the server to load a model into the session cache.
// Exactly one of ID or Path should be set; ID refers to a registry entry.
type LoadRequest struct {
	// Registry model id (file name under the models dir).
	// example: mobilenetv2-12.onnx
	ID string `json:"id,omitempty" example:"mobilenetv2-12.onnx"`
	// Absolute path to a model file outside the registry.
	// example: /tmp/model.onnx
	Path string `json:"path,omitempty" example:"/tmp/model.onnx"`
}

// LoadResponse reports the outcome of a model load.
type LoadResponse struct {
	// Path of the model now held by the session cache.
	Path string `json:"path"`
	// True when the request named the already-loaded model and no reload occurred.
	Reused bool `json:"reused"`
}

// LabelsRequest asks the server to load class labels from a file on disk.
// When the request body is plain text the content itself is the label list.
type LabelsRequest struct {
	// Path to a label file (one label per line).
	// example: /tmp/imagenet_classes.txt
	Path string `json:"path" example:"/tmp/imagenet_classes.txt"`
}

// LabelsResponse reports the number of labels now active.
type LabelsResponse struct {
	Count int `json:"count"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// StatusResponse describes the session cache for GET /status.
type StatusResponse struct {
	// Lifecycle state: empty or loaded.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// True when a model session is held by the cache.
	Loaded bool `json:"loaded"`
	// Path of the loaded model, empty when none.
	ModelPath string `json:"model_path,omitempty"`
	// Number of labels in the active label set.
	// example: 1000
	LabelCount int `json:"label_count" example:"1000"`
	// Seconds since the server started.
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid image data
	Error string `json:"error" example:"invalid image data"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
