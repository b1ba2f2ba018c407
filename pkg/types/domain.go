package types

// Model represents a discoverable ONNX model file on disk.
type Model struct {
	// Stable identifier for the model (the file name).
	// example: mobilenetv2-12.onnx
	ID string `json:"id" example:"mobilenetv2-12.onnx"`
	// Human-friendly name.
	// example: mobilenetv2-12.onnx
	Name string `json:"name" example:"mobilenetv2-12.onnx"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/mobilenetv2-12.onnx
	Path string `json:"path" example:"/home/user/models/mobilenetv2-12.onnx"`
}
