package engine

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// ORT is the ONNX Runtime backed Engine. Construct exactly one per process;
// the runtime environment is global to the native library.
type ORT struct{}

// NewORT initializes the ONNX Runtime environment. libraryPath optionally
// points at the onnxruntime shared library; empty uses the platform default.
func NewORT(libraryPath string) (*ORT, error) {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime environment: %w", err)
		}
	}
	return &ORT{}, nil
}

// Close tears down the runtime environment. Call only after all sessions are
// closed.
func (e *ORT) Close() error {
	return ort.DestroyEnvironment()
}

// NewSession parses modelBytes, discovers the model's input and output names,
// and builds a dynamic session over them.
func (e *ORT) NewSession(modelBytes []byte) (Session, error) {
	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(modelBytes)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model declares %d inputs and %d outputs", len(inputs), len(outputs))
	}
	inputNames := make([]string, len(inputs))
	for i, in := range inputs {
		inputNames[i] = in.Name
	}
	outputNames := make([]string, len(outputs))
	for i, out := range outputs {
		outputNames[i] = out.Name
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()

	sess, err := ort.NewDynamicAdvancedSessionWithONNXData(modelBytes, inputNames, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &ortSession{session: sess, outputCount: len(outputNames)}, nil
}

type ortSession struct {
	session     *ort.DynamicAdvancedSession
	outputCount int
}

func (s *ortSession) Run(data []float32, shape []int64) ([]float32, []int64, error) {
	input, err := ort.NewTensor(ort.NewShape(shape...), data)
	if err != nil {
		return nil, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	// Leave outputs nil so the runtime allocates them.
	outputs := make([]ort.Value, s.outputCount)
	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, nil, fmt.Errorf("run session: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, nil, ErrOutputProcessing("no output from model")
	}
	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, nil, ErrOutputProcessing("first output is not a float32 tensor")
	}
	// Copy out before the tensor is destroyed.
	outData := append([]float32(nil), tensor.GetData()...)
	outShape := append([]int64(nil), tensor.GetShape()...)
	return outData, outShape, nil
}

func (s *ortSession) Close() error {
	return s.session.Destroy()
}
