package manager

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"classifyd/internal/engine"
)

// fakeSession records runs and returns canned output.
type fakeSession struct {
	out    []float32
	shape  []int64
	runErr error
	runs   int
	closed bool
}

func (s *fakeSession) Run(data []float32, shape []int64) ([]float32, []int64, error) {
	s.runs++
	if s.runErr != nil {
		return nil, nil, s.runErr
	}
	return s.out, s.shape, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeEngine hands out fakeSessions and counts constructions.
type fakeEngine struct {
	newErr   error
	next     *fakeSession
	sessions []*fakeSession
}

func (e *fakeEngine) NewSession(modelBytes []byte) (engine.Session, error) {
	if e.newErr != nil {
		return nil, e.newErr
	}
	s := e.next
	if s == nil {
		s = &fakeSession{out: []float32{0.5}, shape: []int64{1, 1}}
	}
	e.next = nil
	e.sessions = append(e.sessions, s)
	return s, nil
}

var errBoom = errors.New("boom")

// helper: create a small file standing in for a model
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("onnx-bytes"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	return p
}

// helper: encode a tiny valid PNG for inference input
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 64, B: 32, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
