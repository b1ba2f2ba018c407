package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"classifyd/internal/engine"
	"classifyd/internal/httpapi"
	"classifyd/internal/manager"
	"classifyd/internal/registry"
)

// stubSession returns the same output vector for every Run call.
type stubSession struct {
	out   []float32
	shape []int64
}

func (s *stubSession) Run(_ []float32, _ []int64) ([]float32, []int64, error) {
	return s.out, s.shape, nil
}

func (s *stubSession) Close() error { return nil }

// stubEngine builds stub sessions regardless of the model bytes, so the
// full HTTP stack can be exercised without the native runtime library.
type stubEngine struct {
	out   []float32
	shape []int64
}

func (e *stubEngine) NewSession(_ []byte) (engine.Session, error) {
	return &stubSession{out: e.out, shape: e.shape}, nil
}

// classifierEngine produces a 1000-class logit vector peaking at the given index.
func classifierEngine(peak int) *stubEngine {
	out := make([]float32, 1000)
	out[peak] = 10
	return &stubEngine{out: out, shape: []int64{1, 1000}}
}

// createTempModelsDir creates a temporary directory populated with small .onnx
// files and returns the directory path and the list of model IDs (filenames).
func createTempModelsDir(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("onnx"), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir, names
}

func newServerForDir(t *testing.T, modelsDir string, eng engine.Engine) (*httptest.Server, *manager.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	mgr := manager.New(reg, eng)
	mux := httpapi.NewMux(mgr)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPost(t *testing.T, url, contentType string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// pngBytes encodes a small uniform-color PNG for inference requests.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 64, B: 32, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
