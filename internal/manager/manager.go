// Package manager owns the single-slot model session cache and the inference
// orchestration around it. One Manager is the explicit process handle for the
// cached session, the label store, and the last inference outcome; callers
// thread it through instead of relying on package globals.
package manager

import (
	"sync"
	"time"

	"classifyd/internal/engine"
	"classifyd/internal/labels"
	"classifyd/pkg/types"
)

// nowFunc is swapped in tests to control timing measurements.
var nowFunc = time.Now

type Manager struct {
	mu sync.Mutex
	// Guarded by mu: the one live session, its source path, and the retained
	// last outcome. Loads and runs are linearized by mu; the label store has
	// its own internal lock.
	session    engine.Session
	modelPath  string
	lastResult *types.InferenceResult

	engine    engine.Engine
	labels    *labels.Store
	registry  []types.Model
	publisher EventPublisher
	startTime time.Time
}

// IsLoaded reports whether a model session is held by the cache.
func (m *Manager) IsLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// LoadedPath returns the path of the currently loaded model, or empty.
func (m *Manager) LoadedPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelPath
}

// Ready reports whether the manager can serve inference requests.
func (m *Manager) Ready() bool { return m.IsLoaded() }

// LastResult returns the outcome retained from the most recent successful
// inference, or nil when none has completed yet.
func (m *Manager) LastResult() *types.InferenceResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}

// Snapshot returns a read-only view of the session cache.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{State: StateEmpty}
	if m.session != nil {
		s.State = StateLoaded
		s.ModelPath = m.modelPath
	}
	return s
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	snap := m.Snapshot()
	return types.StatusResponse{
		State:         string(snap.State),
		Loaded:        snap.State == StateLoaded,
		ModelPath:     snap.ModelPath,
		LabelCount:    m.labels.Count(),
		UptimeSeconds: int64(nowFunc().Sub(m.startTime).Seconds()),
	}
}

// ListModels returns a copy of the model registry.
func (m *Manager) ListModels() []types.Model {
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// LookupModel resolves a registry id to its entry.
func (m *Manager) LookupModel(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// LoadLabelsFile replaces the active label set from a file on disk.
func (m *Manager) LoadLabelsFile(path string) (int, error) {
	return m.labels.LoadFile(path)
}

// LoadLabelsContent replaces the active label set from raw text.
func (m *Manager) LoadLabelsContent(content string) (int, error) {
	return m.labels.LoadContent(content)
}

// Labels returns the active label list.
func (m *Manager) Labels() []string { return m.labels.Labels() }

// Close releases the live session, if any. The manager transitions back to
// empty and can load again afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.modelPath = ""
	m.mu.Unlock()
	if sess != nil {
		return sess.Close()
	}
	return nil
}
