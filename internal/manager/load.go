package manager

import (
	"fmt"
	"os"
)

// Load reads the model at path and installs a fresh engine session in the
// cache slot, releasing any previously loaded session. Loading the path that
// is already live is an idempotent no-op; the second return reports that
// reuse. Concurrent loads are serialized; the last to install wins.
func (m *Manager) Load(path string) (reused bool, err error) {
	if path == "" {
		return false, ErrModelNotFound("(unspecified)")
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return false, ErrModelNotFound(path)
	}

	m.mu.Lock()
	if m.session != nil && m.modelPath == path {
		m.mu.Unlock()
		m.publisher.Publish(Event{Name: "load_reused", ModelPath: path})
		modelLoadsTotal.WithLabelValues("reused").Inc()
		return true, nil
	}
	m.mu.Unlock()

	m.publisher.Publish(Event{Name: "load_start", ModelPath: path})

	b, err := os.ReadFile(path)
	if err != nil {
		modelLoadsTotal.WithLabelValues("error").Inc()
		return false, ErrModelLoading(fmt.Sprintf("read model file %s: %v", path, err))
	}
	sess, err := m.engine.NewSession(b)
	if err != nil {
		modelLoadsTotal.WithLabelValues("error").Inc()
		return false, ErrSessionCreation(err.Error())
	}

	m.mu.Lock()
	old := m.session
	m.session = sess
	m.modelPath = path
	m.mu.Unlock()
	if old != nil {
		// Release the replaced session eagerly; its resources are not needed
		// for the remainder of the process.
		_ = old.Close()
	}

	m.publisher.Publish(Event{Name: "load_done", ModelPath: path, Fields: map[string]any{"bytes": len(b)}})
	modelLoadsTotal.WithLabelValues("loaded").Inc()
	return false, nil
}
