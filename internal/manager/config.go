package manager

import (
	"classifyd/internal/engine"
	"classifyd/internal/labels"
	"classifyd/pkg/types"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Registry lists discoverable model files (may be empty).
	Registry []types.Model
	// Engine builds sessions from model bytes. Required.
	Engine engine.Engine
	// Labels is the active label store. A fresh store is created when nil.
	Labels *labels.Store
	// Publisher receives lifecycle events. Defaults to a no-op publisher.
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		engine:   cfg.Engine,
		registry: cfg.Registry,
		labels:   cfg.Labels,
	}
	if m.labels == nil {
		m.labels = labels.NewStore()
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	} else {
		m.publisher = noopPublisher{}
	}
	m.startTime = nowFunc()
	return m
}

// New constructs a Manager with the given registry and engine and defaults
// for everything else.
func New(reg []types.Model, eng engine.Engine) *Manager {
	return NewWithConfig(ManagerConfig{Registry: reg, Engine: eng})
}
