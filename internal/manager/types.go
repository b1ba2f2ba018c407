package manager

// State represents the lifecycle state of the session cache.
type State string

const (
	StateEmpty  State = "empty"
	StateLoaded State = "loaded"
)

// Snapshot is a read-only projection of the session cache.
type Snapshot struct {
	State     State
	ModelPath string
}
