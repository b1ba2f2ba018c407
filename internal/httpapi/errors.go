package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"classifyd/pkg/types"
)

// errorRecorder retains the last error message so callers whose return
// channel cannot carry structured errors can fetch it separately. Only this
// boundary layer stashes error strings; the core returns rich errors.
type errorRecorder struct {
	mu   sync.Mutex
	msg  string
	seen bool
}

func (er *errorRecorder) record(msg string) {
	er.mu.Lock()
	er.msg = msg
	er.seen = true
	er.mu.Unlock()
}

func (er *errorRecorder) last() (string, bool) {
	er.mu.Lock()
	defer er.mu.Unlock()
	return er.msg, er.seen
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
