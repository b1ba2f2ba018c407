package labels

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// MinClassCount is the minimum number of classes a classification model is
// expected to produce; the fallback label set is padded up to this size.
const MinClassCount = 1000

// fallbackLabels holds the first 15 ImageNet class names. Indices beyond this
// table resolve to synthetic "class_<i>" names until a real label file is
// loaded.
var fallbackLabels = []string{
	"tench",
	"goldfish",
	"great white shark",
	"tiger shark",
	"hammerhead",
	"electric ray",
	"stingray",
	"cock",
	"hen",
	"ostrich",
	"brambling",
	"goldfinch",
	"house finch",
	"junco",
	"indigo bunting",
}

// Store holds the active class-index → name mapping. The active set can be
// replaced wholesale by a load but is never partially mutated.
type Store struct {
	mu     sync.RWMutex
	loaded []string // nil until a successful load
}

func NewStore() *Store { return &Store{} }

// Labels returns the active label list if one was loaded; otherwise the
// fallback table padded with synthetic names up to MinClassCount. Never empty.
func (s *Store) Labels() []string {
	s.mu.RLock()
	if s.loaded != nil {
		out := make([]string, len(s.loaded))
		copy(out, s.loaded)
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	out := make([]string, 0, MinClassCount)
	out = append(out, fallbackLabels...)
	for i := len(out); i < MinClassCount; i++ {
		out = append(out, fmt.Sprintf("class_%d", i))
	}
	return out
}

// Count returns the size of the active label set.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loaded != nil {
		return len(s.loaded)
	}
	return MinClassCount
}

// LoadContent parses one label per non-empty trimmed line and atomically
// replaces the active set. The prior set is kept on any error.
func (s *Store) LoadContent(content string) (int, error) {
	var parsed []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parsed = append(parsed, line)
	}
	if len(parsed) == 0 {
		return 0, ErrLabelsLoading("labels content is empty")
	}
	s.mu.Lock()
	s.loaded = parsed
	s.mu.Unlock()
	return len(parsed), nil
}

// LoadFile reads a label file and delegates to LoadContent.
func (s *Store) LoadFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, ErrLabelsLoading(fmt.Sprintf("read labels file %s: %v", path, err))
	}
	return s.LoadContent(string(b))
}

// Resolve returns the label at index from the active-or-fallback list, or a
// synthetic name when index is out of range. Never fails.
func (s *Store) Resolve(index int) string {
	if index < 0 {
		return fmt.Sprintf("class_%d", index)
	}
	s.mu.RLock()
	if s.loaded != nil {
		if index < len(s.loaded) {
			name := s.loaded[index]
			s.mu.RUnlock()
			return name
		}
		s.mu.RUnlock()
		return fmt.Sprintf("class_%d", index)
	}
	s.mu.RUnlock()
	if index < len(fallbackLabels) {
		return fallbackLabels[index]
	}
	return fmt.Sprintf("class_%d", index)
}
