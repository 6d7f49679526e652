package pipeline

import (
	"maps"
	"slices"
	"sync"
)

// MemoryWriter is a Writer that keeps outputs in memory.
type MemoryWriter struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ Writer = (*MemoryWriter)(nil)

// WriteFile stores a copy of data under path.
func (m *MemoryWriter) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = slices.Clone(data)
	return nil
}

// File returns what was written to path.
func (m *MemoryWriter) File(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	return data, ok
}

// Paths lists the written paths in sorted order.
func (m *MemoryWriter) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.files))
}
