//go:build windows

package process_windows

import (
	"strings"
	"sync"
)

// ManualMap tracks images manually mapped into the target so Detach can
// forget them. The mapping work itself is performed by callers; only the
// bookkeeping lives here.
type ManualMap struct {
	mu     sync.Mutex
	images map[string]uintptr // lowercase image name -> remote base
}

func newManualMap() *ManualMap {
	return &ManualMap{}
}

func (m *ManualMap) Name() string { return "mmap" }

// Reset forgets all tracked images
func (m *ManualMap) Reset() {
	m.mu.Lock()
	m.images = nil
	m.mu.Unlock()
}

// Track records a mapped image
func (m *ManualMap) Track(name string, base uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.images == nil {
		m.images = make(map[string]uintptr)
	}
	m.images[strings.ToLower(name)] = base
}

// Base returns the remote base of a tracked image, zero if unknown
func (m *ManualMap) Base(name string) uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images[strings.ToLower(name)]
}
