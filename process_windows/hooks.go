//go:build windows

package process_windows

import "sync"

// Hooks tracks hook sites installed in the target. Installation and removal
// mechanics are out of scope; the bookkeeping exists so Detach leaves no
// state referring to a closed handle.
type Hooks struct {
	mu    sync.Mutex
	sites map[uintptr]string // hooked address -> description
}

func newHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) Name() string { return "hooks" }

// Reset forgets all tracked hook sites
func (h *Hooks) Reset() {
	h.mu.Lock()
	h.sites = nil
	h.mu.Unlock()
}

// Track records an installed hook
func (h *Hooks) Track(addr uintptr, desc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sites == nil {
		h.sites = make(map[uintptr]string)
	}
	h.sites[addr] = desc
}

// Count returns the number of tracked hook sites
func (h *Hooks) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sites)
}
