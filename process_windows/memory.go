//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"procctl/process"
)

// memRegion is one committed region of the target's address space
type memRegion struct {
	base uintptr
	size uintptr
}

// Memory provides read/write access to the target's address space with a
// lazily primed region cache. The cache empties on Reset and re-primes on
// the next validity check.
type Memory struct {
	core    *Core
	mu      sync.Mutex
	regions []memRegion
}

func newMemory(core *Core) *Memory {
	return &Memory{core: core}
}

func (m *Memory) Name() string { return "memory" }

// Reset drops the region cache
func (m *Memory) Reset() {
	m.mu.Lock()
	m.regions = nil
	m.mu.Unlock()
}

// Read copies size bytes from the target at addr
func (m *Memory) Read(addr uintptr, size int) ([]byte, error) {
	handle := m.core.Handle()
	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	var read uintptr
	if err := windows.ReadProcessMemory(handle, addr, &buf[0], uintptr(size), &read); err != nil {
		return nil, fmt.Errorf("read 0x%x: %w", addr, err)
	}
	if read != uintptr(size) {
		return nil, fmt.Errorf("read 0x%x incomplete: expected %d, got %d", addr, size, read)
	}
	return buf, nil
}

// Write copies data into the target at addr
func (m *Memory) Write(addr uintptr, data []byte) error {
	handle := m.core.Handle()
	if handle == 0 {
		return process.ErrProcessNotOpen
	}
	if len(data) == 0 {
		return nil
	}

	var written uintptr
	if err := windows.WriteProcessMemory(handle, addr, &data[0], uintptr(len(data)), &written); err != nil {
		return fmt.Errorf("write 0x%x: %w", addr, err)
	}
	if written != uintptr(len(data)) {
		return fmt.Errorf("write 0x%x incomplete: expected %d, got %d", addr, len(data), written)
	}
	return nil
}

// IsValidAddress reports whether addr falls in a committed region of the
// target. The region cache primes on first use after a Reset.
func (m *Memory) IsValidAddress(addr uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.regions == nil {
		m.regions = m.queryRegions()
	}
	for _, r := range m.regions {
		if addr >= r.base && addr < r.base+r.size {
			return true
		}
	}
	return false
}

func (m *Memory) queryRegions() []memRegion {
	handle := m.core.Handle()
	if handle == 0 {
		return nil
	}

	var regions []memRegion
	var mbi windows.MemoryBasicInformation
	for addr := uintptr(0); ; addr = mbi.BaseAddress + mbi.RegionSize {
		if err := windows.VirtualQueryEx(handle, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			break
		}
		if mbi.RegionSize == 0 {
			break
		}
		if mbi.State == windows.MEM_COMMIT {
			regions = append(regions, memRegion{base: mbi.BaseAddress, size: mbi.RegionSize})
		}
	}
	return regions
}
