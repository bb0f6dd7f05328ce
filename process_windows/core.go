//go:build windows

// Package process_windows implements the process.Controller and
// process.Enumerator interfaces for Windows systems.
package process_windows

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"

	"procctl/process"
)

// Process access rights
const (
	PROCESS_TERMINATE         = 0x0001
	PROCESS_CREATE_THREAD     = 0x0002
	PROCESS_VM_OPERATION      = 0x0008
	PROCESS_VM_READ           = 0x0010
	PROCESS_VM_WRITE          = 0x0020
	PROCESS_DUP_HANDLE        = 0x0040
	PROCESS_SET_QUOTA         = 0x0100
	PROCESS_QUERY_INFORMATION = 0x0400
	PROCESS_SUSPEND_RESUME    = 0x0800
	PROCESS_ALL_ACCESS        = 0x1F0FFF
)

// DefaultAccess is the access mask requested when the caller passes zero.
// Enough for memory access, thread control and remote execution.
const DefaultAccess = PROCESS_QUERY_INFORMATION |
	PROCESS_VM_READ |
	PROCESS_VM_WRITE |
	PROCESS_VM_OPERATION |
	PROCESS_CREATE_THREAD |
	PROCESS_SET_QUOTA |
	PROCESS_TERMINATE |
	PROCESS_SUSPEND_RESUME |
	PROCESS_DUP_HANDLE

// Core owns the native process handle. A core is either closed (no handle)
// or holds exactly one handle it will close itself; ownership is never
// shared.
type Core struct {
	handle windows.Handle
	pid    process.ProcessID
	access uint32
	mu     sync.Mutex
}

// Open acquires a handle to the process identified by pid. Any previously
// held handle is closed first.
func (c *Core) Open(pid process.ProcessID, access uint32) error {
	if access == 0 {
		access = DefaultAccess
	}

	handle, err := windows.OpenProcess(access, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("%w: pid %d: %v", process.ErrOpenProcess, pid, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	c.handle = handle
	c.pid = pid
	c.access = access
	return nil
}

// OpenHandle takes ownership of an existing handle. The previous owner must
// not close it afterward.
func (c *Core) OpenHandle(handle windows.Handle) error {
	if handle == 0 {
		return fmt.Errorf("%w: null handle", process.ErrOpenProcess)
	}

	pid, err := windows.GetProcessId(handle)
	if err != nil {
		return fmt.Errorf("%w: %v", process.ErrOpenProcess, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	c.handle = handle
	c.pid = process.ProcessID(pid)
	c.access = 0
	return nil
}

// Close releases the handle if one is held. Idempotent.
func (c *Core) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Core) closeLocked() {
	if c.handle != 0 {
		windows.CloseHandle(c.handle)
	}
	c.handle = 0
	c.pid = 0
	c.access = 0
}

// Handle returns the owned handle, zero when closed
func (c *Core) Handle() windows.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// PID returns the bound process id, zero when closed
func (c *Core) PID() process.ProcessID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pid
}
