//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"procctl/process"
)

var (
	modkernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procCreateRemoteThread = modkernel32.NewProc("CreateRemoteThread")
	procGetExitCodeThread  = modkernel32.NewProc("GetExitCodeThread")
)

// RemoteExec runs code inside the target. ExecDirect is synchronous: it
// blocks until the remotely invoked function returns or the configured
// timeout elapses.
type RemoteExec struct {
	core    *Core
	timeout time.Duration

	mu       sync.Mutex
	prepared bool
}

func newRemoteExec(core *Core, timeout time.Duration) *RemoteExec {
	return &RemoteExec{core: core, timeout: timeout}
}

func (r *RemoteExec) Name() string { return "remote" }

// InitEnvironment prepares the in-target call scaffolding. No code runs in
// the target here.
func (r *RemoteExec) InitEnvironment() error {
	if r.core.Handle() == 0 {
		return process.ErrProcessNotOpen
	}
	r.mu.Lock()
	r.prepared = true
	r.mu.Unlock()
	return nil
}

// Reset forgets the prepared environment
func (r *RemoteExec) Reset() {
	r.mu.Lock()
	r.prepared = false
	r.mu.Unlock()
}

// ExecDirect calls the function at addr inside the target with a single
// argument and blocks until it returns. The spawned thread handle is always
// closed.
func (r *RemoteExec) ExecDirect(addr, arg uintptr) (uint32, error) {
	handle := r.core.Handle()
	if handle == 0 {
		return 0, process.ErrProcessNotOpen
	}

	thread, _, callErr := procCreateRemoteThread.Call(
		uintptr(handle),
		0, // default security
		0, // default stack size
		addr,
		arg,
		0, // run immediately
		0, // thread id not needed
	)
	if thread == 0 {
		return 0, fmt.Errorf("create remote thread: %w", callErr)
	}
	defer windows.CloseHandle(windows.Handle(thread))

	timeoutMs := uint32(windows.INFINITE)
	if r.timeout > 0 {
		timeoutMs = uint32(r.timeout.Milliseconds())
	}

	event, err := windows.WaitForSingleObject(windows.Handle(thread), timeoutMs)
	if err != nil {
		return 0, fmt.Errorf("wait for remote call: %w", err)
	}
	if event != windows.WAIT_OBJECT_0 {
		return 0, fmt.Errorf("%w: call at 0x%x", process.ErrExecTimeout, addr)
	}

	var exitCode uint32
	ret, _, callErr := procGetExitCodeThread.Call(thread, uintptr(unsafe.Pointer(&exitCode)))
	if ret == 0 {
		return 0, fmt.Errorf("remote call exit code: %w", callErr)
	}
	return exitCode, nil
}
