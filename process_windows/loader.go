//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"procctl/process"
)

// NativeLoader captures the target's loader environment, starting with its
// PEB address. Initialized once per successful attach.
type NativeLoader struct {
	core *Core

	mu      sync.Mutex
	pebBase uintptr
}

func newNativeLoader(core *Core) *NativeLoader {
	return &NativeLoader{core: core}
}

func (l *NativeLoader) Name() string { return "nativeLdr" }

// Init queries the target's basic information block
func (l *NativeLoader) Init() error {
	handle := l.core.Handle()
	if handle == 0 {
		return process.ErrProcessNotOpen
	}

	var pbi windows.PROCESS_BASIC_INFORMATION
	var retLen uint32
	err := windows.NtQueryInformationProcess(handle, windows.ProcessBasicInformation,
		unsafe.Pointer(&pbi), uint32(unsafe.Sizeof(pbi)), &retLen)
	if err != nil {
		return fmt.Errorf("query process information: %w", err)
	}

	l.mu.Lock()
	l.pebBase = uintptr(unsafe.Pointer(pbi.PebBaseAddress))
	l.mu.Unlock()
	return nil
}

// Reset forgets the captured loader environment
func (l *NativeLoader) Reset() {
	l.mu.Lock()
	l.pebBase = 0
	l.mu.Unlock()
}

// PEB returns the target's PEB address, zero before Init
func (l *NativeLoader) PEB() uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pebBase
}
