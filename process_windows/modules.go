//go:build windows

package process_windows

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"procctl/process"
)

// Modules tracks the target's loaded modules and resolves exports inside
// them. The module cache primes lazily from a toolhelp snapshot and empties
// on Reset.
type Modules struct {
	core *Core
	mu   sync.Mutex
	mods map[string]uintptr // lowercase module name -> remote base
}

func newModules(core *Core) *Modules {
	return &Modules{core: core}
}

func (m *Modules) Name() string { return "modules" }

// Reset drops the module cache
func (m *Modules) Reset() {
	m.mu.Lock()
	m.mods = nil
	m.mu.Unlock()
}

// RemoteBase returns the load address of the named module in the target
func (m *Modules) RemoteBase(name string) (uintptr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mods == nil {
		mods, err := m.snapshotModules()
		if err != nil {
			return 0, err
		}
		m.mods = mods
	}

	base, ok := m.mods[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("module %q not found in target", name)
	}
	return base, nil
}

// ResolveExport resolves an export address inside the target: remote module
// base plus the export's RVA taken from the same module loaded locally.
func (m *Modules) ResolveExport(module, export string) (uintptr, error) {
	proc := windows.NewLazySystemDLL(module).NewProc(export)
	if err := proc.Find(); err != nil {
		return 0, fmt.Errorf("%w: %s!%s: %v", process.ErrExportNotFound, module, export, err)
	}

	modulePtr, err := windows.UTF16PtrFromString(module)
	if err != nil {
		return 0, fmt.Errorf("%w: module name %q: %v", process.ErrExportNotFound, module, err)
	}
	localBase, err := windows.GetModuleHandle(modulePtr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s not loaded locally: %v", process.ErrExportNotFound, module, err)
	}
	rva := proc.Addr() - uintptr(localBase)

	remoteBase, err := m.RemoteBase(module)
	if err != nil {
		// ntdll maps at one system-wide base chosen per boot; a suspended
		// target has it mapped before the loader has built the module list
		// the snapshot reads.
		if strings.EqualFold(module, "ntdll.dll") {
			return uintptr(localBase) + rva, nil
		}
		return 0, fmt.Errorf("%w: %s!%s: %v", process.ErrExportNotFound, module, export, err)
	}

	return remoteBase + rva, nil
}

func (m *Modules) snapshotModules() (map[string]uintptr, error) {
	pid := m.core.PID()
	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(
		windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("create module snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	mods := make(map[string]uintptr)
	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		name := strings.ToLower(windows.UTF16ToString(entry.Module[:]))
		mods[name] = entry.ModBaseAddr
	}
	return mods, nil
}
