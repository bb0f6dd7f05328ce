//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"procctl/process"
)

// WindowsProcess binds to one target process at a time and coordinates the
// subsystems operating against it. Not safe for concurrent use: an instance
// represents exclusive ownership of its binding and callers serialize access.
type WindowsProcess struct {
	core     Core
	registry process.Registry

	memory    *Memory
	modules   *Modules
	threads   *Threads
	hooks     *Hooks
	remote    *RemoteExec
	mmap      *ManualMap
	nativeLdr *NativeLoader
	enum      *Enumerator

	cfg process.Config
	log *logger.Logger
}

var (
	_ process.Controller = (*WindowsProcess)(nil)
	_ process.Enumerator = (*WindowsProcess)(nil)
)

// New creates a detached controller with default configuration
func New() *WindowsProcess {
	return NewWithConfig(process.DefaultConfig())
}

// NewWithConfig creates a detached controller. The configured privileges are
// enabled best-effort: a failure is logged and never aborts construction.
func NewWithConfig(cfg process.Config) *WindowsProcess {
	p := &WindowsProcess{
		cfg: cfg,
		log: notOpenLogger(),
	}

	p.memory = newMemory(&p.core)
	p.modules = newModules(&p.core)
	p.threads = newThreads(&p.core)
	p.hooks = newHooks()
	p.remote = newRemoteExec(&p.core, cfg.ExecTimeout)
	p.mmap = newManualMap()
	p.nativeLdr = newNativeLoader(&p.core)
	p.enum = NewEnumerator()

	// Teardown order: subsystems that reach into the target go first, while
	// the handle is still valid.
	p.registry.Register(p.memory)
	p.registry.Register(p.modules)
	p.registry.Register(p.remote)
	p.registry.Register(p.mmap)
	p.registry.Register(p.threads)
	p.registry.Register(p.hooks)
	p.registry.Register(p.nativeLdr)

	for _, priv := range cfg.Privileges {
		if err := GrantPrivilege(priv); err != nil {
			p.log.Warn("privilege not granted: ", err)
		}
	}

	return p
}

// NewWithPID creates a controller and attaches it to pid with default access
func NewWithPID(pid process.ProcessID) (*WindowsProcess, error) {
	p := New()
	if err := p.Attach(pid, 0); err != nil {
		return nil, err
	}
	return p, nil
}

// Attach binds to an existing process by id. A zero access mask selects
// DefaultAccess. On failure the controller stays detached.
func (p *WindowsProcess) Attach(pid process.ProcessID, access uint32) error {
	p.Detach()

	if err := p.core.Open(pid, access); err != nil {
		return err
	}
	p.onAttach()
	return nil
}

// AttachHandle binds to an existing process handle, taking ownership of it.
// The caller must not close the handle afterward.
func (p *WindowsProcess) AttachHandle(handle uintptr) error {
	p.Detach()

	if err := p.core.OpenHandle(windows.Handle(handle)); err != nil {
		return err
	}
	p.onAttach()
	return nil
}

// CreateAndAttach spawns path suspended and binds to it. Unless
// opts.Suspended is set the primary thread is resumed; a suspended target
// with opts.ForceInit is driven to its loader-initialized checkpoint via a
// second thread, never by resuming the original one. The creation thread
// handle is always closed. On partial failure after a successful spawn the
// target is left as created.
func (p *WindowsProcess) CreateAndAttach(path string, opts process.CreateOptions) error {
	return p.CreateAndAttachStartup(path, opts, nil)
}

// CreateAndAttachStartup is CreateAndAttach with additional startup
// parameters for the new process. A nil startup uses defaults.
func (p *WindowsProcess) CreateAndAttachStartup(path string, opts process.CreateOptions, startup *windows.StartupInfo) error {
	p.Detach()

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("%w: path %q: %v", process.ErrCreateProcess, path, err)
	}
	var cmdPtr *uint16
	if opts.CmdLine != "" {
		if cmdPtr, err = windows.UTF16PtrFromString(opts.CmdLine); err != nil {
			return fmt.Errorf("%w: command line: %v", process.ErrCreateProcess, err)
		}
	}
	var dirPtr *uint16
	if opts.WorkDir != "" {
		if dirPtr, err = windows.UTF16PtrFromString(opts.WorkDir); err != nil {
			return fmt.Errorf("%w: working directory: %v", process.ErrCreateProcess, err)
		}
	}

	if startup == nil {
		startup = &windows.StartupInfo{}
	}
	startup.Cb = uint32(unsafe.Sizeof(*startup))
	var pi windows.ProcessInformation

	err = windows.CreateProcess(pathPtr, cmdPtr, nil, nil, false,
		windows.CREATE_SUSPENDED, nil, dirPtr, startup, &pi)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", process.ErrCreateProcess, path, err)
	}
	defer windows.CloseHandle(pi.Thread)

	if err := p.core.OpenHandle(pi.Process); err != nil {
		return err
	}
	p.onAttach()

	if opts.Suspended {
		// Some loader work only happens once the process gets scheduled;
		// force it without touching the primary thread.
		if opts.ForceInit {
			return p.EnsureInitialized()
		}
		return nil
	}

	if _, err := windows.ResumeThread(pi.Thread); err != nil {
		p.log.Warn("resume primary thread: ", err)
	}
	return nil
}

// Detach resets every subsystem in teardown order, then closes the handle.
// Idempotent; the universal recovery action after any partial failure.
func (p *WindowsProcess) Detach() error {
	p.registry.ResetAll()
	p.core.Close()
	p.log = notOpenLogger()
	return nil
}

// Terminate requests OS-level termination with the given exit code. The
// binding stays attached; callers still Detach to release the handle.
func (p *WindowsProcess) Terminate(exitCode uint32) error {
	handle := p.core.Handle()
	if handle == 0 {
		return process.ErrProcessNotOpen
	}
	if err := windows.TerminateProcess(handle, exitCode); err != nil {
		return fmt.Errorf("terminate process %d: %w", p.core.PID(), err)
	}
	return nil
}

// Valid reports whether a handle is held and the target has not exited
func (p *WindowsProcess) Valid() bool {
	handle := p.core.Handle()
	if handle == 0 {
		return false
	}
	var exitCode uint32
	if err := windows.GetExitCodeProcess(handle, &exitCode); err != nil {
		return false
	}
	return exitCode == uint32(windows.STILL_ACTIVE)
}

// The loader bootstrap invokes a harmless, always-present, side-effect-free
// ntdll export inside the target.
const (
	bootstrapModule = "ntdll.dll"
	bootstrapExport = "NtYieldExecution"
)

// EnsureInitialized forces a suspended target past its loader-initialized
// checkpoint by invoking a harmless ntdll export inside it and waiting for
// the call to return. An unresolved export is reported without executing
// anything.
func (p *WindowsProcess) EnsureInitialized() error {
	return p.bootstrap(bootstrapModule, bootstrapExport)
}

func (p *WindowsProcess) bootstrap(module, export string) error {
	addr, err := p.modules.ResolveExport(module, export)
	if err != nil {
		return err
	}
	if _, err := p.remote.ExecDirect(addr, 0); err != nil {
		return fmt.Errorf("loader bootstrap: %w", err)
	}
	return nil
}

// PID returns the bound process id, zero when detached
func (p *WindowsProcess) PID() process.ProcessID { return p.core.PID() }

// Memory returns the memory access subsystem
func (p *WindowsProcess) Memory() *Memory { return p.memory }

// Modules returns the module tracking subsystem
func (p *WindowsProcess) Modules() *Modules { return p.modules }

// Threads returns the thread control subsystem
func (p *WindowsProcess) Threads() *Threads { return p.threads }

// EnumByName searches running processes by image name
func (p *WindowsProcess) EnumByName(name string) ([]process.ProcessID, error) {
	return p.enum.EnumByName(name)
}

// EnumByNameOrPid queries the privileged process snapshot
func (p *WindowsProcess) EnumByNameOrPid(pid process.ProcessID, name string, includeThreads bool) ([]process.ProcessInfo, error) {
	return p.enum.EnumByNameOrPid(pid, name, includeThreads)
}

func (p *WindowsProcess) onAttach() {
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange,
		fmt.Sprintf("process-%d", p.core.PID())))
	p.log.Infoln("Process attached")

	if err := p.nativeLdr.Init(); err != nil {
		p.log.Warn("native loader init: ", err)
	}
	if err := p.remote.InitEnvironment(); err != nil {
		p.log.Warn("remote environment init: ", err)
	}
}

func notOpenLogger() *logger.Logger {
	return logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
}
