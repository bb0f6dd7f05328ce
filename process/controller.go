package process

// Controller drives the lifecycle of one target-process binding. A controller
// instance represents exclusive ownership of that binding: concurrent calls
// into the same instance must be serialized by the caller.
type Controller interface {
	// Attach binds to an existing process by id with the given access mask
	// (0 selects the default mask). Any previous binding is detached first.
	Attach(pid ProcessID, access uint32) error

	// AttachHandle binds to an existing process handle. Ownership of the
	// handle transfers to the controller; the caller must not close it.
	AttachHandle(handle uintptr) error

	// CreateAndAttach spawns a new process image suspended and binds to it.
	// Unless opts.Suspended is set the primary thread is resumed. On partial
	// failure after creation the target is left as created, not rolled back.
	CreateAndAttach(path string, opts CreateOptions) error

	// Detach resets every subsystem, then releases the handle. Idempotent,
	// always succeeds.
	Detach() error

	// Terminate requests OS-level termination of the target. The binding
	// stays attached; callers still Detach to release the handle.
	Terminate(exitCode uint32) error

	// Valid reports whether a handle is held and the target has not exited
	Valid() bool
}

// Enumerator discovers processes system-wide. It is independent of any
// attachment and usable standalone.
type Enumerator interface {
	// EnumByName returns the pids of every process whose image name matches
	// case-insensitively, or all pids when name is empty.
	EnumByName(name string) ([]ProcessID, error)

	// EnumByNameOrPid returns processes selected by three match modes:
	// match-all (zero pid and empty name), match-by-pid, or case-insensitive
	// match-by-name. Results are sorted by pid ascending. The reserved idle
	// process (pid 0) is never included.
	EnumByNameOrPid(pid ProcessID, name string, includeThreads bool) ([]ProcessInfo, error)
}
