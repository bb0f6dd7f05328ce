// Package process provides types and interfaces for controlling and
// enumerating system processes.
package process

// ProcessID represents a unique identifier for a process
type ProcessID uint32

// ThreadID represents a unique identifier for a thread
type ThreadID uint32

// ProcessInfo describes one process found by a system-wide enumeration.
// Values are rebuilt on every enumeration call and never cached.
type ProcessInfo struct {
	PID       ProcessID    // Process ID
	ImageName string       // Executable image name, empty if unavailable
	Threads   []ThreadInfo // Thread records, only filled when requested
}

// ThreadInfo describes one thread of an enumerated process
type ThreadInfo struct {
	TID          ThreadID // Thread ID
	StartAddress uint64   // Thread start address
	MainThread   bool     // Set on the thread with the earliest creation time
}

// CreateOptions controls CreateAndAttach behavior
type CreateOptions struct {
	Suspended bool   // Leave the primary thread suspended
	ForceInit bool   // With Suspended, force loader initialization via a second thread
	CmdLine   string // Command line passed to the new process
	WorkDir   string // Startup directory, empty for inherited
}

// DefaultCreateOptions returns the options CreateAndAttach assumes when the
// caller has no special requirements: resume immediately, force init when
// suspended.
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{ForceInit: true}
}
