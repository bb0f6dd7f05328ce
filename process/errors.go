package process

import "errors"

var (
	// ErrProcessNotOpen is returned when an operation requiring an attached
	// process is attempted before Attach succeeds or after Detach.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrOpenProcess is returned when the target process could not be opened
	// (pid not found or access denied).
	ErrOpenProcess = errors.New("open process failed")

	// ErrCreateProcess is returned when spawning a new process image failed.
	ErrCreateProcess = errors.New("create process failed")

	// ErrExportNotFound is returned by the execution bootstrap when the
	// required export cannot be resolved in the target. The bootstrap never
	// invokes an unresolved address.
	ErrExportNotFound = errors.New("export not found")

	// ErrPrivilegeNotAssigned is returned when a privilege adjustment
	// succeeded at the API level but the privilege was not fully applied.
	ErrPrivilegeNotAssigned = errors.New("privilege not assigned")

	// ErrExecTimeout is returned when a remote call did not complete within
	// the configured timeout.
	ErrExecTimeout = errors.New("remote execution timed out")
)
