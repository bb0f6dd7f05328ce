//go:build windows

package process_windows

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"

	"procctl/process"
)

// Thread access rights
const (
	threadSuspendResume    = 0x0002
	threadQueryInformation = 0x0040

	threadAccess = threadSuspendResume | threadQueryInformation
)

// Threads controls threads of the target by id. Opened handles are cached
// and closed on Reset.
type Threads struct {
	core    *Core
	mu      sync.Mutex
	handles map[process.ThreadID]windows.Handle
}

func newThreads(core *Core) *Threads {
	return &Threads{core: core}
}

func (t *Threads) Name() string { return "threads" }

// Reset closes every cached thread handle
func (t *Threads) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.handles {
		windows.CloseHandle(h)
	}
	t.handles = nil
}

// Suspend suspends the thread, returning its previous suspend count
func (t *Threads) Suspend(tid process.ThreadID) (uint32, error) {
	h, err := t.open(tid)
	if err != nil {
		return 0, err
	}
	count, err := windows.SuspendThread(h)
	if err != nil {
		return 0, fmt.Errorf("suspend thread %d: %w", tid, err)
	}
	return count, nil
}

// Resume resumes the thread, returning its previous suspend count
func (t *Threads) Resume(tid process.ThreadID) (uint32, error) {
	h, err := t.open(tid)
	if err != nil {
		return 0, err
	}
	count, err := windows.ResumeThread(h)
	if err != nil {
		return 0, fmt.Errorf("resume thread %d: %w", tid, err)
	}
	return count, nil
}

func (t *Threads) open(tid process.ThreadID) (windows.Handle, error) {
	if t.core.Handle() == 0 {
		return 0, process.ErrProcessNotOpen
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.handles[tid]; ok {
		return h, nil
	}

	h, err := windows.OpenThread(threadAccess, false, uint32(tid))
	if err != nil {
		return 0, fmt.Errorf("open thread %d: %w", tid, err)
	}
	if t.handles == nil {
		t.handles = make(map[process.ThreadID]windows.Handle)
	}
	t.handles[tid] = h
	return h, nil
}
