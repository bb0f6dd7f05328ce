//go:build windows

package process_windows

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"procctl/process"
	"procctl/process/sysinfo"
)

// Enumerator discovers processes system-wide. Independent of any attachment;
// usable standalone.
type Enumerator struct {
	engine *sysinfo.Engine
	log    *logger.Logger
}

// NewEnumerator probes the kernel record layout and builds an enumerator
func NewEnumerator() *Enumerator {
	return &Enumerator{
		engine: newSnapshotEngine(),
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-enum")),
	}
}

// EnumByName returns the pids of every process whose image name matches
// case-insensitively. An empty name matches every process. Uses the toolhelp
// snapshot, a point-in-time and possibly stale primitive.
func (e *Enumerator) EnumByName(name string) ([]process.ProcessID, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("create process snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var found []process.ProcessID
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		exe := windows.UTF16ToString(entry.ExeFile[:])
		if name == "" || strings.EqualFold(exe, name) {
			found = append(found, process.ProcessID(entry.ProcessID))
		}
	}

	return found, nil
}

// EnumByNameOrPid queries the privileged snapshot and returns matching
// processes sorted by pid. Zero pid with an empty name matches everything;
// otherwise an exact pid or case-insensitive name match selects. Thread
// records are included when includeThreads is set, with the earliest-created
// thread marked as the main thread.
func (e *Enumerator) EnumByNameOrPid(pid process.ProcessID, name string, includeThreads bool) ([]process.ProcessInfo, error) {
	records, err := e.engine.Snapshot()
	if err != nil {
		return nil, err
	}

	found := sysinfo.Select(records, pid, name, includeThreads)
	e.log.Debugln("enumerated", len(found), "processes")
	return found, nil
}
