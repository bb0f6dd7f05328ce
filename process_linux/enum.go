//go:build linux

// Package process_linux implements process discovery for Linux systems by
// walking /proc. Lifecycle control of foreign processes (suspended creation,
// in-target execution) is Windows-only.
package process_linux

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"procctl/process"
)

// Enumerator discovers processes through /proc
type Enumerator struct {
	log *logger.Logger
}

var _ process.Enumerator = (*Enumerator)(nil)

// NewEnumerator creates a /proc-backed enumerator
func NewEnumerator() *Enumerator {
	return &Enumerator{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process-enum")),
	}
}

// EnumByName returns the pids of every process whose comm or exe basename
// matches case-insensitively. An empty name matches every process.
func (e *Enumerator) EnumByName(name string) ([]process.ProcessID, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	var found []process.ProcessID
	for _, entry := range entries {
		pid, ok := pidEntry(entry)
		if !ok {
			continue
		}
		if name == "" || matchesName(pid, name) {
			found = append(found, process.ProcessID(pid))
		}
	}
	return found, nil
}

// EnumByNameOrPid walks /proc and returns matching processes sorted by pid.
// Zero pid with an empty name matches everything; otherwise an exact pid or
// case-insensitive name match selects.
func (e *Enumerator) EnumByNameOrPid(pid process.ProcessID, name string, includeThreads bool) ([]process.ProcessInfo, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	matchAll := pid == 0 && name == ""
	var found []process.ProcessInfo
	for _, entry := range entries {
		p, ok := pidEntry(entry)
		if !ok {
			continue
		}
		comm := readComm(p)
		switch {
		case matchAll:
		case name != "" && strings.EqualFold(comm, name):
		case pid != 0 && process.ProcessID(p) == pid:
		default:
			continue
		}

		info := process.ProcessInfo{PID: process.ProcessID(p), ImageName: comm}
		if includeThreads {
			info.Threads = readThreads(p)
		}
		found = append(found, info)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].PID < found[j].PID })
	e.log.Debugln("enumerated", len(found), "processes")
	return found, nil
}

func pidEntry(entry os.DirEntry) (int, bool) {
	if !entry.IsDir() {
		return 0, false
	}
	pid, err := strconv.Atoi(entry.Name())
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func matchesName(pid int, name string) bool {
	if strings.EqualFold(readComm(pid), name) {
		return true
	}
	// Resolve the exe symlink as well; may fail for zombies or on permission
	exe, _ := os.Readlink(filepath.Join("/proc", strconv.Itoa(pid), "exe"))
	return exe != "" && strings.EqualFold(filepath.Base(exe), name)
}

func readComm(pid int) string {
	comm, _ := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	return strings.TrimSuffix(string(comm), "\n")
}

// readThreads lists the tasks of a process with their creation times taken
// from the starttime stat field. The earliest-created task is marked as the
// main thread, first occurrence winning a tie.
func readThreads(pid int) []process.ThreadInfo {
	taskDir := filepath.Join("/proc", strconv.Itoa(pid), "task")
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil
	}

	var threads []process.ThreadInfo
	var times []int64
	for _, entry := range entries {
		tid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		threads = append(threads, process.ThreadInfo{TID: process.ThreadID(tid)})
		times = append(times, readStartTime(pid, tid))
	}
	if len(threads) == 0 {
		return nil
	}

	main := 0
	for i, ts := range times {
		if ts < times[main] {
			main = i
		}
	}
	threads[main].MainThread = true
	return threads
}

// readStartTime parses field 22 (starttime) of /proc/[pid]/task/[tid]/stat.
// The comm field may contain spaces, so fields are counted after the
// closing parenthesis.
func readStartTime(pid, tid int) int64 {
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "task", strconv.Itoa(tid), "stat"))
	if err != nil {
		return 0
	}
	end := strings.LastIndexByte(string(stat), ')')
	if end < 0 {
		return 0
	}
	fields := strings.Fields(string(stat[end+1:]))
	// starttime is the 20th field after comm
	if len(fields) < 20 {
		return 0
	}
	ts, _ := strconv.ParseInt(fields[19], 10, 64)
	return ts
}
