package sysinfo

import (
	"sort"
	"strings"

	"procctl/process"
)

// Select filters decoded records into caller-facing process infos. Three
// independent match modes: match-all (zero pid and empty name), match by
// exact pid, or case-insensitive exact name match. The reserved idle record
// (pid 0) is always skipped. Results are sorted by pid ascending.
func Select(records []ProcessRecord, pid process.ProcessID, name string, includeThreads bool) []process.ProcessInfo {
	matchAll := pid == 0 && name == ""

	var out []process.ProcessInfo
	for _, r := range records {
		if r.PID == 0 {
			continue
		}
		switch {
		case matchAll:
		case name != "" && strings.EqualFold(name, r.ImageName):
		case pid != 0 && uint32(pid) == r.PID:
		default:
			continue
		}

		info := process.ProcessInfo{
			PID:       process.ProcessID(r.PID),
			ImageName: r.ImageName,
		}
		if includeThreads && len(r.Threads) > 0 {
			info.Threads = make([]process.ThreadInfo, 0, len(r.Threads))
			main := 0
			for i, t := range r.Threads {
				info.Threads = append(info.Threads, process.ThreadInfo{
					TID:          process.ThreadID(t.TID),
					StartAddress: t.StartAddress,
				})
				// Smallest creation time wins, first occurrence on tie
				if t.CreateTime < r.Threads[main].CreateTime {
					main = i
				}
			}
			info.Threads[main].MainThread = true
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}
