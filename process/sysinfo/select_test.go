package sysinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procctl/process"
)

func testRecords() []ProcessRecord {
	return []ProcessRecord{
		{PID: 0},
		{PID: 804, ImageName: "svchost.exe"},
		{PID: 4, ImageName: "System"},
		{PID: 2100, ImageName: "Notepad.exe", Threads: []ThreadRecord{
			{TID: 10, StartAddress: 0x1000, CreateTime: 300},
			{TID: 11, StartAddress: 0x2000, CreateTime: 100},
			{TID: 12, StartAddress: 0x3000, CreateTime: 100},
		}},
		{PID: 404, ImageName: "svchost.exe"},
	}
}

func TestSelectMatchAll(t *testing.T) {
	out := Select(testRecords(), 0, "", true)
	require.Len(t, out, 4, "idle record excluded")

	pids := make([]process.ProcessID, 0, len(out))
	for _, p := range out {
		pids = append(pids, p.PID)
	}
	assert.Equal(t, []process.ProcessID{4, 404, 804, 2100}, pids, "sorted ascending")
}

func TestSelectByName(t *testing.T) {
	out := Select(testRecords(), 0, "SVCHOST.EXE", false)
	require.Len(t, out, 2, "case-insensitive name match")
	assert.Equal(t, process.ProcessID(404), out[0].PID)
	assert.Equal(t, process.ProcessID(804), out[1].PID)
}

func TestSelectByPid(t *testing.T) {
	out := Select(testRecords(), 2100, "", false)
	require.Len(t, out, 1)
	assert.Equal(t, "Notepad.exe", out[0].ImageName)
	assert.Empty(t, out[0].Threads, "threads omitted unless requested")
}

func TestSelectNoMatch(t *testing.T) {
	assert.Empty(t, Select(testRecords(), 999999, "nosuch.exe", false))
}

func TestSelectMainThreadHeuristic(t *testing.T) {
	out := Select(testRecords(), 2100, "", true)
	require.Len(t, out, 1)
	require.Len(t, out[0].Threads, 3)

	mains := 0
	for _, th := range out[0].Threads {
		if th.MainThread {
			mains++
		}
	}
	assert.Equal(t, 1, mains, "exactly one main thread")

	// Smallest creation time wins; tie broken by first occurrence
	assert.True(t, out[0].Threads[1].MainThread)
	assert.False(t, out[0].Threads[2].MainThread)
}

func TestSelectSingleThreadIsMain(t *testing.T) {
	records := []ProcessRecord{{PID: 7, ImageName: "a.exe", Threads: []ThreadRecord{{TID: 1}}}}
	out := Select(records, 0, "", true)
	require.Len(t, out, 1)
	require.Len(t, out[0].Threads, 1)
	assert.True(t, out[0].Threads[0].MainThread)
}
