package sysinfo

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingAllocator verifies every scratch buffer is released exactly once
type trackingAllocator struct {
	live     map[*byte]bool
	released int
	allocs   []int
}

func newTrackingAllocator() *trackingAllocator {
	return &trackingAllocator{live: map[*byte]bool{}}
}

func (a *trackingAllocator) Alloc(n int) []byte {
	buf := make([]byte, n)
	a.live[&buf[0]] = true
	a.allocs = append(a.allocs, n)
	return buf
}

func (a *trackingAllocator) Release(buf []byte) {
	key := &buf[0]
	if !a.live[key] {
		panic("release of unknown or already released buffer")
	}
	delete(a.live, key)
	a.released++
}

// fakeQuerier mimics the kernel contract: insufficient-size with the exact
// required size until the buffer is big enough, then writes the chain.
type fakeQuerier struct {
	procs     []synthProc
	failAfter bool // keep reporting insufficient size even after resize
	calls     int
	sizes     []int
}

func (q *fakeQuerier) Query(buf []byte) (uint32, error) {
	q.calls++
	q.sizes = append(q.sizes, len(buf))

	base := uint64(uintptr(unsafe.Pointer(&buf[0])))
	chain := buildChain(base, extendedThreadSize, q.procs)
	if q.failAfter || len(buf) < len(chain) {
		return uint32(len(chain)), ErrInsufficientBuffer
	}
	copy(buf, chain)
	return uint32(len(chain)), nil
}

func TestSnapshotRetriesWithExactReportedSize(t *testing.T) {
	alloc := newTrackingAllocator()
	q := &fakeQuerier{procs: []synthProc{
		{pid: 4, name: "System"},
		{pid: 1234, name: "notepad.exe", threads: []synthThread{{tid: 5, createTime: 9}}},
	}}
	eng := NewEngine(q, NewExtendedDecoder(), alloc)

	records, err := eng.Snapshot()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "notepad.exe", records[1].ImageName)

	// First query uses the fixed scratch size, the retry exactly the
	// reported requirement. No further growth loop.
	require.Equal(t, 2, q.calls)
	assert.Equal(t, initialBufferSize, q.sizes[0])
	assert.Equal(t, q.sizes[1], alloc.allocs[1])

	assert.Empty(t, alloc.live, "all buffers released")
	assert.Equal(t, 2, alloc.released)
}

func TestSnapshotFailsAfterSingleRetry(t *testing.T) {
	alloc := newTrackingAllocator()
	q := &fakeQuerier{procs: []synthProc{{pid: 4, name: "System"}}, failAfter: true}
	eng := NewEngine(q, NewExtendedDecoder(), alloc)

	_, err := eng.Snapshot()
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Equal(t, 2, q.calls, "exactly one retry")
	assert.Empty(t, alloc.live, "buffers released on failure path")
}

func TestSnapshotReleasesBufferOnDecodeFailure(t *testing.T) {
	alloc := newTrackingAllocator()
	q := &corruptQuerier{}
	eng := NewEngine(q, NewExtendedDecoder(), alloc)

	_, err := eng.Snapshot()
	assert.ErrorIs(t, err, ErrMalformedChain)
	assert.Empty(t, alloc.live, "buffers released on parse failure")
}

// corruptQuerier reports success but writes a chain whose next offset
// escapes the buffer.
type corruptQuerier struct{}

func (q *corruptQuerier) Query(buf []byte) (uint32, error) {
	base := uint64(uintptr(unsafe.Pointer(&buf[0])))
	chain := buildChain(base, extendedThreadSize, []synthProc{{pid: 4}})
	if len(buf) < len(chain) {
		return uint32(len(chain)), ErrInsufficientBuffer
	}
	copy(buf, chain)
	buf[offNextEntry] = 0xff // next record far outside the buffer
	return uint32(len(chain)), nil
}

func TestSnapshotRejectsZeroRequiredSize(t *testing.T) {
	alloc := newTrackingAllocator()
	eng := NewEngine(zeroSizeQuerier{}, NewExtendedDecoder(), alloc)

	_, err := eng.Snapshot()
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Empty(t, alloc.live)
}

type zeroSizeQuerier struct{}

func (zeroSizeQuerier) Query([]byte) (uint32, error) { return 0, ErrInsufficientBuffer }
