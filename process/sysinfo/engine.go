package sysinfo

import (
	"errors"
	"fmt"
	"unsafe"
)

// initialBufferSize is the scratch buffer tried first. Almost always too
// small for a full snapshot; the kernel then reports the exact size needed.
const initialBufferSize = 0x100

// Engine performs one privileged snapshot query with the single
// resize-and-retry round trip and hands the result to a decoder. The scratch
// buffer is released exactly once on every path.
type Engine struct {
	q     Querier
	dec   Decoder
	alloc Allocator
}

// NewEngine builds an engine. A nil allocator selects HeapAllocator.
func NewEngine(q Querier, dec Decoder, alloc Allocator) *Engine {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	return &Engine{q: q, dec: dec, alloc: alloc}
}

// Snapshot queries and decodes one system-wide process snapshot
func (e *Engine) Snapshot() ([]ProcessRecord, error) {
	buf := e.alloc.Alloc(initialBufferSize)

	used, err := e.q.Query(buf)
	if errors.Is(err, ErrInsufficientBuffer) {
		required := used
		e.alloc.Release(buf)
		if required == 0 {
			return nil, fmt.Errorf("%w: no required size reported", ErrQueryFailed)
		}
		buf = e.alloc.Alloc(int(required))
		used, err = e.q.Query(buf)
	}
	if err != nil {
		e.alloc.Release(buf)
		if errors.Is(err, ErrInsufficientBuffer) {
			return nil, fmt.Errorf("%w: buffer still insufficient after resize", ErrQueryFailed)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if uint64(used) > uint64(len(buf)) {
		e.alloc.Release(buf)
		return nil, fmt.Errorf("%w: reported length 0x%x exceeds buffer", ErrQueryFailed, used)
	}

	records, derr := e.dec.Decode(buf[:used], bufferBase(buf))
	e.alloc.Release(buf)
	if derr != nil {
		return nil, derr
	}
	return records, nil
}

// bufferBase is the virtual address the buffer occupied during the query,
// needed to translate embedded kernel pointers.
func bufferBase(buf []byte) uint64 {
	if len(buf) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&buf[0])))
}
