// Package sysinfo parses system-wide process snapshots produced by a
// privileged kernel query. The kernel returns a chain of variable-length
// records linked by a next-offset field, with no stable schema across OS
// revisions, so parsing goes through schema-versioned decoders that walk the
// buffer with bounds checks instead of raw pointer arithmetic.
package sysinfo

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBuffer is reported by a Querier when the supplied
	// buffer is too small. Recoverable by exactly one retry: the kernel
	// reports the exact required size alongside it.
	ErrInsufficientBuffer = errors.New("insufficient buffer")

	// ErrQueryFailed is an unrecoverable snapshot failure
	ErrQueryFailed = errors.New("system query failed")

	// ErrMalformedChain rejects a record chain whose lengths or offsets
	// escape the buffer bounds. Treated as a query failure.
	ErrMalformedChain = fmt.Errorf("%w: malformed record chain", ErrQueryFailed)
)

// ProcessRecord is one decoded kernel process record
type ProcessRecord struct {
	PID       uint32
	ImageName string
	Threads   []ThreadRecord
}

// ThreadRecord is one decoded kernel thread record
type ThreadRecord struct {
	TID          uint32
	StartAddress uint64
	CreateTime   int64
}

// Querier performs one privileged snapshot query into buf. On success it
// returns the number of bytes written. When buf is too small it returns the
// required size together with ErrInsufficientBuffer.
type Querier interface {
	Query(buf []byte) (uint32, error)
}

// Decoder parses a raw snapshot buffer into process records. base is the
// virtual address the buffer occupied during the query; the kernel embeds
// absolute pointers (image names) that must be translated back into buffer
// offsets.
type Decoder interface {
	// Name identifies the record layout revision
	Name() string

	// Decode walks the record chain in buf
	Decode(buf []byte, base uint64) ([]ProcessRecord, error)
}

// Allocator provides the scratch buffer for one query. The engine releases
// every buffer it allocates exactly once, on success and on every failure
// path.
type Allocator interface {
	Alloc(n int) []byte
	Release(buf []byte)
}

// HeapAllocator is the default Allocator: plain make, release is a no-op
// left to the garbage collector.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (HeapAllocator) Release([]byte)     {}
