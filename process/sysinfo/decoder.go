package sysinfo

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// 64-bit process record header layout, stable across the revisions we
// support. Thread records follow the header immediately; only their size
// differs between revisions.
const (
	offNextEntry   = 0x00 // uint32, 0 terminates the chain
	offThreadCount = 0x04 // uint32
	offNameLength  = 0x38 // uint16, image name length in bytes
	offNameBuffer  = 0x40 // uint64, absolute pointer into the same buffer
	offProcessID   = 0x50 // uint64

	processHeaderSize = 0x100

	// thread record field offsets, shared by both revisions
	offThreadCreateTime = 0x10 // int64
	offThreadStartAddr  = 0x20 // uint64
	offThreadID         = 0x30 // uint64, ClientId.UniqueThread

	basicThreadSize    = 0x50 // SYSTEM_THREAD_INFORMATION
	extendedThreadSize = 0x88 // SYSTEM_EXTENDED_THREAD_INFORMATION
)

// chainDecoder walks the linked record chain for one layout revision
type chainDecoder struct {
	name       string
	threadSize uint64
}

// NewExtendedDecoder decodes the extended snapshot layout (information
// class 57, extended thread records).
func NewExtendedDecoder() Decoder {
	return &chainDecoder{name: "extended", threadSize: extendedThreadSize}
}

// NewBasicDecoder decodes the basic snapshot layout (information class 5)
func NewBasicDecoder() Decoder {
	return &chainDecoder{name: "basic", threadSize: basicThreadSize}
}

func (d *chainDecoder) Name() string { return d.name }

func (d *chainDecoder) Decode(buf []byte, base uint64) ([]ProcessRecord, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	var out []ProcessRecord
	size := uint64(len(buf))

	for off := uint64(0); ; {
		if off+processHeaderSize > size {
			return nil, fmt.Errorf("%w: record header at 0x%x exceeds buffer", ErrMalformedChain, off)
		}
		rec := buf[off:]

		next := uint64(binary.LittleEndian.Uint32(rec[offNextEntry:]))
		threadCount := uint64(binary.LittleEndian.Uint32(rec[offThreadCount:]))
		pid := binary.LittleEndian.Uint64(rec[offProcessID:])

		// Thread records must fit before the next record (or buffer end)
		recEnd := size - off
		if next != 0 {
			recEnd = next
		}
		if processHeaderSize+threadCount*d.threadSize > recEnd {
			return nil, fmt.Errorf("%w: %d thread records at 0x%x exceed record bounds", ErrMalformedChain, threadCount, off)
		}

		name, err := decodeImageName(buf, base, rec)
		if err != nil {
			return nil, err
		}

		p := ProcessRecord{PID: uint32(pid), ImageName: name}
		for i := uint64(0); i < threadCount; i++ {
			t := rec[processHeaderSize+i*d.threadSize:]
			p.Threads = append(p.Threads, ThreadRecord{
				TID:          uint32(binary.LittleEndian.Uint64(t[offThreadID:])),
				StartAddress: binary.LittleEndian.Uint64(t[offThreadStartAddr:]),
				CreateTime:   int64(binary.LittleEndian.Uint64(t[offThreadCreateTime:])),
			})
		}
		out = append(out, p)

		if next == 0 {
			break
		}
		if next < processHeaderSize {
			return nil, fmt.Errorf("%w: next offset 0x%x at 0x%x overlaps record header", ErrMalformedChain, next, off)
		}
		off += next
	}

	return out, nil
}

// decodeImageName translates the record's embedded name pointer into a
// buffer offset and decodes the UTF-16LE string. A zero pointer or length
// yields an empty name (the idle and system records carry none).
func decodeImageName(buf []byte, base uint64, rec []byte) (string, error) {
	length := uint64(binary.LittleEndian.Uint16(rec[offNameLength:]))
	ptr := binary.LittleEndian.Uint64(rec[offNameBuffer:])
	if ptr == 0 || length == 0 {
		return "", nil
	}
	if ptr < base || ptr-base+length > uint64(len(buf)) {
		return "", fmt.Errorf("%w: image name pointer 0x%x escapes buffer", ErrMalformedChain, ptr)
	}

	raw := buf[ptr-base : ptr-base+length]
	u16 := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		u16 = append(u16, binary.LittleEndian.Uint16(raw[i:]))
	}
	return string(utf16.Decode(u16)), nil
}
