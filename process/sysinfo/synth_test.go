package sysinfo

import "encoding/binary"

// Synthetic snapshot buffers with the kernel record layout, used to exercise
// the decoders and the query engine without a live system.

type synthThread struct {
	tid        uint32
	startAddr  uint64
	createTime int64
}

type synthProc struct {
	pid     uint32
	name    string
	threads []synthThread
}

// buildChain lays out procs as a linked record chain as the kernel would,
// with image name pointers expressed relative to base.
func buildChain(base uint64, threadSize int, procs []synthProc) []byte {
	var buf []byte
	offsets := make([]int, len(procs))

	for i, p := range procs {
		start := len(buf)
		offsets[i] = start

		nameBytes := utf16Bytes(p.name)
		recLen := processHeaderSize + len(p.threads)*threadSize + len(nameBytes)
		recLen = (recLen + 7) &^ 7
		buf = append(buf, make([]byte, recLen)...)
		rec := buf[start:]

		binary.LittleEndian.PutUint32(rec[offThreadCount:], uint32(len(p.threads)))
		binary.LittleEndian.PutUint64(rec[offProcessID:], uint64(p.pid))

		for j, t := range p.threads {
			tr := rec[processHeaderSize+j*threadSize:]
			binary.LittleEndian.PutUint64(tr[offThreadCreateTime:], uint64(t.createTime))
			binary.LittleEndian.PutUint64(tr[offThreadStartAddr:], t.startAddr)
			binary.LittleEndian.PutUint64(tr[offThreadID:], uint64(t.tid))
		}

		if len(nameBytes) > 0 {
			nameOff := processHeaderSize + len(p.threads)*threadSize
			copy(rec[nameOff:], nameBytes)
			binary.LittleEndian.PutUint16(rec[offNameLength:], uint16(len(nameBytes)))
			binary.LittleEndian.PutUint64(rec[offNameBuffer:], base+uint64(start+nameOff))
		}

		if i > 0 {
			prev := buf[offsets[i-1]:]
			binary.LittleEndian.PutUint32(prev[offNextEntry:], uint32(start-offsets[i-1]))
		}
	}

	return buf
}

func utf16Bytes(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}
