package sysinfo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = uint64(0x7ff600000000)

func TestDecodeTwoRecordChain(t *testing.T) {
	for _, tc := range []struct {
		name       string
		dec        Decoder
		threadSize int
	}{
		{"extended", NewExtendedDecoder(), extendedThreadSize},
		{"basic", NewBasicDecoder(), basicThreadSize},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := buildChain(testBase, tc.threadSize, []synthProc{
				{pid: 0, name: ""},
				{pid: 4212, name: "notepad.exe", threads: []synthThread{
					{tid: 100, startAddr: 0x7ff600001000, createTime: 50},
					{tid: 101, startAddr: 0x7ff600002000, createTime: 20},
				}},
			})

			records, err := tc.dec.Decode(buf, testBase)
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.Equal(t, uint32(0), records[0].PID)
			assert.Empty(t, records[0].ImageName)
			assert.Empty(t, records[0].Threads)

			assert.Equal(t, uint32(4212), records[1].PID)
			assert.Equal(t, "notepad.exe", records[1].ImageName)
			require.Len(t, records[1].Threads, 2)
			assert.Equal(t, uint32(100), records[1].Threads[0].TID)
			assert.Equal(t, uint64(0x7ff600001000), records[1].Threads[0].StartAddress)
			assert.Equal(t, int64(50), records[1].Threads[0].CreateTime)
			assert.Equal(t, uint32(101), records[1].Threads[1].TID)
		})
	}
}

func TestDecodeEmptyBuffer(t *testing.T) {
	records, err := NewExtendedDecoder().Decode(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	buf := buildChain(testBase, extendedThreadSize, []synthProc{{pid: 8, name: "smss.exe"}})
	_, err := NewExtendedDecoder().Decode(buf[:processHeaderSize-1], testBase)
	assert.ErrorIs(t, err, ErrMalformedChain)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestDecodeThreadCountEscapesBuffer(t *testing.T) {
	buf := buildChain(testBase, extendedThreadSize, []synthProc{{pid: 8}})
	binary.LittleEndian.PutUint32(buf[offThreadCount:], 1000)
	_, err := NewExtendedDecoder().Decode(buf, testBase)
	assert.ErrorIs(t, err, ErrMalformedChain)
}

func TestDecodeNextOffsetEscapesBuffer(t *testing.T) {
	buf := buildChain(testBase, extendedThreadSize, []synthProc{{pid: 8}})
	binary.LittleEndian.PutUint32(buf[offNextEntry:], uint32(len(buf)+8))
	_, err := NewExtendedDecoder().Decode(buf, testBase)
	assert.ErrorIs(t, err, ErrMalformedChain)
}

func TestDecodeNextOffsetOverlapsHeader(t *testing.T) {
	buf := buildChain(testBase, extendedThreadSize, []synthProc{{pid: 8}, {pid: 9}})
	binary.LittleEndian.PutUint32(buf[offNextEntry:], 8)
	_, err := NewExtendedDecoder().Decode(buf, testBase)
	assert.ErrorIs(t, err, ErrMalformedChain)
}

func TestDecodeNamePointerEscapesBuffer(t *testing.T) {
	buf := buildChain(testBase, extendedThreadSize, []synthProc{{pid: 8, name: "smss.exe"}})

	t.Run("below base", func(t *testing.T) {
		b := append([]byte(nil), buf...)
		binary.LittleEndian.PutUint64(b[offNameBuffer:], testBase-0x10)
		_, err := NewExtendedDecoder().Decode(b, testBase)
		assert.ErrorIs(t, err, ErrMalformedChain)
	})

	t.Run("past end", func(t *testing.T) {
		b := append([]byte(nil), buf...)
		binary.LittleEndian.PutUint64(b[offNameBuffer:], testBase+uint64(len(b))-2)
		_, err := NewExtendedDecoder().Decode(b, testBase)
		assert.ErrorIs(t, err, ErrMalformedChain)
	})
}

func TestDecodeThreadsMustFitBeforeNextRecord(t *testing.T) {
	// Second record begins where the first record's declared thread array
	// would still be running.
	buf := buildChain(testBase, extendedThreadSize, []synthProc{
		{pid: 8, threads: []synthThread{{tid: 1}}},
		{pid: 9},
	})
	binary.LittleEndian.PutUint32(buf[offThreadCount:], 3)
	_, err := NewExtendedDecoder().Decode(buf, testBase)
	assert.ErrorIs(t, err, ErrMalformedChain)
}
