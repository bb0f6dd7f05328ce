//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"procctl/process/sysinfo"
)

// System information classes for the privileged process snapshot. The
// extended class carries larger thread records with extra fields; older
// kernels only implement the basic one.
const (
	classProcessInformation         = 5
	classExtendedProcessInformation = 57
)

// systemQuerier adapts NtQuerySystemInformation to the sysinfo contract
type systemQuerier struct {
	class int32
}

func (q systemQuerier) Query(buf []byte) (uint32, error) {
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}

	var retLen uint32
	err := windows.NtQuerySystemInformation(q.class, ptr, uint32(len(buf)), &retLen)
	if err != nil {
		var status windows.NTStatus
		if errors.As(err, &status) &&
			(status == windows.STATUS_INFO_LENGTH_MISMATCH || status == windows.STATUS_BUFFER_TOO_SMALL) {
			return retLen, fmt.Errorf("%w: 0x%x bytes required", sysinfo.ErrInsufficientBuffer, retLen)
		}
		return 0, err
	}
	return retLen, nil
}

// newSnapshotEngine probes which record layout the kernel implements and
// pairs the querier with the matching decoder. Probed once per engine, not
// compiled in.
func newSnapshotEngine() *sysinfo.Engine {
	class := int32(classExtendedProcessInformation)
	dec := sysinfo.NewExtendedDecoder()

	var retLen uint32
	err := windows.NtQuerySystemInformation(class, nil, 0, &retLen)
	var status windows.NTStatus
	if errors.As(err, &status) && status == windows.STATUS_INVALID_INFO_CLASS {
		class = classProcessInformation
		dec = sysinfo.NewBasicDecoder()
	}

	return sysinfo.NewEngine(systemQuerier{class: class}, dec, nil)
}
