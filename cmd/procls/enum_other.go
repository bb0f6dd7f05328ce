//go:build !linux && !windows

package main

import (
	"fmt"
	"runtime"

	"procctl/process"
)

// unsupportedEnumerator keeps the command buildable everywhere; discovery is
// only implemented for Windows and Linux.
type unsupportedEnumerator struct{}

func newEnumerator() process.Enumerator { return unsupportedEnumerator{} }

func (unsupportedEnumerator) EnumByName(string) ([]process.ProcessID, error) {
	return nil, fmt.Errorf("process enumeration is not supported on %s", runtime.GOOS)
}

func (unsupportedEnumerator) EnumByNameOrPid(process.ProcessID, string, bool) ([]process.ProcessInfo, error) {
	return nil, fmt.Errorf("process enumeration is not supported on %s", runtime.GOOS)
}
