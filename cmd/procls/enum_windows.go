//go:build windows

package main

import (
	"procctl/process"
	"procctl/process_windows"
)

func newEnumerator() process.Enumerator {
	return process_windows.NewEnumerator()
}
