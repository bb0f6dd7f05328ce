//go:build linux

package main

import (
	"procctl/process"
	"procctl/process_linux"
)

func newEnumerator() process.Enumerator {
	return process_linux.NewEnumerator()
}
