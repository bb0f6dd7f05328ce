//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "procspawn requires Windows: suspended process creation and in-target execution are not available on this platform")
	os.Exit(1)
}
