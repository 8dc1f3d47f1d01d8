package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	code := exitCode(err)
	if code == 0 {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "vidscribe: "+err.Error())
	}
	os.Exit(code)
}

// exitCode maps an Execute error to a process exit code. Interrupted runs
// surface context.Canceled and exit with the conventional 130 so shell
// scripts can tell cancellation from failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
