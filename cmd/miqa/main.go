package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/miqalab/miqa/internal/cli"
	"github.com/miqalab/miqa/pkg/miqa"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(miqa.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(miqa.ExitCodeForError(err))
	}
}
