package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/stemma-io/stemma/internal/cli"
	"github.com/stemma-io/stemma/pkg/stemma"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(stemma.ExitInternalError)
		}
	}()

	if os.Getenv("STEMMA_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(stemma.ExitCodeForError(err))
	}
}
