package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/PhatDave/BssPrepaidImporter/internal/cli"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(bssimport.ExitPanic)
		}
	}()

	if os.Getenv("BSSIMPORT_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(bssimport.ExitCodeForError(err))
	}
}
