package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-sandbox/internal/cli"
)

func init() {
	// GLFW and the graphics APIs must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
