package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	// Version is set via -ldflags.
	Version = "dev"
	// Commit is set via -ldflags.
	Commit = "unknown"
)

func main() {
	root := newRootCmd()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
