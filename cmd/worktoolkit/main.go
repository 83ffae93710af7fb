package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"worktoolkit/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit code: 0 on success,
// 1 for precondition and flag failures the operator can correct, 2 for
// runtime failures.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if services.IsPrecondition(err) {
		return 1
	}
	if errors.Is(err, services.ErrTransient) || errors.Is(err, services.ErrExternalTool) {
		return 2
	}
	return 1
}
