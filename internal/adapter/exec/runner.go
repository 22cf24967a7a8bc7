// Package exec runs MODE invocations as local processes.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	osexec "os/exec"

	"github.com/couchcryptid/storm-mode-driver/internal/domain"
)

// Runner executes invocations with os/exec. The child inherits the process
// environment with the invocation's variables layered on top.
// It implements pipeline.CommandRunner.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewRunner creates a Runner that streams child output to stdout and stderr.
func NewRunner(stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	return &Runner{stdout: stdout, stderr: stderr, logger: logger}
}

// Run executes inv and waits for it to exit. A non-zero exit status is
// returned as an *ExitError.
func (r *Runner) Run(ctx context.Context, inv domain.Invocation) error {
	args, err := inv.Args()
	if err != nil {
		return err
	}

	cmd := osexec.CommandContext(ctx, inv.App, args...)
	cmd.Env = append(os.Environ(), inv.Env.Environ()...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.logger.Debug("starting mode", "id", inv.ID, "app", inv.App)
	if err := cmd.Run(); err != nil {
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{ID: inv.ID, Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("run %s: %w", inv.App, err)
	}
	return nil
}

// ExitError reports a tool run that exited unsuccessfully.
type ExitError struct {
	ID   string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("invocation %s exited with code %d", e.ID, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// DryRunner logs each invocation instead of running it.
type DryRunner struct {
	logger *slog.Logger
}

// NewDryRunner creates a DryRunner.
func NewDryRunner(logger *slog.Logger) *DryRunner {
	return &DryRunner{logger: logger}
}

// Run logs the command line and environment of inv.
func (d *DryRunner) Run(_ context.Context, inv domain.Invocation) error {
	line, err := inv.CommandLine()
	if err != nil {
		return err
	}
	d.logger.Info("dry run", "id", inv.ID, "command", line, "env", inv.Env.Copyable())
	return nil
}
