package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner runs an external program and waits for it to exit.
// The returned error is only set when the program couldn't be started or
// waited for; a non-zero exit status is reported through Result.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// Result is the outcome of a finished process.
type Result struct {
	// ExitCode is -1 when the process didn't report one (e.g. killed by a
	// signal).
	ExitCode int
	Stdout   []byte
}

func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// ExecRunner runs programs with os/exec. Stdout is captured and stderr is
// passed through to Stderr (os.Stderr when nil).
type ExecRunner struct {
	Stderr io.Writer
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("ffmpeg: %s interrupted: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return &Result{ExitCode: exitErr.ExitCode(), Stdout: stdout.Bytes()}, nil
	case err != nil:
		return nil, fmt.Errorf("ffmpeg: couldn't run %s: %w", name, err)
	}
	return &Result{ExitCode: 0, Stdout: stdout.Bytes()}, nil
}
