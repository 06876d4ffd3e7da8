package python

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/domain/interfaces"
)

type runner struct {
	bin string
}

// NewRunner creates a PythonRunner invoking the given interpreter binary.
func NewRunner(bin string) interfaces.PythonRunner {
	return &runner{bin: bin}
}

// Version reports the interpreter version, e.g. "3.8.18". The interpreter
// prints "Python X.Y.Z"; older ones print it to stderr, so both streams are
// read.
func (r *runner) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.bin, "--version").CombinedOutput()
	if err != nil {
		return "", goerr.Wrap(err, "failed to run interpreter",
			goerr.V("bin", r.bin),
			goerr.V("output", tail(string(out))),
		)
	}

	version := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(out)), "Python"))
	if version == "" {
		return "", goerr.New("interpreter reported no version", goerr.V("bin", r.bin), goerr.V("output", string(out)))
	}

	return version, nil
}

// Install runs pip install --upgrade for the packages, from dir.
func (r *runner) Install(ctx context.Context, dir string, packages []string) error {
	args := append([]string{"-m", "pip", "install", "--upgrade"}, packages...)
	return r.run(ctx, dir, args)
}

// Build runs the interpreter with args in dir, e.g. ["setup.py", "sdist"].
func (r *runner) Build(ctx context.Context, dir string, args []string) error {
	return r.run(ctx, dir, args)
}

func (r *runner) run(ctx context.Context, dir string, args []string) error {
	logger := ctxlog.From(ctx)

	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running interpreter command", "bin", r.bin, "args", args, "dir", dir)
	startedAt := time.Now()
	err := cmd.Run()
	elapsed := time.Since(startedAt)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return goerr.Wrap(err, "interpreter command failed",
			goerr.V("bin", r.bin),
			goerr.V("args", args),
			goerr.V("exit_code", exitCode),
			goerr.V("stderr", tail(stderr.String())),
		)
	}

	logger.Debug("Interpreter command finished",
		"bin", r.bin,
		"args", args,
		"elapsed", elapsed,
		"stdout_bytes", stdout.Len(),
	)

	return nil
}

// tail keeps the last part of command output for error context without
// dragging whole build logs into error values.
func tail(s string) string {
	const max = 2048
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
