// Package validate checks source text with an external toolchain before it is
// extracted. The check is a shell script run by an in-process POSIX
// interpreter with the source on stdin.
package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Validator decides whether text, the content of path, is well formed.
type Validator interface {
	Validate(ctx context.Context, path, text string) error
}

// Noop accepts everything.
type Noop struct{}

// Validate implements Validator.
func (Noop) Validate(context.Context, string, string) error { return nil }

// RejectedError is returned when the script exits non-zero.
type RejectedError struct {
	Path     string
	ExitCode int
	Stderr   string
}

func (e *RejectedError) Error() string {
	msg := fmt.Sprintf("%s: rejected by validator (exit %d)", e.Path, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + firstLine(e.Stderr)
	}
	return msg
}

// Command runs a shell script per file. The script sees the source on stdin
// and the file's path in $DECLDIFF_FILE.
type Command struct {
	Script  string
	Dir     string
	Timeout time.Duration

	prog *syntax.File
	env  []string
}

// New parses script. An empty script returns Noop.
func New(script, dir string, timeout time.Duration) (Validator, error) {
	if strings.TrimSpace(script) == "" {
		return Noop{}, nil
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "validate")
	if err != nil {
		return nil, fmt.Errorf("could not parse validate command: %w", err)
	}
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return &Command{
		Script:  script,
		Dir:     dir,
		Timeout: timeout,
		prog:    prog,
		env:     os.Environ(),
	}, nil
}

// Validate implements Validator. Safe for concurrent use; every call gets its
// own interpreter.
func (c *Command) Validate(ctx context.Context, path, text string) (err error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	env := make([]string, 0, len(c.env)+1)
	env = append(env, c.env...)
	env = append(env, "DECLDIFF_FILE="+path)

	var stderr bytes.Buffer
	runner, err := interp.New(
		interp.StdIO(strings.NewReader(text), io.Discard, &stderr),
		interp.Interactive(false),
		interp.Env(expand.ListEnviron(env...)),
		interp.Dir(c.Dir),
	)
	if err != nil {
		return fmt.Errorf("could not create interpreter: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validate %s: interpreter panic: %v", path, r)
		}
	}()

	runErr := runner.Run(ctx, c.prog)
	if runErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("validate %s: %w", path, ctx.Err())
	}
	var status interp.ExitStatus
	if errors.As(runErr, &status) {
		return &RejectedError{Path: path, ExitCode: int(status), Stderr: strings.TrimSpace(stderr.String())}
	}
	return fmt.Errorf("validate %s: %w", path, runErr)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
