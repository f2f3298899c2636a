// Package format pipes document text through an external formatter,
// running it inside an in-process POSIX shell so the invocation behaves
// the same on every platform.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/GregoryLand/openscad-LSP/internal/config"
)

// ErrDisabled is returned when no formatter executable is configured.
var ErrDisabled = errors.New("format: no formatter configured")

// Formatter runs one configured formatter command.
type Formatter struct {
	exe     string
	style   string
	timeout time.Duration
}

// New builds a Formatter from config. A zero timeout falls back to 5s.
func New(cfg config.FmtConfig) *Formatter {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Formatter{exe: cfg.Exe, style: cfg.Style, timeout: timeout}
}

// Format feeds src to the formatter's stdin and returns its stdout. A
// non-zero exit or a timeout returns an error and no text.
func (f *Formatter) Format(ctx context.Context, src string) (out string, err error) {
	if f.exe == "" {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := syntax.NewParser().Parse(strings.NewReader(f.command()), "")
	if err != nil {
		return "", fmt.Errorf("format: parse command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.StdIO(strings.NewReader(src), &stdout, &stderr),
		interp.Interactive(false),
		interp.Env(expand.ListEnviron(os.Environ()...)),
	)
	if err != nil {
		return "", fmt.Errorf("format: create interpreter: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("format: execution panic: %v", r)
		}
	}()

	if err := runner.Run(ctx, parsed); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("format: %s (exit %d): %w: %s", f.exe, ExitCode(err), err, msg)
		}
		return "", fmt.Errorf("format: %s (exit %d): %w", f.exe, ExitCode(err), err)
	}
	return stdout.String(), nil
}

// command builds the shell invocation, quoting the style so brace styles
// like {BasedOnStyle: LLVM} survive word splitting.
func (f *Formatter) command() string {
	if f.style == "" {
		return f.exe
	}
	return fmt.Sprintf("%s --style=%q", f.exe, f.style)
}

// ExitCode extracts the exit code from an interpreter error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr interp.ExitStatus
	if errors.As(err, &exitErr) {
		return int(exitErr)
	}
	return 1
}
