package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Local implements Transport for local execution.
type Local struct {
	opts Options
}

// NewLocal creates a new local transport.
func NewLocal(opts Options) *Local {
	return &Local{opts: opts}
}

// Exec runs a command locally and returns exit code, stdout, stderr.
func (l *Local) Exec(ctx context.Context, cmd []string, stdin io.Reader) (int, string, string, error) {
	if len(cmd) == 0 {
		return -1, "", "", fmt.Errorf("empty command")
	}

	// Apply timeout if set
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	if stdin != nil {
		c.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			err = nil // Exit with non-zero is not an error per se
		}
	}

	return exitCode, stdout.String(), stderr.String(), err
}

// WriteFile writes a local file.
func (l *Local) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Remove deletes a local file.
func (l *Local) Remove(ctx context.Context, path string) error {
	return os.Remove(path)
}

// Close is a no-op for local transport.
func (l *Local) Close() error {
	return nil
}

// String returns a description of this transport.
func (l *Local) String() string {
	return "local"
}

// Ensure Local implements Transport
var _ Transport = (*Local)(nil)
