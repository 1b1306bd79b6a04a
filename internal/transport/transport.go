// Package transport delivers encoded trains to real IR hardware: an ir-ctl
// invocation on the local host or over SSH, or a Redis channel that an IR
// bridge subscribes to.
package transport

import (
	"context"
	"io"
	"time"
)

// Transport abstracts command execution and file placement on the host that
// owns the LIRC device.
type Transport interface {
	// Exec runs cmd as argv and returns exit code, stdout, stderr.
	// A non-zero exit is not an error. stdin may be nil.
	Exec(ctx context.Context, cmd []string, stdin io.Reader) (exitCode int, stdout, stderr string, err error)

	// WriteFile creates or truncates path with data.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Remove deletes a file.
	Remove(ctx context.Context, path string) error

	// Close releases any held resources (e.g., SSH connection).
	Close() error

	// String returns a human-readable description of the transport.
	String() string
}

// Options configures transport behavior.
type Options struct {
	Timeout time.Duration // Per-command timeout
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Timeout: 10 * time.Second,
	}
}

// SSHOptions configures SSH-specific transport behavior.
type SSHOptions struct {
	Options

	// Authentication
	User          string // SSH username
	KeyFile       string // Path to private key file
	KeyPassphrase string // Passphrase for encrypted key (optional)
	Password      string // Password authentication (fallback)
	Agent         bool   // Use SSH agent for authentication

	// Host verification
	KnownHostsFile     string // Path to known_hosts file
	InsecureIgnoreHost bool   // Skip host key verification (dangerous)

	// Connection
	Port           int           // SSH port (default 22)
	ConnectTimeout time.Duration // Connection timeout

	// Sudo prefixes remote commands, for hosts where /dev/lirc* is root only.
	Sudo bool
}

// DefaultSSHOptions returns sensible default SSH options.
func DefaultSSHOptions() SSHOptions {
	return SSHOptions{
		Options:        DefaultOptions(),
		Port:           22,
		ConnectTimeout: 10 * time.Second,
		Agent:          true, // Try SSH agent by default
	}
}
