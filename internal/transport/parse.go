package transport

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/whynter"
)

// Target is a transmitter that may hold a connection.
type Target interface {
	whynter.Transmitter
	Close() error
	String() string
}

// ParseTarget parses a transmit target specification.
// Supported formats:
//   - "local" or "local:/dev/lirc1" -> ir-ctl on this host
//   - "ssh://user@host:port?device=/dev/lirc0&key=/path&insecure=true&sudo=true" -> ir-ctl over SSH
//   - "user@host" (bare hostname) -> ir-ctl over SSH with defaults
//   - "redis://:password@host:port/db?channel=name&history=key" -> Redis publish
//   - "file:/path/out.mode2" -> append trains to a capture file
func ParseTarget(spec string) (Target, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty transmit target")
	}

	if spec == "local" || strings.HasPrefix(spec, "local:") {
		opts := DefaultIRCtlOptions()
		if dev := strings.TrimPrefix(spec, "local"); dev != "" {
			opts.Device = strings.TrimPrefix(dev, ":")
		}
		return NewIRCtl(NewLocal(DefaultOptions()), opts), nil
	}

	if strings.HasPrefix(spec, "file:") {
		return newFileTarget(strings.TrimPrefix(strings.TrimPrefix(spec, "file:"), "//"))
	}

	// Check if it's a URL
	if strings.Contains(spec, "://") {
		return parseURL(spec)
	}

	// Treat as bare hostname for SSH
	t, err := parseSSHHost(spec)
	if err != nil {
		return nil, err
	}
	return NewIRCtl(t, DefaultIRCtlOptions()), nil
}

// OpenTarget parses spec and, for ir-ctl targets, replaces the LIRC device
// when device is not empty.
func OpenTarget(spec, device string) (Target, error) {
	t, err := ParseTarget(spec)
	if err != nil {
		return nil, err
	}
	if x, ok := t.(*IRCtl); ok && device != "" {
		x.opts.Device = device
	}
	return t, nil
}

// parseURL parses a URL-style target spec.
func parseURL(spec string) (Target, error) {
	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	switch u.Scheme {
	case "ssh":
		t, err := parseSSHURL(u)
		if err != nil {
			return nil, err
		}
		opts := DefaultIRCtlOptions()
		q := u.Query()
		if dev := q.Get("device"); dev != "" {
			opts.Device = dev
		}
		if cmd := q.Get("cmd"); cmd != "" {
			opts.Command = strings.Fields(cmd)
		}
		if tmp := q.Get("tmp"); tmp != "" {
			opts.TempDir = tmp
		}
		return NewIRCtl(t, opts), nil
	case "redis":
		opts, err := parseRedisURL(u)
		if err != nil {
			return nil, err
		}
		return NewRedisPublisher(opts), nil
	default:
		return nil, fmt.Errorf("unsupported transmit scheme: %s", u.Scheme)
	}
}

// parseSSHURL parses an ssh:// URL.
func parseSSHURL(u *url.URL) (*SSH, error) {
	sshOpts := DefaultSSHOptions()

	if u.User != nil {
		sshOpts.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			sshOpts.Password = pw
		}
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("SSH host is required")
	}

	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		sshOpts.Port = port
	}

	q := u.Query()
	if key := q.Get("key"); key != "" {
		sshOpts.KeyFile = key
	}
	if passphrase := q.Get("passphrase"); passphrase != "" {
		sshOpts.KeyPassphrase = passphrase
	}
	if knownHosts := q.Get("known_hosts"); knownHosts != "" {
		sshOpts.KnownHostsFile = knownHosts
	}
	if isTrue(q.Get("insecure")) {
		sshOpts.InsecureIgnoreHost = true
	}
	if agent := q.Get("agent"); agent == "false" || agent == "0" {
		sshOpts.Agent = false
	}
	if isTrue(q.Get("sudo")) {
		sshOpts.Sudo = true
	}
	if timeout := q.Get("timeout"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		sshOpts.Timeout = d
	}

	return NewSSH(host, sshOpts)
}

// parseSSHHost parses a bare hostname or user@host:port spec.
func parseSSHHost(spec string) (*SSH, error) {
	sshOpts := DefaultSSHOptions()

	// Use LastIndex because usernames can contain @ (e.g., name@domain@host)
	if idx := strings.LastIndex(spec, "@"); idx != -1 {
		sshOpts.User = spec[:idx]
		spec = spec[idx+1:]
	}

	host := spec
	if idx := strings.LastIndex(spec, ":"); idx != -1 {
		port, err := strconv.Atoi(spec[idx+1:])
		if err == nil {
			sshOpts.Port = port
			host = spec[:idx]
		}
		// If port parse fails, assume the whole thing is the host (e.g., IPv6)
	}

	if host == "" {
		return nil, fmt.Errorf("SSH host is required")
	}

	return NewSSH(host, sshOpts)
}

// parseRedisURL parses a redis:// URL.
func parseRedisURL(u *url.URL) (RedisOptions, error) {
	opts := DefaultRedisOptions()
	if u.Host != "" {
		opts.Addr = u.Host
		if u.Port() == "" {
			opts.Addr = u.Hostname() + ":6379"
		}
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			opts.Password = pw
		}
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid redis db %q", db)
		}
		opts.DB = n
	}

	q := u.Query()
	if ch := q.Get("channel"); ch != "" {
		opts.Channel = ch
	}
	if q.Has("history") {
		opts.HistoryKey = q.Get("history")
	}
	return opts, nil
}

func isTrue(s string) bool {
	return s == "true" || s == "1"
}

// fileTarget records trains to a capture file.
type fileTarget struct {
	path string
	file *os.File
	*capture.Writer
}

func newFileTarget(path string) (*fileTarget, error) {
	if path == "" {
		return nil, fmt.Errorf("file target needs a path")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &fileTarget{
		path:   path,
		file:   f,
		Writer: capture.NewWriter(f, capture.FormatForPath(path)),
	}, nil
}

func (f *fileTarget) Close() error {
	return f.file.Close()
}

func (f *fileTarget) String() string {
	return "file " + f.path
}

// IsLocal returns true if the spec refers to this host's LIRC device.
func IsLocal(spec string) bool {
	return spec == "local" || strings.HasPrefix(spec, "local:")
}

// IsSSH returns true if the spec refers to ir-ctl over SSH.
func IsSSH(spec string) bool {
	switch {
	case spec == "" || IsLocal(spec):
		return false
	case strings.HasPrefix(spec, "ssh://"):
		return true
	case strings.HasPrefix(spec, "file:"), strings.Contains(spec, "://"):
		return false
	}
	// Bare hostname or user@host
	return true
}
