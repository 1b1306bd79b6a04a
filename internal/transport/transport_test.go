package transport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/whynter"
)

func TestNewLocal(t *testing.T) {
	l := NewLocal(DefaultOptions())
	if l == nil {
		t.Fatal("NewLocal returned nil")
	}
	if l.String() != "local" {
		t.Errorf("String() = %v, want local", l.String())
	}
}

func TestLocal_Exec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	l := NewLocal(DefaultOptions())
	ctx := context.Background()

	exitCode, stdout, stderr, err := l.Exec(ctx, []string{"echo", "hello"}, nil)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if exitCode != 0 {
		t.Errorf("exitCode = %d, want 0", exitCode)
	}
	if stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", stdout, "hello\n")
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}

	_, stdout, _, err = l.Exec(ctx, []string{"cat"}, strings.NewReader("pulse 550\n"))
	if err != nil || stdout != "pulse 550\n" {
		t.Errorf("stdin not forwarded: %q, %v", stdout, err)
	}
}

func TestLocal_Exec_EmptyCommand(t *testing.T) {
	l := NewLocal(DefaultOptions())
	if _, _, _, err := l.Exec(context.Background(), nil, nil); err == nil {
		t.Error("Exec() should fail with empty command")
	}
}

func TestLocal_Exec_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	l := NewLocal(DefaultOptions())
	exitCode, _, _, err := l.Exec(context.Background(), []string{"sh", "-c", "exit 42"}, nil)
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if exitCode != 42 {
		t.Errorf("exitCode = %d, want 42", exitCode)
	}
}

func TestLocal_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	opts := DefaultOptions()
	opts.Timeout = 100 * time.Millisecond
	l := NewLocal(opts)

	start := time.Now()
	exitCode, _, _, err := l.Exec(context.Background(), []string{"sleep", "10"}, nil)
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("Exec() took %v, should have timed out around %v", elapsed, opts.Timeout)
	}
	if err == nil && exitCode == 0 {
		t.Error("Exec() should fail or exit non-zero with timeout")
	}
}

func TestLocal_WriteRemove(t *testing.T) {
	l := NewLocal(DefaultOptions())
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "frame.ir")

	if err := l.WriteFile(ctx, path, []byte("pulse 8500\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "pulse 8500\n" {
		t.Fatalf("file = %q, %v", data, err)
	}
	if err := l.Remove(ctx, path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
}

// fakeIRCtl is a shell script standing in for ir-ctl: it copies the --send
// file and records its arguments.
func fakeIRCtl(t *testing.T, dir string, exit int) []string {
	t.Helper()
	script := `out="$1"; shift; echo "$@" > "$out.args"; for a; do case "$a" in --send=*) cp "${a#--send=}" "$out";; esac; done; exit ` + strconv.Itoa(exit)
	return []string{"sh", "-c", script, "ir-ctl", filepath.Join(dir, "sent.ir")}
}

func TestIRCtlTransmit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	dir := t.TempDir()
	x := NewIRCtl(NewLocal(DefaultOptions()), IRCtlOptions{
		Command: fakeIRCtl(t, dir, 0),
		Device:  "/dev/lirc1",
		TempDir: dir,
	})

	s := whynter.Settings{Power: true, Mode: whynter.ModeCool, FanSpeed: whynter.FanLow, TargetCelsius: 24}
	pkt, err := whynter.Send(x, s)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	train, err := capture.LoadFileAs(filepath.Join(dir, "sent.ir"), capture.FormatMode2)
	if err != nil {
		t.Fatalf("load sent file: %v", err)
	}
	got, err := whynter.Decode(train)
	if err != nil {
		t.Fatalf("decode sent file: %v", err)
	}
	if got != pkt {
		t.Errorf("sent %s, want %s", got, pkt)
	}

	args, err := os.ReadFile(filepath.Join(dir, "sent.ir.args"))
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(args), "--device=/dev/lirc1 --carrier=38000 --send=") {
		t.Errorf("args = %q", args)
	}

	// the pulse file is cleaned up
	matches, _ := filepath.Glob(filepath.Join(dir, "whynterir-*.ir"))
	if len(matches) != 0 {
		t.Errorf("leftover pulse files: %v", matches)
	}
}

func TestIRCtlTransmitFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	dir := t.TempDir()
	x := NewIRCtl(NewLocal(DefaultOptions()), IRCtlOptions{
		Command: fakeIRCtl(t, dir, 3),
		TempDir: dir,
	})
	train := whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75})
	err := x.Transmit(train.CarrierHz, train.Pulses)
	if err == nil || !strings.Contains(err.Error(), "exited 3") {
		t.Fatalf("expected exit error, got %v", err)
	}
}

func TestIRCtlArgv(t *testing.T) {
	x := NewIRCtl(NewLocal(DefaultOptions()), IRCtlOptions{})
	got := strings.Join(x.Argv(38000, "/tmp/f.ir"), " ")
	if got != "ir-ctl --device=/dev/lirc0 --carrier=38000 --send=/tmp/f.ir" {
		t.Errorf("Argv = %q", got)
	}
	if x.String() != "ir-ctl /dev/lirc0 via local" {
		t.Errorf("String() = %q", x.String())
	}
}

// Parse tests

func TestParseTarget_Local(t *testing.T) {
	tests := map[string]string{
		"local":            "ir-ctl /dev/lirc0 via local",
		"local:/dev/lirc2": "ir-ctl /dev/lirc2 via local",
	}
	for spec, want := range tests {
		t.Run(spec, func(t *testing.T) {
			tr, err := ParseTarget(spec)
			if err != nil {
				t.Fatalf("ParseTarget(%q) error = %v", spec, err)
			}
			if tr.String() != want {
				t.Errorf("String() = %v, want %v", tr.String(), want)
			}
		})
	}
}

func TestParseTarget_SSH(t *testing.T) {
	tests := []struct {
		spec       string
		wantHost   string
		wantUser   string
		wantPort   int
		wantDevice string
	}{
		{
			spec:       "ssh://pi@blaster:2222",
			wantHost:   "blaster",
			wantUser:   "pi",
			wantPort:   2222,
			wantDevice: "/dev/lirc0",
		},
		{
			spec:       "ssh://blaster?device=/dev/lirc1",
			wantHost:   "blaster",
			wantDevice: "/dev/lirc1",
		},
		{
			spec:       "pi@blaster",
			wantHost:   "blaster",
			wantUser:   "pi",
			wantDevice: "/dev/lirc0",
		},
		{
			spec:       "blaster",
			wantHost:   "blaster",
			wantDevice: "/dev/lirc0",
		},
		{
			spec:       "pi@blaster:22",
			wantHost:   "blaster",
			wantUser:   "pi",
			wantPort:   22,
			wantDevice: "/dev/lirc0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			tr, err := ParseTarget(tt.spec)
			if err != nil {
				t.Fatalf("ParseTarget(%q) error = %v", tt.spec, err)
			}
			x, ok := tr.(*IRCtl)
			if !ok {
				t.Fatalf("ParseTarget(%q) returned %T, want *IRCtl", tt.spec, tr)
			}
			ssh, ok := x.t.(*SSH)
			if !ok {
				t.Fatalf("transport is %T, want *SSH", x.t)
			}
			if ssh.host != tt.wantHost {
				t.Errorf("host = %v, want %v", ssh.host, tt.wantHost)
			}
			if tt.wantUser != "" && ssh.opts.User != tt.wantUser {
				t.Errorf("user = %v, want %v", ssh.opts.User, tt.wantUser)
			}
			if tt.wantPort != 0 && ssh.opts.Port != tt.wantPort {
				t.Errorf("port = %v, want %v", ssh.opts.Port, tt.wantPort)
			}
			if x.opts.Device != tt.wantDevice {
				t.Errorf("device = %v, want %v", x.opts.Device, tt.wantDevice)
			}
		})
	}
}

func TestParseTarget_SSHWithOptions(t *testing.T) {
	tr, err := ParseTarget("ssh://pi@blaster?key=/path/to/key&insecure=true&sudo=1&timeout=3s&cmd=ir-ctl%20-v")
	if err != nil {
		t.Fatalf("ParseTarget() error = %v", err)
	}
	x := tr.(*IRCtl)
	ssh := x.t.(*SSH)

	if ssh.opts.KeyFile != "/path/to/key" {
		t.Errorf("KeyFile = %v, want /path/to/key", ssh.opts.KeyFile)
	}
	if !ssh.opts.InsecureIgnoreHost {
		t.Error("InsecureIgnoreHost should be true")
	}
	if !ssh.opts.Sudo {
		t.Error("Sudo should be true")
	}
	if ssh.opts.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", ssh.opts.Timeout)
	}
	if strings.Join(x.opts.Command, " ") != "ir-ctl -v" {
		t.Errorf("Command = %v", x.opts.Command)
	}
	if ssh.String() != "ssh://pi@blaster:22" {
		t.Errorf("String() = %v", ssh.String())
	}
}

func TestParseTarget_Redis(t *testing.T) {
	tr, err := ParseTarget("redis://:secret@cache:6380/2?channel=ac&history=")
	if err != nil {
		t.Fatalf("ParseTarget() error = %v", err)
	}
	p, ok := tr.(*RedisPublisher)
	if !ok {
		t.Fatalf("returned %T, want *RedisPublisher", tr)
	}
	defer p.Close()
	if p.opts.Addr != "cache:6380" || p.opts.Password != "secret" || p.opts.DB != 2 {
		t.Errorf("unexpected options: %+v", p.opts)
	}
	if p.opts.Channel != "ac" || p.opts.HistoryKey != "" {
		t.Errorf("unexpected channel/history: %+v", p.opts)
	}

	tr, err = ParseTarget("redis://cache")
	if err != nil {
		t.Fatalf("ParseTarget() error = %v", err)
	}
	p = tr.(*RedisPublisher)
	defer p.Close()
	if p.opts.Addr != "cache:6379" || p.opts.Channel != "whynterir:frames" || p.opts.HistoryKey != "whynterir:history" {
		t.Errorf("unexpected defaults: %+v", p.opts)
	}

	if _, err := ParseTarget("redis://cache/db"); err == nil {
		t.Error("expected error for non-numeric db")
	}
}

func TestParseTarget_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	tr, err := ParseTarget("file:" + path)
	if err != nil {
		t.Fatalf("ParseTarget() error = %v", err)
	}
	train := whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75})
	if err := tr.Transmit(train.CarrierHz, train.Pulses); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	got, err := capture.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(got.Pulses) != whynter.TrainLength {
		t.Errorf("pulses = %d", len(got.Pulses))
	}
}

func TestOpenTargetDevice(t *testing.T) {
	tr, err := OpenTarget("ssh://pi@blaster?device=/dev/lirc1", "/dev/lirc2")
	if err != nil {
		t.Fatalf("OpenTarget() error = %v", err)
	}
	if got := tr.(*IRCtl).opts.Device; got != "/dev/lirc2" {
		t.Errorf("device = %q, want /dev/lirc2", got)
	}

	tr, err = OpenTarget("local:/dev/lirc1", "")
	if err != nil {
		t.Fatalf("OpenTarget() error = %v", err)
	}
	if got := tr.(*IRCtl).opts.Device; got != "/dev/lirc1" {
		t.Errorf("device = %q, want /dev/lirc1", got)
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	tr, err = OpenTarget("file:"+path, "/dev/lirc2")
	if err != nil {
		t.Fatalf("OpenTarget() error = %v", err)
	}
	defer tr.Close()
	if tr.String() != "file "+path {
		t.Errorf("String() = %q", tr.String())
	}
}

func TestParseTarget_Invalid(t *testing.T) {
	for _, spec := range []string{"", "ftp://host", "file:", "ssh://"} {
		if _, err := ParseTarget(spec); err == nil {
			t.Errorf("ParseTarget(%q) should fail", spec)
		}
	}
}

func TestIsLocalIsSSH(t *testing.T) {
	if !IsLocal("local") || !IsLocal("local:/dev/lirc1") || IsLocal("host") {
		t.Error("IsLocal mismatch")
	}
	tests := map[string]bool{
		"":              false,
		"local":         false,
		"host":          true,
		"ssh://host":    true,
		"redis://cache": false,
		"file:/tmp/x":   false,
	}
	for spec, want := range tests {
		if IsSSH(spec) != want {
			t.Errorf("IsSSH(%q) = %v, want %v", spec, !want, want)
		}
	}
}

func TestBuildCommandString(t *testing.T) {
	tests := []struct {
		name string
		cmd  []string
		sudo bool
		want string
	}{
		{
			name: "simple command",
			cmd:  []string{"ir-ctl", "--send=/tmp/a.ir"},
			want: "ir-ctl --send=/tmp/a.ir",
		},
		{
			name: "argument with spaces",
			cmd:  []string{"echo", "hello world"},
			want: "echo 'hello world'",
		},
		{
			name: "sudo",
			cmd:  []string{"ir-ctl", "--device=/dev/lirc0"},
			sudo: true,
			want: "sudo -n ir-ctl --device=/dev/lirc0",
		},
		{
			name: "injection attempt",
			cmd:  []string{"ir-ctl", "--send=/tmp/x; rm -rf /"},
			want: "ir-ctl '--send=/tmp/x; rm -rf /'",
		},
		{
			name: "single quote",
			cmd:  []string{"echo", "it's"},
			want: `echo 'it'\''s'`,
		},
		{
			name: "empty argument",
			cmd:  []string{"echo", ""},
			want: "echo ''",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildCommandString(tt.cmd, tt.sudo); got != tt.want {
				t.Errorf("buildCommandString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFrameMessage(t *testing.T) {
	train := whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75})
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	msg := NewFrameMessage(train.CarrierHz, train.Pulses, now)

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["packet_hex"] != "4812A84B" || decoded["sent_at"] != "2026-10-19T12:00:00Z" {
		t.Errorf("unexpected message: %s", data)
	}
	if pulses := decoded["pulses"].([]any); len(pulses) != whynter.TrainLength || pulses[1].(float64) != -4400 {
		t.Errorf("unexpected pulses: %v", decoded["pulses"])
	}

	short := NewFrameMessage(train.CarrierHz, train.Pulses[:10], now)
	if short.PacketHex != "" {
		t.Errorf("undecodable train should have no packet, got %q", short.PacketHex)
	}
}

// TestRedisPublish needs a server; set WHYNTERIR_TEST_REDIS=host:port.
func TestRedisPublish(t *testing.T) {
	addr := os.Getenv("WHYNTERIR_TEST_REDIS")
	if addr == "" {
		t.Skip("WHYNTERIR_TEST_REDIS not set")
	}
	opts := DefaultRedisOptions()
	opts.Addr = addr
	opts.Channel = "whynterir:test"
	opts.HistoryKey = "whynterir:test:history"
	opts.HistoryLen = 2
	p := NewRedisPublisher(opts)
	defer p.Close()

	ctx := context.Background()
	if err := p.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	sub := p.client.Subscribe(ctx, opts.Channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	train := whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75})
	for i := 0; i < 3; i++ {
		if err := p.Transmit(train.CarrierHz, train.Pulses); err != nil {
			t.Fatalf("Transmit() error = %v", err)
		}
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !strings.Contains(msg.Payload, `"packet_hex":"4812A84B"`) {
		t.Errorf("payload = %s", msg.Payload)
	}
	n, err := p.client.LLen(ctx, opts.HistoryKey).Result()
	if err != nil || n != 2 {
		t.Errorf("history length = %d, %v", n, err)
	}
	p.client.Del(ctx, opts.HistoryKey)
}
