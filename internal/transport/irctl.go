package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/whynter"
)

// IRCtlOptions configures how ir-ctl is invoked.
type IRCtlOptions struct {
	Command []string // argv prefix, default ir-ctl
	Device  string   // LIRC device node
	TempDir string   // where the pulse file is written on the target host
}

// DefaultIRCtlOptions sends through /dev/lirc0.
func DefaultIRCtlOptions() IRCtlOptions {
	return IRCtlOptions{
		Command: []string{"ir-ctl"},
		Device:  "/dev/lirc0",
		TempDir: "/tmp",
	}
}

// IRCtl is a whynter.Transmitter that writes the train as a pulse/space
// file on the target host and runs ir-ctl --send on it.
type IRCtl struct {
	t    Transport
	opts IRCtlOptions
	seq  atomic.Uint64
}

// NewIRCtl wraps a transport. Zero option fields take defaults.
func NewIRCtl(t Transport, opts IRCtlOptions) *IRCtl {
	def := DefaultIRCtlOptions()
	if len(opts.Command) == 0 {
		opts.Command = def.Command
	}
	if opts.Device == "" {
		opts.Device = def.Device
	}
	if opts.TempDir == "" {
		opts.TempDir = def.TempDir
	}
	return &IRCtl{t: t, opts: opts}
}

// Transmit sends one train.
func (x *IRCtl) Transmit(carrierHz int, pulses []whynter.Pulse) error {
	ctx := context.Background()

	var buf bytes.Buffer
	if err := capture.WriteMode2(&buf, whynter.Train{CarrierHz: carrierHz, Pulses: pulses}); err != nil {
		return err
	}

	file := path.Join(x.opts.TempDir, fmt.Sprintf("whynterir-%d-%d.ir", os.Getpid(), x.seq.Add(1)))
	if err := x.t.WriteFile(ctx, file, buf.Bytes()); err != nil {
		return err
	}
	defer func() { _ = x.t.Remove(ctx, file) }()

	argv := x.Argv(carrierHz, file)
	code, _, stderr, err := x.t.Exec(ctx, argv, nil)
	if err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	if code != 0 {
		return fmt.Errorf("%s exited %d: %s", argv[0], code, strings.TrimSpace(stderr))
	}
	return nil
}

// Argv is the command line for sending file.
func (x *IRCtl) Argv(carrierHz int, file string) []string {
	argv := append([]string{}, x.opts.Command...)
	return append(argv,
		"--device="+x.opts.Device,
		fmt.Sprintf("--carrier=%d", carrierHz),
		"--send="+file,
	)
}

// Close closes the underlying transport.
func (x *IRCtl) Close() error {
	return x.t.Close()
}

func (x *IRCtl) String() string {
	return fmt.Sprintf("ir-ctl %s via %s", x.opts.Device, x.t)
}
