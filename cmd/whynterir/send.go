package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/metrics"
	"github.com/tonylturner/whynterir/internal/transport"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type sendFlags struct {
	settings settingsFlags
	packet   string
	target   string
	device   string
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	flags := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Transmit settings or a packet through an IR target",
		Long: `Compile settings (or take a literal --packet), encode the train and
hand it to a transmit target:

  local, local:/dev/lirc1            ir-ctl on this host
  ssh://user@host?device=/dev/lirc0  ir-ctl on a remote host over SSH/SFTP
  redis://host:6379/0?channel=name   publish the frame for a network bridge
  file:out.mode2                     write the train to a capture file

The target defaults to transmit.target in the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			return runSend(cmd, opts, flags)
		},
	}

	addSettingsFlags(cmd.Flags(), &flags.settings)
	cmd.Flags().StringVar(&flags.packet, "packet", "", "Send this packet instead of settings (e.g. \"48 12 A8 4B\")")
	cmd.Flags().StringVar(&flags.target, "target", "", "Transmit target (default from config)")
	cmd.Flags().StringVar(&flags.device, "device", "", "LIRC device for local and ssh targets (default from config)")

	return cmd
}

func runSend(cmd *cobra.Command, opts *rootOptions, flags *sendFlags) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	var pkt whynter.Packet
	if flags.packet != "" {
		if pkt, err = whynter.ParsePacketHex(flags.packet); err != nil {
			return err
		}
		if verr := pkt.Validate(); verr != nil {
			sess.logger.Info("Packet is not a known state: %v", verr)
		}
	} else {
		s, err := resolveSettings(cmd.Flags(), &flags.settings, sess.cfg.DefaultSettings())
		if err != nil {
			return err
		}
		pkt = whynter.Compile(s)
	}

	target, err := openTarget(sess, flags.target, flags.device)
	if err != nil {
		return err
	}
	defer target.Close()

	train := whynter.Encode(pkt)
	sess.logger.LogTransmit(pkt, train)
	if err := target.Transmit(train.CarrierHz, train.Pulses); err != nil {
		return fmt.Errorf("send via %s: %w", target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent packet %s via %s\n", pkt, target)
	return nil
}

// openTarget resolves the target and device against the config and wraps the
// result so every frame is counted.
func openTarget(sess *session, spec, device string) (*observedTarget, error) {
	if spec == "" {
		spec = sess.cfg.Transmit.Target
	}
	if device == "" {
		device = sess.cfg.Transmit.Device
	}
	t, err := transport.OpenTarget(spec, device)
	if err != nil {
		return nil, err
	}
	sess.logger.Verbose("Transmit target: %s", t)
	return &observedTarget{Target: t, kind: targetKind(spec), metrics: sess.metrics}, nil
}

// observedTarget counts frames and failures for the metrics textfile.
type observedTarget struct {
	transport.Target
	kind    string
	metrics *metrics.Collector
}

func (o *observedTarget) Transmit(carrierHz int, pulses []whynter.Pulse) error {
	if err := o.Target.Transmit(carrierHz, pulses); err != nil {
		o.metrics.ObserveTransmitError(o.kind)
		return err
	}
	o.metrics.ObserveFrame("send")
	return nil
}

// targetKind is the low-cardinality label for a target spec.
func targetKind(spec string) string {
	spec = strings.TrimSpace(spec)
	switch {
	case transport.IsLocal(spec):
		return "local"
	case strings.HasPrefix(spec, "file:"):
		return "file"
	case strings.HasPrefix(spec, "redis://"):
		return "redis"
	case transport.IsSSH(spec):
		return "ssh"
	default:
		return "other"
	}
}
