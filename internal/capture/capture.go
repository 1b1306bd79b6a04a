package capture

// Captured IR timing formats.
//
// raw:   signed microseconds, positive = mark, negative = space
//        8500, -4400, 550, -1550, ...
// mode2: LIRC mode2 output
//        carrier 38000
//        pulse 8500
//        space 4400
// yaml:  Document with carrier_hz and a raw pulse list

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// Format selects a capture encoding.
type Format string

const (
	FormatRaw   Format = "raw"
	FormatMode2 Format = "mode2"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts raw, mode2 or yaml.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatRaw, "":
		return FormatRaw, nil
	case FormatMode2:
		return FormatMode2, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown capture format %q (expected raw, mode2, yaml)", s)
	}
}

// FormatForPath picks a format from the file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".mode2", ".lirc":
		return FormatMode2
	default:
		return FormatRaw
	}
}

// Document is the YAML capture layout.
type Document struct {
	Name       string `yaml:"name,omitempty"`
	CarrierHz  int    `yaml:"carrier_hz"`
	CapturedAt string `yaml:"captured_at,omitempty"`
	Packet     string `yaml:"packet,omitempty"`
	Pulses     []int  `yaml:"pulses,flow"`
}

// ParseError reports the position of a bad entry.
type ParseError struct {
	Line  int // 1-based, 0 when unknown
	Entry int // 1-based
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d entry %d %q: %v", e.Line, e.Entry, e.Text, e.Err)
	}
	return fmt.Sprintf("entry %d %q: %v", e.Entry, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ToSigned converts pulses into signed microseconds.
func ToSigned(pulses []whynter.Pulse) []int {
	out := make([]int, len(pulses))
	for i, p := range pulses {
		us := int(p.Duration.Microseconds())
		if p.Kind == whynter.Space {
			us = -us
		}
		out[i] = us
	}
	return out
}

// FromSigned converts signed microseconds into pulses. Zero is rejected.
func FromSigned(values []int) ([]whynter.Pulse, error) {
	pulses := make([]whynter.Pulse, 0, len(values))
	for i, v := range values {
		p, err := signedPulse(v)
		if err != nil {
			return nil, &ParseError{Entry: i + 1, Text: strconv.Itoa(v), Err: err}
		}
		pulses = append(pulses, p)
	}
	return pulses, nil
}

func signedPulse(v int) (whynter.Pulse, error) {
	switch {
	case v > 0:
		return whynter.Pulse{Kind: whynter.Mark, Duration: time.Duration(v) * time.Microsecond}, nil
	case v < 0:
		return whynter.Pulse{Kind: whynter.Space, Duration: time.Duration(-v) * time.Microsecond}, nil
	default:
		return whynter.Pulse{}, fmt.Errorf("zero-length pulse")
	}
}

// ParseRaw parses comma and/or whitespace separated signed microseconds.
// ESPHome log prefixes such as "[12:00:01][D][remote.raw:041]: Received Raw:"
// are stripped from each line.
func ParseRaw(s string) ([]whynter.Pulse, error) {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = stripLogPrefix(line)
	}
	s = strings.Join(lines, "\n")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '[' || r == ']'
	})
	pulses := make([]whynter.Pulse, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ParseError{Entry: i + 1, Text: f, Err: fmt.Errorf("not an integer")}
		}
		p, err := signedPulse(v)
		if err != nil {
			return nil, &ParseError{Entry: i + 1, Text: f, Err: err}
		}
		pulses = append(pulses, p)
	}
	return pulses, nil
}

// stripLogPrefix cuts a line after its last "raw:" label or "]:" log tag.
func stripLogPrefix(line string) string {
	lower := strings.ToLower(line)
	cut := -1
	if i := strings.LastIndex(lower, "raw:"); i >= 0 {
		cut = i + len("raw:")
	}
	if i := strings.LastIndex(lower, "]:"); i >= 0 && i+len("]:") > cut {
		cut = i + len("]:")
	}
	if cut < 0 {
		return line
	}
	return line[cut:]
}

// RawString renders pulses as signed microseconds.
func RawString(pulses []whynter.Pulse) string {
	values := ToSigned(pulses)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// ParseMode2 reads LIRC mode2 output. Consecutive pulses of the same kind are
// merged; a leading space (the idle gap before the first pulse) is dropped.
// A timeout following a pulse becomes the closing space, capped at the
// nominal stop space.
func ParseMode2(r io.Reader) (whynter.Train, error) {
	train := whynter.Train{CarrierHz: whynter.CarrierFrequency}
	scanner := bufio.NewScanner(r)
	line := 0
	entry := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return train, &ParseError{Line: line, Entry: entry + 1, Text: text, Err: fmt.Errorf("expected \"<kind> <value>\"")}
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil || v < 0 {
			return train, &ParseError{Line: line, Entry: entry + 1, Text: text, Err: fmt.Errorf("invalid value")}
		}

		var kind whynter.Kind
		switch strings.ToLower(fields[0]) {
		case "carrier":
			train.CarrierHz = v
			continue
		case "pulse":
			kind = whynter.Mark
		case "space":
			kind = whynter.Space
		case "timeout":
			// The receiver reports the idle gap after the final mark as a
			// timeout; it closes the train as a stop space of at most 4.4 ms.
			if n := len(train.Pulses); n > 0 && train.Pulses[n-1].Kind == whynter.Mark && v > 0 {
				gap := time.Duration(v) * time.Microsecond
				if gap > whynter.StopSpace {
					gap = whynter.StopSpace
				}
				train.Pulses = append(train.Pulses, whynter.Pulse{Kind: whynter.Space, Duration: gap})
			}
			continue
		default:
			return train, &ParseError{Line: line, Entry: entry + 1, Text: text, Err: fmt.Errorf("unknown kind %q", fields[0])}
		}
		entry++
		if v == 0 {
			continue
		}
		d := time.Duration(v) * time.Microsecond
		if len(train.Pulses) == 0 && kind == whynter.Space {
			continue
		}
		if n := len(train.Pulses); n > 0 && train.Pulses[n-1].Kind == kind {
			train.Pulses[n-1].Duration += d
			continue
		}
		train.Pulses = append(train.Pulses, whynter.Pulse{Kind: kind, Duration: d})
	}
	if err := scanner.Err(); err != nil {
		return train, fmt.Errorf("read mode2: %w", err)
	}
	return train, nil
}

// WriteMode2 writes a train in LIRC mode2 layout.
func WriteMode2(w io.Writer, train whynter.Train) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "carrier %d\n", train.CarrierHz)
	for _, p := range train.Pulses {
		kind := "pulse"
		if p.Kind == whynter.Space {
			kind = "space"
		}
		fmt.Fprintf(bw, "%s %d\n", kind, p.Duration.Microseconds())
	}
	return bw.Flush()
}

// ParseYAML decodes a YAML capture document.
func ParseYAML(data []byte) (whynter.Train, *Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return whynter.Train{}, nil, fmt.Errorf("parse capture YAML: %w", err)
	}
	pulses, err := FromSigned(doc.Pulses)
	if err != nil {
		return whynter.Train{}, nil, err
	}
	carrier := doc.CarrierHz
	if carrier == 0 {
		carrier = whynter.CarrierFrequency
	}
	return whynter.Train{CarrierHz: carrier, Pulses: pulses}, &doc, nil
}

// MarshalYAML renders a train as a YAML capture document.
func MarshalYAML(name string, train whynter.Train, pkt *whynter.Packet) ([]byte, error) {
	doc := Document{
		Name:       name,
		CarrierHz:  train.CarrierHz,
		CapturedAt: time.Now().UTC().Format(time.RFC3339),
		Pulses:     ToSigned(train.Pulses),
	}
	if pkt != nil {
		doc.Packet = pkt.Hex()
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("marshal capture YAML: %w", err)
	}
	return data, nil
}

// Parse decodes capture data in the given format.
func Parse(data []byte, format Format) (whynter.Train, error) {
	switch format {
	case FormatYAML:
		train, _, err := ParseYAML(data)
		return train, err
	case FormatMode2:
		return ParseMode2(strings.NewReader(string(data)))
	default:
		pulses, err := ParseRaw(string(data))
		if err != nil {
			return whynter.Train{}, err
		}
		return whynter.Train{CarrierHz: whynter.CarrierFrequency, Pulses: pulses}, nil
	}
}

// LoadFile reads a capture, choosing the format by extension.
func LoadFile(path string) (whynter.Train, error) {
	return LoadFileAs(path, FormatForPath(path))
}

// LoadFileAs reads a capture in an explicit format.
func LoadFileAs(path string, format Format) (whynter.Train, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return whynter.Train{}, fmt.Errorf("read capture: %w", err)
	}
	train, err := Parse(data, format)
	if err != nil {
		return whynter.Train{}, fmt.Errorf("parse capture %s: %w", filepath.Base(path), err)
	}
	return train, nil
}

// Render encodes a train in the given format.
func Render(train whynter.Train, format Format, pkt *whynter.Packet) ([]byte, error) {
	switch format {
	case FormatYAML:
		name := ""
		if pkt != nil {
			name = "whynter " + pkt.String()
		}
		return MarshalYAML(name, train, pkt)
	case FormatMode2:
		var sb strings.Builder
		if err := WriteMode2(&sb, train); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	default:
		return []byte(RawString(train.Pulses) + "\n"), nil
	}
}

// SaveFile writes a train to disk, choosing the format by extension.
func SaveFile(path string, train whynter.Train, pkt *whynter.Packet) error {
	data, err := Render(train, FormatForPath(path), pkt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	return nil
}
