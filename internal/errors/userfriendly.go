package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// UserFriendlyError provides user-friendly error messages with context and hints
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error {
	return e.Err
}

// WrapDecodeError wraps pulse train decode errors with user-friendly context
func WrapDecodeError(err error, source string) error {
	if err == nil {
		return nil
	}

	reason, hint := extractDecodeReason(err)
	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to decode Whynter frame from %s", source),
		Reason:  reason,
		Hint:    hint,
		Try:     fmt.Sprintf("whynterir analyze %s", source),
		Err:     err,
	}
}

// WrapCaptureError wraps capture file errors with user-friendly context
func WrapCaptureError(err error, path string) error {
	if err == nil {
		return nil
	}

	reason := "Capture could not be parsed"
	if stderrors.Is(err, os.ErrNotExist) {
		reason = "Capture file does not exist"
	}
	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to read capture %s", path),
		Reason:  reason,
		Hint:    "Supported formats: raw signed microseconds (.txt), LIRC mode2 (.mode2), YAML (.yaml)",
		Err:     err,
	}
}

// WrapConfigError wraps configuration errors with user-friendly context
func WrapConfigError(err error, configPath string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Configuration error in %s", configPath),
		Reason:  err.Error(),
		Hint:    "Run with --init-config to write a default configuration",
		Try:     fmt.Sprintf("whynterir info --config %s", configPath),
		Err:     err,
	}
}

func extractDecodeReason(err error) (reason, hint string) {
	switch {
	case stderrors.Is(err, whynter.ErrMalformedLength):
		return fmt.Sprintf("Capture does not contain exactly %d pulses", whynter.TrainLength),
			"The capture may hold several frames or be truncated; trim it to one frame"
	case stderrors.Is(err, whynter.ErrInvalidLeadIn):
		return "Lead-in mark/space is not 8500/4400us",
			"This is probably not a Whynter remote, or the receiver clips long marks"
	case stderrors.Is(err, whynter.ErrAmbiguousBit):
		return "A bit-cell timing is outside both the zero and one windows",
			"Increase the tolerance with --tolerance if the receiver is noisy"
	case stderrors.Is(err, whynter.ErrInvalidTrailer):
		return "Trailing mark or stop space is out of tolerance",
			"The capture may have been cut off before the stop space"
	default:
		return "Capture decode failed", ""
	}
}
