package logging

// Level logging for whynterir

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

// ParseLevel maps a config/flag string to a level. Empty means info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off":
		return LogLevelSilent, nil
	case "error":
		return LogLevelError, nil
	case "info", "":
		return LogLevelInfo, nil
	case "verbose":
		return LogLevelVerbose, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q (expected silent, error, info, verbose, debug)", s)
	}
}

// fileLevel maps a level to the logrus level used in the log file.
func (l LogLevel) fileLevel() logrus.Level {
	switch l {
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelVerbose:
		return logrus.DebugLevel
	case LogLevelDebug:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger provides level-filtered logging to the console and an optional
// structured log file
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	file    *os.File
	fileLog *logrus.Logger
	stdout  *log.Logger
	stderr  *log.Logger
}

// NewLogger creates a new logger writing to os.Stdout/os.Stderr
func NewLogger(level LogLevel, logFile string) (*Logger, error) {
	return NewLoggerTo(level, logFile, os.Stdout, os.Stderr)
}

// NewLoggerTo creates a logger with explicit console writers
func NewLoggerTo(level LogLevel, logFile string, stdout, stderr io.Writer) (*Logger, error) {
	l := &Logger{
		level:  level,
		stdout: log.New(stdout, "", 0),
		stderr: log.New(stderr, "", 0),
	}

	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = file
		l.fileLog = logrus.New()
		l.fileLog.SetOutput(file)
		l.fileLog.SetLevel(logrus.TraceLevel)
		l.fileLog.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return l, nil
}

// SetFileFormat selects the log file encoding: text or json.
func (l *Logger) SetFileFormat(format string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var formatter logrus.Formatter
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		formatter = &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	case "json":
		formatter = &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	default:
		return fmt.Errorf("unknown log file format %q (expected text or json)", format)
	}
	if l.fileLog != nil {
		l.fileLog.SetFormatter(formatter)
	}
	return nil
}

// Close closes the logger and flushes all data
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LogLevelError, nil, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LogLevelInfo, nil, format, v...)
}

// Verbose logs a verbose message
func (l *Logger) Verbose(format string, v ...interface{}) {
	l.log(LogLevelVerbose, nil, format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LogLevelDebug, nil, format, v...)
}

var levelPrefix = map[LogLevel]string{
	LogLevelError:   "ERROR: ",
	LogLevelInfo:    "INFO: ",
	LogLevelVerbose: "VERBOSE: ",
	LogLevelDebug:   "DEBUG: ",
}

// log sends a message to the file and the console. Fields only reach the file.
// Errors go to stderr; other messages reach stdout only at verbose or debug.
func (l *Logger) log(level LogLevel, fields logrus.Fields, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level < level {
		return
	}
	msg := fmt.Sprintf(format, v...)

	if l.fileLog != nil {
		l.fileLog.WithFields(fields).Log(level.fileLevel(), msg)
	}

	if level == LogLevelError {
		l.stderr.Println(levelPrefix[level] + msg)
	} else if l.level >= LogLevelVerbose {
		l.stdout.Println(levelPrefix[level] + msg)
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LogTransmit logs an encoded frame
func (l *Logger) LogTransmit(pkt whynter.Packet, train whynter.Train) {
	l.log(LogLevelInfo, logrus.Fields{
		"packet":     pkt.Hex(),
		"carrier_hz": train.CarrierHz,
		"pulses":     len(train.Pulses),
	}, "Sending whynter code: 0x%s", pkt.Hex())
	l.Verbose("  Carrier: %d Hz, %d pulses, %.1f ms", train.CarrierHz, len(train.Pulses),
		float64(train.Duration().Microseconds())/1000)
	if l.GetLevel() >= LogLevelDebug {
		for i, p := range train.Pulses {
			l.Debug("  [%02d] %s", i, p)
		}
	}
}

// LogDecode logs a decode result
func (l *Logger) LogDecode(source string, pkt whynter.Packet, err error) {
	if err != nil {
		l.log(LogLevelError, logrus.Fields{"source": source}, "decode %s: %v", source, err)
		return
	}
	l.log(LogLevelInfo, logrus.Fields{
		"source": source,
		"packet": pkt.Hex(),
	}, "Received whynter code from %s: 0x%s", source, pkt.Hex())
	if verr := pkt.Validate(); verr != nil {
		l.Verbose("  Packet is not a known state: %v", verr)
	}
}

// LogHex logs hex data (for debug level)
func (l *Logger) LogHex(label string, data []byte) {
	if l.GetLevel() >= LogLevelDebug {
		parts := make([]string, len(data))
		for i, b := range data {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		l.Debug("%s: %s", label, strings.Join(parts, " "))
	}
}
