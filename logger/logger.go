package logger

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// -----------------------------------------------------------------------------

// Logger interface is used to allow callers to inject custom loggers.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	WithFields(map[string]interface{}) Logger
	Writer() io.Writer
	SetWriter(io.Writer)
}

type logger struct {
	*log.Entry
}

// -----------------------------------------------------------------------------

// NewLogger returns a new Logger instance backed by Logrus.
func NewLogger(level uint32) Logger {
	l := log.New()
	l.SetLevel(log.Level(level))
	l.Formatter = &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	return &logger{log.NewEntry(l)}
}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	l.SetLevel(log.PanicLevel)
	return &logger{log.NewEntry(l)}
}

// GetLogLevel converts the level string to its corresponding int value. It returns an error if
// the level is invalid.
func GetLogLevel(level string) (uint32, error) {
	var l uint32
	switch strings.ToLower(level) {
	case "debug":
		l = uint32(log.DebugLevel)
	case "info":
		l = uint32(log.InfoLevel)
	case "warn":
		l = uint32(log.WarnLevel)
	case "error":
		l = uint32(log.ErrorLevel)
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	return &logger{l.Entry.WithFields(fields)}
}

func (l *logger) Writer() io.Writer {
	return l.Logger.Out
}

func (l *logger) SetWriter(writer io.Writer) {
	l.Logger.SetOutput(writer)
}
