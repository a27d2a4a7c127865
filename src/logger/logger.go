package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// -----------------------------------------------------------------------------

// levelSource and nameSource are satisfied by the application config.
type levelSource interface {
	LogLevelName() string
}

type nameSource interface {
	AppName() string
}

var (
	baseOnce sync.Once
	base     *logrus.Logger
)

func baseLogger() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		base.SetLevel(logrus.InfoLevel)
	})
	return base
}

// -----------------------------------------------------------------------------

// SetOutput redirects every logger. The MCP server uses it to keep stdout
// reserved for the protocol.
func SetOutput(w io.Writer) {
	baseLogger().SetOutput(w)
}

// -----------------------------------------------------------------------------

// SetFormatter switches every logger to the given logrus formatter.
func SetFormatter(f logrus.Formatter) {
	baseLogger().SetFormatter(f)
}

// -----------------------------------------------------------------------------

// Configure sets the level of every logger from the application config. It is
// called once at startup; an empty level keeps INFO.
func Configure(config interface{}) {
	if src, ok := config.(levelSource); ok && src.LogLevelName() != "" {
		baseLogger().SetLevel(ParseLevel(src.LogLevelName()))
	}
}

// -----------------------------------------------------------------------------

// ParseLevel maps config level names (DEBUG, INFO, WARNING, ERROR, CRITICAL)
// onto logrus. Critical messages always pass, so CRITICAL keeps errors too.
func ParseLevel(name string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	case "CRITICAL", "FATAL":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Logger provides component-scoped structured logging
type Logger struct {
	name  string
	entry *logrus.Entry
}

// -----------------------------------------------------------------------------

// NewLogger creates a component logger. When config names the application,
// entries carry it as the app field. The level is shared, see Configure.
func NewLogger(config interface{}, name string) *Logger {
	entry := baseLogger().WithField("component", name)
	if src, ok := config.(nameSource); ok && src.AppName() != "" {
		entry = entry.WithField("app", src.AppName())
	}

	return &Logger{
		name:  name,
		entry: entry,
	}
}

// -----------------------------------------------------------------------------

// Name returns the component name.
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// WithField returns a child logger carrying an extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{name: l.name, entry: l.entry.WithField(key, value)}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}
