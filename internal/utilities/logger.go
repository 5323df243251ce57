package utilities

import (
	"context"
	"os"
	"strings"

	"github.com/tqt95/app-react-jpa/internal"

	"github.com/sirupsen/logrus"
)

type logger struct {
	*logrus.Logger
}

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	default:
		return logrus.ErrorLevel
	case Info:
		return logrus.InfoLevel
	case Debug:
		return logrus.DebugLevel
	case Trace:
		return logrus.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

func NewLogger() interface {
	internal.Configurer
	Logger
} {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.ErrorLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logger{Logger: l}
}

func (l *logger) Configure(envs map[string]string) error {
	l.SetLevel(Error.logrusLevel())
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.SetLevel(atoLogLevel(logLevel).logrusLevel())
	}
	if strings.EqualFold(envs["LOG_FORMAT"], "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func (l *logger) entry(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		entry = entry.WithField("correlation_id", correlationId)
	}
	return entry
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Errorf(format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Infof(format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Debugf(format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.entry(ctx).Tracef(format, v...)
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything, used when a
// component is constructed without one.
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Trace(context.Context, string, ...any) {}
