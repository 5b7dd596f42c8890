// Package log provides the small logging interface the core depends
// on, backed by logrus so host applications can plug in their own
// formatter/output without the core importing logrus directly outside
// of this package.
package log

import "github.com/sirupsen/logrus"

// Logger is the logging surface internal/* packages depend on.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logrusLogger struct {
	*logrus.Logger
}

// New returns a Logger backed by a logrus.Logger configured the way
// the reference host runs it: plain text, no timestamps, colors off
// so captured logs stay diffable.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
	}
	return &logrusLogger{l}
}

// NewDebug returns a Logger with debug-level tracing enabled, used
// when Config.Debug is set.
func NewDebug() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
	}
	return &logrusLogger{l}
}

type nullLogger struct{}

func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Warnf(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}

// NewNull returns a Logger that discards everything, used by tests.
func NewNull() Logger { return nullLogger{} }
