// Package logging owns the process-wide structured logger.
package logging

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the shared logger, creating it on first use.
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "xfile",
		})
	})
	return singleton
}

// SetLevel applies a level by name: debug, info, warn, error or fatal.
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return errors.Wrapf(err, "log level %q", name)
	}
	Logger().SetLevel(lvl)
	return nil
}

// EnableCaller turns on file:line reporting, used with debug output.
func EnableCaller() {
	Logger().SetReportCaller(true)
}

func Debug(msg string, keyvals ...interface{}) {
	l := Logger()
	l.Helper()
	l.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	l := Logger()
	l.Helper()
	l.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	l := Logger()
	l.Helper()
	l.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	l := Logger()
	l.Helper()
	l.Error(msg, keyvals...)
}

func Fatal(msg string, keyvals ...interface{}) {
	l := Logger()
	l.Helper()
	l.Fatal(msg, keyvals...)
}
