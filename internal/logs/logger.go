// Package logs holds the shared application logger.
package logs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It works with defaults before Init runs
// so that library code and tests never need to bootstrap it.
var Logger = logrus.New()

// Options configure the logger.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
}

// Init configures the global logger from the given options.
func Init(opts Options) {
	l := logrus.New()

	switch opts.Level {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warning", "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	case "fatal":
		l.SetLevel(logrus.FatalLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	l.SetOutput(os.Stdout)
	Logger = l
}
