package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger shared by every package.
// It is usable before Init so libraries and tests never see a nil logger.
var Log = logrus.New()

// Init configures the global logger.
// It should be called once at startup from main.
func Init() {
	Log = logrus.New()

	// LOG_LEVEL defaults to "info"; "debug" and "trace" are useful while tuning physics
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// "json" for log collection, coloured text otherwise
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if logFormat == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// Component returns an entry tagged with the given component name
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
