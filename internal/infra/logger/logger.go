// internal/infra/logger/logger.go
package logger

import (
	"os"
	"strings"

	"isp_billing_panel/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// ServiceName is stamped on every entry so panel logs can be told apart in a shared sink.
const ServiceName = "isp_billing_panel"

// Log is the global logger instance
var Log = logrus.New()

// Init configures Log for the panel: level and format come from cfg, and every
// entry carries the service name and environment.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(formatterFor(cfg.Environment))
	Log.ReplaceHooks(make(logrus.LevelHooks))
	Log.AddHook(staticFields{
		"service": ServiceName,
		"env":     strings.ToLower(cfg.Environment),
	})

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
		Log.WithError(err).Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}
	Log.SetLevel(level)

	Log.WithFields(logrus.Fields{
		"level":         level.String(),
		"storage":       cfg.StorageDriver,
		"session_store": cfg.SessionStore,
		"timezone":      cfg.Timezone,
	}).Info("Logger ready")
}

func formatterFor(environment string) logrus.Formatter {
	switch strings.ToLower(environment) {
	case "production", "staging":
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		}
	default:
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		}
	}
}

// staticFields adds fixed fields to entries that do not already set them.
type staticFields logrus.Fields

func (h staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (h staticFields) Fire(e *logrus.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
