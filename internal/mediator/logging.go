package mediator

import (
	"os"
	"strings"

	"productshot/config"

	"github.com/charmbracelet/log"
)

// ConfigureLogging applies level and format to the default logger. Component
// loggers copy these settings when they are created, so call it first.
func ConfigureLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(log.JSONFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.TextFormatter)
	}
}
