// Package logging configures the global structured logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Setup configures the global logger from the LOG_LEVEL environment variable.
// Accepted values: debug, info, warn, error. Defaults to info.
func Setup() {
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.RFC3339)

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
