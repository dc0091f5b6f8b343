// Package logging configures the process-wide logger.
package logging

import (
	log "github.com/sirupsen/logrus"
)

// Init installs the text formatter and the log level named by level
// (trace, debug, info, warn, error, fatal, panic).
func Init(level string) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}
