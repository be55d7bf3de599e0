package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the process logger. Debug mode adds per-operation
// detail that is too noisy for normal CLI use.
func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
