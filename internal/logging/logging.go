// Package logging builds the command-line logger.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a stderr-style logger at warn level, or debug when verbose.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "runlog",
	})
}
