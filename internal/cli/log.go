// Package cli implements the overlaysmith command-line interface.
//
// # Commands
//
//   - sync: download the package database of a repository into the overlay
//   - list: show the packages of the database
//   - deps: print the dependency closure of a package (text, DOT or SVG)
//   - generate: write one package and its dependencies into the overlay
//   - generate-tree: wipe the overlay and regenerate it completely
//   - update-tree: regenerate the overlay in place, touching only what changed
//   - install: generate a package and install it with the package manager
//   - cache: manage the download cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. One
// charmbracelet logger is created by [New] and handed to every library
// component that logs.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps read like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time and any extra key/value
// pairs, e.g. `Synced main elapsed=1.234s packages=1203`.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}
