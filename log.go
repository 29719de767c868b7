package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "convertpro").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "convertpro.log"), nil
}

// setupLog sends the default logger to a file in the user cache dir, so it
// never draws over the TUI. CONVERTPRO_DEBUG logs to stderr instead.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if os.Getenv("CONVERTPRO_DEBUG") != "" {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return func() error { return nil }, nil
	}

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err //nolint:wrapcheck
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportTimestamp(true)
	return f.Close, nil
}
