package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// OpenLogFile creates logDir if needed and returns a JSON logger appending to logDir/fileName.
// The returned close func must be called once the run finishes.
func OpenLogFile(logDir, fileName string, level slog.Level) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(logDir, fileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, f.Close, nil
}
