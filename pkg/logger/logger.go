// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var log *zap.Logger

// candidateLogPaths, most privileged first. The installer runs as root, so
// /var/log/zulip normally wins; the fallbacks keep --help and the test suite
// working for unprivileged users.
func candidateLogPaths() []string {
	return []string{
		"/var/log/zulip/install.log",
		filepath.Join(os.Getenv("HOME"), ".zulip-install", "install.log"),
		"./zulip-install.log",
	}
}

// FindWritableLogPath returns the first log path we can actually append to.
func FindWritableLogPath() (string, error) {
	var lastErr error
	for _, path := range candidateLogPaths() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			lastErr = err
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			lastErr = err
			continue
		}
		f.Close()
		return path, nil
	}
	return "", lastErr
}

// L returns the process-wide logger, initializing a fallback if needed.
func L() *zap.Logger {
	if log == nil {
		InitializeWithFallback()
	}
	return log
}

// Sync flushes buffered log entries.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
