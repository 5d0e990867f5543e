// Package filesystem wraps the handful of file operations the gallery
// performs on media storage with retry logic for NFS stale file handles.
// Galleries commonly mount their media over NFS, where a re-exported or
// remounted volume makes open handles go stale transiently.
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"photo-gallery/internal/logging"
)

// RetryConfig configures the stale-handle retry behavior.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryConfig retries twice with a short pause, enough for the
// kernel to refresh the handle without stalling a request noticeably.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       100 * time.Millisecond,
	}
}

// isStaleError reports whether err is an NFS stale file handle.
func isStaleError(err error) bool {
	return errors.Is(err, syscall.ESTALE)
}

// Stat is os.Stat with stale-handle retries.
func Stat(path string) (os.FileInfo, error) {
	return StatWithConfig(path, DefaultRetryConfig())
}

// StatWithConfig is os.Stat with explicit retry configuration.
func StatWithConfig(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := retry("stat", path, config, func() error {
		var statErr error
		info, statErr = os.Stat(path)
		return statErr
	})
	return info, err
}

// ReadDir is os.ReadDir with stale-handle retries.
func ReadDir(path string) ([]os.DirEntry, error) {
	var entries []os.DirEntry
	err := retry("readdir", path, DefaultRetryConfig(), func() error {
		var readErr error
		entries, readErr = os.ReadDir(path)
		return readErr
	})
	return entries, err
}

// ReadFile is os.ReadFile with stale-handle retries.
func ReadFile(path string) ([]byte, error) {
	var data []byte
	err := retry("read", path, DefaultRetryConfig(), func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	return data, err
}

// retry runs op, repeating only on stale handle errors. Other errors,
// including plain not-found, return immediately.
func retry(name, path string, config RetryConfig, op func() error) error {
	var err error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err = op()
		if err == nil || !isStaleError(err) {
			return err
		}
		if attempt < config.MaxAttempts {
			logging.Warn("Stale NFS handle on %s %s (attempt %d/%d), retrying", name, path, attempt, config.MaxAttempts)
			time.Sleep(config.Delay)
		}
	}
	logging.Error("Stale NFS handle on %s %s persisted after %d attempts", name, path, config.MaxAttempts)
	return err
}
