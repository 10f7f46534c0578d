package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Package config provides the paths and preference keys used by the extension

// CacheDir returns the per-installation cache directory, <user-cache-dir>/<app-id>.
func CacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(userCacheDir, AppID), nil
}

// RegistryPath returns the path of the registry document inside dir.
func RegistryPath(dir string) string {
	return filepath.Join(dir, RegistryFile)
}

// LogPath returns the path of the default log file inside dir.
func LogPath(dir string) string {
	return filepath.Join(dir, LogFile)
}

// DebugLogPath returns the path of the debug log file inside dir.
func DebugLogPath(dir string) string {
	return filepath.Join(dir, DebugLogFile)
}

// PtsPath returns the path of pseudo-terminal n.
func PtsPath(n int) string {
	return fmt.Sprintf(PtsPathFormat, n)
}
