// Package testutil provides shared test helpers: temp directories, a
// scratch config, and small assertion wrappers.
package testutil

import (
	"os"
	"testing"

	"github.com/depssmuggler/core/internal/config"
)

// TempDir creates a temporary directory and returns a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "depssmuggler-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// NewTestConfig creates a Config rooted at a temporary directory, with
// all its subdirectories pre-created.
func NewTestConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()
	tmpDir, cleanup := TempDir(t)

	cfg := &config.Config{
		HomeDir:     tmpDir,
		CacheDir:    tmpDir + "/cache",
		MetaDir:     tmpDir + "/cache/os-packages",
		DownloadDir: tmpDir + "/downloads",
		MirrorDir:   tmpDir + "/mirrors",
		ConfigFile:  tmpDir + "/config.toml",
	}

	if err := cfg.EnsureDirectories(); err != nil {
		cleanup()
		t.Fatalf("failed to create config directories: %v", err)
	}

	return cfg, cleanup
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AssertFileExists checks if a file exists at the given path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if !FileExists(path) {
		t.Errorf("file does not exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does NOT exist at the given path.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if FileExists(path) {
		t.Errorf("file should not exist: %s", path)
	}
}
