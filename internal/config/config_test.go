package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	expectedHome := filepath.Join(home, ".depssmuggler")

	if cfg.HomeDir != expectedHome {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, expectedHome)
	}
	if cfg.CacheDir != filepath.Join(expectedHome, "cache") {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, filepath.Join(expectedHome, "cache"))
	}
	if cfg.MetaDir != filepath.Join(expectedHome, "cache", "os-packages") {
		t.Errorf("MetaDir = %q, want %q", cfg.MetaDir, filepath.Join(expectedHome, "cache", "os-packages"))
	}
	if cfg.DownloadDir != filepath.Join(expectedHome, "downloads") {
		t.Errorf("DownloadDir = %q, want %q", cfg.DownloadDir, filepath.Join(expectedHome, "downloads"))
	}
	if cfg.MirrorDir != filepath.Join(expectedHome, "mirrors") {
		t.Errorf("MirrorDir = %q, want %q", cfg.MirrorDir, filepath.Join(expectedHome, "mirrors"))
	}
	if cfg.ConfigFile != filepath.Join(expectedHome, "config.toml") {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, filepath.Join(expectedHome, "config.toml"))
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		HomeDir:     filepath.Join(tmpDir, "depssmuggler"),
		CacheDir:    filepath.Join(tmpDir, "depssmuggler", "cache"),
		MetaDir:     filepath.Join(tmpDir, "depssmuggler", "cache", "os-packages"),
		DownloadDir: filepath.Join(tmpDir, "depssmuggler", "downloads"),
		MirrorDir:   filepath.Join(tmpDir, "depssmuggler", "mirrors"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() failed: %v", err)
	}

	dirs := []string{cfg.HomeDir, cfg.CacheDir, cfg.MetaDir, cfg.DownloadDir, cfg.MirrorDir}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Directory %q does not exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", dir)
		}
	}
}

func TestJobMirrorDir(t *testing.T) {
	cfg := &Config{MirrorDir: "/home/user/.depssmuggler/mirrors"}

	got := cfg.JobMirrorDir("rocky9-base")
	want := "/home/user/.depssmuggler/mirrors/rocky9-base"
	if got != want {
		t.Errorf("JobMirrorDir() = %q, want %q", got, want)
	}
}

func TestJobDownloadDir(t *testing.T) {
	cfg := &Config{DownloadDir: "/home/user/.depssmuggler/downloads"}

	got := cfg.JobDownloadDir("rocky9-base")
	want := "/home/user/.depssmuggler/downloads/rocky9-base"
	if got != want {
		t.Errorf("JobDownloadDir() = %q, want %q", got, want)
	}
}

func TestDefaultConfig_WithHomeEnv(t *testing.T) {
	original := os.Getenv(EnvHome)
	defer os.Setenv(EnvHome, original)

	customHome := "/custom/depssmuggler/path"
	os.Setenv(EnvHome, customHome)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	if cfg.HomeDir != customHome {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, customHome)
	}
	if cfg.CacheDir != filepath.Join(customHome, "cache") {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, filepath.Join(customHome, "cache"))
	}
}

func TestDefaultConfig_EmptyHomeEnv(t *testing.T) {
	original := os.Getenv(EnvHome)
	defer os.Setenv(EnvHome, original)

	_ = os.Unsetenv(EnvHome)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	expectedHome := filepath.Join(home, ".depssmuggler")

	if cfg.HomeDir != expectedHome {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, expectedHome)
	}
}

func TestGetConcurrency_Default(t *testing.T) {
	original := os.Getenv(EnvConcurrency)
	defer os.Setenv(EnvConcurrency, original)
	_ = os.Unsetenv(EnvConcurrency)

	if got := GetConcurrency(); got != DefaultConcurrency {
		t.Errorf("GetConcurrency() = %d, want %d", got, DefaultConcurrency)
	}
}

func TestGetConcurrency_CustomValue(t *testing.T) {
	original := os.Getenv(EnvConcurrency)
	defer os.Setenv(EnvConcurrency, original)
	os.Setenv(EnvConcurrency, "8")

	if got := GetConcurrency(); got != 8 {
		t.Errorf("GetConcurrency() = %d, want 8", got)
	}
}

func TestGetConcurrency_TooLow(t *testing.T) {
	original := os.Getenv(EnvConcurrency)
	defer os.Setenv(EnvConcurrency, original)
	os.Setenv(EnvConcurrency, "0")

	if got := GetConcurrency(); got != 1 {
		t.Errorf("GetConcurrency() = %d, want 1 (minimum)", got)
	}
}

func TestGetConcurrency_TooHigh(t *testing.T) {
	original := os.Getenv(EnvConcurrency)
	defer os.Setenv(EnvConcurrency, original)
	os.Setenv(EnvConcurrency, "1000")

	if got := GetConcurrency(); got != 64 {
		t.Errorf("GetConcurrency() = %d, want 64 (maximum)", got)
	}
}

func TestGetConcurrency_InvalidValue(t *testing.T) {
	original := os.Getenv(EnvConcurrency)
	defer os.Setenv(EnvConcurrency, original)
	os.Setenv(EnvConcurrency, "abc")

	if got := GetConcurrency(); got != DefaultConcurrency {
		t.Errorf("GetConcurrency() = %d, want %d (default)", got, DefaultConcurrency)
	}
}

func TestGetMaxRetries_Default(t *testing.T) {
	original := os.Getenv(EnvMaxRetries)
	defer os.Setenv(EnvMaxRetries, original)
	_ = os.Unsetenv(EnvMaxRetries)

	if got := GetMaxRetries(); got != DefaultMaxRetries {
		t.Errorf("GetMaxRetries() = %d, want %d", got, DefaultMaxRetries)
	}
}

func TestGetMaxRetries_TooHigh(t *testing.T) {
	original := os.Getenv(EnvMaxRetries)
	defer os.Setenv(EnvMaxRetries, original)
	os.Setenv(EnvMaxRetries, "100")

	if got := GetMaxRetries(); got != 10 {
		t.Errorf("GetMaxRetries() = %d, want 10 (maximum)", got)
	}
}

func TestGetBaseDelay_Default(t *testing.T) {
	original := os.Getenv(EnvBaseDelayMS)
	defer os.Setenv(EnvBaseDelayMS, original)
	_ = os.Unsetenv(EnvBaseDelayMS)

	if got := GetBaseDelay(); got != DefaultBaseDelay {
		t.Errorf("GetBaseDelay() = %v, want %v", got, DefaultBaseDelay)
	}
}

func TestGetBaseDelay_CustomValue(t *testing.T) {
	original := os.Getenv(EnvBaseDelayMS)
	defer os.Setenv(EnvBaseDelayMS, original)
	os.Setenv(EnvBaseDelayMS, "750")

	want := 750 * time.Millisecond
	if got := GetBaseDelay(); got != want {
		t.Errorf("GetBaseDelay() = %v, want %v", got, want)
	}
}

func TestGetCacheMode(t *testing.T) {
	original := os.Getenv(EnvCacheMode)
	defer os.Setenv(EnvCacheMode, original)

	tests := []struct {
		envValue string
		want     CacheMode
	}{
		{"", CacheModePersistent},
		{"session", CacheModeSession},
		{"persistent", CacheModePersistent},
		{"none", CacheModeNone},
		{"SESSION", CacheModeSession},
		{"bogus", CacheModePersistent},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			if tt.envValue == "" {
				_ = os.Unsetenv(EnvCacheMode)
			} else {
				os.Setenv(EnvCacheMode, tt.envValue)
			}
			if got := GetCacheMode(); got != tt.want {
				t.Errorf("GetCacheMode() with %q = %q, want %q", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestGetCacheTTL_Default(t *testing.T) {
	original := os.Getenv(EnvCacheTTL)
	defer os.Setenv(EnvCacheTTL, original)
	_ = os.Unsetenv(EnvCacheTTL)

	if got := GetCacheTTL(); got != DefaultCacheTTL {
		t.Errorf("GetCacheTTL() = %v, want %v", got, DefaultCacheTTL)
	}
}

func TestGetCacheTTL_TooLow(t *testing.T) {
	original := os.Getenv(EnvCacheTTL)
	defer os.Setenv(EnvCacheTTL, original)
	os.Setenv(EnvCacheTTL, "10s")

	if got := GetCacheTTL(); got != 1*time.Minute {
		t.Errorf("GetCacheTTL() = %v, want 1m (minimum)", got)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"52428800", 52428800, false},
		{"100B", 100, false},
		{"100b", 100, false},
		{"1K", 1024, false},
		{"1KB", 1024, false},
		{"50K", 51200, false},
		{"1M", 1024 * 1024, false},
		{"50MB", 50 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"2GB", 2 * 1024 * 1024 * 1024, false},
		{"1.5M", int64(1.5 * 1024 * 1024), false},
		{"", 0, true},
		{"abc", 0, true},
		{"50TB", 0, true},
		{"MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseByteSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetCacheMaxSize_Default(t *testing.T) {
	original := os.Getenv(EnvCacheMaxSize)
	defer os.Setenv(EnvCacheMaxSize, original)
	_ = os.Unsetenv(EnvCacheMaxSize)

	if got := GetCacheMaxSize(); got != DefaultCacheMaxSize {
		t.Errorf("GetCacheMaxSize() = %d, want %d", got, DefaultCacheMaxSize)
	}
}

func TestGetCacheMaxSize_HumanReadable(t *testing.T) {
	original := os.Getenv(EnvCacheMaxSize)
	defer os.Setenv(EnvCacheMaxSize, original)

	os.Setenv(EnvCacheMaxSize, "250MB")
	want := int64(250 * 1024 * 1024)
	if got := GetCacheMaxSize(); got != want {
		t.Errorf("GetCacheMaxSize() = %d, want %d", got, want)
	}
}

func TestGetCacheMaxSize_TooHigh(t *testing.T) {
	original := os.Getenv(EnvCacheMaxSize)
	defer os.Setenv(EnvCacheMaxSize, original)
	os.Setenv(EnvCacheMaxSize, "20GB")

	want := int64(10 * 1024 * 1024 * 1024)
	if got := GetCacheMaxSize(); got != want {
		t.Errorf("GetCacheMaxSize() = %d, want %d (maximum)", got, want)
	}
}
