package config

import (
	"os"
	"path/filepath"
	"testing"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	original, had := os.LookupEnv(key)
	if value == "" {
		os.Unsetenv(key)
	} else {
		os.Setenv(key, value)
	}
	t.Cleanup(func() {
		if had {
			os.Setenv(key, original)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadFromPath_Defaults(t *testing.T) {
	withEnv(t, "WLPROXY_LISTEN_NAME", "")
	withEnv(t, "WAYLAND_DISPLAY", "")
	withEnv(t, "WLPROXY_LOG_LEVEL", "")

	tmpDir := t.TempDir()
	missingPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := loadFromPath(missingPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.ListenName != DefaultListenName {
		t.Errorf("ListenName = %q, want %q", cfg.ListenName, DefaultListenName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Upstream != "" {
		t.Errorf("Upstream = %q, want empty", cfg.Upstream)
	}
}

func TestLoadFromPath_File(t *testing.T) {
	withEnv(t, "WLPROXY_LISTEN_NAME", "")
	withEnv(t, "WAYLAND_DISPLAY", "")
	withEnv(t, "WLPROXY_LOG_LEVEL", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `listen_name: wayland-proxy-test
upstream: wayland-1
allow:
  - argb8888
deny:
  - "*:invalid"
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.ListenName != "wayland-proxy-test" {
		t.Errorf("ListenName = %q, want %q", cfg.ListenName, "wayland-proxy-test")
	}
	if cfg.Upstream != "wayland-1" {
		t.Errorf("Upstream = %q, want %q", cfg.Upstream, "wayland-1")
	}
	if len(cfg.Allow) != 1 || cfg.Allow[0] != "argb8888" {
		t.Errorf("Allow = %v, want [argb8888]", cfg.Allow)
	}
	if len(cfg.Deny) != 1 || cfg.Deny[0] != "*:invalid" {
		t.Errorf("Deny = %v, want [*:invalid]", cfg.Deny)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	withEnv(t, "WLPROXY_LISTEN_NAME", "wayland-proxy-env")
	withEnv(t, "WAYLAND_DISPLAY", "wayland-upstream")
	withEnv(t, "WLPROXY_LOG_LEVEL", "warn")

	tmpDir := t.TempDir()
	missingPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := loadFromPath(missingPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.ListenName != "wayland-proxy-env" {
		t.Errorf("ListenName = %q, want %q", cfg.ListenName, "wayland-proxy-env")
	}
	if cfg.Upstream != "wayland-upstream" {
		t.Errorf("Upstream = %q, want %q", cfg.Upstream, "wayland-upstream")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

func TestLoadFromPath_FileTakesPrecedenceOverUpstreamEnvOnlyWhenUnset(t *testing.T) {
	withEnv(t, "WLPROXY_LISTEN_NAME", "")
	withEnv(t, "WAYLAND_DISPLAY", "wayland-from-env")
	withEnv(t, "WLPROXY_LOG_LEVEL", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("upstream: wayland-from-file\n"), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.Upstream != "wayland-from-file" {
		t.Errorf("Upstream = %q, want %q (file should win when already set)", cfg.Upstream, "wayland-from-file")
	}
}

func TestSaveAndLoadFromPath_RoundTrip(t *testing.T) {
	withEnv(t, "WLPROXY_LISTEN_NAME", "")
	withEnv(t, "WAYLAND_DISPLAY", "")
	withEnv(t, "WLPROXY_LOG_LEVEL", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	original := &Config{
		ListenName: "wayland-proxy-1",
		Upstream:   "wayland-0",
		Allow:      []string{"xrgb8888"},
		Deny:       []string{"nv12:invalid"},
		LogLevel:   "debug",
	}
	if err := Save(original, configPath); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if loaded.ListenName != original.ListenName {
		t.Errorf("ListenName = %q, want %q", loaded.ListenName, original.ListenName)
	}
	if loaded.Upstream != original.Upstream {
		t.Errorf("Upstream = %q, want %q", loaded.Upstream, original.Upstream)
	}
	if len(loaded.Allow) != 1 || loaded.Allow[0] != "xrgb8888" {
		t.Errorf("Allow = %v, want [xrgb8888]", loaded.Allow)
	}
}
