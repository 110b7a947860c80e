package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		HTTP: HTTP{ListenAddr: ":8080"},
		Log:  Log{Level: "info"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	yaml := `
http:
  listen_addr: 127.0.0.1:9000
log:
  dir: /var/log/taiga-settings
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAIGA_SETTINGS_HTTP__LISTEN_ADDR", "0.0.0.0:9100")
	t.Setenv("TAIGA_SETTINGS_LOG__TEE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		HTTP: HTTP{ListenAddr: "0.0.0.0:9100"},
		Log:  Log{Dir: "/var/log/taiga-settings", Level: "debug", Tee: true},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"listen addr": "TAIGA_SETTINGS_HTTP__LISTEN_ADDR",
		"log level":   "TAIGA_SETTINGS_LOG__LEVEL",
		"defaults":    "TAIGA_SETTINGS_DEFAULTS__FILE",
	}
	for name, key := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(key, "not valid")
			if _, err := Load(""); err == nil {
				t.Fatalf("expected validation error for %s", key)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TAIGA_DOTENV_PROBE=from-file\nTAIGA_DOTENV_KEEP=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAIGA_DOTENV_KEEP", "from-env")
	t.Setenv("TAIGA_DOTENV_PROBE", "")
	os.Unsetenv("TAIGA_DOTENV_PROBE")

	used, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TAIGA_DOTENV_PROBE") })

	if used != path {
		t.Errorf("used = %q, want %q", used, path)
	}
	if got := os.Getenv("TAIGA_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("TAIGA_DOTENV_PROBE = %q", got)
	}
	if got := os.Getenv("TAIGA_DOTENV_KEEP"); got != "from-env" {
		t.Errorf("existing variable overwritten: %q", got)
	}
}
