package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate runs the test from an empty directory with a clean Taiga
// environment so a stray .env or CI variable cannot leak in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{
		"VAULT_ADDR", "TAIGA_SECRET_KEY", "TAIGA_HOSTNAME", "TAIGA_ENABLE_EMAIL",
		"TAIGA_EMAIL_PORT", "TAIGA_DB_NAME", "TAIGA_DB_HOST", "TAIGA_DB_USER",
		"TAIGA_DB_PASSWORD", "TAIGA_SSL", "RABBIT_PORT", "REDIS_PORT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestBootstrap_RenderSection(t *testing.T) {
	dir := isolate(t)
	dotenv := "TAIGA_HOSTNAME=example.com\nTAIGA_SSL=true\nTAIGA_SECRET_KEY=from-dotenv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := bootstrap(&options{})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	var buf bytes.Buffer
	if err := runRender(st, &buf, "json", "sites.api", false); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if !strings.Contains(buf.String(), `"scheme":"https"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	if err := runRender(st, &buf, "yaml", "secret_key", false); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if strings.Contains(buf.String(), "from-dotenv") {
		t.Errorf("secret rendered without --show-secrets: %s", buf.String())
	}

	buf.Reset()
	if err := runRender(st, &buf, "yaml", "secret_key", true); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if !strings.Contains(buf.String(), "from-dotenv") {
		t.Errorf("secret missing with --show-secrets: %s", buf.String())
	}
}

func TestBootstrap_FailsOnBadEmailPort(t *testing.T) {
	isolate(t)
	t.Setenv("TAIGA_ENABLE_EMAIL", "true")
	t.Setenv("TAIGA_EMAIL_PORT", "abc")

	if _, err := bootstrap(&options{}); err == nil {
		t.Fatal("expected bootstrap to fail")
	}
}

func TestRunCheck(t *testing.T) {
	isolate(t)
	t.Setenv("TAIGA_HOSTNAME", "example.com")

	st, err := bootstrap(&options{})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := runCheck(st, false); err == nil {
		t.Fatal("expected validation error for empty database settings")
	}

	for key, val := range map[string]string{
		"TAIGA_DB_NAME": "taiga", "TAIGA_DB_HOST": "db",
		"TAIGA_DB_USER": "taiga", "TAIGA_DB_PASSWORD": "pw",
	} {
		t.Setenv(key, val)
	}
	st, err = bootstrap(&options{})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := runCheck(st, false); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
}
