// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one Config struct from three layers (highest precedence
last):

 1. Built-in defaults (listen on :8080, log level info).
 2. Optional YAML file given on the command line.
 3. Environment variables prefixed `TAIGA_SETTINGS_`, where `__` maps to
    "." (e.g., `TAIGA_SETTINGS_HTTP__LISTEN_ADDR → http.listen_addr`).

`LoadDotEnv()` runs before any of this so that a `.env` file can feed both
this loader and the Taiga environment snapshot.

Instrumentation
---------------
  • DEBUG spans: YAML read, env overlay.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • Logs use the global *sugared* logger (`zap.S()`); it is a no-op until
    the real logger is installed, which needs this config first.
*/
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment variables that configure the tool.
const EnvPrefix = "TAIGA_SETTINGS_"

var defaultValues = map[string]interface{}{
	"http.listen_addr": ":8080",
	"log.level":        "info",
}

/*──────────────────────────── dotenv ──────────────────────────────────────*/

// LoadDotEnv loads the first existing file among paths into the process
// environment.  Variables that are already set win.  Missing files are not
// an error; unreadable or malformed ones are.
func LoadDotEnv(paths ...string) (string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", err
		}
		return p, nil
	}
	return "", nil
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges defaults, the optional YAML file at path, and env overrides,
// then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues, "."), nil); err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", path, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", path)
	}

	// TAIGA_SETTINGS_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}
	return &cfg, nil
}
