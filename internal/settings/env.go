// internal/settings/env.go
//
// Environment snapshot.
//
// Context
// -------
// Resolve never calls os.Getenv.  It reads a frozen snapshot instead, so a
// resolution is a pure function of (defaults, snapshot) and tests can feed
// any environment without touching the process.
//
// Two constructors exist:
//
//   • EnvFromOS  – koanf env provider over os.Environ(), used at startup.
//   • EnvFromMap – koanf confmap provider, used by tests and by Expand.
//
// Notes
// -----
//   • A variable that is set to "" is present.  Lookup reports it as such,
//     which matters for the RABBIT_PORT / REDIS_PORT gate.
//   • Flag is the single boolean rule: case-insensitive "true", anything
//     else (including absent) is false.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	koanf "github.com/knadh/koanf/v2"
)

// SecretPrefix marks an environment value that must be dereferenced through
// a SecretSource before resolution.
const SecretPrefix = "vault:"

// SecretSource dereferences `vault:` references.  *vault.Client satisfies it.
type SecretSource interface {
	Secret(ctx context.Context, ref string) (string, error)
}

// Env is a read-only snapshot of environment variables.  The zero value is
// an empty environment.
type Env struct {
	k *koanf.Koanf
}

// EnvFromOS snapshots the process environment.
func EnvFromOS() (Env, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return Env{}, fmt.Errorf("snapshot environment: %w", err)
	}
	return Env{k: k}, nil
}

// EnvFromMap builds a snapshot from literal key/value pairs.
func EnvFromMap(m map[string]string) (Env, error) {
	raw := make(map[string]interface{}, len(m))
	for key, val := range m {
		raw[key] = val
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, "."), nil); err != nil {
		return Env{}, fmt.Errorf("snapshot map: %w", err)
	}
	return Env{k: k}, nil
}

// Lookup returns the value and whether the variable is set at all.
func (e Env) Lookup(key string) (string, bool) {
	if e.k == nil || !e.k.Exists(key) {
		return "", false
	}
	return e.k.String(key), true
}

// Get returns the value, or "" when unset.
func (e Env) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// GetOr returns the value when it is non-empty, otherwise def.
func (e Env) GetOr(key, def string) string {
	if v := e.Get(key); v != "" {
		return v
	}
	return def
}

// Present reports whether key is set, even to the empty string.
func (e Env) Present(key string) bool {
	_, ok := e.Lookup(key)
	return ok
}

// Flag reports whether key equals "true", ignoring case.
func (e Env) Flag(key string) bool {
	return strings.EqualFold(e.Get(key), "true")
}

// Map returns a copy of the snapshot.
func (e Env) Map() map[string]string {
	out := map[string]string{}
	if e.k == nil {
		return out
	}
	for key := range e.k.All() {
		out[key] = e.k.String(key)
	}
	return out
}

// Expand returns a new snapshot in which every `vault:` value has been
// replaced by the secret it points at.  The receiver is left untouched.
func (e Env) Expand(ctx context.Context, src SecretSource) (Env, error) {
	m := e.Map()
	for key, val := range m {
		if !strings.HasPrefix(val, SecretPrefix) {
			continue
		}
		secret, err := src.Secret(ctx, strings.TrimPrefix(val, SecretPrefix))
		if err != nil {
			return Env{}, fmt.Errorf("expand %s: %w", key, err)
		}
		m[key] = secret
	}
	return EnvFromMap(m)
}
