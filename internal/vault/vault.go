// internal/vault/vault.go
//
// Vault secret source for the environment snapshot.
//
// Context
// -------
//   - Operators may write `vault:<mount>/<path>#<key>` instead of a literal
//     value for any Taiga variable (TAIGA_DB_PASSWORD, TAIGA_SECRET_KEY, …).
//   - settings.Env.Expand calls Client.Secret for each such value before
//     resolution, so the settings tree never sees a Vault URI.
//   - Reads go through the KV-v2 API and are cached per path#key for the
//     configured TTL, so several variables pointing at one secret cost one
//     round-trip.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ttl)                   // only when VAULT_ADDR is set.
//  2. env, err = env.Expand(ctx, cli)              // before settings.Resolve.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// ErrBadRef is returned for references that are not `<mount>/<path>#<key>`.
var ErrBadRef = errors.New("vault reference must look like mount/path#key")

//
// SECTION 1.  Public façade
//

// kvReader is the slice of the Vault API the client needs.
type kvReader interface {
	ReadKV(ctx context.Context, mount, path string) (map[string]interface{}, error)
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	kv  kvReader
	ttl time.Duration

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// Enabled reports whether the environment points at a Vault server.
func Enabled() bool { return os.Getenv("VAULT_ADDR") != "" }

// New builds a client from the standard Vault environment:
//
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token via the SDK).
//
// ttl > 0 enables per-key caching.
func New(ttl time.Duration) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	zap.S().Debugw("vault client ready", "addr", cfg.Address)
	return newClient(apiKV{apiCli}, ttl), nil
}

func newClient(kv kvReader, ttl time.Duration) *Client {
	return &Client{kv: kv, ttl: ttl, cache: make(map[string]cached)}
}

// Secret resolves a reference of the form `<mount>/<path>#<key>`.
func (c *Client) Secret(ctx context.Context, ref string) (string, error) {
	secretPath, key, ok := strings.Cut(ref, "#")
	if !ok || secretPath == "" || key == "" {
		return "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	return c.GetKV(ctx, secretPath, key)
}

// GetKV fetches a single key from a KV-v2 secret, honouring the cache.
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	canonical := secretPath + "#" + key

	if c.ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	if rel == "" {
		return "", fmt.Errorf("%w: %q has no path below the mount", ErrBadRef, secretPath)
	}
	data, err := c.kv.ReadKV(ctx, mount, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if c.ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(c.ttl)}
		c.cacheMu.Unlock()
	}
	zap.S().Debugw("vault secret read", "path", secretPath, "key", key)
	return sval, nil
}

//
// SECTION 2.  SDK adapter
//

type apiKV struct{ c *vault.Client }

func (a apiKV) ReadKV(ctx context.Context, mount, path string) (map[string]interface{}, error) {
	sec, err := a.c.KVv2(mount).Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return sec.Data, nil
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return
}
