// internal/settings/defaults.go
//
// Defaults collaborators.
//
// Context
// -------
// The resolver never starts from nothing.  It overlays the environment on
// two default trees that ship inside the binary:
//
//   • defaults/common.yaml  – base settings for every deployment.
//   • defaults/celery.yaml  – task-queue settings, merged only when the
//     async backend is switched on.
//
// Operators may supply one extra YAML file whose top-level `common:` and
// `celery:` sections are merged over the embedded trees (koanf replaces
// slices and merges maps).
package settings

import (
	_ "embed"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

//go:embed defaults/common.yaml
var commonYAML []byte

//go:embed defaults/celery.yaml
var celeryYAML []byte

// Defaults bundles the two default collaborators the resolver consumes.
type Defaults struct {
	Common Settings
	Celery Celery
}

// LoadDefaults parses the embedded trees and, when overridePath is not
// empty, merges the operator file over them.  A missing override file is
// an error; an empty path is not.
func LoadDefaults(overridePath string) (Defaults, error) {
	k := koanf.New(".")

	for _, layer := range []struct {
		path string
		raw  []byte
	}{
		{"common", commonYAML},
		{"celery", celeryYAML},
	} {
		sub := koanf.New(".")
		if err := sub.Load(rawbytes.Provider(layer.raw), yaml.Parser()); err != nil {
			return Defaults{}, fmt.Errorf("embedded %s defaults: %w", layer.path, err)
		}
		if err := k.MergeAt(sub, layer.path); err != nil {
			return Defaults{}, fmt.Errorf("merge %s defaults: %w", layer.path, err)
		}
	}

	if overridePath != "" {
		if err := k.Load(file.Provider(overridePath), yaml.Parser()); err != nil {
			zap.S().Errorw("defaults override load failed", "file", overridePath, "err", err)
			return Defaults{}, fmt.Errorf("defaults override %s: %w", overridePath, err)
		}
		zap.S().Debugw("defaults override loaded", "file", overridePath)
	}

	var d Defaults
	if err := k.Unmarshal("common", &d.Common); err != nil {
		return Defaults{}, fmt.Errorf("unmarshal common defaults: %w", err)
	}
	if err := k.Unmarshal("celery", &d.Celery); err != nil {
		return Defaults{}, fmt.Errorf("unmarshal celery defaults: %w", err)
	}
	return d, nil
}
