// internal/settings/render.go
//
// Marshalling of resolved settings for the CLI and the HTTP inspector.
// The struct goes back through koanf (structs provider) so the output keys
// are exactly the `koanf` tags used to load defaults.
package settings

import (
	"errors"
	"fmt"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/structs"
	koanf "github.com/knadh/koanf/v2"
)

// ErrUnknownSection is returned when a dotted path names no setting.
var ErrUnknownSection = errors.New("unknown settings section")

// Format names an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Marshal encodes s, or only the dotted section path when it is non-empty
// (e.g. "sites.front" or "importers.asana.callback_url").
func Marshal(s *Settings, section string, f Format) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(s, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load settings tree: %w", err)
	}

	if section != "" {
		if !k.Exists(section) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
		}
		sub := koanf.New(".")
		if err := sub.Set(section, k.Get(section)); err != nil {
			return nil, err
		}
		k = sub
	}

	switch f {
	case FormatJSON:
		return k.Marshal(kjson.Parser())
	case FormatYAML, "":
		return k.Marshal(yaml.Parser())
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}
