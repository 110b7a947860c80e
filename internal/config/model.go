// internal/config/model.go
//
// Typed configuration model for the taiga-settings tool itself.
//
// Context
// -------
// This is NOT the Taiga settings tree (see internal/settings).  It only
// tells the tool where to log, where to listen when serving the inspector,
// and which defaults override file to merge.  Three layers feed it:
//
//   • built-in defaults                         – see defaultValues,
//   • optional YAML file (--config)             – operator tunables,
//   • `TAIGA_SETTINGS_`-prefixed env overrides  – highest precedence.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds inspector tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Log section
//

// Log selects sinks and verbosity.  An empty Dir means console only.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Defaults section
//

// Defaults points at an optional YAML file merged over the embedded
// settings defaults.
type Defaults struct {
	File string `koanf:"file" validate:"omitempty,file"`
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Log      Log      `koanf:"log"`
	Defaults Defaults `koanf:"defaults"`
}
