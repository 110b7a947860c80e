// cmd/taiga-settings/main.go
//
// taiga-settings – resolves the Taiga backend settings from the container
// environment.
//
// Start-up sequence
// -----------------
//
//  1. Load `.env` (explicit --env-file first, then ./.env).
//
//  2. Load the tool config (--config YAML, TAIGA_SETTINGS_* overrides).
//
//  3. Start the logger (JSON file sink, console tee on a TTY).
//
//  4. Snapshot the environment, dereference `vault:` values when
//     VAULT_ADDR is set, and resolve the settings once.
//
//  5. Run the sub-command:
//
//     • render – print the settings document (redacted unless asked).
//     • check  – strict validation, optional database ping.
//     • serve  – read-only HTTP inspector with /metrics.
//
// Any failure before step 5 exits non-zero: a misconfigured deployment
// must not start.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

func main() {
	app := kingpin.New("taiga-settings", "Resolve Taiga backend settings from the environment")
	opts := &options{}
	app.Flag("config", "Path to the tool's YAML configuration").StringVar(&opts.configFile)
	app.Flag("env-file", "Dotenv file loaded before the environment is read").StringVar(&opts.envFile)
	app.Flag("defaults", "YAML file merged over the built-in settings defaults").StringVar(&opts.defaultsFile)

	render := app.Command("render", "Print the resolved settings").Default()
	format := render.Flag("format", "Output format").Default("yaml").Enum("yaml", "json")
	section := render.Flag("section", "Dotted section to print, e.g. sites.front").String()
	showSecrets := render.Flag("show-secrets", "Do not redact credentials").Bool()

	check := app.Command("check", "Validate the resolved settings")
	pingDB := check.Flag("ping-db", "Also connect to DATABASES.default").Bool()

	serve := app.Command("serve", "Serve the redacted settings over HTTP")
	listen := serve.Flag("listen", "Listen address, overrides http.listen_addr").String()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	rt, err := bootstrap(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taiga-settings: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rt.log.Sync() }()

	switch cmd {
	case render.FullCommand():
		err = runRender(rt, os.Stdout, *format, *section, *showSecrets)
	case check.FullCommand():
		err = runCheck(rt, *pingDB)
	case serve.FullCommand():
		err = runServe(rt, *listen)
	}
	if err != nil {
		rt.log.Errorw("command failed", "command", cmd, "err", err)
		_ = rt.log.Sync()
		os.Exit(1)
	}
}
