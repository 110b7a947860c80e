package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/taiga-settings/internal/config"
	"github.com/yanizio/taiga-settings/internal/database"
	"github.com/yanizio/taiga-settings/internal/logger"
	"github.com/yanizio/taiga-settings/internal/metrics"
	"github.com/yanizio/taiga-settings/internal/server"
	"github.com/yanizio/taiga-settings/internal/settings"
	"github.com/yanizio/taiga-settings/internal/vault"
)

const (
	vaultCacheTTL   = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type options struct {
	configFile   string
	envFile      string
	defaultsFile string
}

// state is everything a sub-command needs once start-up has succeeded.
type state struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	settings *settings.Settings
}

// runningInTTY returns true when stderr is a character device.
func runningInTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func bootstrap(opts *options) (*state, error) {
	if _, err := config.LoadDotEnv(opts.envFile, ".env"); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.defaultsFile != "" {
		cfg.Defaults.File = opts.defaultsFile
	}

	log, err := logger.New(cfg.Log.Dir, cfg.Log.Level, cfg.Log.Tee || runningInTTY())
	if err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}

	s, err := resolve(context.Background(), cfg, log)
	metrics.ObserveResolve(featuresOf(s), err)
	if err != nil {
		return nil, err
	}
	return &state{cfg: cfg, log: log, settings: s}, nil
}

func resolve(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*settings.Settings, error) {
	defaults, err := settings.LoadDefaults(cfg.Defaults.File)
	if err != nil {
		return nil, err
	}

	env, err := settings.EnvFromOS()
	if err != nil {
		return nil, err
	}

	if vault.Enabled() {
		cli, err := vault.New(vaultCacheTTL)
		if err != nil {
			return nil, err
		}
		if env, err = env.Expand(ctx, cli); err != nil {
			return nil, err
		}
	}

	r := &settings.Resolver{Defaults: defaults, Log: log}
	return r.Resolve(env)
}

func featuresOf(s *settings.Settings) map[string]bool {
	if s == nil {
		return nil
	}
	return s.Features()
}

/*──────────────────────────── commands ────────────────────────────────────*/

func runRender(rt *state, w io.Writer, format, section string, showSecrets bool) error {
	s := rt.settings
	if !showSecrets {
		s = s.Redacted()
	}
	out, err := settings.Marshal(s, section, settings.Format(format))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func runCheck(rt *state, pingDB bool) error {
	if err := settings.Validate(rt.settings); err != nil {
		return fmt.Errorf("settings invalid: %w", err)
	}
	rt.log.Infow("settings valid")

	if !pingDB {
		return nil
	}
	db, err := database.Open(context.Background(), rt.settings.Databases.Default)
	if err != nil {
		return err
	}
	defer db.Close()
	rt.log.Infow("database reachable", "host", rt.settings.Databases.Default.Host)
	return nil
}

func runServe(rt *state, listen string) error {
	addr := rt.cfg.HTTP.ListenAddr
	if listen != "" {
		addr = listen
	}
	srv := server.New(addr, server.Router(rt.settings, rt.log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.log.Infow("inspector listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		rt.log.Infow("shutting down inspector")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
