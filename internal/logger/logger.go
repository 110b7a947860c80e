// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// taiga-settings runs once per container start, so most of its output is a
// handful of lifecycle events.  When a log directory is configured those
// events go to one JSON file per day under `<dir>/YYYY-MM-DD.log`, rotated
// by Lumberjack.  A console core on stderr is attached when `tee` is set or
// when no directory is configured.  Stdout is never used: `render` writes
// the settings document there.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Log.Dir, cfg.Log.Level, runningInTTY())
//	if err != nil { … }
//	log.Infow("settings resolved", "hostname", host)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Oxford commas, two spaces after periods.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var encCfg = zapcore.EncoderConfig{
	TimeKey:      "ts",
	LevelKey:     "level",
	MessageKey:   "msg",
	CallerKey:    "caller",
	EncodeTime:   zapcore.ISO8601TimeEncoder,
	EncodeLevel:  zapcore.LowercaseLevelEncoder,
	EncodeCaller: zapcore.ShortCallerEncoder,
}

// New returns a *zap.SugaredLogger and installs it as the process-wide
// default via zap.ReplaceGlobals.  level is a zap level name ("debug",
// "info", …); empty means info.
func New(logDir, level string, tee bool) (*zap.SugaredLogger, error) {
	lvl := zap.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}

	var (
		cores []zapcore.Core
		opts  []zap.Option
	)

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(fileSink),
			lvl,
		))
		opts = append(opts, zap.ErrorOutput(zapcore.AddSync(fileSink)))
	}

	if tee || logDir == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			lvl,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), opts...).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "dir", logDir, "tee", tee, "level", lvl.String())
	return z, nil
}
