// Package config loads pentagram configuration from CUE or TOML files.
//
// Both formats are checked against the same CUE schema, which supplies the
// defaults and rejects unknown keys and out-of-range values.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/BurntSushi/toml"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved configuration.
type Config struct {
	// Extension selects source files when a directory is tested.
	Extension string `json:"extension"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
	// MaxCallDepth bounds nested function calls.
	MaxCallDepth int `json:"max_call_depth"`
	// Journal is the SQLite journal path. Empty keeps it in memory.
	Journal string `json:"journal"`
	Watch   Watch  `json:"watch"`
}

// Watch configures "pt test --watch".
type Watch struct {
	DebounceMS int `json:"debounce_ms"`
}

// Error is a configuration file that does not satisfy the schema.
type Error struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() && e.Pos.Filename() == e.Path {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := decode("<default>", func(ctx *cue.Context) cue.Value {
		return ctx.CompileString("{}")
	})
	if err != nil {
		panic(fmt.Sprintf("config: schema defaults do not decode: %v", err))
	}
	return cfg
}

// Load reads the configuration file at path. An empty path yields the
// defaults. The format is chosen by extension: .cue or .toml.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	switch filepath.Ext(path) {
	case ".cue":
		return decode(path, func(ctx *cue.Context) cue.Value {
			return ctx.CompileBytes(src, cue.Filename(path))
		})
	case ".toml":
		var raw map[string]any
		if _, err := toml.Decode(string(src), &raw); err != nil {
			return Config{}, &Error{Path: path, Message: err.Error()}
		}
		return decode(path, func(ctx *cue.Context) cue.Value {
			return ctx.Encode(raw)
		})
	default:
		return Config{}, fmt.Errorf("config %s: unsupported format %q (want .cue or .toml)", path, filepath.Ext(path))
	}
}

func decode(path string, build func(*cue.Context) cue.Value) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	data := build(ctx)
	if err := data.Err(); err != nil {
		return Config{}, formatCUEError(path, err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(data)
	if err := v.Validate(); err != nil {
		return Config{}, formatCUEError(path, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(path, err)
	}
	return cfg, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(path string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Path: path, Message: err.Error()}
	}
	first := errs[0]
	e := &Error{Path: path, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debounce is the watch debounce interval.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
