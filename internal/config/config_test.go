package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".penta", cfg.Extension)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.MaxCallDepth)
	assert.Equal(t, "", cfg.Journal)
	assert.Equal(t, 100, cfg.Watch.DebounceMS)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_BothFormatsAgree(t *testing.T) {
	want := Config{
		Extension:    ".pt",
		LogLevel:     "debug",
		MaxCallDepth: 256,
		Journal:      "pt.db",
		Watch:        Watch{DebounceMS: 250},
	}

	for _, name := range []string{"full.cue", "full.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "partial.toml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ".penta", cfg.Extension)
	assert.Equal(t, 1024, cfg.MaxCallDepth)
	assert.Equal(t, 100, cfg.Watch.DebounceMS)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		file     string
		contains string
	}{
		{"unknown.toml", "colour"},
		{"depth.cue", "max_call_depth"},
		{"level.cue", "log_level"},
		{"syntax.cue", "syntax.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := Load(filepath.Join("testdata", tt.file))
			require.Error(t, err)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pt.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		assert.Equal(t, want, Config{LogLevel: name}.SlogLevel(), name)
	}
}

func TestDebounce(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, Config{Watch: Watch{DebounceMS: 250}}.Debounce())
}
