package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(512), cfg.Renderer.RSMSize)
	assert.Equal(t, CameraModeOrbit, cfg.Camera.Mode)
	assert.Equal(t, Duration(time.Second), cfg.Renderer.StatsInterval)
}

func TestDecode_TOMLOverridesDefaults(t *testing.T) {
	src := `
[window]
title = "bunny"

[renderer]
rsm_size = 1024
stats_interval = "250ms"

[camera]
mode = "fps"
position = [1.0, 2.0, 3.0]

[scene]
mesh_path = "assets/bunny.obj"
left_handed = false

[log]
level = "debug"
format = "json"
`
	cfg, err := Decode(strings.NewReader(src), ".toml")
	require.NoError(t, err)

	assert.Equal(t, "bunny", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width, "unset keys keep defaults")
	assert.Equal(t, uint32(1024), cfg.Renderer.RSMSize)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Renderer.StatsInterval)
	assert.Equal(t, CameraModeFPS, cfg.Camera.Mode)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)
	assert.Equal(t, "assets/bunny.obj", cfg.Scene.MeshPath)
	assert.False(t, cfg.Scene.LeftHanded)
	assert.True(t, cfg.Scene.FlipWinding)
	assert.Equal(t, float32(20), cfg.Scene.MeshScale)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
}

func TestDecode_YAML(t *testing.T) {
	src := `
light:
  direction: [0, -1, 1]
  color: [1, 0.5, 0.25]
renderer:
  vsync: false
  background: [0, 0, 0, 1]
`
	cfg, err := Decode(strings.NewReader(src), "yml")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0, -1, 1}, cfg.Light.Direction)
	assert.Equal(t, [3]float32{1, 0.5, 0.25}, cfg.Light.Color)
	assert.Equal(t, float32(15), cfg.Light.Width)
	assert.False(t, cfg.Renderer.VSync)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Renderer.Background)
}

func TestDecode_EmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), "yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader(""), ".json")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(strings.NewReader("[window]\ntitel = \"x\"\n"), "toml")
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Decode(strings.NewReader("window:\n  titel: x\n"), "yaml")
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Decode(strings.NewReader("[renderer]\nstats_interval = \"soon\"\n"), "toml")
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("[renderer]\nrsm_size = 0\n"), "toml")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"single buffer", func(c *Config) { c.Renderer.BufferCount = 1 }},
		{"no stats interval", func(c *Config) { c.Renderer.StatsInterval = 0 }},
		{"camera mode", func(c *Config) { c.Camera.Mode = "free" }},
		{"fov", func(c *Config) { c.Camera.FovDeg = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = c.Camera.Near }},
		{"zero look", func(c *Config) { c.Camera.LookTo = [3]float32{} }},
		{"negative radius", func(c *Config) { c.Camera.MinRadius = -1 }},
		{"zero light direction", func(c *Config) { c.Light.Direction = [3]float32{} }},
		{"light extent", func(c *Config) { c.Light.Height = 0 }},
		{"light epsilon", func(c *Config) { c.Light.Epsilon = 0 }},
		{"mesh scale", func(c *Config) { c.Scene.MeshScale = -2 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rsm.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nrsm_size = 256\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), cfg.Renderer.RSMSize)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "rsm.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("camera:\n  mode: orbitz\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), bad)
}
