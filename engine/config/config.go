// Package config holds the settings of the RSM viewer and reads them from TOML or YAML files.
// Every section has defaults, so a file only needs the keys it changes.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid is returned by Validate and Load when a setting is out of range.
	ErrInvalid = errors.New("config: invalid setting")

	// ErrUnknownFormat is returned by Load for file extensions other than .toml, .yaml and .yml.
	ErrUnknownFormat = errors.New("config: unknown file format")
)

// Camera control modes.
const (
	CameraModeOrbit = "orbit"
	CameraModeFPS   = "fps"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the complete application configuration.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Light    LightConfig    `toml:"light" yaml:"light"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// WindowConfig sizes and titles the window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// RendererConfig selects the GPU adapter, presentation mode and RSM resolution.
type RendererConfig struct {
	RSMSize              uint32     `toml:"rsm_size" yaml:"rsm_size"`
	BufferCount          int        `toml:"buffer_count" yaml:"buffer_count"`
	ForceFallbackAdapter bool       `toml:"force_fallback_adapter" yaml:"force_fallback_adapter"`
	VSync                bool       `toml:"vsync" yaml:"vsync"`
	Background           [4]float32 `toml:"background" yaml:"background"`
	StatsInterval        Duration   `toml:"stats_interval" yaml:"stats_interval"`
}

// CameraConfig places the camera and picks its controller.
type CameraConfig struct {
	Mode      string     `toml:"mode" yaml:"mode"`
	Position  [3]float32 `toml:"position" yaml:"position"`
	LookTo    [3]float32 `toml:"look_to" yaml:"look_to"`
	Focus     [3]float32 `toml:"focus" yaml:"focus"`
	FovDeg    float32    `toml:"fov_deg" yaml:"fov_deg"`
	Near      float32    `toml:"near" yaml:"near"`
	Far       float32    `toml:"far" yaml:"far"`
	MoveStep  float32    `toml:"move_step" yaml:"move_step"`
	MinRadius float32    `toml:"min_radius" yaml:"min_radius"`
}

// LightConfig describes the directional light and its orthographic volume.
type LightConfig struct {
	Position      [3]float32 `toml:"position" yaml:"position"`
	Direction     [3]float32 `toml:"direction" yaml:"direction"`
	Color         [3]float32 `toml:"color" yaml:"color"`
	Width         float32    `toml:"width" yaml:"width"`
	Height        float32    `toml:"height" yaml:"height"`
	AffectedDepth float32    `toml:"affected_depth" yaml:"affected_depth"`
	Epsilon       float32    `toml:"epsilon" yaml:"epsilon"`
}

// SceneConfig names the subject mesh and how it is imported. LeftHanded and FlipWinding map to
// the loader options of the same name.
type SceneConfig struct {
	MeshPath    string  `toml:"mesh_path" yaml:"mesh_path"`
	MeshScale   float32 `toml:"mesh_scale" yaml:"mesh_scale"`
	LeftHanded  bool    `toml:"left_handed" yaml:"left_handed"`
	FlipWinding bool    `toml:"flip_winding" yaml:"flip_winding"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Duration is a time.Duration written as a Go duration string such as "1s" or "500ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default settings
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-rsm",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			RSMSize:       512,
			BufferCount:   2,
			VSync:         true,
			Background:    [4]float32{0, 0.2, 0.4, 1},
			StatsInterval: Duration(time.Second),
		},
		Camera: CameraConfig{
			Mode:      CameraModeOrbit,
			Position:  [3]float32{0, 2, -10},
			LookTo:    [3]float32{0, 0, 1},
			Focus:     [3]float32{0, 1, 0},
			FovDeg:    60,
			Near:      1,
			Far:       100,
			MoveStep:  0.1,
			MinRadius: 1,
		},
		Light: LightConfig{
			Position:      [3]float32{6, 6, -6},
			Direction:     [3]float32{-1, -1, 1},
			Color:         [3]float32{1, 1, 1},
			Width:         15,
			Height:        15,
			AffectedDepth: 50,
			Epsilon:       0.01,
		},
		Scene: SceneConfig{
			MeshScale:   20,
			LeftHanded:  true,
			FlipWinding: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// Load reads the file at path over the defaults and validates the result. The format is chosen
// by extension. Unknown keys are rejected.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a configuration in the format named by ext over the defaults and validates it.
//
// Parameters:
//   - r: the encoded configuration
//   - ext: the file extension, with or without the leading dot
//
// Returns:
//   - Config: the decoded configuration
//   - error: error if decoding or validation fails
func Decode(r io.Reader, ext string) (Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		// an empty document keeps the defaults
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that is out of range, wrapped in ErrInvalid.
//
// Returns:
//   - error: nil if every setting is usable
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Renderer.RSMSize == 0:
		return fmt.Errorf("%w: renderer.rsm_size must be positive", ErrInvalid)
	case c.Renderer.BufferCount < 2:
		return fmt.Errorf("%w: renderer.buffer_count %d, need at least 2", ErrInvalid, c.Renderer.BufferCount)
	case c.Renderer.StatsInterval <= 0:
		return fmt.Errorf("%w: renderer.stats_interval must be positive", ErrInvalid)
	case c.Camera.Mode != CameraModeOrbit && c.Camera.Mode != CameraModeFPS:
		return fmt.Errorf("%w: camera.mode %q", ErrInvalid, c.Camera.Mode)
	case c.Camera.FovDeg <= 0 || c.Camera.FovDeg >= 180:
		return fmt.Errorf("%w: camera.fov_deg %v", ErrInvalid, c.Camera.FovDeg)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera clip planes [%v, %v]", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.LookTo == [3]float32{}:
		return fmt.Errorf("%w: camera.look_to is zero", ErrInvalid)
	case c.Camera.MinRadius < 0:
		return fmt.Errorf("%w: camera.min_radius %v", ErrInvalid, c.Camera.MinRadius)
	case c.Light.Direction == [3]float32{}:
		return fmt.Errorf("%w: light.direction is zero", ErrInvalid)
	case c.Light.Width <= 0 || c.Light.Height <= 0:
		return fmt.Errorf("%w: light extent %vx%v", ErrInvalid, c.Light.Width, c.Light.Height)
	case c.Light.AffectedDepth <= 0 || c.Light.Epsilon <= 0:
		return fmt.Errorf("%w: light depth range %v+%v", ErrInvalid, c.Light.Epsilon, c.Light.AffectedDepth)
	case c.Scene.MeshScale <= 0:
		return fmt.Errorf("%w: scene.mesh_scale %v", ErrInvalid, c.Scene.MeshScale)
	case c.Log.Format != LogFormatText && c.Log.Format != LogFormatJSON:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// SlogLevel parses Level as a slog level name such as "debug" or "warn".
//
// Returns:
//   - slog.Level: the parsed level
//   - error: error if the name is unknown
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}
