// Command rsm renders a mesh in a lit corner scene with reflective shadow maps.
//
// Usage:
//
//	rsm -mesh bunny.obj [-config rsm.toml]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine"
	"github.com/Carmen-Shannon/oxy-rsm/engine/config"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml configuration file")
	meshPath := flag.String("mesh", "", "path to the subject mesh (.obj, .gltf or .glb), overrides scene.mesh_path")
	flag.Parse()

	// replaced once the configured logger is known
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*configPath, *meshPath); err != nil {
		common.Logger().Error("rsm failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, meshPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if meshPath != "" {
		cfg.Scene.MeshPath = meshPath
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	common.SetLogger(logger)

	e, err := engine.NewEngine(engine.WithConfig(cfg))
	if err != nil {
		return err
	}
	return e.Run()
}

func newLogger(c config.LogConfig) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
