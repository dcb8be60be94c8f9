package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidWindowSize = errors.New("window size must be positive")
	ErrInvalidClearColor = errors.New("clear color components must be in [0, 1]")
)

// Config is the engine startup configuration, loadable from YAML.
type Config struct {
	Window struct {
		Width  uint32 `yaml:"width"`
		Height uint32 `yaml:"height"`
	} `yaml:"window"`
	ClearColor struct {
		R float64 `yaml:"r"`
		G float64 `yaml:"g"`
		B float64 `yaml:"b"`
		A float64 `yaml:"a"`
	} `yaml:"clear_color"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a 1280x720 window with an opaque black clear color.
func DefaultConfig() Config {
	var c Config
	c.Window.Width = 1280
	c.Window.Height = 720
	c.ClearColor.A = 1.0
	c.LogLevel = "info"
	return c
}

// LoadYAML loads config from a YAML reader, applied on top of the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode engine config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile loads config from a YAML file on disk.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open engine config: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// Validate checks the config for values the engine cannot start with.
func (c Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return ErrInvalidWindowSize
	}
	for _, v := range []float64{c.ClearColor.R, c.ClearColor.G, c.ClearColor.B, c.ClearColor.A} {
		if v < 0 || v > 1 {
			return ErrInvalidClearColor
		}
	}
	return nil
}

// Resolution returns the configured window size as a Resolution.
func (c Config) Resolution() Resolution {
	return Resolution{Width: c.Window.Width, Height: c.Window.Height}
}
