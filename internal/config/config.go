package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rdsim/internal/grayscott"
)

const (
	DefaultWidth         = 400
	DefaultHeight        = 400
	DefaultStepsPerFrame = 8
	DefaultColormap      = "classic"
	DefaultScale         = 2
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Du            float64 `yaml:"du"`
	Dv            float64 `yaml:"dv"`
	Feed          float64 `yaml:"feed"`
	Kill          float64 `yaml:"kill"`
	Dt            float64 `yaml:"dt"`
	StepsPerFrame int     `yaml:"steps_per_frame"`
	Seed          int64   `yaml:"seed"`
	Seeds         int     `yaml:"seeds"`
	Workers       int     `yaml:"workers"`
	Preset        string  `yaml:"preset,omitempty"`
	Colormap      string  `yaml:"colormap"`
	Scale         int     `yaml:"scale"`
}

func DefaultConfig() *Config {
	p := grayscott.DefaultParams()
	return &Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Du:            p.Du,
		Dv:            p.Dv,
		Feed:          p.F,
		Kill:          p.K,
		Dt:            p.Dt,
		StepsPerFrame: DefaultStepsPerFrame,
		Seeds:         grayscott.DefaultSeeds,
		Colormap:      DefaultColormap,
		Scale:         DefaultScale,
	}
}

// Load reads a YAML file on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the engine would reject plus the viewer
// settings. A named preset must resolve.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Du < 0 || c.Dv < 0 || c.Dt < 0 {
		return fmt.Errorf("%w: du, dv and dt must be non-negative", ErrInvalidConfig)
	}
	if c.StepsPerFrame < 1 {
		return fmt.Errorf("%w: steps_per_frame must be at least 1", ErrInvalidConfig)
	}
	if c.Scale < 1 {
		return fmt.Errorf("%w: scale must be at least 1", ErrInvalidConfig)
	}
	if c.Preset != "" {
		if _, err := ResolvePreset(c.Preset); err != nil {
			return err
		}
	}
	return nil
}

// Params returns the engine parameters, with a named preset overriding
// feed and kill.
func (c *Config) Params() grayscott.Params {
	p := grayscott.Params{Du: c.Du, Dv: c.Dv, F: c.Feed, K: c.Kill, Dt: c.Dt}
	if c.Preset != "" {
		if pr, err := ResolvePreset(c.Preset); err == nil {
			p.F, p.K = pr.F, pr.K
		}
	}
	return p
}

// EngineConfig builds the grayscott construction config. A nil rng gets a
// source seeded from c.Seed.
func (c *Config) EngineConfig(rng grayscott.RandSource) grayscott.Config {
	if rng == nil {
		rng = grayscott.NewRand(c.Seed)
	}
	return grayscott.Config{
		Width:   c.Width,
		Height:  c.Height,
		Params:  c.Params(),
		Seeds:   c.Seeds,
		Workers: c.Workers,
		Rand:    rng,
	}
}
