package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/orbview/internal/playback"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntervalMs = 30
	DefaultSkipRate   = 1
	DefaultTheme      = "deepspace"
	DefaultWidth      = 80
	DefaultHeight     = 24
	DefaultDataDir    = ".orbview"
	DefaultHistory    = 120
)

type Config struct {
	Input    string         `yaml:"input"`
	DataDir  string         `yaml:"data_dir"`
	LogFile  string         `yaml:"log_file"`
	Playback PlaybackConfig `yaml:"playback"`
	View     ViewConfig     `yaml:"view"`
}

type PlaybackConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	SkipRate   int  `yaml:"skip_rate"`
	Autoplay   bool `yaml:"autoplay"`
}

type ViewConfig struct {
	Theme   string `yaml:"theme"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	History int    `yaml:"history"`
	Follow  string `yaml:"follow"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Playback: PlaybackConfig{
			IntervalMs: DefaultIntervalMs,
			SkipRate:   DefaultSkipRate,
		},
		View: ViewConfig{
			Theme:   DefaultTheme,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			History: DefaultHistory,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Validate checks the ranges the player relies on.
func (c *Config) Validate() error {
	if ms := c.Playback.IntervalMs; ms < playback.MinIntervalMs || ms > playback.MaxIntervalMs {
		return fmt.Errorf("config: interval_ms %d outside [%d, %d]", ms, playback.MinIntervalMs, playback.MaxIntervalMs)
	}
	if c.Playback.SkipRate < 1 {
		return fmt.Errorf("config: skip_rate must be at least 1, got %d", c.Playback.SkipRate)
	}
	if c.View.Width < 10 || c.View.Height < 5 {
		return fmt.Errorf("config: view %dx%d is too small", c.View.Width, c.View.Height)
	}
	if c.View.History < 0 {
		return fmt.Errorf("config: history must not be negative, got %d", c.View.History)
	}
	return nil
}

// Interval is the playback tick period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Playback.IntervalMs) * time.Millisecond
}
