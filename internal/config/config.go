// Package config handles reading and writing ~/.zen/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version  int         `yaml:"version"`
	DBPath   string      `yaml:"db_path"`
	LogFile  string      `yaml:"log_file"`
	LogLevel string      `yaml:"log_level"` // debug | info | warn | error
	Timer    TimerConfig `yaml:"timer"`
	UI       UIConfig    `yaml:"ui"`

	// Home is the directory the config was loaded from.
	Home string `yaml:"-"`
}

// TimerConfig controls timer persistence.
type TimerConfig struct {
	CheckpointEvery int `yaml:"checkpoint_every"`  // seconds between progress saves
	LeaseTTLSeconds int `yaml:"lease_ttl_seconds"` // how long an open timer owns its session
}

// UIConfig controls terminal rendering.
type UIConfig struct {
	Animations bool `yaml:"animations"`
}

const (
	homeDirName  = ".zen"
	configFile   = "config.yaml"
	identityFile = "identity.yaml"
)

// DefaultConfig returns a Config rooted at home.
func DefaultConfig(home string) *Config {
	return &Config{
		Version:  1,
		DBPath:   filepath.Join(home, "zen.db"),
		LogFile:  filepath.Join(home, "zen.log"),
		LogLevel: "info",
		Timer: TimerConfig{
			CheckpointEvery: 5,
			LeaseTTLSeconds: 30,
		},
		UI: UIConfig{
			Animations: true,
		},
		Home: home,
	}
}

// HomeDir returns $ZEN_HOME or ~/.zen.
func HomeDir() (string, error) {
	if home := os.Getenv("ZEN_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(userHome, homeDirName), nil
}

// Load reads the config from the default home directory.
func Load() (*Config, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	return Read(home)
}

// Read reads config.yaml from dir. A missing file yields defaults.
// Environment overrides are applied last.
func Read(dir string) (*Config, error) {
	cfg := DefaultConfig(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.Home = dir
	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

// Write writes cfg to dir/config.yaml, creating dir if needed.
func Write(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if path := os.Getenv("ZEN_DB"); path != "" {
		c.DBPath = path
	}
	if level := os.Getenv("ZEN_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// fillDefaults repairs zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := DefaultConfig(c.Home)
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Timer.CheckpointEvery <= 0 {
		c.Timer.CheckpointEvery = def.Timer.CheckpointEvery
	}
	if c.Timer.LeaseTTLSeconds <= 0 {
		c.Timer.LeaseTTLSeconds = def.Timer.LeaseTTLSeconds
	}
}

// LeaseTTL is the timer lease duration.
func (c *Config) LeaseTTL() time.Duration {
	return time.Duration(c.Timer.LeaseTTLSeconds) * time.Second
}

// IdentityFile is where the signed-in user is remembered between runs.
func (c *Config) IdentityFile() string {
	return filepath.Join(c.Home, identityFile)
}
