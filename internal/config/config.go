package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for options not present in the config file or on the command line.
const (
	DefaultInterval = 5 // seconds
	DefaultDebounce = 2 * time.Second
	DefaultProcess  = "thunderbird"
	DefaultSuffix   = ".msf"
	DefaultMailDir  = "ImapMail"
	DefaultLogLevel = "info"
)

var (
	ErrQuietWithoutOutput = errors.New("cannot be quiet and have no output")
	ErrInvalidInterval    = errors.New("interval must be a positive number of seconds")
	ErrInvalidDebounce    = errors.New("debounce must not be negative")
)

type Config struct {
	Quiet    bool          `yaml:"quiet"`
	Output   string        `yaml:"output"`
	Interval int           `yaml:"interval"`
	LogLevel string        `yaml:"log_level"`
	Profile  ProfileConfig `yaml:"profile"`
	Monitor  MonitorConfig `yaml:"monitor"`
}

// ProfileConfig controls how the watch root is located.
type ProfileConfig struct {
	// Home overrides the Thunderbird home directory (the one holding
	// profiles.ini). Empty means the platform default.
	Home string `yaml:"home"`
	// Root, when set, is used as the watch root directly and profile
	// discovery is skipped.
	Root string `yaml:"root"`
	// MailDir is the profile subdirectory holding one directory per account.
	MailDir string `yaml:"mail_dir"`
}

type MonitorConfig struct {
	Process  string        `yaml:"process"`
	Debounce time.Duration `yaml:"debounce"`
	Suffix   string        `yaml:"suffix"`
}

func defaultConfig() *Config {
	return &Config{
		Interval: DefaultInterval,
		LogLevel: DefaultLogLevel,
		Profile: ProfileConfig{
			MailDir: DefaultMailDir,
		},
		Monitor: MonitorConfig{
			Process:  DefaultProcess,
			Debounce: DefaultDebounce,
			Suffix:   DefaultSuffix,
		},
	}
}

// Default returns a configuration with every option at its default value.
func Default() *Config {
	return defaultConfig()
}

// Load reads a yaml config file. Options missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.FillDefaults()

	return cfg, nil
}

// LoadOrDefault is like Load but returns the defaults when path is empty. A
// path that was given but cannot be read is an error.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	return Load(path)
}

// FillDefaults replaces empty names, e.g. from an explicit `process: ""`,
// with their defaults.
func (c *Config) FillDefaults() {
	if c.Monitor.Process == "" {
		c.Monitor.Process = DefaultProcess
	}
	if c.Monitor.Suffix == "" {
		c.Monitor.Suffix = DefaultSuffix
	}
	if c.Profile.MailDir == "" {
		c.Profile.MailDir = DefaultMailDir
	}
}

// Validate rejects option combinations the monitor cannot run with.
func (c *Config) Validate() error {
	if c.Quiet && c.Output == "" {
		return ErrQuietWithoutOutput
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, c.Interval)
	}
	if c.Monitor.Debounce < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDebounce, c.Monitor.Debounce)
	}
	return nil
}

// PollInterval returns the process-presence poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}
