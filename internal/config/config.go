package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robottwo/mapsroute/internal/extension"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidFormat   = errors.New("invalid output format")
)

// Formats lists the output formats understood by the render package.
var Formats = []string{"json", "yaml", "text"}

// Config holds user settings. Zero values are replaced by defaults on load.
type Config struct {
	Icon        string `yaml:"icon" json:"icon"`
	LogLevel    string `yaml:"log_level" json:"log_level"`
	OpenCommand string `yaml:"open_command,omitempty" json:"open_command,omitempty"`
	Format      string `yaml:"format" json:"format"`

	// Source is the file the config was read from, empty when none was found.
	Source string `yaml:"-" json:"-"`
	// Skipped holds parse errors from config files passed over during Load.
	Skipped []error `yaml:"-" json:"-"`
}

func Default() Config {
	return Config{
		Icon:     extension.DefaultIcon,
		LogLevel: "info",
		Format:   "json",
	}
}

// Load reads the first config file that parses, then applies environment
// overrides. A missing file is not an error; files that fail to parse are
// recorded in Skipped and the search moves on. Load fails only when config
// files exist and none of them parse.
func Load() (Config, error) {
	cfg := Default()

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fileCfg, err := LoadFile(path)
		if err != nil {
			cfg.Skipped = append(cfg.Skipped, err)
			continue
		}
		cfg.merge(fileCfg)
		cfg.Source = path
		break
	}

	if cfg.Source == "" && len(cfg.Skipped) > 0 {
		return cfg, errors.Join(cfg.Skipped...)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a YAML or JSON config file.
func LoadFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		err = yaml.Unmarshal(data, &cfg)
	case strings.HasSuffix(path, ".json"):
		err = json.Unmarshal(data, &cfg)
	default:
		// Try YAML, then JSON
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			err = json.Unmarshal(data, &cfg)
		}
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// configPaths returns the locations checked for a config file, in order.
func configPaths() []string {
	var paths []string

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, "mapsroute", "config.yaml"))
		paths = append(paths, filepath.Join(xdgConfig, "mapsroute", "config.json"))
	}

	if home := homeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "mapsroute", "config.yaml"))
		paths = append(paths, filepath.Join(home, ".config", "mapsroute", "config.json"))
		paths = append(paths, filepath.Join(home, ".mapsroute.yaml"))
		paths = append(paths, filepath.Join(home, ".mapsroute.json"))
	}

	return paths
}

// homeDir falls back to $HOME when os.UserHomeDir fails.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func (c *Config) merge(o Config) {
	if o.Icon != "" {
		c.Icon = o.Icon
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.OpenCommand != "" {
		c.OpenCommand = o.OpenCommand
	}
	if o.Format != "" {
		c.Format = o.Format
	}
}

func (c *Config) applyEnv() {
	c.merge(Config{
		Icon:        os.Getenv("MAPSROUTE_ICON"),
		LogLevel:    os.Getenv("MAPSROUTE_LOG_LEVEL"),
		OpenCommand: os.Getenv("MAPSROUTE_OPEN_COMMAND"),
		Format:      os.Getenv("MAPSROUTE_FORMAT"),
	})
}

func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return ValidateFormat(c.Format)
}

func ValidateFormat(format string) error {
	if lo.Contains(Formats, format) {
		return nil
	}
	return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidFormat, format, strings.Join(Formats, ", "))
}

// ZapLevel returns the configured level, falling back to info.
func (c Config) ZapLevel() zap.AtomicLevel {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(level)
}
