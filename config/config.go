// Package config loads CLI settings from an optional TOML file and the
// environment.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/goopsie/xfileTools/export"
	"github.com/goopsie/xfileTools/xfile"
)

// DEBUG forces debug logging. It is read from the environment once, at
// start-up.
var DEBUG = os.Getenv("DEBUG") != ""

type Config struct {
	Platform        xfile.Platform `toml:"platform"`
	Format          export.Format  `toml:"format"`
	OutputDir       string         `toml:"output_dir"`
	LogLevel        string         `toml:"log_level"`
	Workers         int            `toml:"workers"`
	MaxInflatedSize int64          `toml:"max_inflated_size"`
	ZstdLevel       int            `toml:"zstd_level"`
}

func Default() Config {
	return Config{
		Platform:        xfile.PlatformPC,
		Format:          export.FormatJSON,
		OutputDir:       "out",
		LogLevel:        "info",
		Workers:         4,
		MaxInflatedSize: xfile.DefaultMaxInflatedSize,
		ZstdLevel:       export.DefaultCompressionLevel,
	}
}

// Load returns the defaults overlaid with the file at path, if path is not
// empty, and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if DEBUG {
		c.LogLevel = "debug"
	}
	if v := os.Getenv("XFILE_PLATFORM"); v != "" {
		p, err := xfile.ParsePlatform(v)
		if err != nil {
			return errors.Wrap(err, "XFILE_PLATFORM")
		}
		c.Platform = p
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case !c.Platform.IsValid():
		return errors.Errorf("invalid platform %d", int(c.Platform))
	case c.Format != export.FormatJSON && c.Format != export.FormatYAML:
		return errors.Errorf("invalid format %q", c.Format)
	case c.Workers < 1:
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.MaxInflatedSize <= 0:
		return errors.Errorf("max_inflated_size must be positive, got %d", c.MaxInflatedSize)
	case c.ZstdLevel < 1 || c.ZstdLevel > 22:
		return errors.Errorf("zstd_level must be in 1..22, got %d", c.ZstdLevel)
	}
	return nil
}

// DecoderOptions are the xfile options this configuration implies.
func (c Config) DecoderOptions() []xfile.Option {
	return []xfile.Option{
		xfile.WithPlatform(c.Platform),
		xfile.WithMaxInflatedSize(c.MaxInflatedSize),
	}
}
