// Package config loads the bridge settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/leandrodaf/reabridge/internal/router"
	"github.com/leandrodaf/reabridge/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded file has values the bridge cannot use.
var ErrInvalidConfig = errors.New("invalid configuration")

// NoMIDIOutput disables the hardware MIDI output.
const NoMIDIOutput = -1

// TrackConfig seeds one track of the simulated project.
type TrackConfig struct {
	Name   string  `yaml:"name"`
	Volume float64 `yaml:"volume"`
	Pan    float64 `yaml:"pan"`
}

// ProjectConfig seeds the simulated project the standalone daemon serves.
type ProjectConfig struct {
	Name   string        `yaml:"name"`
	Tracks []TrackConfig `yaml:"tracks"`
}

// Config mirrors the YAML file. Fields left out of the file keep their defaults.
type Config struct {
	Listen       string        `yaml:"listen"`
	ReplyPort    int           `yaml:"reply_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
	QuietRoutes  []string      `yaml:"quiet_routes"`
	FXParamLimit int           `yaml:"fx_param_limit"`
	MIDIOutput   int           `yaml:"midi_output"`
	Project      ProjectConfig `yaml:"project"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Listen:       contracts.DefaultListenAddr,
		ReplyPort:    contracts.DefaultReplyPort,
		ReadTimeout:  contracts.DefaultReadTimeout,
		LogLevel:     "info",
		QuietRoutes:  append([]string(nil), router.DefaultQuietRoutes...),
		FXParamLimit: contracts.DefaultFXParamLimit,
		MIDIOutput:   NoMIDIOutput,
		Project:      ProjectConfig{Name: "untitled.rpp"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and formats.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("%w: listen %q: %v", ErrInvalidConfig, c.Listen, err)
	}
	if c.ReplyPort < 0 || c.ReplyPort > 65535 {
		return fmt.Errorf("%w: reply_port %d out of range", ErrInvalidConfig, c.ReplyPort)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read_timeout must be positive", ErrInvalidConfig)
	}
	if _, ok := contracts.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.FXParamLimit < 0 {
		return fmt.Errorf("%w: fx_param_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Options converts the file settings into bridge options.
func (c Config) Options() []contracts.Option {
	opts := []contracts.Option{
		contracts.WithListenAddr(c.Listen),
		contracts.WithReplyPort(c.ReplyPort),
		contracts.WithReadTimeout(c.ReadTimeout),
		contracts.WithQuietRoutes(c.QuietRoutes...),
		contracts.WithFXParamLimit(c.FXParamLimit),
	}
	if level, ok := contracts.ParseLogLevel(c.LogLevel); ok {
		opts = append(opts, contracts.WithLogLevel(level))
	}
	if c.LogFile != "" {
		opts = append(opts, contracts.WithLogFile(c.LogFile))
	}
	return opts
}
