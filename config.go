package aspen

import (
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the tunables of a Scene. It is usually loaded from a TOML
// file:
//
//	[world]
//	size = 4096.0
//	depth = 6
//
//	[render]
//	cull_padding = 0.0
//	auto_pad = false
//	exact_cull = false
//	initial_quads = 256
//
//	[logging]
//	level = "info"
//	format = "console"
//	debug = false
type Config struct {
	World   WorldConfig   `toml:"world"`
	Render  RenderConfig  `toml:"render"`
	Logging LoggingConfig `toml:"logging"`
}

// WorldConfig sizes the world and its grid.
type WorldConfig struct {
	Size  float64 `toml:"size"`  // edge length of the square world
	Depth int     `toml:"depth"` // 2^depth cells per axis
}

// RenderConfig tunes the visibility query and the render batch.
type RenderConfig struct {
	CullPadding  float64 `toml:"cull_padding"`  // world units added around the camera view
	AutoPad      bool    `toml:"auto_pad"`      // pad by the largest sprite extent seen
	ExactCull    bool    `toml:"exact_cull"`    // drop loaded sprites outside the view
	InitialQuads int     `toml:"initial_quads"` // batch capacity reserved up front
}

// LoggingConfig selects the logger built by NewLogger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	Debug  bool   `toml:"debug"`  // per-frame scene stats
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return *defaults()
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Size:  4096,
			Depth: 6,
		},
		Render: RenderConfig{
			InitialQuads: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the config describes a usable scene.
func (c Config) Validate() error {
	if !(c.World.Size > 0) || math.IsInf(c.World.Size, 0) {
		return fmt.Errorf("%w: world.size %v must be positive", ErrInvalidConfig, c.World.Size)
	}
	if c.World.Depth < 0 || c.World.Depth > MaxDepth {
		return fmt.Errorf("%w: world.depth %d outside [0, %d]", ErrInvalidConfig, c.World.Depth, MaxDepth)
	}
	if c.Render.CullPadding < 0 || math.IsNaN(c.Render.CullPadding) {
		return fmt.Errorf("%w: render.cull_padding %v must not be negative", ErrInvalidConfig, c.Render.CullPadding)
	}
	if c.Render.InitialQuads < 0 {
		return fmt.Errorf("%w: render.initial_quads %d must not be negative", ErrInvalidConfig, c.Render.InitialQuads)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// NewLogger builds a zap logger from cfg. The json format uses the
// production encoder; anything else gets a compact coloured console.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	if cfg.Debug && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
