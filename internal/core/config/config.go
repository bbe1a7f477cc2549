package config

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/observability/log"
)

// EnvPrefix is prepended to every environment override, e.g. TICKCORE_LOG_LEVEL.
const EnvPrefix = "TICKCORE_"

// Config is the full runtime configuration of a World.
type Config struct {
	Log   LogConfig   `json:"log" yaml:"log" envPrefix:"LOG_"`
	Bus   BusConfig   `json:"bus" yaml:"bus" envPrefix:"BUS_"`
	Store StoreConfig `json:"store" yaml:"store" envPrefix:"STORE_"`
	Tick  TickConfig  `json:"tick" yaml:"tick" envPrefix:"TICK_"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level" env:"LEVEL"`
	Encoding string `json:"encoding" yaml:"encoding" env:"ENCODING"`
}

type BusConfig struct {
	// QueueCapacity preallocates the post queue.
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity" env:"QUEUE_CAPACITY"`
	// MaxDrain bounds the events dispatched by one drain; 0 disables the bound.
	MaxDrain int `json:"max_drain" yaml:"max_drain" env:"MAX_DRAIN"`
}

type StoreConfig struct {
	CapacityHint int    `json:"capacity_hint" yaml:"capacity_hint" env:"CAPACITY_HINT"`
	MaxEntityID  uint64 `json:"max_entity_id" yaml:"max_entity_id" env:"MAX_ENTITY_ID"`
}

type TickConfig struct {
	// Rate is ticks per second.
	Rate int `json:"rate" yaml:"rate" env:"RATE"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Bus: BusConfig{
			QueueCapacity: 64,
			MaxDrain:      0,
		},
		Store: StoreConfig{
			CapacityHint: 256,
			MaxEntityID:  math.MaxUint64,
		},
		Tick: TickConfig{
			Rate: 30,
		},
	}
}

// LoadYAML decodes YAML from r on top of the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, eris.Wrap(err, "decode yaml config")
	}
	return c, nil
}

// Load builds a Config from defaults, the optional YAML file at path and
// TICKCORE_* environment variables, in that order of precedence.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "read config %s", path)
		}
		if c, err = LoadYAML(bytes.NewReader(data)); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ApplyEnv overrides c with any TICKCORE_* environment variables that are set.
func ApplyEnv(c *Config) error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return eris.Wrap(err, "parse env")
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrap(errs.ErrInvalidConfig, err.Error())
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return eris.Wrapf(errs.ErrInvalidConfig, "log encoding %q", c.Log.Encoding)
	}
	if c.Bus.QueueCapacity < 0 {
		return eris.Wrapf(errs.ErrInvalidConfig, "bus queue_capacity %d", c.Bus.QueueCapacity)
	}
	if c.Bus.MaxDrain < 0 {
		return eris.Wrapf(errs.ErrInvalidConfig, "bus max_drain %d", c.Bus.MaxDrain)
	}
	if c.Store.CapacityHint < 0 {
		return eris.Wrapf(errs.ErrInvalidConfig, "store capacity_hint %d", c.Store.CapacityHint)
	}
	if c.Store.MaxEntityID == 0 {
		return eris.Wrap(errs.ErrInvalidConfig, "store max_entity_id must be positive")
	}
	if c.Tick.Rate <= 0 {
		return eris.Wrapf(errs.ErrInvalidConfig, "tick rate %d", c.Tick.Rate)
	}
	return nil
}

// TickInterval converts the tick rate into the period between ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Tick.Rate)
}

// LoggerOptions converts the log section into options for log.New.
func (c Config) LoggerOptions() log.Options {
	lvl, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: lvl, Encoding: c.Log.Encoding}
}
