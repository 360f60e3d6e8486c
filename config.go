package litedao

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/litedao/dialect"
	"github.com/syssam/litedao/dialect/sql"
	"github.com/syssam/litedao/logging"
)

// Config is the file configuration of a Database.
//
//	url: data/app.db
//	allow_write: true
//	log:
//	  level: debug
//	  format: json
//	  output: logs/litedao.log
//	stats:
//	  enabled: true
//	  slow_threshold: 50ms
//	  log_slow: true
type Config struct {
	URL        string         `yaml:"url"`
	AllowWrite bool           `yaml:"allow_write"`
	Log        logging.Config `yaml:"log"`
	Stats      StatsConfig    `yaml:"stats"`
}

// StatsConfig configures statement statistics, see sql.StatsDriver.
type StatsConfig struct {
	Enabled       bool     `yaml:"enabled"`
	SlowThreshold Duration `yaml:"slow_threshold"`
	// LogSlow logs statements slower than SlowThreshold at warn level.
	LogSlow bool `yaml:"log_slow"`
}

// Duration is a time.Duration read from a YAML string such as "250ms", or
// from an integer number of nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected duration, got %v", node.Kind)
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return err
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read litedao config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse litedao config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("litedao: config: url is required"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("litedao: config: %w", err))
	}
	if c.Stats.SlowThreshold < 0 {
		errs = append(errs, errors.New("litedao: config: stats.slow_threshold must not be negative"))
	}
	return NewAggregateError(errs...)
}

// Open validates the configuration, builds its logger and driver, and
// opens the database. The log file, if any, is closed with the database.
func (c *Config) Open(opts ...Option) (*Database, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	log, closer, err := logging.New(c.Log)
	if err != nil {
		return nil, err
	}
	base, err := sql.Open(c.URL, c.AllowWrite)
	if err != nil {
		return nil, NewAggregateError(&OpenError{URL: c.URL, AllowWrite: c.AllowWrite, Err: err}, closer.Close())
	}
	var drv dialect.Driver = base
	if c.Stats.Enabled {
		sopts := []sql.StatsOption{}
		if c.Stats.SlowThreshold > 0 {
			sopts = append(sopts, sql.WithSlowThreshold(time.Duration(c.Stats.SlowThreshold)))
		}
		if c.Stats.LogSlow {
			sopts = append(sopts, sql.WithSlowQueryLog(log))
		}
		drv = sql.NewStatsDriver(base, sopts...)
	}
	opts = append([]Option{WithLogger(log), withCloser(closer)}, opts...)
	db := NewDatabase(drv, opts...)
	db.log.Info("database opened", "url", c.URL, "allow_write", c.AllowWrite, "stats", c.Stats.Enabled)
	return db, nil
}
