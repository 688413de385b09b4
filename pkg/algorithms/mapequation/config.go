package mapequation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/logging"
	"github.com/dd0wney/cluso-mapequation/pkg/validation"
)

// MaxConfiguredIterations caps max_iterations in configuration files
const MaxConfiguredIterations = 1 << 16

// Config is the file form of the optimizer options
type Config struct {
	Hierarchical  bool   `yaml:"hierarchical"`
	MaxIterations int    `yaml:"max_iterations" validate:"gte=0"`
	Strategy      string `yaml:"strategy"`
	Workers       int    `yaml:"workers" validate:"gte=0"`
	Diagnostics   bool   `yaml:"diagnostics"`
	LogLevel      string `yaml:"log_level"`
}

// DefaultConfig returns the configuration New uses without options
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		Strategy:      DefaultStrategy.String(),
		LogLevel:      "info",
	}
}

// LoadConfig reads a YAML configuration file. Missing keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags, then the strategy token, the pass cap and the
// log level. A bad strategy stays matchable with errors.Is(err, ErrInvalidStrategy).
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return validation.NewConfigValidator("Config").
		Custom("Strategy", func() error {
			_, err := ParseStrategy(c.Strategy)
			return err
		}).
		MaxInt("MaxIterations", c.MaxIterations, MaxConfiguredIterations).
		When(c.LogLevel != "", func(cv *validation.ConfigValidator) {
			cv.OneOf("LogLevel", c.LogLevel, logging.LevelNames)
		}).
		Validate()
}

// Options converts the configuration into constructor options
func (c *Config) Options() []Option {
	return []Option{
		WithHierarchical(c.Hierarchical),
		WithMaxIterations(c.MaxIterations),
		WithStrategy(c.Strategy),
		WithWorkers(c.Workers),
		WithDiagnostics(c.Diagnostics),
	}
}

// Level returns the configured log level
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// NewFromConfig validates cfg and constructs the optimizer. Extra options are
// applied after the configuration ones.
func NewFromConfig(g *graph.Graph, cfg Config, opts ...Option) (*LouvainMapEquation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(g, append(cfg.Options(), opts...)...)
}
