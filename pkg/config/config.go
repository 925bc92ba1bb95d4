// Package config loads tablekit settings from YAML: the DynamoDB connection,
// batch retry behavior, logging and per-table key templates.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/theory-cloud/tablekit/pkg/core"
	"github.com/theory-cloud/tablekit/pkg/dynamo"
	"github.com/theory-cloud/tablekit/pkg/session"
	"github.com/theory-cloud/tablekit/pkg/validation"
)

// Config is the root of a tablekit YAML file.
type Config struct {
	AWS     session.Config `yaml:"aws"`
	Logging Logging        `yaml:"logging"`
	Tables  []Table        `yaml:"tables"`
	Batch   Batch          `yaml:"batch"`
}

// Batch configures the batch engine.
type Batch struct {
	Retry          core.RetryOptions `yaml:"retry"`
	MaxConcurrency int               `yaml:"max_concurrency"`
	Parallel       bool              `yaml:"parallel"`
}

// Logging selects the zap level and encoder.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Table names a table and its key templates. Sort is nil for partition-only tables.
type Table struct {
	Sort      *KeyTemplate `yaml:"sort"`
	Name      string       `yaml:"name"`
	Partition KeyTemplate  `yaml:"partition"`
}

// KeyTemplate binds a key attribute to the template that builds its value.
type KeyTemplate struct {
	Attribute string `yaml:"attribute"`
	Template  string `yaml:"template"`
}

// Default returns the configuration used for any setting the YAML omits.
func Default() *Config {
	defaults := core.DefaultBatchOptions()
	return &Config{
		AWS: *session.DefaultConfig(),
		Batch: Batch{
			Retry:          defaults.Retry,
			Parallel:       defaults.Parallel,
			MaxConcurrency: defaults.MaxConcurrency,
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// Load decodes YAML from r over Default and validates the result. Unknown
// keys are rejected.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and decodes the YAML file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}

// Validate checks retry bounds, table names and key templates.
func (c *Config) Validate() error {
	if err := c.Batch.Retry.Validate(); err != nil {
		return fmt.Errorf("batch.retry: %w", err)
	}
	if c.Batch.MaxConcurrency < 0 {
		return fmt.Errorf("batch.max_concurrency must not be negative, got %d", c.Batch.MaxConcurrency)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	_, err := c.KeySchemas()
	return err
}

// BatchOptions converts the batch section into engine options.
func (c *Config) BatchOptions(logger *zap.Logger, metrics core.MetricsRecorder) *core.BatchOptions {
	return &core.BatchOptions{
		Retry:          c.Batch.Retry,
		Parallel:       c.Batch.Parallel,
		MaxConcurrency: c.Batch.MaxConcurrency,
		Logger:         logger,
		Metrics:        metrics,
	}
}

// KeySchemas parses every table's key templates, keyed by table name.
func (c *Config) KeySchemas() (map[string]*dynamo.KeySchema, error) {
	schemas := make(map[string]*dynamo.KeySchema, len(c.Tables))
	for i, t := range c.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("tables[%d]: name is required", i)
		}
		if err := validation.ValidateTableName(t.Name); err != nil {
			return nil, fmt.Errorf("tables[%d]: %w", i, err)
		}
		if _, dup := schemas[t.Name]; dup {
			return nil, fmt.Errorf("tables[%d]: duplicate table %q", i, t.Name)
		}
		var sortAttr, sortTemplate string
		if t.Sort != nil {
			sortAttr, sortTemplate = t.Sort.Attribute, t.Sort.Template
		}
		ks, err := dynamo.NewKeySchema(t.Partition.Attribute, t.Partition.Template, sortAttr, sortTemplate)
		if err != nil {
			return nil, fmt.Errorf("tables[%d] %s: %w", i, t.Name, err)
		}
		schemas[t.Name] = ks
	}
	return schemas, nil
}

// Logger builds a zap logger writing to stderr.
func (c *Config) Logger() *zap.Logger {
	return NewLogger(c.Logging, os.Stderr)
}

// NewLogger builds a zap logger for l writing to w. Unknown levels fall back
// to info.
func NewLogger(l Logging, w io.Writer) *zap.Logger {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	atom := zap.NewAtomicLevelAt(level)

	var encoder zapcore.Encoder
	if l.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), atom))
}
