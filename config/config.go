// Package config provides configuration loading for the semshape service.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semshape/storage"
)

// DefaultConfigFile is the config file name looked up in the working
// directory when no path is given.
const DefaultConfigFile = "semshape.yaml"

// Config represents the complete semshape service configuration.
type Config struct {
	NATS      NATSConfig      `yaml:"nats"`
	Stream    StreamConfig    `yaml:"stream"`
	Validator ValidatorConfig `yaml:"validator"`
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `yaml:"url"`
	// Name is the client connection name.
	Name string `yaml:"name"`
}

// StreamConfig configures the JetStream stream the service provisions.
type StreamConfig struct {
	// Name is the stream name.
	Name string `yaml:"name"`
	// Subjects are the subjects bound to the stream.
	Subjects []string `yaml:"subjects"`
	// MaxAge is the message retention window (duration string).
	MaxAge string `yaml:"max_age"`
}

// ValidatorConfig carries the shape-validator component settings. It is
// marshaled to JSON and handed to the component factory, which applies its
// own defaults and validation.
type ValidatorConfig struct {
	RequestSubject      string `yaml:"request_subject" json:"request_subject,omitempty"`
	ReportSubjectPrefix string `yaml:"report_subject_prefix" json:"report_subject_prefix,omitempty"`
	EntitySubject       string `yaml:"entity_subject" json:"entity_subject,omitempty"`
	ShapeBucket         string `yaml:"shape_bucket" json:"shape_bucket,omitempty"`
	IngestEntities      bool   `yaml:"ingest_entities" json:"ingest_entities"`
	Parallel            bool   `yaml:"parallel" json:"parallel"`
	MaxConcurrency      int    `yaml:"max_concurrency" json:"max_concurrency"`
	UnitTimeout         string `yaml:"unit_timeout" json:"unit_timeout,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:  "nats://localhost:4222",
			Name: "semshape",
		},
		Stream: StreamConfig{
			Name: "GRAPH",
			Subjects: []string{
				"graph.ingest.entity",
				"graph.validate.>",
			},
			MaxAge: "24h",
		},
		Validator: ValidatorConfig{
			ShapeBucket:    storage.BucketShapes,
			IngestEntities: true,
		},
	}
}

// Load reads the configuration. An empty path falls back to
// semshape.yaml in the working directory; a missing fallback file yields the
// defaults. Environment variables in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.Stream.Name == "" {
		return fmt.Errorf("stream.name is required")
	}
	if len(c.Stream.Subjects) == 0 {
		return fmt.Errorf("stream.subjects is required")
	}
	if c.Validator.MaxConcurrency < 0 {
		return fmt.Errorf("validator.max_concurrency must be non-negative")
	}
	return nil
}
