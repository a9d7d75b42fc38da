package shapevalidator

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// shapeValidatorSchema defines the configuration schema.
var shapeValidatorSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the shape-validator component.
type Config struct {
	// StreamName is the JetStream stream carrying entity ingestion and
	// validation request/report subjects.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream for graph subjects,category:basic,default:GRAPH"`

	// ConsumerName is the durable consumer name for validation requests.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name for validation requests,category:basic,default:shape-validator"`

	// RequestSubject is the subject validation requests arrive on.
	RequestSubject string `json:"request_subject" schema:"type:string,description:Subject for validation requests,category:basic,default:graph.validate.request"`

	// ReportSubjectPrefix is the subject prefix validation reports are
	// published under; the request ID is appended.
	ReportSubjectPrefix string `json:"report_subject_prefix" schema:"type:string,description:Subject prefix for validation reports,category:basic,default:graph.validate.report"`

	// EntitySubject is the subject entity ingestion payloads arrive on.
	EntitySubject string `json:"entity_subject" schema:"type:string,description:Subject for graph entity ingestion,category:basic,default:graph.ingest.entity"`

	// IngestEntities enables building the in-memory graph from the entity
	// stream. Disable for deployments that inject a graph programmatically.
	IngestEntities bool `json:"ingest_entities" schema:"type:bool,description:Consume the entity stream to build the graph,category:basic,default:true"`

	// ShapeBucket is the KV bucket holding shape definitions. Empty disables
	// loading shapes from KV; the registry set via SetRegistry is used as is.
	ShapeBucket string `json:"shape_bucket" schema:"type:string,description:KV bucket with shape definitions (empty = registry only),category:basic,default:"`

	// Parallel enables the engine's bounded worker pool per run.
	Parallel bool `json:"parallel" schema:"type:bool,description:Validate dispatch units in parallel,category:advanced,default:false"`

	// MaxConcurrency bounds in-flight dispatch units in parallel mode.
	// Zero selects the platform parallelism.
	MaxConcurrency int `json:"max_concurrency" schema:"type:int,description:Bound on in-flight dispatch units (0 = platform default),category:advanced,default:0"`

	// UnitTimeout bounds each dispatch unit (duration string, empty = none).
	UnitTimeout string `json:"unit_timeout" schema:"type:string,description:Per-unit validation timeout (duration string),category:advanced,default:"`

	// Ports contains input/output port definitions.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Input/output port definitions,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StreamName:          "GRAPH",
		ConsumerName:        "shape-validator",
		RequestSubject:      "graph.validate.request",
		ReportSubjectPrefix: "graph.validate.report",
		EntitySubject:       "graph.ingest.entity",
		IngestEntities:      true,
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "validation-requests",
					Type:        "jetstream",
					Subject:     "graph.validate.request",
					StreamName:  "GRAPH",
					Description: "Receive shape validation requests",
					Required:    true,
				},
				{
					Name:        "entity-ingest",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Description: "Receive graph entities to validate against",
					Required:    false,
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "validation-reports",
					Type:        "nats",
					Subject:     "graph.validate.report.>",
					Description: "Publish shape validation reports",
					Required:    false,
				},
			},
		},
	}
}

// GetUnitTimeout parses the per-unit timeout. Empty or unparseable means no
// timeout.
func (c *Config) GetUnitTimeout() time.Duration {
	if c.UnitTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.UnitTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	if c.RequestSubject == "" {
		return fmt.Errorf("request_subject is required")
	}
	if c.ReportSubjectPrefix == "" {
		return fmt.Errorf("report_subject_prefix is required")
	}
	if c.IngestEntities && c.EntitySubject == "" {
		return fmt.Errorf("entity_subject is required when ingest_entities is set")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}
	if c.UnitTimeout != "" {
		if _, err := time.ParseDuration(c.UnitTimeout); err != nil {
			return fmt.Errorf("invalid unit_timeout %q: %w", c.UnitTimeout, err)
		}
	}
	return nil
}
