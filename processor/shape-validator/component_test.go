package shapevalidator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

func newTestComponent(t *testing.T, rawConfig string) *Component {
	t.Helper()
	discoverable, err := NewComponent(json.RawMessage(rawConfig), component.Dependencies{})
	if err != nil {
		t.Fatalf("new component: %v", err)
	}
	c, ok := discoverable.(*Component)
	if !ok {
		t.Fatalf("unexpected component type %T", discoverable)
	}
	return c
}

func TestNewComponentDefaults(t *testing.T) {
	c := newTestComponent(t, `{}`)

	if c.config.StreamName != "GRAPH" {
		t.Errorf("stream default not applied: %q", c.config.StreamName)
	}
	if c.config.ConsumerName != "shape-validator" {
		t.Errorf("consumer default not applied: %q", c.config.ConsumerName)
	}
	if c.config.Ports == nil {
		t.Error("port defaults not applied")
	}
	if c.shapes == nil {
		t.Error("shape registry not initialized")
	}
	if c.store == nil {
		t.Error("graph store not initialized")
	}
}

func TestNewComponentPartialConfig(t *testing.T) {
	c := newTestComponent(t, `{"stream_name":"CUSTOM","parallel":true,"unit_timeout":"2s"}`)

	if c.config.StreamName != "CUSTOM" {
		t.Errorf("explicit value overridden: %q", c.config.StreamName)
	}
	if c.config.RequestSubject != "graph.validate.request" {
		t.Errorf("unset field should default: %q", c.config.RequestSubject)
	}
	if !c.config.Parallel {
		t.Error("parallel flag lost")
	}
	if c.config.GetUnitTimeout() != 2*time.Second {
		t.Errorf("unexpected unit timeout %v", c.config.GetUnitTimeout())
	}
}

func TestNewComponentIngestEntitiesDefault(t *testing.T) {
	c := newTestComponent(t, `{}`)
	if !c.config.IngestEntities {
		t.Error("ingest_entities should default to true when absent")
	}

	c = newTestComponent(t, `{"ingest_entities":false}`)
	if c.config.IngestEntities {
		t.Error("explicit ingest_entities=false must be kept")
	}

	c = newTestComponent(t, `{"stream_name":"CUSTOM"}`)
	if !c.config.IngestEntities {
		t.Error("ingest_entities default lost when other fields are set")
	}
}

func TestNewComponentRejectsBadConfig(t *testing.T) {
	if _, err := NewComponent(json.RawMessage(`{not json`), component.Dependencies{}); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := NewComponent(json.RawMessage(`{"max_concurrency":-2}`), component.Dependencies{}); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestStartWithoutNATSFails(t *testing.T) {
	c := newTestComponent(t, `{}`)
	if err := c.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail without NATS client")
	}
	if c.Health().Healthy {
		t.Error("component should not report healthy after failed start")
	}
	// Stop on a never-started component is a no-op.
	if err := c.Stop(time.Second); err != nil {
		t.Errorf("stop: %v", err)
	}
}

func TestRunValidationAgainstInjectedGraph(t *testing.T) {
	c := newTestComponent(t, `{}`)

	registry := shape.NewRegistry()
	err := registry.Register(&shape.NodeShape{
		ID:            "person-shape",
		TargetClasses: []string{"https://example.org/Person"},
		PropertyShapes: []*shape.PropertyShape{{
			ID:       "person-name",
			Path:     "https://example.org/name",
			MinCount: shape.Int(1),
		}},
	})
	if err != nil {
		t.Fatalf("register shape: %v", err)
	}
	c.SetRegistry(registry)

	g := c.Graph()
	subject := shape.NewIRI("https://example.org/n1")
	if err := g.Add(subject, rdf.Type, shape.NewIRI("https://example.org/Person")); err != nil {
		t.Fatalf("add triple: %v", err)
	}

	report, err := c.runValidation(context.Background(), &ValidationRequest{RequestID: "r1"})
	if err != nil {
		t.Fatalf("run validation: %v", err)
	}

	if report.Conforms {
		t.Error("person without a name should not conform")
	}
	if !report.Conclusive {
		t.Error("run without engine errors should be conclusive")
	}
	if report.Violations != 1 || len(report.Results) != 1 {
		t.Errorf("expected one violation, got %d results", len(report.Results))
	}
	if report.RequestID != "r1" || report.ReportID == "" {
		t.Errorf("report identity incomplete: %+v", report)
	}
}

func TestRunValidationUnknownShape(t *testing.T) {
	c := newTestComponent(t, `{}`)
	c.SetRegistry(shape.NewRegistry())

	_, err := c.runValidation(context.Background(), &ValidationRequest{
		RequestID: "r1",
		ShapeIDs:  []string{"no-such-shape"},
	})
	if err == nil {
		t.Error("expected error for unknown shape ID")
	}
}

func TestRunValidationIngestedEntity(t *testing.T) {
	c := newTestComponent(t, `{}`)

	registry := shape.NewRegistry()
	err := registry.Register(&shape.NodeShape{
		ID:            "person-shape",
		TargetClasses: []string{"https://example.org/Person"},
		PropertyShapes: []*shape.PropertyShape{{
			ID:       "person-name",
			Path:     "https://example.org/name",
			MinCount: shape.Int(1),
		}},
	})
	if err != nil {
		t.Fatalf("register shape: %v", err)
	}
	c.SetRegistry(registry)

	entity := &graph.EntityPayload{
		EntityID_: "https://example.org/n1",
		TripleData: []message.Triple{
			{Subject: "https://example.org/n1", Predicate: rdf.Type, Object: "https://example.org/Person"},
			{Subject: "https://example.org/n1", Predicate: "https://example.org/name", Object: "Alice"},
		},
	}
	if err := c.Graph().Ingest(entity); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	report, err := c.runValidation(context.Background(), &ValidationRequest{RequestID: "r2"})
	if err != nil {
		t.Fatalf("run validation: %v", err)
	}
	if !report.Conforms {
		t.Errorf("ingested entity should conform: %+v", report.Results)
	}
}

func TestComponentMetadataAndPorts(t *testing.T) {
	c := newTestComponent(t, `{}`)

	meta := c.Meta()
	if meta.Name != "shape-validator" || meta.Type != "processor" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if len(c.InputPorts()) != 2 {
		t.Errorf("expected 2 input ports, got %d", len(c.InputPorts()))
	}
	if len(c.OutputPorts()) != 1 {
		t.Errorf("expected 1 output port, got %d", len(c.OutputPorts()))
	}
	if len(c.ConfigSchema().Properties) == 0 {
		t.Error("config schema empty")
	}
}
