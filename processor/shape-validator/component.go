// Package shapevalidator provides a JetStream processor that validates the
// knowledge graph against registered node shapes. It builds an in-memory
// triple graph from graph.ingest.entity messages, consumes ValidationRequest
// messages, runs the validation engine, and publishes a ValidationReport.
package shapevalidator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semshape/engine"
	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/query"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/storage"
)

// Component implements the shape-validator processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	// Validation inputs. The registry defaults to shape.Default; both can be
	// replaced before Start.
	shapes   *shape.Registry
	executor query.Executor

	// In-memory graph built from the entity stream.
	store *graph.MemoryGraph

	// JetStream consumer state.
	consumer jetstream.Consumer

	// Lifecycle.
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics.
	requestsProcessed atomic.Int64
	entitiesIngested  atomic.Int64
	runsConforming    atomic.Int64
	runsNonConforming atomic.Int64
	errorsCount       atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent constructs a shape-validator Component from raw JSON config
// and semstreams dependencies.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	// Decode over the defaults so absent fields keep their default values
	// while explicit false or empty settings still take effect.
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Component{
		name:       "shape-validator",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		shapes:     shape.Default,
		store:      graph.NewMemoryGraph(),
	}, nil
}

// SetRegistry replaces the shape registry. Must be called before Start.
func (c *Component) SetRegistry(r *shape.Registry) {
	if r != nil {
		c.shapes = r
	}
}

// SetExecutor installs the rule-query executor. Without one, shapes carrying
// rule constraints report engine errors for those constraints.
func (c *Component) SetExecutor(exec query.Executor) {
	c.executor = exec
}

// Graph returns the component's in-memory graph, for deployments that inject
// triples programmatically instead of via the entity stream.
func (c *Component) Graph() *graph.MemoryGraph {
	return c.store
}

// Initialize prepares the component for startup.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized shape-validator",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"request_subject", c.config.RequestSubject,
		"shapes", c.shapes.Len())
	return nil
}

// Start begins consuming entity and validation-request messages.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	c.running = true
	c.startTime = time.Now()

	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	js, err := c.natsClient.JetStream()
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("get jetstream: %w", err)
	}

	if c.config.ShapeBucket != "" {
		if err := c.loadShapes(subCtx, js); err != nil {
			c.rollbackStart(cancel)
			return fmt.Errorf("load shapes: %w", err)
		}
	}

	stream, err := js.Stream(subCtx, c.config.StreamName)
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("get stream %s: %w", c.config.StreamName, err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		FilterSubject: c.config.RequestSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       60 * time.Second,
		MaxDeliver:    3,
	}

	consumer, err := stream.CreateOrUpdateConsumer(subCtx, consumerConfig)
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("create consumer: %w", err)
	}
	c.consumer = consumer

	if c.config.IngestEntities {
		go c.consumeEntities(subCtx)
	}
	go c.consumeLoop(subCtx)

	c.logger.Info("shape-validator started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"request_subject", c.config.RequestSubject,
		"ingest_entities", c.config.IngestEntities)

	return nil
}

// loadShapes registers every definition stored in the shape bucket into the
// component's registry. Definitions that fail to compile or collide with an
// already registered shape are logged and skipped.
func (c *Component) loadShapes(ctx context.Context, js jetstream.JetStream) error {
	store, err := storage.NewShapeStore(ctx, js, c.config.ShapeBucket)
	if err != nil {
		return err
	}

	defs, err := store.List(ctx)
	if err != nil {
		return err
	}

	loaded := 0
	for _, def := range defs {
		ns, err := def.Compile()
		if err != nil {
			c.logger.Warn("Skipping stored shape", "shape_id", def.ID, "error", err)
			continue
		}
		if err := c.shapes.Register(ns); err != nil {
			c.logger.Warn("Skipping stored shape", "shape_id", def.ID, "error", err)
			continue
		}
		loaded++
	}

	c.logger.Info("Loaded shapes from KV",
		"bucket", c.config.ShapeBucket,
		"stored", len(defs),
		"loaded", loaded)
	return nil
}

func (c *Component) rollbackStart(cancel context.CancelFunc) {
	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
	cancel()
}

// consumeEntities builds the in-memory graph from the entity stream.
func (c *Component) consumeEntities(ctx context.Context) {
	handler := func(data []byte) {
		var entity graph.EntityPayload
		if err := json.Unmarshal(data, &entity); err != nil {
			c.logger.Warn("Invalid entity message", "error", err)
			return
		}
		if err := c.store.Ingest(&entity); err != nil {
			c.errorsCount.Add(1)
			c.logger.Warn("Failed to ingest entity",
				"entity_id", entity.EntityID(),
				"error", err)
			return
		}
		c.entitiesIngested.Add(1)
	}

	if err := c.natsClient.ConsumeStream(ctx, c.config.StreamName, c.config.EntitySubject, func(msg jetstream.Msg) { handler(msg.Data()) }); err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Entity stream consumption failed", "error", err)
		}
	}
}

// consumeLoop fetches validation requests from the JetStream consumer in a
// tight loop until the context is cancelled.
func (c *Component) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug("Fetch timeout or error", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg)
		}

		if msgs.Error() != nil && msgs.Error() != context.DeadlineExceeded {
			c.logger.Warn("Message fetch error", "error", msgs.Error())
		}
	}
}

// handleMessage processes a single ValidationRequest message.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	c.requestsProcessed.Add(1)
	c.updateLastActivity()

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(msg.Data(), &baseMsg); err != nil {
		c.errorsCount.Add(1)
		c.logger.Error("Failed to parse message", "error", err)
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn("Failed to NAK message", "error", nakErr)
		}
		return
	}

	payloadBytes, err := json.Marshal(baseMsg.Payload())
	if err != nil {
		c.errorsCount.Add(1)
		c.logger.Error("Failed to marshal payload", "error", err)
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn("Failed to NAK message", "error", nakErr)
		}
		return
	}
	var request ValidationRequest
	if err := json.Unmarshal(payloadBytes, &request); err != nil {
		c.errorsCount.Add(1)
		c.logger.Error("Failed to unmarshal request", "error", err)
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn("Failed to NAK message", "error", nakErr)
		}
		return
	}

	if err := request.Validate(); err != nil {
		c.logger.Error("Invalid request", "error", err)
		// ACK invalid messages; they will not succeed on retry.
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn("Failed to ACK invalid message", "error", ackErr)
		}
		return
	}
	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}

	c.logger.Info("Processing validation request",
		"request_id", request.RequestID,
		"shape_ids", len(request.ShapeIDs),
		"triples", c.store.Len())

	report, err := c.runValidation(ctx, &request)
	if err != nil {
		c.errorsCount.Add(1)
		c.logger.Error("Validation run failed",
			"request_id", request.RequestID,
			"error", err)
		// Shape selection and option errors are static; retries cannot help.
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn("Failed to ACK message", "error", ackErr)
		}
		return
	}

	if report.Conforms {
		c.runsConforming.Add(1)
	} else {
		c.runsNonConforming.Add(1)
	}

	if err := c.publishReport(ctx, report); err != nil {
		c.errorsCount.Add(1)
		c.logger.Error("Failed to publish report",
			"request_id", request.RequestID,
			"error", err)
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn("Failed to NAK message", "error", nakErr)
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Warn("Failed to ACK message", "error", ackErr)
	}

	c.logger.Info("Validation completed",
		"request_id", report.RequestID,
		"conforms", report.Conforms,
		"conclusive", report.Conclusive,
		"violations", report.Violations,
		"engine_errors", report.EngineErrors)
}

// runValidation selects the requested shapes and runs the engine over the
// component's current graph.
func (c *Component) runValidation(ctx context.Context, request *ValidationRequest) (*ValidationReport, error) {
	shapes, err := c.shapes.Select(request.ShapeIDs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := engine.Run(ctx, c.store, shapes, engine.Options{
		Parallel:       c.config.Parallel,
		MaxConcurrency: c.config.MaxConcurrency,
		Timeout:        c.config.GetUnitTimeout(),
		Executor:       c.executor,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("run engine: %w", err)
	}

	return &ValidationReport{
		RequestID:    request.RequestID,
		ReportID:     uuid.NewString(),
		Conforms:     result.Conforms(),
		Conclusive:   result.Conclusive(),
		Violations:   result.ViolationCount(),
		EngineErrors: result.EngineErrorCount(),
		Results:      result.Results,
		Duration:     time.Since(start).String(),
	}, nil
}

// publishReport publishes a ValidationReport to JetStream.
// Subject: <report_subject_prefix>.<request_id>
func (c *Component) publishReport(ctx context.Context, report *ValidationReport) error {
	baseMsg := message.NewBaseMessage(report.Schema(), report, "shape-validator")

	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	js, err := c.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", c.config.ReportSubjectPrefix, report.RequestID)
	if _, err := js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}

	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	c.logger.Info("shape-validator stopped",
		"requests_processed", c.requestsProcessed.Load(),
		"entities_ingested", c.entitiesIngested.Load(),
		"runs_conforming", c.runsConforming.Load(),
		"runs_non_conforming", c.runsNonConforming.Load(),
		"errors", c.errorsCount.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "shape-validator",
		Type:        "processor",
		Description: "Validates knowledge-graph entities against registered node shapes",
		Version:     "0.1.0",
	}
}

// InputPorts returns the configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, def := range c.config.Ports.Inputs {
		ports[i] = component.Port{
			Name:        def.Name,
			Direction:   component.DirectionInput,
			Required:    def.Required,
			Description: def.Description,
			Config:      component.NATSPort{Subject: def.Subject},
		}
	}
	return ports
}

// OutputPorts returns the configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, def := range c.config.Ports.Outputs {
		ports[i] = component.Port{
			Name:        def.Name,
			Direction:   component.DirectionOutput,
			Required:    def.Required,
			Description: def.Description,
			Config:      component.NATSPort{Subject: def.Subject},
		}
	}
	return ports
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return shapeValidatorSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.errorsCount.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
