package shapevalidator

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semshape/shape"
)

// ValidationRequest is published to graph.validate.request to trigger a
// validation run over the component's current graph.
type ValidationRequest struct {
	// RequestID correlates the report with the request. Generated when empty.
	RequestID string `json:"request_id,omitempty"`

	// ShapeIDs restricts the run to the named registered shapes.
	// Empty means every registered shape.
	ShapeIDs []string `json:"shape_ids,omitempty"`
}

// Schema implements message.Payload.
func (p *ValidationRequest) Schema() message.Type {
	return ValidationRequestType
}

// Validate implements message.Payload.
func (p *ValidationRequest) Validate() error {
	for _, id := range p.ShapeIDs {
		if id == "" {
			return fmt.Errorf("shape_ids must not contain empty entries")
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *ValidationRequest) MarshalJSON() ([]byte, error) {
	type Alias ValidationRequest
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ValidationRequest) UnmarshalJSON(data []byte) error {
	type Alias ValidationRequest
	return json.Unmarshal(data, (*Alias)(p))
}

// ValidationReport is published to graph.validate.report.<request_id>. It
// carries the full result list plus the derived conformance and coverage
// flags: a conforming but inconclusive report means some units could not be
// fully evaluated and must not be read as a clean pass.
type ValidationReport struct {
	RequestID    string         `json:"request_id"`
	ReportID     string         `json:"report_id"`
	Conforms     bool           `json:"conforms"`
	Conclusive   bool           `json:"conclusive"`
	Violations   int            `json:"violations"`
	EngineErrors int            `json:"engine_errors"`
	Results      []shape.Result `json:"results"`
	Duration     string         `json:"duration"`
}

// Schema implements message.Payload.
func (p *ValidationReport) Schema() message.Type {
	return ValidationReportType
}

// Validate implements message.Payload.
func (p *ValidationReport) Validate() error {
	if p.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if p.ReportID == "" {
		return fmt.Errorf("report_id is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *ValidationReport) MarshalJSON() ([]byte, error) {
	type Alias ValidationReport
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ValidationReport) UnmarshalJSON(data []byte) error {
	type Alias ValidationReport
	return json.Unmarshal(data, (*Alias)(p))
}

// ValidationRequestType is the message type for validation requests.
var ValidationRequestType = message.Type{
	Domain:   "graph",
	Category: "validation-request",
	Version:  "v1",
}

// ValidationReportType is the message type for validation reports.
var ValidationReportType = message.Type{
	Domain:   "graph",
	Category: "validation-report",
	Version:  "v1",
}

func init() {
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "validation-request",
		Version:     "v1",
		Description: "Shape validation request selecting shapes to run over the current graph",
		Factory:     func() any { return &ValidationRequest{} },
	}); err != nil {
		panic("failed to register ValidationRequest: " + err.Error())
	}

	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "validation-report",
		Version:     "v1",
		Description: "Shape validation report with results and derived conformance",
		Factory:     func() any { return &ValidationReport{} },
	}); err != nil {
		panic("failed to register ValidationReport: " + err.Error())
	}
}
