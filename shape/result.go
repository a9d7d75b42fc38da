package shape

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360studio/semshape/vocabulary/shacl"
)

// Severity classifies a validation result.
type Severity string

const (
	// SeverityViolation is a constraint failure; any violation makes the
	// report non-conforming.
	SeverityViolation Severity = "violation"

	// SeverityWarning is an advisory result.
	SeverityWarning Severity = "warning"

	// SeverityInfo is an informational result.
	SeverityInfo Severity = "info"

	// SeverityEngineError marks a unit that could not be fully evaluated:
	// a timed-out or panicking dispatch unit, or a failed rule query.
	// Engine errors never affect conformance but make the report inconclusive.
	SeverityEngineError Severity = "engine-error"
)

// IRI returns the vocabulary identifier for the severity.
func (s Severity) IRI() string {
	switch s {
	case SeverityViolation:
		return shacl.Violation
	case SeverityWarning:
		return shacl.Warning
	case SeverityInfo:
		return shacl.Info
	case SeverityEngineError:
		return shacl.EngineError
	}
	return ""
}

// Detail is one entry of a result's detail map.
type Detail struct {
	Key   string
	Value any // Term or primitive
}

// Details is an insertion-ordered set of named values attached to a result.
type Details []Detail

// Get returns the value for key and whether it is present.
func (d Details) Get(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the details as a JSON object preserving insertion order.
func (d Details) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the details from a JSON object, preserving the
// object's key order. Values decode to the generic JSON types.
func (d *Details) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("details: expected JSON object, got %v", tok)
	}
	out := Details{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("details: expected object key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, Detail{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

// Result is a single validation outcome for one focus node and, for
// property-level checks, one predicate path.
type Result struct {
	FocusNode   Term     `json:"focus_node"`
	Path        string   `json:"path,omitempty"` // predicate IRI; empty for node-level results
	SourceShape string   `json:"source_shape"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Details     Details  `json:"details,omitempty"`
}

// Report aggregates all results of a validation run. Conformance is always
// derived from the results; it is never stored separately.
type Report struct {
	Results []Result `json:"results"`
}

// Conforms reports whether no violation-severity result exists.
func (r *Report) Conforms() bool {
	for i := range r.Results {
		if r.Results[i].Severity == SeverityViolation {
			return false
		}
	}
	return true
}

// Conclusive reports whether every dispatch unit was fully evaluated, i.e. no
// engine-error result exists. A conforming but inconclusive report is an
// apparent pass under partial coverage, not a clean pass.
func (r *Report) Conclusive() bool {
	for i := range r.Results {
		if r.Results[i].Severity == SeverityEngineError {
			return false
		}
	}
	return true
}

// ViolationCount returns the number of violation-severity results.
func (r *Report) ViolationCount() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Severity == SeverityViolation {
			n++
		}
	}
	return n
}

// EngineErrorCount returns the number of engine-error results.
func (r *Report) EngineErrorCount() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Severity == SeverityEngineError {
			n++
		}
	}
	return n
}

type reportJSON struct {
	Conforms bool     `json:"conforms"`
	Results  []Result `json:"results"`
}

// MarshalJSON includes the derived conforms flag for consumers.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{Conforms: r.Conforms(), Results: r.Results})
}

// UnmarshalJSON restores the results; conforms is recomputed, never trusted.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Results = raw.Results
	return nil
}
