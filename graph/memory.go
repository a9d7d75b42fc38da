package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

type spKey struct {
	subject   shape.Term
	predicate string
}

type poKey struct {
	predicate string
	object    shape.Term
}

// MemoryGraph is an in-memory triple store. Insertion order is preserved per
// (subject, predicate) pair and duplicates are kept, matching the contract of
// Graph.Values. All methods are safe for concurrent use.
type MemoryGraph struct {
	mu      sync.RWMutex
	sp      map[spKey][]shape.Term
	spo     map[spKey]map[shape.Term]int
	po      map[poKey][]shape.Term
	poSeen  map[poKey]map[shape.Term]struct{}
	triples int
}

// NewMemoryGraph returns an empty graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		sp:     make(map[spKey][]shape.Term),
		spo:    make(map[spKey]map[shape.Term]int),
		po:     make(map[poKey][]shape.Term),
		poSeen: make(map[poKey]map[shape.Term]struct{}),
	}
}

// Add inserts one triple. The subject must be a resource term.
func (g *MemoryGraph) Add(subject shape.Term, predicate string, object shape.Term) error {
	if !subject.IsResource() {
		return fmt.Errorf("graph: subject must be an IRI or blank node, got %s", subject.Kind)
	}
	if predicate == "" {
		return fmt.Errorf("graph: predicate is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	sk := spKey{subject: subject, predicate: predicate}
	g.sp[sk] = append(g.sp[sk], object)

	counts, ok := g.spo[sk]
	if !ok {
		counts = make(map[shape.Term]int)
		g.spo[sk] = counts
	}
	counts[object]++

	pk := poKey{predicate: predicate, object: object}
	seen, ok := g.poSeen[pk]
	if !ok {
		seen = make(map[shape.Term]struct{})
		g.poSeen[pk] = seen
	}
	if _, dup := seen[subject]; !dup {
		seen[subject] = struct{}{}
		g.po[pk] = append(g.po[pk], subject)
	}

	g.triples++
	return nil
}

// Values implements Graph.
func (g *MemoryGraph) Values(subject shape.Term, predicate string) []shape.Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	stored := g.sp[spKey{subject: subject, predicate: predicate}]
	if len(stored) == 0 {
		return nil
	}
	out := make([]shape.Term, len(stored))
	copy(out, stored)
	return out
}

// Has implements Graph.
func (g *MemoryGraph) Has(subject shape.Term, predicate string, object shape.Term) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	counts, ok := g.spo[spKey{subject: subject, predicate: predicate}]
	if !ok {
		return false
	}
	return counts[object] > 0
}

// SubjectsWith implements Graph.
func (g *MemoryGraph) SubjectsWith(predicate string, object shape.Term) []shape.Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	stored := g.po[poKey{predicate: predicate, object: object}]
	if len(stored) == 0 {
		return nil
	}
	out := make([]shape.Term, len(stored))
	copy(out, stored)
	return out
}

// Len returns the number of stored triples, duplicates included.
func (g *MemoryGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.triples
}

// AddTriple converts and inserts one ingestion triple. The triple's dynamic
// object is mapped to a typed term via ObjectTerm.
func (g *MemoryGraph) AddTriple(t message.Triple) error {
	if t.Subject == "" {
		return fmt.Errorf("graph: triple subject is required")
	}
	return g.Add(SubjectTerm(t.Subject), t.Predicate, ObjectTerm(t.Object))
}

// Ingest inserts every triple of an entity ingestion payload. It stops at the
// first conversion failure.
func (g *MemoryGraph) Ingest(entity *EntityPayload) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	for i := range entity.TripleData {
		if err := g.AddTriple(entity.TripleData[i]); err != nil {
			return fmt.Errorf("graph: ingest entity %s: %w", entity.EntityID_, err)
		}
	}
	return nil
}

// SubjectTerm maps an ingestion subject string to a resource term: labels
// with the "_:" prefix become blank nodes, everything else an IRI.
func SubjectTerm(s string) shape.Term {
	if rest, ok := strings.CutPrefix(s, "_:"); ok {
		return shape.NewBlankNode(rest)
	}
	return shape.NewIRI(s)
}

// iriShaped reports whether a string object should be read as an IRI rather
// than a string literal. Ingestion payloads carry objects as untyped JSON, so
// the scheme prefix is the only signal available.
func iriShaped(s string) bool {
	for _, prefix := range []string{"http://", "https://", "urn:", "did:"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// ObjectTerm maps a dynamic triple object to a typed term:
//
//   - strings with an IRI scheme prefix → IRI; "_:"-prefixed → blank node;
//     other strings → xsd:string literal
//   - bool → xsd:boolean
//   - integral numbers → xsd:integer, other floats → xsd:decimal
//   - time.Time → xsd:dateTime in RFC 3339 form
//
// Anything else is stored as an xsd:string literal of its default formatting.
func ObjectTerm(v any) shape.Term {
	switch o := v.(type) {
	case shape.Term:
		return o
	case string:
		if iriShaped(o) {
			return shape.NewIRI(o)
		}
		if rest, ok := strings.CutPrefix(o, "_:"); ok {
			return shape.NewBlankNode(rest)
		}
		return shape.NewString(o)
	case bool:
		return shape.NewBoolean(o)
	case int:
		return shape.NewInteger(int64(o))
	case int64:
		return shape.NewInteger(o)
	case float64:
		// JSON numbers arrive as float64; keep whole numbers as integers.
		if o == math.Trunc(o) && !math.IsInf(o, 0) {
			return shape.NewInteger(int64(o))
		}
		return shape.NewDecimal(o)
	case json.Number:
		if i, err := o.Int64(); err == nil {
			return shape.NewInteger(i)
		}
		return shape.NewLiteral(o.String(), rdf.XSDDecimal)
	case time.Time:
		return shape.NewLiteral(o.Format(time.RFC3339), rdf.XSDDateTime)
	default:
		return shape.NewString(fmt.Sprintf("%v", v))
	}
}
