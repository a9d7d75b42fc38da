package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

const (
	subjA = "https://example.org/a"
	predP = "https://example.org/p"
)

func TestMemoryGraphValuesOrderAndDuplicates(t *testing.T) {
	g := NewMemoryGraph()
	a := shape.NewIRI(subjA)

	require.NoError(t, g.Add(a, predP, shape.NewString("one")))
	require.NoError(t, g.Add(a, predP, shape.NewString("two")))
	require.NoError(t, g.Add(a, predP, shape.NewString("one")))

	values := g.Values(a, predP)
	require.Len(t, values, 3, "duplicates preserved")
	assert.Equal(t, "one", values[0].Value)
	assert.Equal(t, "two", values[1].Value)
	assert.Equal(t, "one", values[2].Value)

	assert.Empty(t, g.Values(a, "https://example.org/other"))
	assert.Equal(t, 3, g.Len())
}

func TestMemoryGraphHas(t *testing.T) {
	g := NewMemoryGraph()
	a := shape.NewIRI(subjA)
	v := shape.NewInteger(7)

	require.NoError(t, g.Add(a, predP, v))

	assert.True(t, g.Has(a, predP, v))
	assert.False(t, g.Has(a, predP, shape.NewInteger(8)))
	assert.False(t, g.Has(a, predP, shape.NewDecimal(7)), "term equality is structural, not numeric")
	assert.False(t, g.Has(shape.NewIRI("https://example.org/b"), predP, v))
}

func TestMemoryGraphSubjectsWith(t *testing.T) {
	g := NewMemoryGraph()
	class := shape.NewIRI("https://example.org/C")
	n1 := shape.NewIRI("https://example.org/n1")
	n2 := shape.NewIRI("https://example.org/n2")

	require.NoError(t, g.Add(n1, rdf.Type, class))
	require.NoError(t, g.Add(n2, rdf.Type, class))
	require.NoError(t, g.Add(n1, rdf.Type, class)) // duplicate assertion

	subjects := g.SubjectsWith(rdf.Type, class)
	require.Len(t, subjects, 2, "subjects de-duplicated")
	assert.Equal(t, n1, subjects[0], "first-seen order")
	assert.Equal(t, n2, subjects[1])

	assert.Empty(t, g.SubjectsWith(rdf.Type, shape.NewIRI("https://example.org/D")))
}

func TestMemoryGraphAddRejectsBadTriples(t *testing.T) {
	g := NewMemoryGraph()
	assert.Error(t, g.Add(shape.NewString("lit"), predP, shape.NewString("x")), "literal subject")
	assert.Error(t, g.Add(shape.NewIRI(subjA), "", shape.NewString("x")), "empty predicate")
}

func TestObjectTermConversion(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want shape.Term
	}{
		{"iri string", "https://example.org/x", shape.NewIRI("https://example.org/x")},
		{"urn string", "urn:isbn:foo", shape.NewIRI("urn:isbn:foo")},
		{"blank string", "_:b3", shape.NewBlankNode("b3")},
		{"plain string", "hello", shape.NewString("hello")},
		{"bool", true, shape.NewBoolean(true)},
		{"int", 42, shape.NewInteger(42)},
		{"int64", int64(-5), shape.NewInteger(-5)},
		{"integral float", 3.0, shape.NewInteger(3)},
		{"fractional float", 3.5, shape.NewDecimal(3.5)},
		{"time", now, shape.NewLiteral("2026-03-14T09:00:00Z", rdf.XSDDateTime)},
		{"passthrough term", shape.NewBlankNode("b"), shape.NewBlankNode("b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectTerm(tt.in))
		})
	}
}

func TestSubjectTerm(t *testing.T) {
	assert.Equal(t, shape.NewIRI(subjA), SubjectTerm(subjA))
	assert.Equal(t, shape.NewBlankNode("b0"), SubjectTerm("_:b0"))
}

func TestIngestEntityPayload(t *testing.T) {
	g := NewMemoryGraph()
	entity := &EntityPayload{
		EntityID_: subjA,
		TripleData: []message.Triple{
			{Subject: subjA, Predicate: rdf.Type, Object: "https://example.org/C"},
			{Subject: subjA, Predicate: predP, Object: "hello"},
			{Subject: subjA, Predicate: predP, Object: 7.0},
		},
		UpdatedAt: time.Now(),
	}

	require.NoError(t, g.Ingest(entity))
	assert.Equal(t, 3, g.Len())

	a := shape.NewIRI(subjA)
	assert.True(t, g.Has(a, rdf.Type, shape.NewIRI("https://example.org/C")))

	values := g.Values(a, predP)
	require.Len(t, values, 2)
	assert.Equal(t, shape.NewString("hello"), values[0])
	assert.Equal(t, shape.NewInteger(7), values[1])
}

func TestIngestRejectsInvalidEntity(t *testing.T) {
	g := NewMemoryGraph()
	assert.Error(t, g.Ingest(&EntityPayload{}), "entity ID required")

	bad := &EntityPayload{
		EntityID_:  subjA,
		TripleData: []message.Triple{{Subject: "", Predicate: predP, Object: "x"}},
	}
	assert.Error(t, g.Ingest(bad))
}
