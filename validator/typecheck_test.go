package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semshape/graph"
	"github.com/c360studio/semshape/shape"
	"github.com/c360studio/semshape/vocabulary/rdf"
)

func TestTypeNoFieldsIsNoOp(t *testing.T) {
	g := buildGraph(t, shape.NewIRI("https://example.org/v"))
	ps := &shape.PropertyShape{ID: "ps", Path: pathP}

	assert.Empty(t, Type(g, focus, ps))
}

func TestTypeDatatype(t *testing.T) {
	ps := &shape.PropertyShape{ID: "ps", Path: pathP, Datatype: rdf.XSDString}

	t.Run("matching literal passes", func(t *testing.T) {
		g := buildGraph(t, shape.NewString("ok"))
		assert.Empty(t, Type(g, focus, ps))
	})

	t.Run("wrong datatype fails", func(t *testing.T) {
		g := buildGraph(t, shape.NewInteger(1))
		results := Type(g, focus, ps)
		require.Len(t, results, 1)
		dt, _ := results[0].Details.Get("datatype")
		assert.Equal(t, rdf.XSDString, dt)
	})

	t.Run("iri value fails", func(t *testing.T) {
		g := buildGraph(t, shape.NewIRI("https://example.org/v"))
		results := Type(g, focus, ps)
		require.Len(t, results, 1)
	})

	t.Run("one violation per offending value", func(t *testing.T) {
		g := buildGraph(t, shape.NewInteger(1), shape.NewString("ok"), shape.NewInteger(2))
		assert.Len(t, Type(g, focus, ps), 2)
	})
}

func TestTypeClass(t *testing.T) {
	ps := &shape.PropertyShape{ID: "ps", Path: pathP, Class: classC}

	t.Run("typed resource passes", func(t *testing.T) {
		g := graph.NewMemoryGraph()
		typeValue(t, g, shape.NewIRI("https://example.org/v"), classC)
		assert.Empty(t, Type(g, focus, ps))
	})

	t.Run("untyped resource fails", func(t *testing.T) {
		g := buildGraph(t, shape.NewIRI("https://example.org/v"))
		results := Type(g, focus, ps)
		require.Len(t, results, 1)
		class, _ := results[0].Details.Get("class")
		assert.Equal(t, classC, class)
	})

	t.Run("no transitive reasoning", func(t *testing.T) {
		// v is typed D; even if D were a subclass of C, only the explicit
		// assertion counts.
		g := graph.NewMemoryGraph()
		typeValue(t, g, shape.NewIRI("https://example.org/v"), classD)
		assert.Len(t, Type(g, focus, ps), 1)
	})

	t.Run("literal always fails class check", func(t *testing.T) {
		g := buildGraph(t, shape.NewString(classC))
		assert.Len(t, Type(g, focus, ps), 1)
	})

	t.Run("blank node with type passes", func(t *testing.T) {
		g := graph.NewMemoryGraph()
		typeValue(t, g, shape.NewBlankNode("b0"), classC)
		assert.Empty(t, Type(g, focus, ps))
	})
}

func TestTypeDatatypeAndClassConcatenate(t *testing.T) {
	// A single IRI value fails the datatype check and the class check;
	// both results appear, datatype first.
	g := buildGraph(t, shape.NewIRI("https://example.org/v"))
	ps := &shape.PropertyShape{ID: "ps", Path: pathP, Datatype: rdf.XSDString, Class: classC}

	results := Type(g, focus, ps)
	require.Len(t, results, 2)
	_, hasDatatype := results[0].Details.Get("datatype")
	assert.True(t, hasDatatype)
	_, hasClass := results[1].Details.Get("class")
	assert.True(t, hasClass)
}
