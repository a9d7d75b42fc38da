package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionCompile(t *testing.T) {
	def := &Definition{
		ID:            "person-shape",
		TargetClasses: []string{"https://example.org/Person"},
		Properties: []PropertyDefinition{{
			ID:       "person-name",
			Path:     "https://example.org/name",
			MinCount: Int(1),
			Pattern:  `[A-Z][a-z]+`,
		}},
		Rules: []RuleDefinition{{
			QueryTemplate: "SELECT ?x WHERE { $this ex:conflictsWith ?x }",
		}},
	}

	ns, err := def.Compile()
	require.NoError(t, err)

	assert.Equal(t, "person-shape", ns.ID)
	require.Len(t, ns.PropertyShapes, 1)
	ps := ns.PropertyShapes[0]
	require.NotNil(t, ps.Pattern)
	assert.True(t, ps.Pattern.MatchString("Alice"))
	assert.False(t, ps.Pattern.MatchString("xAlicex"), "pattern must match the full form")

	require.Len(t, ns.RuleConstraints, 1)
	assert.Equal(t, "person-shape", ns.RuleConstraints[0].SourceShapeID,
		"rule source defaults to the shape ID")
}

func TestDefinitionCompileErrors(t *testing.T) {
	t.Run("bad pattern", func(t *testing.T) {
		def := &Definition{
			ID: "s1",
			Properties: []PropertyDefinition{{
				ID:      "p1",
				Path:    "https://example.org/p",
				Pattern: `[unclosed`,
			}},
		}
		_, err := def.Compile()
		require.Error(t, err)
	})

	t.Run("invalid shape propagates", func(t *testing.T) {
		def := &Definition{
			ID:         "s1",
			Properties: []PropertyDefinition{{ID: "p1"}},
		}
		_, err := def.Compile()
		require.Error(t, err, "property without a path must not compile")
	})
}

func TestDefinitionJSON(t *testing.T) {
	raw := `{
		"id": "doc-shape",
		"target_classes": ["https://example.org/Document"],
		"properties": [{
			"id": "doc-status",
			"path": "https://example.org/status",
			"in_list": [
				{"kind": "literal", "value": "draft", "datatype": "http://www.w3.org/2001/XMLSchema#string"},
				{"kind": "literal", "value": "final", "datatype": "http://www.w3.org/2001/XMLSchema#string"}
			],
			"max_inclusive": 10
		}]
	}`

	var def Definition
	require.NoError(t, json.Unmarshal([]byte(raw), &def))

	ns, err := def.Compile()
	require.NoError(t, err)
	require.Len(t, ns.PropertyShapes, 1)
	ps := ns.PropertyShapes[0]
	assert.Equal(t, []Term{NewString("draft"), NewString("final")}, ps.InList)
	require.NotNil(t, ps.MaxInclusive)
	assert.Equal(t, 10.0, *ps.MaxInclusive)
}
