package shape

import "fmt"

// Definition is the JSON authoring form of a node shape, used by shape stores
// and configuration files. Compile turns it into the executable NodeShape,
// compiling patterns and resolving term literals once at load time.
type Definition struct {
	ID            string   `json:"id"`
	TargetClasses []string `json:"target_classes,omitempty"`

	Properties []PropertyDefinition `json:"properties,omitempty"`
	Rules      []RuleDefinition     `json:"rules,omitempty"`
}

// PropertyDefinition is the authoring form of a property shape. Optional
// constraint fields are pointers so that absent and zero stay distinct in
// JSON.
type PropertyDefinition struct {
	ID   string `json:"id"`
	Path string `json:"path"`

	MinCount *int `json:"min_count,omitempty"`
	MaxCount *int `json:"max_count,omitempty"`

	Datatype string `json:"datatype,omitempty"`
	Class    string `json:"class,omitempty"`

	Pattern   string `json:"pattern,omitempty"`
	MinLength *int   `json:"min_length,omitempty"`

	InList       []Term   `json:"in_list,omitempty"`
	HasValue     *Term    `json:"has_value,omitempty"`
	MaxInclusive *float64 `json:"max_inclusive,omitempty"`

	QualifiedClass    string `json:"qualified_class,omitempty"`
	QualifiedMinCount *int   `json:"qualified_min_count,omitempty"`

	Message string `json:"message,omitempty"`
}

// RuleDefinition is the authoring form of a rule constraint. The source shape
// ID defaults to the property-less constraint's node shape ID when empty.
type RuleDefinition struct {
	ID            string `json:"id,omitempty"`
	QueryTemplate string `json:"query"`
	Message       string `json:"message,omitempty"`
}

// Compile builds the executable node shape from the definition and validates
// it. Pattern compilation failures surface here, not during validation runs.
func (d *Definition) Compile() (*NodeShape, error) {
	ns := &NodeShape{
		ID:            d.ID,
		TargetClasses: d.TargetClasses,
	}

	for i := range d.Properties {
		pd := &d.Properties[i]
		ps := &PropertyShape{
			ID:                pd.ID,
			Path:              pd.Path,
			MinCount:          pd.MinCount,
			MaxCount:          pd.MaxCount,
			Datatype:          pd.Datatype,
			Class:             pd.Class,
			MinLength:         pd.MinLength,
			InList:            pd.InList,
			HasValue:          pd.HasValue,
			MaxInclusive:      pd.MaxInclusive,
			QualifiedClass:    pd.QualifiedClass,
			QualifiedMinCount: pd.QualifiedMinCount,
			Message:           pd.Message,
		}
		if pd.Pattern != "" {
			re, err := CompilePattern(pd.Pattern)
			if err != nil {
				return nil, fmt.Errorf("shape %s property %s: invalid pattern %q: %w", d.ID, pd.ID, pd.Pattern, err)
			}
			ps.Pattern = re
		}
		ns.PropertyShapes = append(ns.PropertyShapes, ps)
	}

	for _, rd := range d.Rules {
		sourceID := rd.ID
		if sourceID == "" {
			sourceID = d.ID
		}
		ns.RuleConstraints = append(ns.RuleConstraints, RuleConstraint{
			SourceShapeID: sourceID,
			QueryTemplate: rd.QueryTemplate,
			Message:       rd.Message,
		})
	}

	if err := ns.Validate(); err != nil {
		return nil, err
	}
	return ns, nil
}
