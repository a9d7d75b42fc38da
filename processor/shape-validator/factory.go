package shapevalidator

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the shape validator component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "shape-validator",
		Factory:     NewComponent,
		Schema:      shapeValidatorSchema,
		Type:        "processor",
		Protocol:    "graph",
		Domain:      "semshape",
		Description: "Validates knowledge-graph entities against registered node shapes",
		Version:     "0.1.0",
	})
}
