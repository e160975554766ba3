package power

import (
	"errors"
	"strings"
)

// Registry resolves a power-control type name into the field specs and
// default values the form layer needs. It is a thin lookup-and-shaping layer
// over a Catalog: unknown or empty names resolve to zero extra fields rather
// than an error so schema synthesis stays total.
type Registry struct {
	catalog Catalog
}

// NewRegistry wraps catalog in a Registry.
func NewRegistry(catalog Catalog) (*Registry, error) {
	if catalog == nil {
		return nil, errors.New("power: catalog is required")
	}
	return &Registry{catalog: catalog}, nil
}

// Types returns the supported power-control type names in catalog order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.catalog.Types()...)
}

// FieldsFor returns the ordered parameter specs for the named type. Unknown
// or empty names yield an empty sequence.
func (r *Registry) FieldsFor(typeName string) []FieldSpec {
	name := strings.TrimSpace(typeName)
	if name == "" {
		return nil
	}
	fields, ok := r.catalog.ParametersSchemaFor(name)
	if !ok {
		return nil
	}
	return append([]FieldSpec(nil), fields...)
}

// Defaults returns the default parameter values declared by the named type's
// field specs, keyed by field name. Fields without a declared default map to
// an empty string so the form starts from a fully populated value set.
func (r *Registry) Defaults(typeName string) map[string]any {
	fields := r.FieldsFor(typeName)
	if len(fields) == 0 {
		return map[string]any{}
	}
	defaults := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.Default != nil {
			defaults[field.Name] = field.Default
			continue
		}
		defaults[field.Name] = ""
	}
	return defaults
}
