// Package catalog provides the power-control type catalog sources consumed
// by power.Registry: an embedded YAML fallback and the backend's OpenAPI
// description.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-enlist/pkg/power"
)

//go:embed power_types.yaml
var embeddedCatalog []byte

type catalogDocument struct {
	PowerTypes []definition `yaml:"power_types"`
}

type definition struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Fields      []power.FieldSpec `yaml:"fields"`
}

// Static is an in-memory power.Catalog with a stable type order.
type Static struct {
	order []string
	types map[string][]power.FieldSpec
}

var _ power.Catalog = (*Static)(nil)

// Embedded parses the built-in fallback catalog.
func Embedded() (*Static, error) {
	return ParseYAML(embeddedCatalog)
}

// ParseYAML builds a Static catalog from a YAML document listing power types
// and their parameter fields.
func ParseYAML(data []byte) (*Static, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	if len(doc.PowerTypes) == 0 {
		return nil, errors.New("catalog: no power types declared")
	}

	static := &Static{
		types: make(map[string][]power.FieldSpec, len(doc.PowerTypes)),
	}
	for _, def := range doc.PowerTypes {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, errors.New("catalog: power type with empty name")
		}
		if _, exists := static.types[name]; exists {
			return nil, fmt.Errorf("catalog: duplicate power type %q", name)
		}
		static.order = append(static.order, name)
		static.types[name] = append([]power.FieldSpec(nil), def.Fields...)
	}
	return static, nil
}

// Types returns the power type names in catalog order.
func (s *Static) Types() []string {
	return append([]string(nil), s.order...)
}

// ParametersSchemaFor returns the parameter specs registered for the named
// type.
func (s *Static) ParametersSchemaFor(typeName string) ([]power.FieldSpec, bool) {
	fields, ok := s.types[typeName]
	if !ok {
		return nil, false
	}
	return append([]power.FieldSpec(nil), fields...), true
}
