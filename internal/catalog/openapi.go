package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-enlist/pkg/power"
)

// powerTypeExtensionKey marks a component schema as the parameter schema of
// one power-control type; its value is the type name.
const powerTypeExtensionKey = "x-power-type"

// FromOpenAPI extracts the power-type catalog from the inventory backend's
// OpenAPI description. Component schemas tagged with the x-power-type
// extension contribute one type each; their properties become the type's
// parameter fields.
func FromOpenAPI(ctx context.Context, raw []byte) (*Static, error) {
	if len(raw) == 0 {
		return nil, errors.New("catalog: openapi document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: load openapi document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("catalog: openapi document declares no component schemas")
	}

	componentNames := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		componentNames = append(componentNames, name)
	}
	sort.Strings(componentNames)

	static := &Static{types: make(map[string][]power.FieldSpec)}
	for _, componentName := range componentNames {
		ref := doc.Components.Schemas[componentName]
		if ref == nil || ref.Value == nil {
			continue
		}
		typeName := extensionString(ref.Value.Extensions, powerTypeExtensionKey)
		if typeName == "" {
			continue
		}
		if _, exists := static.types[typeName]; exists {
			return nil, fmt.Errorf("catalog: duplicate power type %q in openapi document", typeName)
		}
		static.order = append(static.order, typeName)
		static.types[typeName] = fieldsFromSchema(ref.Value)
	}

	if len(static.order) == 0 {
		return nil, errors.New("catalog: openapi document declares no power types")
	}
	return static, nil
}

func fieldsFromSchema(src *openapi3.Schema) []power.FieldSpec {
	if src == nil || len(src.Properties) == 0 {
		return nil
	}

	requiredSet := make(map[string]struct{}, len(src.Required))
	for _, name := range src.Required {
		requiredSet[name] = struct{}{}
	}

	propNames := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	fields := make([]power.FieldSpec, 0, len(propNames))
	for _, name := range propNames {
		prop := src.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		_, isRequired := requiredSet[name]
		fields = append(fields, power.FieldSpec{
			Name:     name,
			Label:    strings.TrimSpace(prop.Value.Title),
			Kind:     kindFromSchema(prop.Value),
			Required: isRequired,
			Default:  prop.Value.Default,
			Choices:  choicesFromEnum(prop.Value.Enum),
		})
	}
	return fields
}

func kindFromSchema(src *openapi3.Schema) power.FieldKind {
	if len(src.Enum) > 0 {
		return power.KindChoice
	}
	switch strings.ToLower(src.Format) {
	case "password":
		return power.KindPassword
	case "mac", "mac_address", "mac-address":
		return power.KindMAC
	default:
		return power.KindString
	}
}

func choicesFromEnum(enum []any) []string {
	if len(enum) == 0 {
		return nil
	}
	choices := make([]string, 0, len(enum))
	for _, value := range enum {
		if s, ok := value.(string); ok && s != "" {
			choices = append(choices, s)
		}
	}
	return choices
}

func extensionString(extensions map[string]any, key string) string {
	if len(extensions) == 0 {
		return ""
	}
	value, ok := extensions[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
