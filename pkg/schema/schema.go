package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-enlist/pkg/power"
)

// Schema is the validation schema active for one variant selection. It is a
// derived value: rebuilt from the base rules plus the selected variant's
// field specs whenever the variant changes, never mutated in place.
type Schema struct {
	Variant string
	Base    []Rule
	Nested  []Rule
}

// Build synthesizes a Schema from the base rules and the selected variant's
// parameter fields. It is a pure function and total: an empty or unknown
// variant contributes zero nested rules.
func Build(base []Rule, variant string, fields []power.FieldSpec) Schema {
	s := Schema{
		Variant: strings.TrimSpace(variant),
		Base:    append([]Rule(nil), base...),
	}
	for _, spec := range fields {
		s.Nested = append(s.Nested, ruleFromFieldSpec(spec))
	}
	return s
}

// Issues collects validation messages keyed by dotted field path. List
// entries report under "<field>.<index>" so one invalid entry never blocks
// validation of its siblings. Nested variant fields report under
// "power_parameters.<field>".
type Issues map[string][]string

// Add appends a message for the given field path.
func (i Issues) Add(path, message string) {
	i[path] = append(i[path], message)
}

// Fields returns the affected field paths in sorted order.
func (i Issues) Fields() []string {
	if len(i) == 0 {
		return nil
	}
	fields := make([]string, 0, len(i))
	for path := range i {
		fields = append(fields, path)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError reports client-side validation failure. It never reaches
// the network; callers surface Issues beside their fields.
type ValidationError struct {
	Issues Issues
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: validation failed for %s", strings.Join(e.Issues.Fields(), ", "))
}

// Validate checks values against the schema and returns nil when every rule
// passes. Base rules read the flat value map; nested rules read the map
// stored under PowerParamsNamespace. Conditional rules always resolve their
// condition against the flat map, so a nested rule may depend on the variant
// selector.
func (s Schema) Validate(values map[string]any) Issues {
	issues := make(Issues)
	validateRules(s.Base, values, values, "", issues)

	nested, _ := values[PowerParamsNamespace].(map[string]any)
	validateRules(s.Nested, nested, values, PowerParamsNamespace, issues)

	if len(issues) == 0 {
		return nil
	}
	return issues
}

func validateRules(rules []Rule, scope, flat map[string]any, prefix string, issues Issues) {
	for _, rule := range rules {
		path := rule.Field
		if prefix != "" {
			path = prefix + "." + rule.Field
		}
		validateRule(rule, scope, flat, path, issues)
	}
}

func validateRule(rule Rule, scope, flat map[string]any, path string, issues Issues) {
	if rule.Each {
		for idx, entry := range listValue(scope, rule.Field) {
			if strings.TrimSpace(entry) == "" {
				continue
			}
			if rule.Pattern != nil && !rule.Pattern.MatchString(entry) {
				issues.Add(fmt.Sprintf("%s.%d", path, idx), rule.Message)
			}
		}
		return
	}

	value := stringValue(scope, rule.Field)
	if value == "" {
		if required(rule, flat) {
			issues.Add(path, "is required")
		}
		return
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		issues.Add(path, rule.Message)
	}
	if len(rule.Choices) > 0 && !contains(rule.Choices, value) {
		issues.Add(path, fmt.Sprintf("must be one of %s", strings.Join(rule.Choices, ", ")))
	}
}

func required(rule Rule, flat map[string]any) bool {
	if rule.RequiredUnless != nil {
		return stringValue(flat, rule.RequiredUnless.Field) != rule.RequiredUnless.Equals
	}
	return rule.Required
}

func stringValue(values map[string]any, field string) string {
	if len(values) == 0 {
		return ""
	}
	switch v := values[field].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func listValue(values map[string]any, field string) []string {
	if len(values) == 0 {
		return nil
	}
	switch v := values[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			out = append(out, stringOf(entry))
		}
		return out
	default:
		return nil
	}
}

func stringOf(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func contains(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}
