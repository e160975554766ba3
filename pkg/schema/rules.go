package schema

import (
	"regexp"

	"github.com/goliatone/go-enlist/pkg/power"
)

// Flat field names used by the base machine schema. Variant parameters live
// under PowerParamsNamespace as a nested value map.
const (
	FieldHostname     = "hostname"
	FieldArchitecture = "architecture"
	FieldDomain       = "domain"
	FieldPool         = "pool"
	FieldZone         = "zone"
	FieldPowerType    = "power_type"
	FieldPXEMAC       = "pxe_mac"
	FieldExtraMACs    = "extra_macs"

	// PowerParamsNamespace keys the nested region of the value map that holds
	// the selected variant's parameters.
	PowerParamsNamespace = "power_parameters"
)

// MACPattern matches the canonical six-octet colon-separated hardware
// address, hex digits case-insensitive.
var MACPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)

const macMessage = "must be a valid MAC address (XX:XX:XX:XX:XX:XX)"

// Condition names a field/value equality test used by conditional rules.
type Condition struct {
	Field  string
	Equals string
}

// Rule is a single constraint over one field. Required and RequiredUnless are
// mutually exclusive: when RequiredUnless is set the field is required except
// while the named field holds the given value. Pattern applies to the field's
// string value, or to each entry of its list value when Each is set.
type Rule struct {
	Field          string
	Required       bool
	RequiredUnless *Condition
	Pattern        *regexp.Regexp
	Message        string
	Each           bool
	Choices        []string
}

// BaseRules returns the static rules every variant shares: required selector
// strings, the conditionally required boot MAC, and the per-entry validated
// list of additional MACs. The hostname stays optional; the backend generates
// one when it is omitted.
func BaseRules() []Rule {
	return []Rule{
		{Field: FieldHostname},
		{Field: FieldArchitecture, Required: true},
		{Field: FieldDomain, Required: true},
		{Field: FieldPool, Required: true},
		{Field: FieldZone, Required: true},
		{Field: FieldPowerType, Required: true},
		{
			Field:          FieldPXEMAC,
			RequiredUnless: &Condition{Field: FieldPowerType, Equals: power.TypeIPMI},
			Pattern:        MACPattern,
			Message:        macMessage,
		},
		{
			Field:   FieldExtraMACs,
			Pattern: MACPattern,
			Message: macMessage,
			Each:    true,
		},
	}
}

// ruleFromFieldSpec shapes one variant parameter spec into a nested rule.
func ruleFromFieldSpec(spec power.FieldSpec) Rule {
	rule := Rule{
		Field:    spec.Name,
		Required: spec.Required,
	}
	switch spec.Kind {
	case power.KindMAC:
		rule.Pattern = MACPattern
		rule.Message = macMessage
	case power.KindChoice:
		rule.Choices = append([]string(nil), spec.Choices...)
	}
	return rule
}
