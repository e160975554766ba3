package power

// Canonical power-control type names the form core treats specially. TypeIPMI
// machines expose a BMC the backend can probe, so the base schema relaxes the
// boot MAC requirement for that variant. TypeManual machines have no
// out-of-band controller at all and contribute zero extra parameters.
const (
	TypeIPMI   = "ipmi"
	TypeManual = "manual"
)

// FieldKind is the simplified enum for power-parameter input kinds.
type FieldKind string

const (
	KindString   FieldKind = "string"
	KindPassword FieldKind = "password"
	KindChoice   FieldKind = "choice"
	KindMAC      FieldKind = "mac_address"
)

// FieldSpec describes a single parameter a power-control type requires. Specs
// are pure data; validation behaviour is synthesized elsewhere from them.
type FieldSpec struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Required bool      `json:"required" yaml:"required"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
	Choices  []string  `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Catalog enumerates the power-control types the backend supports and maps
// each one to its ordered parameter specs. Implementations perform no network
// access of their own; they expose data loaded elsewhere (an embedded catalog,
// the backend's API description).
type Catalog interface {
	// Types returns the supported power-control type names in catalog order.
	Types() []string

	// ParametersSchemaFor returns the parameter specs for the named type. The
	// second return is false when the type is not present in the catalog.
	ParametersSchemaFor(typeName string) ([]FieldSpec, bool)
}
