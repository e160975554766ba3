package command

import "fmt"

// Ref identifies a reference entity resolved by name from the loaded
// reference data at mapping time.
type Ref struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// Creation is the structured payload sent to the inventory backend to
// register a new managed host. It is built once per submit attempt from
// validated form values and is not retained after dispatch.
type Creation struct {
	// ID is a per-attempt token the dispatcher can use to de-duplicate
	// retried submissions.
	ID string `json:"id"`

	Hostname     string `json:"hostname,omitempty"`
	Architecture string `json:"architecture"`
	Domain       Ref    `json:"domain"`
	Pool         Ref    `json:"pool"`
	Zone         Ref    `json:"zone"`

	// MACAddresses lists the boot MAC first, followed by any additional
	// addresses. Empty entries are stripped before mapping.
	MACAddresses []string `json:"mac_addresses,omitempty"`

	PowerType       string         `json:"power_type"`
	PowerParameters map[string]any `json:"power_parameters,omitempty"`
}

// EntityRef identifies the machine the backend created.
type EntityRef struct {
	SystemID string `json:"system_id"`
	Hostname string `json:"hostname,omitempty"`
}

// MappingError reports a selected name that no longer exists in the loaded
// reference data. It indicates a stale reference list; submission must abort
// and the user re-select rather than send a malformed command.
type MappingError struct {
	Collection string
	Name       string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("command: %s %q not present in loaded reference data", e.Collection, e.Name)
}
