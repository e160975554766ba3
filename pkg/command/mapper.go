package command

import (
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-enlist/pkg/refdata"
	"github.com/goliatone/go-enlist/pkg/schema"
)

// ParamFormatter shapes a variant's parameter values into the structure the
// backend endpoint expects (renaming or namespacing fields per driver). The
// default formatter copies the values through unchanged.
type ParamFormatter interface {
	Format(variant string, params map[string]any) map[string]any
}

// ParamFormatterFunc adapts a function into a ParamFormatter.
type ParamFormatterFunc func(variant string, params map[string]any) map[string]any

// Format delegates to the underlying function.
func (fn ParamFormatterFunc) Format(variant string, params map[string]any) map[string]any {
	return fn(variant, params)
}

// Option customises mapper construction.
type Option func(*Mapper)

// WithFormatter overrides the variant parameter formatter.
func WithFormatter(formatter ParamFormatter) Option {
	return func(m *Mapper) {
		if formatter != nil {
			m.formatter = formatter
		}
	}
}

// Mapper transforms validated flat field values into a Creation command.
type Mapper struct {
	formatter ParamFormatter
}

// NewMapper constructs a Mapper with a pass-through parameter formatter
// unless one is injected.
func NewMapper(options ...Option) *Mapper {
	m := &Mapper{
		formatter: ParamFormatterFunc(copyParams),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// ToCommand builds the creation command from flat values, resolving the
// domain, pool, and zone names against the reference snapshot. A name missing
// from its collection yields a MappingError and no command.
func (m *Mapper) ToCommand(values map[string]any, snapshot map[string]refdata.Collection, variant string) (Creation, error) {
	domain, err := resolve(snapshot, refdata.CollectionDomains, stringAt(values, schema.FieldDomain))
	if err != nil {
		return Creation{}, err
	}
	pool, err := resolve(snapshot, refdata.CollectionPools, stringAt(values, schema.FieldPool))
	if err != nil {
		return Creation{}, err
	}
	zone, err := resolve(snapshot, refdata.CollectionZones, stringAt(values, schema.FieldZone))
	if err != nil {
		return Creation{}, err
	}

	params, _ := values[schema.PowerParamsNamespace].(map[string]any)

	return Creation{
		ID:              uuid.NewString(),
		Hostname:        stringAt(values, schema.FieldHostname),
		Architecture:    stringAt(values, schema.FieldArchitecture),
		Domain:          domain,
		Pool:            pool,
		Zone:            zone,
		MACAddresses:    macAddresses(values),
		PowerType:       variant,
		PowerParameters: m.formatter.Format(variant, params),
	}, nil
}

func resolve(snapshot map[string]refdata.Collection, collection, name string) (Ref, error) {
	for _, record := range snapshot[collection].Items {
		if record.Name == name {
			return Ref{Name: record.Name, Label: record.Label}, nil
		}
	}
	return Ref{}, &MappingError{Collection: collection, Name: name}
}

func macAddresses(values map[string]any) []string {
	var macs []string
	if primary := stringAt(values, schema.FieldPXEMAC); primary != "" {
		macs = append(macs, primary)
	}
	for _, mac := range extraMACs(values[schema.FieldExtraMACs]) {
		if trimmed := strings.TrimSpace(mac); trimmed != "" {
			macs = append(macs, trimmed)
		}
	}
	return macs
}

func extraMACs(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringAt(values map[string]any, field string) string {
	value, _ := values[field].(string)
	return strings.TrimSpace(value)
}

func copyParams(_ string, params map[string]any) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for key, value := range params {
		out[key] = value
	}
	return out
}
