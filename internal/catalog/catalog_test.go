package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enlist/internal/catalog"
	"github.com/goliatone/go-enlist/pkg/power"
)

func TestEmbeddedCatalog(t *testing.T) {
	cat, err := catalog.Embedded()
	if err != nil {
		t.Fatalf("embedded catalog: %v", err)
	}

	types := cat.Types()
	want := []string{"manual", "ipmi", "redfish", "amt", "apc", "wedge"}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("type order mismatch (-want +got):\n%s", diff)
	}

	fields, ok := cat.ParametersSchemaFor(power.TypeManual)
	if !ok {
		t.Fatalf("manual type missing from catalog")
	}
	if len(fields) != 0 {
		t.Fatalf("manual declares %d fields, want 0", len(fields))
	}

	fields, ok = cat.ParametersSchemaFor(power.TypeIPMI)
	if !ok {
		t.Fatalf("ipmi type missing from catalog")
	}
	driver := fields[0]
	if driver.Name != "power_driver" || driver.Kind != power.KindChoice {
		t.Fatalf("first ipmi field = %+v", driver)
	}
	if driver.Default != "LAN_2_0" {
		t.Fatalf("power_driver default = %v", driver.Default)
	}
	if diff := cmp.Diff([]string{"LAN", "LAN_2_0"}, driver.Choices); diff != "" {
		t.Fatalf("power_driver choices mismatch (-want +got):\n%s", diff)
	}
}

func TestParametersSchemaForReturnsCopy(t *testing.T) {
	cat, err := catalog.Embedded()
	if err != nil {
		t.Fatalf("embedded catalog: %v", err)
	}

	fields, _ := cat.ParametersSchemaFor(power.TypeIPMI)
	fields[0].Name = "mutated"

	again, _ := cat.ParametersSchemaFor(power.TypeIPMI)
	if again[0].Name != "power_driver" {
		t.Fatalf("catalog state leaked through returned slice")
	}
}

func TestParseYAMLRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", "power_types: []"},
		{"missing name", "power_types:\n  - description: nameless\n"},
		{"duplicate name", "power_types:\n  - name: ipmi\n  - name: ipmi\n"},
		{"not yaml", "{{:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := catalog.ParseYAML([]byte(tc.doc)); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

const openapiDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "inventory", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "IPMIPowerParameters": {
        "type": "object",
        "x-power-type": "ipmi",
        "required": ["power_address"],
        "properties": {
          "power_address": {"type": "string", "title": "IP address"},
          "power_pass": {"type": "string", "format": "password", "title": "Power password"},
          "power_driver": {
            "type": "string",
            "title": "Power driver",
            "enum": ["LAN", "LAN_2_0"],
            "default": "LAN_2_0"
          },
          "mac_address": {"type": "string", "format": "mac_address", "title": "Power MAC"}
        }
      },
      "ManualPowerParameters": {
        "type": "object",
        "x-power-type": "manual"
      },
      "MachineSummary": {
        "type": "object",
        "properties": {"system_id": {"type": "string"}}
      }
    }
  }
}`

func TestFromOpenAPI(t *testing.T) {
	cat, err := catalog.FromOpenAPI(context.Background(), []byte(openapiDoc))
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	// Component names are visited in sorted order, so ipmi precedes manual.
	if diff := cmp.Diff([]string{"ipmi", "manual"}, cat.Types()); diff != "" {
		t.Fatalf("type order mismatch (-want +got):\n%s", diff)
	}

	fields, ok := cat.ParametersSchemaFor("ipmi")
	if !ok {
		t.Fatalf("ipmi type missing from catalog")
	}
	want := []power.FieldSpec{
		{Name: "mac_address", Label: "Power MAC", Kind: power.KindMAC},
		{Name: "power_address", Label: "IP address", Kind: power.KindString, Required: true},
		{Name: "power_driver", Label: "Power driver", Kind: power.KindChoice, Default: "LAN_2_0", Choices: []string{"LAN", "LAN_2_0"}},
		{Name: "power_pass", Label: "Power password", Kind: power.KindPassword},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("ipmi fields mismatch (-want +got):\n%s", diff)
	}

	fields, ok = cat.ParametersSchemaFor("manual")
	if !ok {
		t.Fatalf("manual type missing from catalog")
	}
	if len(fields) != 0 {
		t.Fatalf("manual declares %d fields, want 0", len(fields))
	}

	if _, ok := cat.ParametersSchemaFor("MachineSummary"); ok {
		t.Fatalf("untagged component leaked into the catalog")
	}
}

func TestFromOpenAPIRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty payload", "", "payload is empty"},
		{
			"no components",
			`{"openapi": "3.0.0", "info": {"title": "t", "version": "1"}, "paths": {}}`,
			"no component schemas",
		},
		{
			"no tagged schemas",
			`{"openapi": "3.0.0", "info": {"title": "t", "version": "1"}, "paths": {},
			  "components": {"schemas": {"Thing": {"type": "object"}}}}`,
			"no power types",
		},
		{
			"duplicate type",
			`{"openapi": "3.0.0", "info": {"title": "t", "version": "1"}, "paths": {},
			  "components": {"schemas": {
			    "A": {"type": "object", "x-power-type": "ipmi"},
			    "B": {"type": "object", "x-power-type": "ipmi"}}}}`,
			"duplicate power type",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.FromOpenAPI(context.Background(), []byte(tc.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
