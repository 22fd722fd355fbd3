package catalog

import (
	"testing"

	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/schema"
)

func TestDefaultVocabulary(t *testing.T) {
	cat := Default()

	b, ok := cat.Lookup("Battery")
	if !ok {
		t.Fatal("Battery missing from default catalog")
	}
	if !b.Source || b.Reference {
		t.Fatalf("Battery flags wrong: %+v", b)
	}
	if b.LibraryPath == "" {
		t.Fatal("Battery has no library path")
	}

	ref, ok := cat.Lookup("ElectricalReference")
	if !ok || !ref.Reference {
		t.Fatalf("ElectricalReference must be a reference type: %+v", ref)
	}

	if _, ok := cat.Lookup("battery"); ok {
		t.Fatal("lookup must be case-sensitive")
	}
	if _, ok := cat.Lookup("FluxCapacitor"); ok {
		t.Fatal("unknown type must miss")
	}
}

func TestPortsForCatalogDefaults(t *testing.T) {
	cat := Default()

	roles, ok := cat.PortsFor(schema.Component{ID: "R1", Type: "Resistor"})
	if !ok {
		t.Fatal("Resistor ports should resolve")
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 resistor ports, got %d", len(roles))
	}

	// Diode uses named terminals, not Positive/Negative.
	roles, ok = cat.PortsFor(schema.Component{ID: "D1", Type: "Diode"})
	if !ok || roles[0].Suffix != "Anode" || roles[1].Suffix != "Cathode" {
		t.Fatalf("unexpected diode ports: %+v", roles)
	}
}

func TestPortsForExplicitDeclarationWins(t *testing.T) {
	cat := Default()

	comp := schema.Component{
		ID: "SW1", Type: "SPDTSwitch",
		Inputs:  []string{"Common"},
		Outputs: []string{"Throw1"},
	}
	roles, ok := cat.PortsFor(comp)
	if !ok || len(roles) != 2 {
		t.Fatalf("expected declared ports, got %+v ok=%v", roles, ok)
	}
	if roles[0].Suffix != "Common" || roles[0].Direction != schema.In {
		t.Fatalf("input role wrong: %+v", roles[0])
	}
	if roles[1].Suffix != "Throw1" || roles[1].Direction != schema.Out {
		t.Fatalf("output role wrong: %+v", roles[1])
	}
}

func TestPortsForUnknownTypeWithoutDeclaration(t *testing.T) {
	cat := Default()
	if _, ok := cat.PortsFor(schema.Component{ID: "X", Type: "FluxCapacitor"}); ok {
		t.Fatal("unknown type with no declared ports must not resolve")
	}

	roles, ok := cat.PortsFor(schema.Component{
		ID: "X", Type: "FluxCapacitor", Inputs: []string{"A", "B"},
	})
	if !ok || len(roles) != 2 {
		t.Fatalf("declared ports on unknown type must resolve: %+v", roles)
	}
}

func TestCheckPortMismatchWarns(t *testing.T) {
	cat := Default()

	diags := cat.Check(schema.Component{
		ID: "L1", Type: "Lamp",
		Inputs: []string{"Positive"},
	})
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Kind != diag.CatalogMismatch || d.Severity != diag.Warning {
		t.Fatalf("expected CatalogMismatch warning, got %+v", d)
	}
}

func TestCheckUnknownParameterWarns(t *testing.T) {
	cat := Default()

	diags := cat.Check(schema.Component{
		ID: "B1", Type: "Battery",
		Parameters: map[string]schema.Value{"Frequency": schema.Num(50)},
	})
	if len(diags) != 1 || diags[0].Kind != diag.CatalogMismatch {
		t.Fatalf("expected parameter mismatch warning, got %+v", diags)
	}
}

func TestCheckCleanComponent(t *testing.T) {
	cat := Default()

	diags := cat.Check(schema.Component{
		ID: "B1", Type: "Battery",
		Parameters: map[string]schema.Value{"Voltage": schema.Num(24)},
	})
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}

	// Unknown types are outside the vocabulary, never flagged here.
	if diags := cat.Check(schema.Component{ID: "X", Type: "FluxCapacitor"}); len(diags) != 0 {
		t.Fatalf("unknown type must pass: %+v", diags)
	}
}
