// Package catalog maps component type names to their block schemas: required
// port roles, accepted parameter keys with defaults, and the simulation
// library path each type renders to. The catalog is advisory: unknown types
// pass through so experimental vocabularies keep working, but known types
// with mismatched port sets are flagged as warnings.
package catalog

import (
	"sort"
	"strings"

	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/schema"
)

// PortRole is one required port of a block type. Signal marks control and
// measurement ports that carry no electrical current.
type PortRole struct {
	Suffix    string
	Direction schema.Direction
	Signal    bool
}

// BlockSchema describes one known component type.
type BlockSchema struct {
	Type        string
	LibraryPath string
	Ports       []PortRole
	Defaults    map[string]schema.Value
	// Reference marks electrical ground/reference types used as the anchor
	// for the global connectivity check.
	Reference bool
	// Source marks energy-source types.
	Source bool
}

// Catalog holds the known block vocabulary.
type Catalog struct {
	byType map[string]BlockSchema
}

// New builds a catalog from the given schemas.
func New(blocks []BlockSchema) *Catalog {
	c := &Catalog{byType: make(map[string]BlockSchema, len(blocks))}
	for _, b := range blocks {
		c.byType[b.Type] = b
	}
	return c
}

// Lookup returns the schema for a type name. Lookup is exact-match and
// case-sensitive; a miss means the type is outside the known vocabulary,
// which is not itself an error.
func (c *Catalog) Lookup(typeName string) (BlockSchema, bool) {
	b, ok := c.byType[typeName]
	return b, ok
}

// PortsFor resolves the effective port roles of a component: the explicitly
// declared input/output lists when present, otherwise the catalog type's
// default port set. The second return is false when the component declares
// no ports and its type is unknown.
func (c *Catalog) PortsFor(comp schema.Component) ([]PortRole, bool) {
	if len(comp.Inputs) > 0 || len(comp.Outputs) > 0 {
		roles := make([]PortRole, 0, len(comp.Inputs)+len(comp.Outputs))
		for _, s := range comp.Inputs {
			roles = append(roles, PortRole{Suffix: s, Direction: schema.In, Signal: signalSuffix(s)})
		}
		for _, s := range comp.Outputs {
			roles = append(roles, PortRole{Suffix: s, Direction: schema.Out, Signal: signalSuffix(s)})
		}
		return roles, true
	}
	b, ok := c.byType[comp.Type]
	if !ok {
		return nil, false
	}
	return b.Ports, true
}

// IsReference reports whether the type is a designated ground/reference node.
func (c *Catalog) IsReference(typeName string) bool {
	b, ok := c.byType[typeName]
	return ok && b.Reference
}

// IsSource reports whether the type is an energy source.
func (c *Catalog) IsSource(typeName string) bool {
	b, ok := c.byType[typeName]
	return ok && b.Source
}

// Types returns all known type names, sorted.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.byType))
	for t := range c.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Check compares a component's declared ports and parameters against its
// type's schema. Findings are advisory: generator output may legitimately
// introduce variants, so every mismatch is a warning, never an error.
func (c *Catalog) Check(comp schema.Component) diag.List {
	b, ok := c.byType[comp.Type]
	if !ok {
		return nil
	}

	var diags diag.List

	if len(comp.Inputs) > 0 || len(comp.Outputs) > 0 {
		declared := append(append([]string{}, comp.Inputs...), comp.Outputs...)
		expected := make([]string, len(b.Ports))
		for i, p := range b.Ports {
			expected[i] = p.Suffix
		}
		if !sameStringSet(declared, expected) {
			diags.Add(diag.CatalogMismatch, []string{comp.ID},
				"component %q declares ports [%s], type %s expects [%s]",
				comp.ID, strings.Join(declared, " "), comp.Type, strings.Join(expected, " "))
		}
	}

	for key := range comp.Parameters {
		if _, known := b.Defaults[key]; !known {
			diags.Add(diag.CatalogMismatch, []string{comp.ID},
				"component %q sets parameter %q not in the %s schema", comp.ID, key, comp.Type)
		}
	}

	return diags
}

// signalSuffix classifies explicitly declared port names. Names beginning
// with "Signal" follow the signal-port convention of the stock vocabulary.
func signalSuffix(s string) bool { return strings.HasPrefix(s, "Signal") }

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
