// Package resolve eliminates subsystem boundary indirection. Subsystems are
// processed innermost-first; each boundary port is traced to the unique
// internal leaf port it aliases, parent-scope endpoints written as
// "<SubsystemId>#<BoundaryPortId>" are rewritten to that leaf port, and the
// boundary abstraction is discarded. The result is a single flat graph
// spanning the whole model, so the validator only ever reasons about leaf
// component ports.
package resolve

import (
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/schema"
	"github.com/voltforge/voltforge/engine/topology"
)

// Component is a leaf component in the flattened model, addressed by its
// absolute path.
type Component struct {
	Path       string
	Type       string
	Parameters map[string]schema.Value
	Ports      []topology.Port
}

// Edge is a flattened connection. From/To hold resolved port identifiers, or
// the unresolvable spelling verbatim so the validator can report it; FromRaw
// and ToRaw keep the original endpoint text for diagnostics.
type Edge struct {
	From    string
	To      string
	FromRaw string
	ToRaw   string
}

// Graph is the flat model: leaf ports, leaf components, and edges with all
// boundary indirection removed.
type Graph struct {
	Ports      map[string]topology.Port
	Components []Component
	Edges      []Edge
	// Suppressed holds endpoint keys whose boundary resolution already
	// failed; the validator skips existence reporting for these to avoid
	// doubling up on one defect.
	Suppressed map[string]bool
}

// Flatten resolves the scope tree into a flat graph. The input tree is not
// mutated; each run produces an independently owned graph.
func Flatten(root *topology.Scope, reg *topology.Registry) (*Graph, diag.List) {
	g := &Graph{
		Ports:      make(map[string]topology.Port),
		Suppressed: make(map[string]bool),
	}
	var diags diag.List

	edges, comps, _ := flattenScope(root, reg, g, &diags)
	g.Edges = edges
	g.Components = comps

	for _, c := range comps {
		for _, p := range c.Ports {
			g.Ports[p.ID] = p
		}
	}
	return g, diags
}

// flattenScope processes children depth-first, rewrites this scope's
// connections against the children's boundary maps, then computes this
// scope's own boundary map and strips the consumed boundary-link edges.
func flattenScope(s *topology.Scope, reg *topology.Registry, g *Graph, diags *diag.List) (edges []Edge, comps []Component, boundary map[string]string) {
	childMaps := make(map[string]map[string]string, len(s.Children))
	for _, child := range s.Children {
		ce, cc, cb := flattenScope(child, reg, g, diags)
		edges = append(edges, ce...)
		comps = append(comps, cc...)
		childMaps[child.Path] = cb
	}

	for _, cn := range s.Components {
		comps = append(comps, Component{
			Path:       cn.Path,
			Type:       cn.Def.Type,
			Parameters: cn.Def.Parameters,
			Ports:      cn.Ports,
		})
	}

	local := make([]Edge, 0, len(s.Conns))
	for _, cn := range s.Conns {
		local = append(local, Edge{
			From:    resolveEndpoint(s, cn.From, childMaps, reg, g),
			To:      resolveEndpoint(s, cn.To, childMaps, reg, g),
			FromRaw: cn.From.Raw,
			ToRaw:   cn.To.Raw,
		})
	}

	boundary = make(map[string]string, len(s.Boundary))
	for _, bp := range s.Boundary {
		key := topology.BoundaryID(s.Path, bp.ID)

		var internal []string
		seen := make(map[string]bool)
		kept := make([]Edge, 0, len(local))
		for _, e := range local {
			switch key {
			case e.From:
				if !seen[e.To] {
					seen[e.To] = true
					internal = append(internal, e.To)
				}
			case e.To:
				if !seen[e.From] {
					seen[e.From] = true
					internal = append(internal, e.From)
				}
			default:
				kept = append(kept, e)
			}
		}
		local = kept

		switch len(internal) {
		case 1:
			boundary[key] = internal[0]
		case 0:
			diags.Add(diag.DanglingBoundary, []string{bp.ID, s.Path},
				"boundary port %q of subsystem %q maps to no internal port", bp.ID, s.Path)
			g.Suppressed[key] = true
		default:
			diags.Add(diag.AmbiguousBoundary, []string{bp.ID, s.Path},
				"boundary port %q of subsystem %q maps to %d internal ports", bp.ID, s.Path, len(internal))
			g.Suppressed[key] = true
		}
	}

	edges = append(edges, local...)
	return edges, comps, boundary
}

// resolveEndpoint turns a parsed endpoint into a flat-graph port key. Keys
// that cannot be resolved keep a deterministic spelling so the validator can
// name the defect.
func resolveEndpoint(s *topology.Scope, e topology.Endpoint, childMaps map[string]map[string]string, reg *topology.Registry, g *Graph) string {
	if e.Owner == "" {
		// Bare reference: this scope's own boundary port, else a local
		// port identifier.
		key := topology.BoundaryID(s.Path, e.Port)
		if reg.IsBoundary(key) {
			return key
		}
		return topology.JoinPath(s.Path, e.Port)
	}

	ownerPath := topology.JoinPath(s.Path, e.Owner)
	if cm, ok := childMaps[ownerPath]; ok {
		key := topology.BoundaryID(ownerPath, e.Port)
		if leaf, mapped := cm[key]; mapped {
			return leaf
		}
		// Declared-but-failed boundaries are suppressed; undeclared ones
		// surface as UnknownPort downstream.
		return key
	}
	return topology.PortID(ownerPath, e.Port)
}
