package topology

import (
	"errors"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/schema"
)

// ComponentNode is a component placed in a scope, with its resolved ports.
type ComponentNode struct {
	Path  string
	Def   schema.Component
	Ports []Port
}

// Scope is one nesting level of the document: the root system or a
// subsystem. Children are fully built before their parent finishes, so the
// tree comes out bottom-up.
type Scope struct {
	Path       string // "" for the root scope
	ID         string
	Components []ComponentNode
	Children   []*Scope
	Boundary   []schema.BoundaryPort
	Conns      []Conn
}

// Build ingests a decoded document into a scope tree and port registry.
// Syntax-level defects (unparseable endpoint references, duplicate port
// registrations) are reported as diagnostics; semantic checks run later.
func Build(doc schema.Document, cat *catalog.Catalog) (*Scope, *Registry, diag.List) {
	reg := NewRegistry()
	var diags diag.List

	root := buildScope("", "", doc.Components, doc.Subsystems, doc.Connections, nil, cat, reg, &diags)
	return root, reg, diags
}

func buildScope(path, id string, comps []schema.Component, subs []schema.Subsystem,
	conns []schema.Connection, boundary []schema.BoundaryPort,
	cat *catalog.Catalog, reg *Registry, diags *diag.List) *Scope {

	s := &Scope{Path: path, ID: id, Boundary: boundary}

	// Children first: a subsystem's subgraph exists before the parent
	// scope references it.
	for _, sub := range subs {
		childPath := JoinPath(path, sub.ID)
		child := buildScope(childPath, sub.ID, sub.Components, sub.Subsystems,
			sub.Connections, sub.Boundary, cat, reg, diags)
		s.Children = append(s.Children, child)

		for _, bp := range sub.Boundary {
			err := reg.Register(Port{
				ID:        BoundaryID(childPath, bp.ID),
				Owner:     childPath,
				Suffix:    bp.ID,
				Direction: bp.Direction,
				Boundary:  true,
			})
			if err != nil {
				diags.Add(diag.DuplicatePort, []string{BoundaryID(childPath, bp.ID)},
					"boundary port %q declared twice on subsystem %q", bp.ID, childPath)
			}
		}
	}

	for _, def := range comps {
		compPath := JoinPath(path, def.ID)
		node := ComponentNode{Path: compPath, Def: def}

		roles, ok := cat.PortsFor(def)
		if ok {
			for _, role := range roles {
				p := Port{
					ID:        PortID(compPath, role.Suffix),
					Owner:     compPath,
					Suffix:    role.Suffix,
					Direction: role.Direction,
					Signal:    role.Signal,
				}
				if err := reg.Register(p); err != nil {
					if errors.Is(err, diag.ErrDuplicatePort) {
						diags.Add(diag.DuplicatePort, []string{p.ID},
							"port %q registered twice in scope %q", p.ID, scopeName(path))
					}
					continue
				}
				node.Ports = append(node.Ports, p)
			}
		}

		diags.Append(cat.Check(def))
		s.Components = append(s.Components, node)
	}

	for _, raw := range conns {
		from, errFrom := ParseEndpoint(raw.From)
		if errFrom != nil {
			diags.Add(diag.MalformedReference, []string{raw.From},
				"connection endpoint %q in scope %q is not <OwnerId>#<PortId> or a bare port", raw.From, scopeName(path))
		}
		to, errTo := ParseEndpoint(raw.To)
		if errTo != nil {
			diags.Add(diag.MalformedReference, []string{raw.To},
				"connection endpoint %q in scope %q is not <OwnerId>#<PortId> or a bare port", raw.To, scopeName(path))
		}
		if errFrom != nil || errTo != nil {
			continue
		}
		s.Conns = append(s.Conns, Conn{From: from, To: to})
	}

	return s
}

func scopeName(path string) string {
	if path == "" {
		return "top level"
	}
	return path
}
