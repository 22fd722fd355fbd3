// Package normalize renders a flattened graph as a canonical model: sorted
// components, deduplicated undirected connections with multiplicity counts,
// and solver parameters with defaults filled in. Canonical output is byte
// stable so two equivalent inputs serialize identically.
package normalize

import (
	"encoding/json"
	"sort"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/resolve"
	"github.com/voltforge/voltforge/engine/schema"
)

// Model is the canonical flat form of a circuit document.
type Model struct {
	Name        string                  `json:"name"`
	Components  []Component             `json:"components"`
	Connections []Connection            `json:"connections"`
	Parameters  map[string]schema.Value `json:"parameters"`
}

type Component struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Parameters map[string]schema.Value `json:"parameters,omitempty"`
	Ports      []Port                  `json:"ports"`
}

type Port struct {
	ID        string           `json:"id"`
	Direction schema.Direction `json:"direction"`
}

// Connection is an undirected wire between two ports, with From/To ordered
// lexicographically. Count carries the multiplicity of duplicate wires.
type Connection struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// Canonical builds the normalized model from a flat graph. Edges whose
// endpoints failed resolution are dropped; validation has already reported
// them. Normalizing an already canonical model is the identity.
func Canonical(name string, g *resolve.Graph, params map[string]schema.Value) *Model {
	m := &Model{
		Name:       name,
		Parameters: solverParams(params),
	}

	m.Components = make([]Component, 0, len(g.Components))
	for _, c := range g.Components {
		nc := Component{ID: c.Path, Type: c.Type, Parameters: c.Parameters}
		nc.Ports = make([]Port, 0, len(c.Ports))
		for _, p := range c.Ports {
			nc.Ports = append(nc.Ports, Port{ID: p.ID, Direction: p.Direction})
		}
		sort.Slice(nc.Ports, func(i, j int) bool { return nc.Ports[i].ID < nc.Ports[j].ID })
		m.Components = append(m.Components, nc)
	}
	sort.Slice(m.Components, func(i, j int) bool {
		a, b := m.Components[i], m.Components[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Type < b.Type
	})

	counts := make(map[Connection]int)
	for _, e := range g.Edges {
		if _, ok := g.Ports[e.From]; !ok {
			continue
		}
		if _, ok := g.Ports[e.To]; !ok {
			continue
		}
		from, to := e.From, e.To
		if to < from {
			from, to = to, from
		}
		counts[Connection{From: from, To: to}]++
	}
	m.Connections = make([]Connection, 0, len(counts))
	for conn, n := range counts {
		conn.Count = n
		m.Connections = append(m.Connections, conn)
	}
	sort.Slice(m.Connections, func(i, j int) bool {
		a, b := m.Connections[i], m.Connections[j]
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})

	return m
}

// solverParams copies the document parameters and fills in solver defaults.
func solverParams(in map[string]schema.Value) map[string]schema.Value {
	out := make(map[string]schema.Value, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	if _, ok := out[catalog.ParamSolver]; !ok {
		out[catalog.ParamSolver] = schema.Str(catalog.DefaultSolver)
	}
	if _, ok := out[catalog.ParamStopTime]; !ok {
		out[catalog.ParamStopTime] = schema.Num(catalog.DefaultStopTime)
	}
	return out
}

// MarshalCanonical serializes the model deterministically. encoding/json
// already sorts map keys, so sorted slices are enough for byte stability.
func (m *Model) MarshalCanonical() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
