// Package schema defines the candidate circuit document as it arrives from
// the generator. It acts as the decode gate at pipeline entry points: the
// document is syntactically checked here, semantically checked downstream.
package schema

// Direction is the polarity role of a port terminal. It describes which side
// of the circuit the terminal sits on, not data flow.
type Direction string

const (
	In  Direction = "input"
	Out Direction = "output"
)

// Document is the top-level candidate model as authored by the generator.
type Document struct {
	Name        string           `json:"name"`
	Components  []Component      `json:"components"`
	Subsystems  []Subsystem      `json:"subsystems,omitempty"`
	Connections []Connection     `json:"connections,omitempty"`
	Parameters  map[string]Value `json:"parameters,omitempty"`
}

// Component is a single block instance. Inputs and Outputs list the port role
// suffixes the component declares; the full port identifier is
// "<ComponentID>_<Suffix>". When both lists are empty the port set of the
// component's catalog type applies.
type Component struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Parameters map[string]Value `json:"parameters,omitempty"`
	Inputs     []string         `json:"inputs,omitempty"`
	Outputs    []string         `json:"outputs,omitempty"`
}

// BoundaryPort is a port declared by a subsystem itself. Its identifier lives
// in the subsystem's own namespace, distinct from inner component ports, and
// must alias exactly one internal leaf port.
type BoundaryPort struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
}

// Subsystem is a nested container of components, further subsystems, internal
// connections and the boundary ports it exposes to its parent scope.
type Subsystem struct {
	ID          string         `json:"id"`
	Components  []Component    `json:"components,omitempty"`
	Subsystems  []Subsystem    `json:"subsystems,omitempty"`
	Connections []Connection   `json:"connections,omitempty"`
	Boundary    []BoundaryPort `json:"boundary_ports,omitempty"`
}

// Connection is an unordered pair of port references. Endpoints use
// "<OwnerId>#<PortId>" for cross-scope references or a bare identifier for a
// boundary port of the owning scope.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}
