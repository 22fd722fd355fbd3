// Package topology builds the in-memory port graph of a candidate document.
// Nodes are fully-qualified port identifiers, edges are connections; the
// graph is built bottom-up so every subsystem's subgraph exists before it is
// attached to its parent scope.
package topology

import (
	"fmt"

	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/schema"
)

// Port is a registered connection terminal. Leaf ports are keyed
// "<owner path>_<suffix>"; subsystem boundary ports are keyed
// "<subsystem path>#<boundary id>", a distinct namespace.
type Port struct {
	ID        string           `json:"id"`
	Owner     string           `json:"owner"`
	Suffix    string           `json:"suffix"`
	Direction schema.Direction `json:"direction"`
	Signal    bool             `json:"signal,omitempty"`
	Boundary  bool             `json:"boundary,omitempty"`
}

// Registry tracks every port identifier across all nesting levels. Lookup is
// case-sensitive and exact-match; ambiguity is rejected, never guessed.
type Registry struct {
	ports map[string]Port
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ports: make(map[string]Port)}
}

// Register records a port. Registering the same fully-qualified identifier
// twice fails with diag.ErrDuplicatePort.
func (r *Registry) Register(p Port) error {
	if _, exists := r.ports[p.ID]; exists {
		return fmt.Errorf("%w: %s", diag.ErrDuplicatePort, p.ID)
	}
	r.ports[p.ID] = p
	return nil
}

// Resolve returns the port registered under the exact identifier, or
// diag.ErrUnknownPort.
func (r *Registry) Resolve(id string) (Port, error) {
	p, ok := r.ports[id]
	if !ok {
		return Port{}, fmt.Errorf("%w: %s", diag.ErrUnknownPort, id)
	}
	return p, nil
}

// Has reports whether the identifier is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.ports[id]
	return ok
}

// IsBoundary reports whether the identifier names a registered boundary port.
func (r *Registry) IsBoundary(id string) bool {
	p, ok := r.ports[id]
	return ok && p.Boundary
}

// Len returns the number of registered ports.
func (r *Registry) Len() int { return len(r.ports) }
