package topology

import (
	"fmt"
	"strings"

	"github.com/voltforge/voltforge/engine/diag"
)

// Endpoint is one parsed side of a connection. Owner is empty for a bare
// reference, which names either a boundary port of the scope the connection
// is written in or a local port identifier of that scope.
type Endpoint struct {
	Owner string
	Port  string
	Raw   string
}

// Conn is a connection with both endpoints parsed.
type Conn struct {
	From Endpoint
	To   Endpoint
}

// ParseEndpoint parses an endpoint reference. The accepted forms are
// "<OwnerId>#<PortId>" and a bare "<PortId>"; anything else fails with
// diag.ErrMalformedReference.
func ParseEndpoint(raw string) (Endpoint, error) {
	if raw == "" {
		return Endpoint{}, fmt.Errorf("%w: empty endpoint", diag.ErrMalformedReference)
	}
	parts := strings.Split(raw, "#")
	switch len(parts) {
	case 1:
		return Endpoint{Port: raw, Raw: raw}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Endpoint{}, fmt.Errorf("%w: %q", diag.ErrMalformedReference, raw)
		}
		return Endpoint{Owner: parts[0], Port: parts[1], Raw: raw}, nil
	default:
		return Endpoint{}, fmt.Errorf("%w: %q has %d '#' separators", diag.ErrMalformedReference, raw, len(parts)-1)
	}
}

// JoinPath appends a scope-local identifier to an absolute scope path.
func JoinPath(scopePath, id string) string {
	if scopePath == "" {
		return id
	}
	return scopePath + "/" + id
}

// PortID builds the fully-qualified identifier of a leaf component port.
func PortID(ownerPath, suffix string) string {
	return ownerPath + "_" + suffix
}

// BoundaryID builds the fully-qualified identifier of a subsystem boundary
// port. The '#' keeps it in a namespace no leaf port identifier can collide
// with.
func BoundaryID(subsystemPath, portID string) string {
	return subsystemPath + "#" + portID
}
