// Package diag defines the diagnostic taxonomy shared by every validation
// stage. Stages aggregate diagnostics instead of failing fast so a caller
// sees every defect of a candidate model in one pass.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Severity of a diagnostic. Warnings never block canonical output.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// Kind identifies the failure class of a diagnostic.
type Kind string

const (
	DuplicatePort        Kind = "DuplicatePort"
	UnknownPort          Kind = "UnknownPort"
	MalformedReference   Kind = "MalformedReference"
	AmbiguousBoundary    Kind = "AmbiguousBoundaryPort"
	DanglingBoundary     Kind = "DanglingBoundaryPort"
	NoEnergySource       Kind = "NoEnergySource"
	IsolatedComponent    Kind = "IsolatedComponent"
	DisconnectedSubgraph Kind = "DisconnectedSubgraph"
	CatalogMismatch      Kind = "CatalogMismatch"
)

// Sentinel errors, one per failure kind, for errors.Is matching.
var (
	ErrDuplicatePort        = errors.New("duplicate port")
	ErrUnknownPort          = errors.New("unknown port")
	ErrMalformedReference   = errors.New("malformed endpoint reference")
	ErrAmbiguousBoundary    = errors.New("ambiguous boundary port")
	ErrDanglingBoundary     = errors.New("dangling boundary port")
	ErrNoEnergySource       = errors.New("no energy source")
	ErrIsolatedComponent    = errors.New("isolated component")
	ErrDisconnectedSubgraph = errors.New("disconnected subgraph")
	ErrCatalogMismatch      = errors.New("catalog mismatch")
)

var sentinels = map[Kind]error{
	DuplicatePort:        ErrDuplicatePort,
	UnknownPort:          ErrUnknownPort,
	MalformedReference:   ErrMalformedReference,
	AmbiguousBoundary:    ErrAmbiguousBoundary,
	DanglingBoundary:     ErrDanglingBoundary,
	NoEnergySource:       ErrNoEnergySource,
	IsolatedComponent:    ErrIsolatedComponent,
	DisconnectedSubgraph: ErrDisconnectedSubgraph,
	CatalogMismatch:      ErrCatalogMismatch,
}

// severities maps each kind to its fixed severity. Only IsolatedComponent and
// CatalogMismatch are advisory; everything else blocks canonical output.
var severities = map[Kind]Severity{
	DuplicatePort:        Error,
	UnknownPort:          Error,
	MalformedReference:   Error,
	AmbiguousBoundary:    Error,
	DanglingBoundary:     Error,
	NoEnergySource:       Error,
	IsolatedComponent:    Warning,
	DisconnectedSubgraph: Error,
	CatalogMismatch:      Warning,
}

// Diagnostic is one structural defect (or advisory finding) of a candidate
// model, carrying the identifiers it concerns.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Subjects []string `json:"offending_identifiers,omitempty"`
}

// New creates a diagnostic of the given kind with a formatted message.
func New(kind Kind, subjects []string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: severities[kind],
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Subjects: subjects,
	}
}

// Error renders the diagnostic as an error string.
func (d Diagnostic) Error() string {
	if len(d.Subjects) == 0 {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", d.Severity, d.Kind, d.Message, strings.Join(d.Subjects, ", "))
}

// Unwrap exposes the kind's sentinel for errors.Is.
func (d Diagnostic) Unwrap() error { return sentinels[d.Kind] }

// List aggregates diagnostics across stages.
type List []Diagnostic

// Add appends a diagnostic built from kind, subjects and message.
func (l *List) Add(kind Kind, subjects []string, format string, args ...any) {
	*l = append(*l, New(kind, subjects, format, args...))
}

// Append merges another list.
func (l *List) Append(other List) { *l = append(*l, other...) }

// HasErrors reports whether any diagnostic is error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only error-severity diagnostics.
func (l List) Errors() List { return l.filter(Error) }

// Warnings returns only warning-severity diagnostics.
func (l List) Warnings() List { return l.filter(Warning) }

func (l List) filter(sev Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// ByKind returns diagnostics of the given kind.
func (l List) ByKind(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
