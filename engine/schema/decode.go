package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors for document decoding.
var (
	ErrEmptyDocument = errors.New("empty document")
	ErrMissingID     = errors.New("missing identifier")
	ErrEmptyEndpoint = errors.New("empty connection endpoint")
)

// Decode reads and syntactically checks a candidate document. Semantic checks
// (port existence, boundary resolution, connectivity) happen downstream; this
// only rejects documents that cannot be interpreted at all.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("schema: decode: %w", err)
	}
	if err := checkDocument(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("schema: decode: %w", err)
	}
	if err := checkDocument(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func checkDocument(doc Document) error {
	if len(doc.Components) == 0 && len(doc.Subsystems) == 0 {
		return fmt.Errorf("schema: %w: no components or subsystems", ErrEmptyDocument)
	}
	if err := checkScope(doc.Components, doc.Subsystems, doc.Connections); err != nil {
		return err
	}
	return nil
}

func checkScope(comps []Component, subs []Subsystem, conns []Connection) error {
	for _, c := range comps {
		if c.ID == "" {
			return fmt.Errorf("schema: component: %w", ErrMissingID)
		}
		if c.Type == "" {
			return fmt.Errorf("schema: component %q: %w: type", c.ID, ErrMissingID)
		}
	}
	for _, s := range subs {
		if s.ID == "" {
			return fmt.Errorf("schema: subsystem: %w", ErrMissingID)
		}
		for _, bp := range s.Boundary {
			if bp.ID == "" {
				return fmt.Errorf("schema: subsystem %q boundary port: %w", s.ID, ErrMissingID)
			}
		}
		if err := checkScope(s.Components, s.Subsystems, s.Connections); err != nil {
			return err
		}
	}
	for _, conn := range conns {
		if conn.From == "" || conn.To == "" {
			return fmt.Errorf("schema: connection %q -> %q: %w", conn.From, conn.To, ErrEmptyEndpoint)
		}
	}
	return nil
}
