// Package export persists normalized circuit models to a Neo4j graph so
// downstream tooling can query topology with Cypher.
package export

// Node is a component node as stored in the graph. Parameters are stored
// flat with a "param_" prefix so they round-trip through node properties.
type Node struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters"`
}

// Wire is a CONNECTS_TO relationship between two component nodes. FromPort
// and ToPort carry the flat port identifiers; Count is the number of
// parallel wires the canonical model recorded for the pair.
type Wire struct {
	From     string `json:"from"`
	To       string `json:"to"`
	FromPort string `json:"from_port"`
	ToPort   string `json:"to_port"`
	Count    int    `json:"count"`
}
