package export

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/voltforge/voltforge/pkg/repo"
)

func newNodeRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[Node, string] {
	return repo.NewNeo4jRepo[Node, string](
		driver,
		"Component",
		nodeToMap,
		nodeFromRecord,
	)
}

func nodeToMap(n Node) map[string]any {
	m := map[string]any{
		"id":    n.ID,
		"model": n.Model,
		"type":  n.Type,
	}
	for k, v := range n.Parameters {
		m["param_"+k] = v
	}
	return m
}

func nodeFromRecord(rec *neo4j.Record) (Node, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return Node{}, err
	}
	return nodeFromProps(node.Props), nil
}

func nodeFromProps(props map[string]any) Node {
	n := Node{
		ID:         strProp(props, "id"),
		Model:      strProp(props, "model"),
		Type:       strProp(props, "type"),
		Parameters: make(map[string]string),
	}
	for k, v := range props {
		if len(k) > 6 && k[:6] == "param_" {
			if s, ok := v.(string); ok {
				n.Parameters[k[6:]] = s
			}
		}
	}
	return n
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
