package export

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/voltforge/voltforge/engine/normalize"
	"github.com/voltforge/voltforge/pkg/repo"
)

// GraphStore provides circuit graph operations on top of the generic Neo4j
// repository.
type GraphStore struct {
	driver neo4j.DriverWithContext
	nodes  *repo.Neo4jRepo[Node, string]
}

// New creates a new GraphStore.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return &GraphStore{
		driver: driver,
		nodes:  newNodeRepo(driver),
	}
}

// GetNode returns a component node by its flat path.
func (g *GraphStore) GetNode(ctx context.Context, id string) (Node, error) {
	return g.nodes.Get(ctx, id)
}

// SaveModel writes a canonical model in a single transaction: a MERGE per
// component node and a CONNECTS_TO relationship per deduplicated wire.
// Re-exporting the same model is idempotent.
func (g *GraphStore) SaveModel(ctx context.Context, m *normalize.Model) error {
	owner := make(map[string]string, len(m.Components))
	for _, c := range m.Components {
		for _, p := range c.Ports {
			owner[p.ID] = c.ID
		}
	}

	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, c := range m.Components {
			n := Node{ID: c.ID, Model: m.Name, Type: c.Type, Parameters: paramStrings(c)}
			cypher := `MERGE (n:Component {id: $id, model: $model}) SET n += $props`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":    n.ID,
				"model": n.Model,
				"props": nodeToMap(n),
			}); err != nil {
				return nil, err
			}
		}
		for _, w := range m.Connections {
			from, to := owner[w.From], owner[w.To]
			cypher := `MATCH (a:Component {id: $from, model: $model}),
			                 (b:Component {id: $to, model: $model})
			           MERGE (a)-[r:CONNECTS_TO {from_port: $fp, to_port: $tp}]->(b)
			           SET r.count = $count`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"from":  from,
				"to":    to,
				"model": m.Name,
				"fp":    w.From,
				"tp":    w.To,
				"count": w.Count,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// DeleteModel removes every node and relationship belonging to a model.
func (g *GraphStore) DeleteModel(ctx context.Context, name string) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (n:Component {model: $model}) DETACH DELETE n`
	_, err := sess.Run(ctx, cypher, map[string]any{"model": name})
	return err
}

// Neighbors returns components within the given traversal depth from a node.
func (g *GraphStore) Neighbors(ctx context.Context, nodeID string, depth int) ([]Node, error) {
	if depth <= 0 {
		depth = 1
	}
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(
		`MATCH (start:Component {id: $id})-[*1..%d]-(n:Component)
		 WHERE n.id <> $id
		 RETURN DISTINCT n`, depth)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": nodeID})
	if err != nil {
		return nil, err
	}
	return collectNodes(ctx, result)
}

// FindByType returns all components of a block type within one model.
func (g *GraphStore) FindByType(ctx context.Context, model, blockType string) ([]Node, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (n:Component {model: $model, type: $type}) RETURN n`
	result, err := sess.Run(ctx, cypher, map[string]any{"model": model, "type": blockType})
	if err != nil {
		return nil, err
	}
	return collectNodes(ctx, result)
}

// TracePath finds the shortest wire path between two components.
func (g *GraphStore) TracePath(ctx context.Context, fromID, toID string) ([]Node, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH p = shortestPath((a:Component {id: $from})-[:CONNECTS_TO*]-(b:Component {id: $to}))
				RETURN nodes(p) AS nodes`
	result, err := sess.Run(ctx, cypher, map[string]any{"from": fromID, "to": toID})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		return nil, fmt.Errorf("no path from %s to %s", fromID, toID)
	}

	nodesVal, ok := result.Record().Get("nodes")
	if !ok {
		return nil, fmt.Errorf("no nodes in path result")
	}
	nodeList, ok := nodesVal.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected nodes type")
	}

	var out []Node
	for _, raw := range nodeList {
		node, ok := raw.(dbtype.Node)
		if !ok {
			continue
		}
		out = append(out, nodeFromProps(node.Props))
	}
	return out, nil
}

func collectNodes(ctx context.Context, result neo4j.ResultWithContext) ([]Node, error) {
	var items []Node
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
		if err != nil {
			return nil, err
		}
		items = append(items, nodeFromProps(node.Props))
	}
	return items, nil
}

func paramStrings(c normalize.Component) map[string]string {
	out := make(map[string]string, len(c.Parameters))
	for k, v := range c.Parameters {
		out[k] = v.String()
	}
	return out
}
