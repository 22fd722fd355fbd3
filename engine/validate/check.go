// Package validate runs the structural checks over a flattened model. All
// checks run to completion before reporting so one pass surfaces every
// defect; nothing is ever repaired silently.
package validate

import (
	"sort"

	"github.com/voltforge/voltforge/engine/catalog"
	"github.com/voltforge/voltforge/engine/diag"
	"github.com/voltforge/voltforge/engine/resolve"
	"github.com/voltforge/voltforge/engine/schema"
)

// Check validates the flat graph against the catalog: endpoint existence,
// energy-source polarity, unreferenced components, and global connectivity
// to a reference node.
func Check(g *resolve.Graph, cat *catalog.Catalog) diag.List {
	var diags diag.List

	degree := make(map[string]int, len(g.Ports))

	diags.Append(checkExistence(g, degree))
	diags.Append(checkEnergySource(g, degree))
	diags.Append(checkIsolated(g, degree))
	diags.Append(checkConnectivity(g, cat, degree))

	return diags
}

// checkExistence verifies every connection endpoint resolves to a registered
// leaf port, and records port degrees for the later checks. Endpoints whose
// boundary resolution already failed are skipped rather than reported twice.
func checkExistence(g *resolve.Graph, degree map[string]int) diag.List {
	var diags diag.List
	reported := make(map[string]bool)

	endpoint := func(key, raw string) {
		if _, ok := g.Ports[key]; ok {
			degree[key]++
			return
		}
		if g.Suppressed[key] || reported[key] {
			return
		}
		reported[key] = true
		diags.Add(diag.UnknownPort, []string{raw},
			"connection endpoint %q does not resolve to any port", raw)
	}

	for _, e := range g.Edges {
		endpoint(e.From, e.FromRaw)
		endpoint(e.To, e.ToRaw)
	}
	return diags
}

// checkEnergySource is a polarity heuristic, not a circuit-law solve: every
// electrical island that carries at least one wire must contain at least one
// output-role terminal, otherwise no energy can enter it. Signal ports carry
// no current and take no part in island accounting.
func checkEnergySource(g *resolve.Graph, degree map[string]int) diag.List {
	uf := newUnionFind()

	// Wires merge ports; a component's own electrical terminals conduct
	// through the device, so they merge too.
	for _, e := range g.Edges {
		from, fromOK := g.Ports[e.From]
		to, toOK := g.Ports[e.To]
		if fromOK && toOK && !from.Signal && !to.Signal {
			uf.union(e.From, e.To)
		}
	}
	for _, c := range g.Components {
		first := ""
		for _, p := range c.Ports {
			if p.Signal {
				continue
			}
			if first == "" {
				first = p.ID
				continue
			}
			uf.union(first, p.ID)
		}
	}

	type island struct {
		wired      bool
		hasOutput  bool
		components map[string]bool
	}
	islands := make(map[string]*island)
	for _, c := range g.Components {
		for _, p := range c.Ports {
			if p.Signal {
				continue
			}
			root := uf.find(p.ID)
			is := islands[root]
			if is == nil {
				is = &island{components: make(map[string]bool)}
				islands[root] = is
			}
			is.components[c.Path] = true
			if degree[p.ID] > 0 {
				is.wired = true
			}
			if p.Direction == schema.Out {
				is.hasOutput = true
			}
		}
	}

	var roots []string
	for root, is := range islands {
		if is.wired && !is.hasOutput {
			roots = append(roots, root)
		}
	}
	sort.Strings(roots)

	var diags diag.List
	for _, root := range roots {
		subjects := sortedKeys(islands[root].components)
		diags.Add(diag.NoEnergySource, subjects,
			"circuit island has only input-role terminals; no energy source reaches it")
	}
	return diags
}

// checkIsolated flags components with zero connections on any port. This is
// advisory: generators sometimes stage scaffolding before wiring it.
func checkIsolated(g *resolve.Graph, degree map[string]int) diag.List {
	var diags diag.List
	for _, c := range g.Components {
		attached := false
		for _, p := range c.Ports {
			if degree[p.ID] > 0 {
				attached = true
				break
			}
		}
		if !attached {
			diags.Add(diag.IsolatedComponent, []string{c.Path},
				"component %q has no connections attached to any of its ports", c.Path)
		}
	}
	return diags
}

// checkConnectivity treats the flat graph as undirected and requires every
// wired component to close back to a reference node: it must share a
// connected component with an anchor, and every non-signal terminal must be
// wired (an open terminal means no current path back to the reference).
// Anchors are reference-type components when the model has any, otherwise
// energy sources. Isolated components are excluded; they were already
// flagged as warnings.
func checkConnectivity(g *resolve.Graph, cat *catalog.Catalog, degree map[string]int) diag.List {
	anchors := make(map[string]bool)
	for _, c := range g.Components {
		if cat.IsReference(c.Type) {
			anchors[c.Path] = true
		}
	}
	if len(anchors) == 0 {
		for _, c := range g.Components {
			if cat.IsSource(c.Type) {
				anchors[c.Path] = true
			}
		}
	}
	if len(anchors) == 0 {
		// No reference and no source: the energy-source check already
		// reports the defect; there is no anchor to measure against.
		return nil
	}

	owner := make(map[string]string, len(g.Ports))
	for _, c := range g.Components {
		for _, p := range c.Ports {
			owner[p.ID] = c.Path
		}
	}

	uf := newUnionFind()
	for _, e := range g.Edges {
		fo, fromOK := owner[e.From]
		to, toOK := owner[e.To]
		if fromOK && toOK {
			uf.union(fo, to)
		}
	}

	anchorRoots := make(map[string]bool)
	for a := range anchors {
		anchorRoots[uf.find(a)] = true
	}

	var diags diag.List
	for _, c := range g.Components {
		if anchors[c.Path] {
			continue
		}
		wired := false
		var open []string
		for _, p := range c.Ports {
			if degree[p.ID] > 0 {
				wired = true
			} else if !p.Signal {
				open = append(open, p.ID)
			}
		}
		if !wired {
			continue // isolated, already warned
		}
		if !anchorRoots[uf.find(c.Path)] {
			diags.Add(diag.DisconnectedSubgraph, []string{c.Path},
				"component %q is unreachable from the reference node", c.Path)
			continue
		}
		if len(open) > 0 {
			diags.Add(diag.DisconnectedSubgraph, append([]string{c.Path}, open...),
				"component %q has open terminals and cannot close a circuit to the reference node", c.Path)
		}
	}
	return diags
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
