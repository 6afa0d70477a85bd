package flowgraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the graph and creates an executable CompiledGraph.
// All validation failures are joined into the returned error.
//
// Checks, in order:
//  1. Entry point is set and references an existing node
//  2. Edge and conditional-edge sources reference existing nodes
//  3. Edge targets and declared route targets are nodes or END
//  4. Some path leads from the entry point to END
//
// Nodes unreachable from the entry point are logged as warnings only.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var errs []error

	if g.entryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, exists := g.nodes[g.entryPoint]; !exists {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	for from, targets := range g.edges {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		for _, to := range targets {
			if !g.isTarget(to) {
				errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
			}
		}
	}

	for from := range g.conditionalEdges {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: conditional edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		for _, to := range g.routeTargets[from] {
			if !g.isTarget(to) {
				errs = append(errs, fmt.Errorf("%w: route target '%s' from '%s' does not exist", ErrNodeNotFound, to, from))
			}
		}
	}

	if _, exists := g.nodes[g.entryPoint]; exists && !g.hasPathToEnd() {
		errs = append(errs, ErrNoPathToEnd)
	}

	g.warnUnreachableNodes()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildCompiledGraph(), nil
}

func (g *Graph[S]) isTarget(id string) bool {
	if id == END {
		return true
	}
	_, exists := g.nodes[id]
	return exists
}

// outgoing returns the statically known successors of a node.
// known is false for conditional edges without declared targets.
func (g *Graph[S]) outgoing(id string) (targets []string, known bool) {
	if _, conditional := g.conditionalEdges[id]; conditional {
		declared, ok := g.routeTargets[id]
		return declared, ok
	}
	return g.edges[id], true
}

// hasPathToEnd propagates "can reach END" backwards until it stops changing.
// An undeclared router is assumed to be able to return END.
func (g *Graph[S]) hasPathToEnd() bool {
	canReachEnd := map[string]bool{END: true}

	for changed := true; changed; {
		changed = false
		for id := range g.nodes {
			if canReachEnd[id] {
				continue
			}
			targets, known := g.outgoing(id)
			if !known {
				canReachEnd[id] = true
				changed = true
				continue
			}
			for _, to := range targets {
				if canReachEnd[to] {
					canReachEnd[id] = true
					changed = true
					break
				}
			}
		}
	}

	return canReachEnd[g.entryPoint]
}

func (g *Graph[S]) warnUnreachableNodes() {
	if g.entryPoint == "" {
		return
	}

	reachable := g.findReachableNodes()
	for _, id := range g.order {
		if !reachable[id] {
			slog.Warn("node is unreachable from entry", "graph", g.name, "node_id", id)
		}
	}
}

// findReachableNodes runs a BFS from the entry point. An undeclared router
// could return any node, so it marks every node reachable.
func (g *Graph[S]) findReachableNodes() map[string]bool {
	reachable := make(map[string]bool)
	if _, exists := g.nodes[g.entryPoint]; !exists {
		return reachable
	}

	queue := []string{g.entryPoint}
	reachable[g.entryPoint] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		targets, known := g.outgoing(current)
		if !known {
			targets = g.order
		}
		for _, next := range targets {
			if next != END && !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}

	return reachable
}

// buildCompiledGraph copies the builder state into an immutable CompiledGraph.
func (g *Graph[S]) buildCompiledGraph() *CompiledGraph[S] {
	nodes := make(map[string]NodeFunc[S], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}

	edges := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		edges[from] = append([]string(nil), targets...)
	}

	conditionalEdges := make(map[string]RouterFunc[S], len(g.conditionalEdges))
	for from, router := range g.conditionalEdges {
		conditionalEdges[from] = router
	}

	routeTargets := make(map[string]map[string]bool, len(g.routeTargets))
	for from, targets := range g.routeTargets {
		set := make(map[string]bool, len(targets))
		for _, to := range targets {
			set[to] = true
		}
		routeTargets[from] = set
	}

	successors := make(map[string][]string)
	predecessors := make(map[string][]string)
	for _, from := range g.order {
		targets, _ := g.outgoing(from)
		for _, to := range targets {
			successors[from] = append(successors[from], to)
			if to != END {
				predecessors[to] = append(predecessors[to], from)
			}
		}
	}

	return &CompiledGraph[S]{
		name:             g.name,
		nodes:            nodes,
		order:            append([]string(nil), g.order...),
		edges:            edges,
		conditionalEdges: conditionalEdges,
		routeTargets:     routeTargets,
		entryPoint:       g.entryPoint,
		successors:       successors,
		predecessors:     predecessors,
	}
}
