package flowgraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for execution graphs.
// Create one with NewGraph, chain AddNode, AddEdge, AddConditionalEdge and
// SetEntry, then call Compile to obtain an immutable CompiledGraph.
//
// Build a graph from a single goroutine. The compiled result is safe to
// share between goroutines.
//
// Example:
//
//	graph := flowgraph.NewGraph[Doc]().
//	    AddNode("extract", extract).
//	    AddNode("check", check).
//	    AddEdge("extract", "check").
//	    AddEdge("check", flowgraph.END).
//	    SetEntry("extract")
//
//	compiled, err := graph.Compile()
type Graph[S any] struct {
	mu               sync.RWMutex
	name             string
	nodes            map[string]NodeFunc[S]
	order            []string
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	routeTargets     map[string][]string
	entryPoint       string
}

// NewGraph creates a new graph builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		name:             "flowgraph",
		nodes:            make(map[string]NodeFunc[S]),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]RouterFunc[S]),
		routeTargets:     make(map[string][]string),
	}
}

// Named sets the graph name used for tracing spans and exported topologies.
func (g *Graph[S]) Named(name string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name != "" {
		g.name = name
	}
	return g
}

// AddNode adds a named node to the graph.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "END" or "__end__" (case-insensitive)
//   - id contains whitespace
//   - fn is nil
//   - id already exists in the graph
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if id == "" {
		panic("flowgraph: node ID cannot be empty")
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == END {
		panic("flowgraph: node ID cannot be reserved word 'END'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("flowgraph: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("flowgraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("flowgraph: duplicate node ID: %s", id))
	}

	g.nodes[id] = fn
	g.order = append(g.order, id)
	return g
}

// AddEdge adds an unconditional edge from one node to another.
// The target can be a node ID or END. References are checked by Compile,
// so edges may be added before their nodes.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge routes out of from using router.
//
// targets optionally declares every ID the router may return. Declared
// targets are validated by Compile and drive reachability analysis and the
// exported topology; undeclared routers are treated as able to reach any
// node. A router result outside the declared set is a RouterError.
//
// A node with a conditional edge ignores its simple edges.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S], targets ...string) *Graph[S] {
	if router == nil {
		panic("flowgraph: router function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.conditionalEdges[from] = router
	if len(targets) > 0 {
		g.routeTargets[from] = append([]string(nil), targets...)
	}
	return g
}

// SetEntry designates the entry point node. Checked by Compile.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}
