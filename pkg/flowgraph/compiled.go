package flowgraph

// CompiledGraph is an immutable, executable graph created by Graph.Compile.
//
// It is safe for concurrent Run calls. Introspection methods expose the
// structure for debugging, tests and topology export.
type CompiledGraph[S any] struct {
	name             string
	nodes            map[string]NodeFunc[S]
	order            []string
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	routeTargets     map[string]map[string]bool
	entryPoint       string

	successors   map[string][]string
	predecessors map[string][]string
}

// Name returns the graph name.
func (cg *CompiledGraph[S]) Name() string {
	return cg.name
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string {
	return cg.entryPoint
}

// NodeIDs returns all node identifiers in insertion order.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	return append([]string(nil), cg.order...)
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// Successors returns the statically known targets of a node: simple edge
// targets, or the declared targets of its conditional edge.
// Returns nil for END, unknown nodes and undeclared routers.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return cg.successors[id]
}

// Predecessors returns the node IDs with a known edge to the given node.
func (cg *CompiledGraph[S]) Predecessors(id string) []string {
	return cg.predecessors[id]
}

// IsConditional returns true if the node has a conditional edge.
func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	_, exists := cg.conditionalEdges[id]
	return exists
}

func (cg *CompiledGraph[S]) getNode(id string) (NodeFunc[S], bool) {
	fn, exists := cg.nodes[id]
	return fn, exists
}

func (cg *CompiledGraph[S]) getRouter(id string) (RouterFunc[S], bool) {
	router, exists := cg.conditionalEdges[id]
	return router, exists
}

func (cg *CompiledGraph[S]) getEdges(id string) []string {
	return cg.edges[id]
}

// allowsRoute reports whether a router from node may return target.
// Routers without declared targets may return any node.
func (cg *CompiledGraph[S]) allowsRoute(from, target string) bool {
	declared, ok := cg.routeTargets[from]
	if !ok {
		return true
	}
	return declared[target]
}
