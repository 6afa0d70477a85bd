package flowgraph

// END is the terminal node identifier.
// Use it as an edge target to stop the run after the source node.
const END = "__end__"

// NodeFunc is the signature for every stage in a graph.
// A node receives the execution context and its own copy of the state,
// and returns the state that the next node should see.
//
// State is passed by value, so a node owns its copy exclusively for the
// duration of the call. Types holding slices or maps should be treated as
// read-mostly and replaced rather than mutated in place.
//
// Example:
//
//	func preprocess(ctx flowgraph.Context, s Doc) (Doc, error) {
//	    s.Image = shrink(s.Image)
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc picks the next node for a conditional edge.
// It sees a snapshot of the state after the source node finished and must
// return a registered node ID or END. An empty string or an unknown ID is a
// RouterError at runtime.
//
// Example:
//
//	func route(ctx flowgraph.Context, s Doc) string {
//	    if s.Valid {
//	        return "store"
//	    }
//	    return "retry"
//	}
type RouterFunc[S any] func(ctx Context, state S) string

// Step describes a single node execution and is passed to an Observer.
type Step struct {
	// NodeID is the node that just ran.
	NodeID string
	// Next is the node chosen to run next, or END.
	// Empty when the node failed.
	Next string
	// Iteration is the 1-based position of this execution within the run.
	Iteration int
	// Err is the error returned by the node or its routing, if any.
	Err error
}

// Observer is notified after every node execution.
// Observers run synchronously on the executing goroutine.
type Observer[S any] func(step Step, state S)
