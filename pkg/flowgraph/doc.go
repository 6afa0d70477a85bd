/*
Package flowgraph executes typed state graphs.

# Overview

A graph is a set of named nodes joined by edges. Each node is a function
from state to state; edges decide which node runs next. Execution is
sequential: one node holds the state at a time and hands it to the next.

  - Type-safe generics for state
  - Compile-time validation of the graph structure
  - Conditional edges with declared targets
  - Iteration limits that stop runaway cycles
  - Checkpointing and resume
  - slog logging and OpenTelemetry metrics and tracing

# Basic Usage

	type State struct {
	    Input  string
	    Output string
	}

	func process(ctx flowgraph.Context, s State) (State, error) {
	    s.Output = "processed: " + s.Input
	    return s, nil
	}

	compiled, err := flowgraph.NewGraph[State]().
	    AddNode("process", process).
	    AddEdge("process", flowgraph.END).
	    SetEntry("process").
	    Compile()
	if err != nil {
	    log.Fatal(err)
	}

	ctx := flowgraph.NewContext(context.Background())
	result, err := compiled.Run(ctx, State{Input: "hello"})

# Conditional Edges

A RouterFunc picks the next node from the state produced by its source
node. Declaring the possible targets lets Compile check them and lets
Topology draw them:

	graph.AddConditionalEdge("validate", route, "store", "retry")

Cycles are allowed. WithMaxIterations bounds the number of node executions
per run; exceeding it returns a MaxIterationsError carrying the last state.

# Checkpointing

	store := checkpoint.NewMemoryStore()
	result, err := compiled.Run(ctx, state,
	    flowgraph.WithCheckpointing(store),
	    flowgraph.WithRunID("run-123"))

	// later, after a crash
	result, err = compiled.Resume(ctx, store, "run-123")

State must be JSON-serialisable when checkpointing is enabled.

# Errors

Node failures are wrapped in NodeError, panics in PanicError, routing
problems in RouterError. Use errors.As to inspect them. Graph building
mistakes (empty or duplicate node IDs, nil functions) panic.
*/
package flowgraph
