package flowgraph

import (
	"errors"
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Topology returns the static structure of the compiled graph as a directed
// graph keyed by node ID. END is included as a vertex when any edge reaches it.
// Edges out of conditional nodes carry the attribute style=dashed.
func (cg *CompiledGraph[S]) Topology() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, id := range cg.order {
		attrs := []func(*graph.VertexProperties){graph.VertexAttribute("shape", "box")}
		if id == cg.entryPoint {
			attrs = append(attrs, graph.VertexAttribute("style", "bold"))
		}
		if err := g.AddVertex(id, attrs...); err != nil {
			return nil, fmt.Errorf("add vertex %s: %w", id, err)
		}
	}

	endAdded := false
	for _, from := range cg.order {
		for _, to := range cg.Successors(from) {
			if to == END && !endAdded {
				if err := g.AddVertex(END, graph.VertexAttribute("shape", "doublecircle")); err != nil {
					return nil, fmt.Errorf("add vertex %s: %w", END, err)
				}
				endAdded = true
			}

			var opts []func(*graph.EdgeProperties)
			if cg.IsConditional(from) {
				opts = append(opts, graph.EdgeAttribute("style", "dashed"))
			}
			err := g.AddEdge(from, to, opts...)
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("add edge %s -> %s: %w", from, to, err)
			}
		}
	}

	return g, nil
}

// DOT writes the graph topology in Graphviz DOT format.
func (cg *CompiledGraph[S]) DOT(w io.Writer) error {
	g, err := cg.Topology()
	if err != nil {
		return err
	}
	return draw.DOT(g, w)
}
