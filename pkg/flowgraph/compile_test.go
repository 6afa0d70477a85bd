package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Valid(t *testing.T) {
	compiled, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a").
		Compile()

	require.NoError(t, err)
	assert.Equal(t, "a", compiled.EntryPoint())
	assert.Equal(t, []string{"a", "b"}, compiled.NodeIDs())
	assert.Equal(t, []string{"b"}, compiled.Successors("a"))
	assert.Equal(t, []string{END}, compiled.Successors("b"))
	assert.Equal(t, []string{"a"}, compiled.Predecessors("b"))
	assert.Nil(t, compiled.Successors(END))
	assert.True(t, compiled.HasNode("a"))
	assert.False(t, compiled.HasNode("zzz"))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Graph[Counter]
		want  error
	}{
		{
			"no entry point",
			func() *Graph[Counter] {
				return NewGraph[Counter]().AddNode("a", increment).AddEdge("a", END)
			},
			ErrNoEntryPoint,
		},
		{
			"entry not found",
			func() *Graph[Counter] {
				return NewGraph[Counter]().AddNode("a", increment).AddEdge("a", END).SetEntry("x")
			},
			ErrEntryNotFound,
		},
		{
			"edge target missing",
			func() *Graph[Counter] {
				return NewGraph[Counter]().AddNode("a", increment).AddEdge("a", "ghost").SetEntry("a")
			},
			ErrNodeNotFound,
		},
		{
			"edge source missing",
			func() *Graph[Counter] {
				return NewGraph[Counter]().AddNode("a", increment).AddEdge("a", END).AddEdge("ghost", "a").SetEntry("a")
			},
			ErrNodeNotFound,
		},
		{
			"declared route target missing",
			func() *Graph[Counter] {
				return NewGraph[Counter]().
					AddNode("a", increment).
					AddConditionalEdge("a", func(Context, Counter) string { return END }, END, "ghost").
					SetEntry("a")
			},
			ErrNodeNotFound,
		},
		{
			"no path to end",
			func() *Graph[Counter] {
				return NewGraph[Counter]().
					AddNode("a", increment).
					AddNode("b", increment).
					AddEdge("a", "b").
					AddEdge("b", "a").
					SetEntry("a")
			},
			ErrNoPathToEnd,
		},
		{
			"declared cycle without exit",
			func() *Graph[Counter] {
				return NewGraph[Counter]().
					AddNode("a", increment).
					AddNode("b", increment).
					AddConditionalEdge("a", func(Context, Counter) string { return "b" }, "b").
					AddEdge("b", "a").
					SetEntry("a")
			},
			ErrNoPathToEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := tt.build().Compile()
			assert.Nil(t, compiled)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompile_JoinsMultipleErrors(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", "x").
		AddEdge("a", "y").
		Compile()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
	assert.ErrorContains(t, err, "'x'")
	assert.ErrorContains(t, err, "'y'")
}

func TestCompile_ConditionalTargets(t *testing.T) {
	route := func(ctx Context, s State) string { return "left" }

	compiled, err := NewGraph[State]().
		AddNode("start", passthrough[State]).
		AddNode("left", passthrough[State]).
		AddNode("right", passthrough[State]).
		AddConditionalEdge("start", route, "left", "right").
		AddEdge("left", END).
		AddEdge("right", END).
		SetEntry("start").
		Compile()

	require.NoError(t, err)
	assert.True(t, compiled.IsConditional("start"))
	assert.False(t, compiled.IsConditional("left"))
	assert.Equal(t, []string{"left", "right"}, compiled.Successors("start"))
	assert.Equal(t, []string{"start"}, compiled.Predecessors("right"))
}

func TestCompile_UndeclaredRouterAssumedToReachEnd(t *testing.T) {
	compiled, err := NewGraph[State]().
		AddNode("loop", passthrough[State]).
		AddConditionalEdge("loop", func(Context, State) string { return "loop" }).
		SetEntry("loop").
		Compile()

	require.NoError(t, err)
	assert.Nil(t, compiled.Successors("loop"))
}

func TestCompile_IsolatesBuilder(t *testing.T) {
	g := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END).
		SetEntry("a")

	compiled, err := g.Compile()
	require.NoError(t, err)

	g.AddNode("b", increment)
	assert.False(t, compiled.HasNode("b"))
}
