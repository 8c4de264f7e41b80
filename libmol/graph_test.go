package libmol_test

import (
	"testing"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAtom is compared by identity, so each one added is distinguishable.
type testAtom struct {
	sym string
}

func (a *testAtom) Symbol() string { return a.sym }

func newAtom() gomol.Atom {
	return &testAtom{sym: "C"}
}

func implicit(u, v int) libmol.Edge {
	return libmol.NewEdge(u, v, gomol.Implicit)
}

// newPath returns 0-1-2-...-(n-1) with n atoms.
func newPath(t *testing.T, capacityHint, n int) *libmol.Graph {
	X := libmol.NewGraph(capacityHint)
	for i := 0; i < n; i++ {
		X.AddAtom(newAtom())
	}
	for i := 1; i < n; i++ {
		require.NoError(t, X.AddEdge(implicit(i-1, i)))
	}
	return X
}

func TestAddAtom(t *testing.T) {
	for _, hint := range []int{5, 2, 0} {
		X := libmol.NewGraph(hint)
		for i := 0; i < 5; i++ {
			assert.Equal(t, i, X.AddAtom(newAtom()), "hint %d", hint)
			assert.Equal(t, i+1, X.Order())
		}
	}
}

func TestAtomAccess(t *testing.T) {
	atoms := []gomol.Atom{newAtom(), newAtom(), newAtom(), newAtom()}
	X := libmol.NewGraph(2)
	for _, atom := range atoms {
		X.AddAtom(atom)
	}
	for i, want := range atoms {
		got, err := X.Atom(i)
		require.NoError(t, err)
		assert.Same(t, want, got)
	}

	i := 0
	for u, atom := range X.Atoms() {
		assert.Equal(t, i, u)
		assert.Same(t, atoms[u], atom)
		i++
	}
	assert.Equal(t, len(atoms), i)
}

func TestInvalidAtom(t *testing.T) {
	X := libmol.NewGraph(5)
	_, err := X.Atom(-1)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
	_, err = X.Atom(2)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
}

func TestSizeCountsParallelEdges(t *testing.T) {
	X := libmol.NewGraph(5)
	for i := 0; i < 3; i++ {
		X.AddAtom(newAtom())
	}
	assert.Equal(t, 0, X.Size())
	require.NoError(t, X.AddEdge(implicit(0, 1)))
	assert.Equal(t, 1, X.Size())
	require.NoError(t, X.AddEdge(implicit(0, 1)))
	assert.Equal(t, 2, X.Size())

	deg, err := X.Degree(0)
	require.NoError(t, err)
	assert.Equal(t, 2, deg)
}

func TestEdgesOf(t *testing.T) {
	for _, hint := range []int{5, 2} {
		X := newPath(t, hint, 3)

		es, err := X.EdgesOf(0)
		require.NoError(t, err)
		assert.Equal(t, []libmol.Edge{implicit(0, 1)}, es)

		es, err = X.EdgesOf(1)
		require.NoError(t, err)
		assert.Equal(t, []libmol.Edge{implicit(1, 0), implicit(1, 2)}, es)

		// returned slices are copies
		es[0] = implicit(2, 0)
		es, _ = X.EdgesOf(1)
		assert.Equal(t, implicit(0, 1), es[0])
	}
}

func TestEdges(t *testing.T) {
	X := newPath(t, 2, 3)
	assert.Equal(t, []libmol.Edge{implicit(0, 1), implicit(1, 2)}, X.Edges())
}

func TestDegree(t *testing.T) {
	X := newPath(t, 5, 3)
	for u, want := range []int{1, 2, 1} {
		deg, err := X.Degree(u)
		require.NoError(t, err)
		assert.Equal(t, want, deg)
	}
}

func TestAdjacent(t *testing.T) {
	X := newPath(t, 5, 3)

	adj, err := X.Adjacent(0, 1)
	require.NoError(t, err)
	assert.True(t, adj)
	adj, err = X.Adjacent(2, 1)
	require.NoError(t, err)
	assert.True(t, adj)
	adj, err = X.Adjacent(0, 2)
	require.NoError(t, err)
	assert.False(t, adj)

	_, err = X.Adjacent(0, 4)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
	_, err = X.Adjacent(4, 0)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
}

func TestEdge(t *testing.T) {
	X := newPath(t, 5, 3)

	e, err := X.Edge(0, 1)
	require.NoError(t, err)
	assert.Equal(t, implicit(0, 1), e)
	e, err = X.Edge(2, 1)
	require.NoError(t, err)
	assert.Equal(t, implicit(1, 2), e)

	_, err = X.Edge(0, 2)
	assert.ErrorIs(t, err, gomol.ErrNoSuchEdge)
	_, err = X.Edge(0, 7)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
}

func TestEdgeFirstOfParallel(t *testing.T) {
	X := libmol.NewGraph(2)
	X.AddAtom(newAtom())
	X.AddAtom(newAtom())
	require.NoError(t, X.AddEdge(libmol.NewEdge(0, 1, gomol.Double)))
	require.NoError(t, X.AddEdge(libmol.NewEdge(0, 1, gomol.Single)))

	e, err := X.Edge(1, 0)
	require.NoError(t, err)
	assert.Equal(t, gomol.Double, e.Bond())
}

func TestInvalidVertexQueries(t *testing.T) {
	X := libmol.NewGraph(5)
	_, err := X.EdgesOf(4)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
	_, err = X.Degree(4)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
	_, err = X.Neighbors(4)
	assert.ErrorIs(t, err, gomol.ErrInvalidVertex)
}

func TestAddEdgeNonVertex(t *testing.T) {
	X := libmol.NewGraph(5)
	X.AddAtom(newAtom())
	assert.ErrorIs(t, X.AddEdge(implicit(0, 1)), gomol.ErrInvalidVertex)
	assert.ErrorIs(t, X.AddEdge(implicit(1, 0)), gomol.ErrInvalidVertex)
	assert.Equal(t, 0, X.Size())

	assert.ErrorIs(t, X.AddEdge(implicit(0, 0)), gomol.ErrSelfLoop)
	assert.Equal(t, 0, X.Size())
}

func TestAddTopology(t *testing.T) {
	X := libmol.NewGraph(5)

	assert.True(t, X.TopologyOf(5).IsUnknown())
	assert.Equal(t, libmol.Unknown(), X.TopologyOf(5))
	assert.Equal(t, gomol.Unknown, X.ConfigurationOf(5))

	assert.False(t, X.AddTopology(libmol.Unknown()))

	// atom 5 has not been added; the topology is stored regardless
	th, err := libmol.NewTopology(5, []int{0, 1, 2, 3}, gomol.TH1)
	require.NoError(t, err)
	assert.True(t, X.AddTopology(th))
	assert.True(t, th.Equal(X.TopologyOf(5)))
	assert.Equal(t, gomol.TH1, X.ConfigurationOf(5))

	// last write wins
	th2, err := libmol.NewTopology(5, []int{0, 1, 2, 3}, gomol.TH2)
	require.NoError(t, err)
	assert.True(t, X.AddTopology(th2))
	assert.Equal(t, gomol.TH2, X.ConfigurationOf(5))
}

func TestRelativeConfiguration(t *testing.T) {
	X := newPath(t, 5, 5)
	th, err := libmol.NewTopology(1, []int{2, 0, 1, 3}, gomol.TH1)
	require.NoError(t, err)
	X.AddTopology(th)

	assert.Equal(t, gomol.TH1, X.ConfigurationOf(1))
	// {2,0,1,3} => {0,1,2,3} takes two swaps
	assert.Equal(t, gomol.TH1, X.RelativeConfigurationOf(1))

	th, err = libmol.NewTopology(1, []int{0, 2, 1, 3}, gomol.TH1)
	require.NoError(t, err)
	X.AddTopology(th)
	assert.Equal(t, gomol.TH2, X.RelativeConfigurationOf(1))
	assert.Equal(t, gomol.Unknown, X.RelativeConfigurationOf(0))
}

func TestClear(t *testing.T) {
	X := newPath(t, 2, 3)
	th, err := libmol.NewTopology(1, []int{0, 1, 2, 3}, gomol.TH1)
	require.NoError(t, err)
	X.AddTopology(th)

	assert.Equal(t, 3, X.Order())
	assert.Equal(t, 2, X.Size())

	X.Clear()
	assert.Equal(t, 0, X.Order())
	assert.Equal(t, 0, X.Size())
	assert.Empty(t, X.Edges())
	assert.True(t, X.TopologyOf(1).IsUnknown())

	// storage is reused and behaves as new
	X.AddAtom(newAtom())
	X.AddAtom(newAtom())
	require.NoError(t, X.AddEdge(implicit(0, 1)))
	deg, err := X.Degree(1)
	require.NoError(t, err)
	assert.Equal(t, 1, deg)
}

func TestSort(t *testing.T) {
	X := libmol.NewGraph(2)
	for i := 0; i < 4; i++ {
		X.AddAtom(newAtom())
	}
	require.NoError(t, X.AddEdge(implicit(3, 2)))
	require.NoError(t, X.AddEdge(implicit(1, 2)))
	require.NoError(t, X.AddEdge(implicit(0, 3)))
	require.NoError(t, X.AddEdge(implicit(0, 1)))

	before := [][]int{{3, 1}, {2, 0}, {3, 1}, {2, 0}}
	after := [][]int{{1, 3}, {0, 2}, {1, 3}, {0, 2}}

	for u, want := range before {
		vs, err := X.Neighbors(u)
		require.NoError(t, err)
		assert.Equal(t, want, vs, "vertex %d", u)
	}
	X.Sort()
	for u, want := range after {
		vs, err := X.Neighbors(u)
		require.NoError(t, err)
		assert.Equal(t, want, vs, "vertex %d", u)
	}

	// the global edge list keeps insertion order
	assert.Equal(t, implicit(2, 3), X.Edges()[0])
}

func TestSortKeepsTopology(t *testing.T) {
	X := libmol.NewGraph(5)
	for i := 0; i < 5; i++ {
		X.AddAtom(newAtom())
	}
	for _, v := range []int{4, 2, 0, 3} {
		require.NoError(t, X.AddEdge(implicit(1, v)))
	}
	th, err := libmol.NewTopology(1, []int{4, 2, 0, 3}, gomol.TH2)
	require.NoError(t, err)
	X.AddTopology(th)

	before := X.RelativeConfigurationOf(1)
	X.Sort()
	assert.Equal(t, gomol.TH2, X.ConfigurationOf(1))
	assert.Equal(t, []int{4, 2, 0, 3}, X.TopologyOf(1).Neighbors())
	assert.Equal(t, before, X.RelativeConfigurationOf(1))
}

func TestWriteAsString(t *testing.T) {
	X := libmol.NewGraph(0)
	X.AddAtom(&testAtom{"C"})
	X.AddAtom(&testAtom{"O"})
	require.NoError(t, X.AddEdge(libmol.NewEdge(1, 0, gomol.Double)))

	b := &stringWriter{}
	X.WriteAsString(b, gomol.PrintOpts{
		Label: "co",
		Atoms: true,
		Edges: true,
	})
	assert.Equal(t, `co,order=2,size=1,"C O","0=1",`, b.String())
}

type stringWriter struct {
	buf []byte
}

func (w *stringWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *stringWriter) Close() error { return nil }

func (w *stringWriter) String() string { return string(w.buf) }
