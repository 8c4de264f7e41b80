package libmol_test

import (
	"sort"
	"testing"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/stretchr/testify/assert"
)

func TestEdgeSymmetry(t *testing.T) {
	assert.Equal(t, libmol.NewEdge(0, 1, gomol.Implicit), libmol.NewEdge(1, 0, gomol.Implicit))
	assert.Equal(t, libmol.NewEdge(2, 5, gomol.Double), libmol.NewEdge(5, 2, gomol.Double))
	assert.NotEqual(t, libmol.NewEdge(2, 5, gomol.Double), libmol.NewEdge(2, 5, gomol.Single))

	// directional bonds flip with the direction of travel
	assert.Equal(t, libmol.NewEdge(0, 1, gomol.Up), libmol.NewEdge(1, 0, gomol.Down))
	assert.NotEqual(t, libmol.NewEdge(0, 1, gomol.Up), libmol.NewEdge(1, 0, gomol.Up))
}

func TestEdgeEndpoints(t *testing.T) {
	e := libmol.NewEdge(7, 3, gomol.Up)
	assert.Equal(t, 3, e.Either())
	assert.Equal(t, 7, e.Other(3))
	assert.Equal(t, 3, e.Other(7))
	assert.Equal(t, gomol.Down, e.Bond())
	assert.Equal(t, gomol.Down, e.BondFrom(3))
	assert.Equal(t, gomol.Up, e.BondFrom(7))
	assert.Equal(t, `3\7`, e.String())
	assert.Equal(t, "0-1", libmol.NewEdge(1, 0, gomol.Implicit).String())
}

func TestEdgeRelabel(t *testing.T) {
	e := libmol.NewEdge(0, 1, gomol.Up)
	r := e.Relabel([]int{1, 0})
	assert.Equal(t, 0, r.Either())
	assert.Equal(t, gomol.Up, r.BondFrom(1))
}

func TestEdgeList(t *testing.T) {
	es := libmol.EdgeList{
		Of: 2,
		Edges: []libmol.Edge{
			libmol.NewEdge(2, 4, gomol.Single),
			libmol.NewEdge(0, 2, gomol.Single),
			libmol.NewEdge(2, 3, gomol.Double),
		},
	}
	sort.Stable(es)
	got := make([]int, 0, 3)
	for _, e := range es.Edges {
		got = append(got, e.Other(2))
	}
	assert.Equal(t, []int{0, 3, 4}, got)
}
