package libmol

import (
	"strconv"

	"github.com/2x3systems/molgraph/gomol"
)

// Edge is an undirected bond between two vertices of a Graph.
//
// The stored form is canonic: the lower vertex index comes first and the bond is the label as
// seen walking from the lower vertex.  This makes == (and map keys) symmetric in the endpoints.
type Edge struct {
	u, v int
	bond gomol.Bond
}

// NewEdge forms the edge u-v, where bond is the label as written walking from u to v.
func NewEdge(u, v int, bond gomol.Bond) Edge {
	if u > v {
		return Edge{v, u, bond.Inverse()}
	}
	return Edge{u, v, bond}
}

// Either returns the lower endpoint.
func (e Edge) Either() int {
	return e.u
}

// Other returns the endpoint opposite x.
func (e Edge) Other(x int) int {
	if x == e.u {
		return e.v
	}
	return e.u
}

// Bond returns the label as seen from Either().
func (e Edge) Bond() gomol.Bond {
	return e.bond
}

// BondFrom returns the label as seen walking the edge from endpoint x.
func (e Edge) BondFrom(x int) gomol.Bond {
	if x == e.u {
		return e.bond
	}
	return e.bond.Inverse()
}

// Relabel maps both endpoints through perm, preserving the direction of the bond.
func (e Edge) Relabel(perm []int) Edge {
	return NewEdge(perm[e.u], perm[e.v], e.bond)
}

func (e Edge) String() string {
	sym := e.bond.Symbol()
	if sym == "" {
		sym = "-"
	}
	return strconv.Itoa(e.u) + sym + strconv.Itoa(e.v)
}

// EdgeList is an adjacency list of a single vertex, ordered by neighbor index.
type EdgeList struct {
	Of    int
	Edges []Edge
}

func (es EdgeList) Len() int      { return len(es.Edges) }
func (es EdgeList) Swap(i, j int) { es.Edges[i], es.Edges[j] = es.Edges[j], es.Edges[i] }
func (es EdgeList) Less(i, j int) bool {
	return es.Edges[i].Other(es.Of) < es.Edges[j].Other(es.Of)
}
