package libmol

import (
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"
)

// minCapacity is the smallest vertex storage a Graph allocates.
const minCapacity = 4

// Graph is a chemical graph: a dense vertex set of atoms, a per-vertex adjacency list of Edges
// and a sparse per-vertex stereo Topology.
//
// Vertex IDs are the zero-based indices [0, Order()).  A Graph has no internal locking: mutation
// must be confined to one goroutine, while the read surface and Permute() may be called from
// many goroutines on a Graph nobody mutates.
type Graph struct {
	order int          // number of atoms added
	size  int          // number of edges added
	atoms []gomol.Atom // len(atoms) is the vertex capacity
	adj   [][]Edge     // adjacency per vertex, len(adj) == len(atoms)
	edges []Edge       // every edge once, in insertion order

	// atom index => Topology, sparse and ordered by atom index
	topologies *treemap.Map
}

// NewGraph returns an empty Graph with storage for capacityHint atoms.
// The hint is a sizing optimization only; storage grows as needed.
func NewGraph(capacityHint int) *Graph {
	X := &Graph{
		topologies: treemap.NewWithIntComparator(),
	}
	X.grow(capacityHint)
	return X
}

func (X *Graph) grow(capacity int) {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	if capacity <= len(X.atoms) {
		return
	}

	atoms := make([]gomol.Atom, capacity)
	copy(atoms, X.atoms)
	X.atoms = atoms

	adj := make([][]Edge, capacity)
	copy(adj, X.adj)
	X.adj = adj
}

// AddAtom appends an atom and returns its vertex ID.
func (X *Graph) AddAtom(atom gomol.Atom) int {
	u := X.order
	if u == len(X.atoms) {
		X.grow(2 * u)
	}
	X.atoms[u] = atom
	X.order++
	return u
}

// AddEdge adds e to the adjacency of both endpoints.  Both endpoints must already be atoms of X.
func (X *Graph) AddEdge(e Edge) error {
	u, v := e.u, e.v
	if err := X.checkVertex(u); err != nil {
		return err
	}
	if err := X.checkVertex(v); err != nil {
		return err
	}
	if u == v {
		return errors.Wrapf(gomol.ErrSelfLoop, "edge %v", e)
	}

	X.adj[u] = append(X.adj[u], e)
	X.adj[v] = append(X.adj[v], e)
	X.edges = append(X.edges, e)
	X.size++
	return nil
}

// AddTopology stores t under t.Atom(), replacing any topology already stored for that atom.
// Unknown() is never stored and false is returned.
func (X *Graph) AddTopology(t Topology) bool {
	if t.IsUnknown() {
		return false
	}
	X.topologies.Put(t.atom, t)
	return true
}

// Clear resets X to an empty graph while retaining its storage for reuse.
func (X *Graph) Clear() {
	for i := 0; i < X.order; i++ {
		X.atoms[i] = nil
		X.adj[i] = X.adj[i][:0]
	}
	X.edges = X.edges[:0]
	X.topologies.Clear()
	X.order = 0
	X.size = 0
}

func (X *Graph) checkVertex(u int) error {
	if u < 0 || u >= X.order {
		return errors.Wrapf(gomol.ErrInvalidVertex, "vertex %d (order %d)", u, X.order)
	}
	return nil
}

// Order returns the number of atoms.
func (X *Graph) Order() int {
	return X.order
}

// Size returns the number of edges.
func (X *Graph) Size() int {
	return X.size
}

func (X *Graph) Atom(u int) (gomol.Atom, error) {
	if err := X.checkVertex(u); err != nil {
		return nil, err
	}
	return X.atoms[u], nil
}

// Atoms iterates over every atom in index order.
func (X *Graph) Atoms() iter.Seq2[int, gomol.Atom] {
	return func(yield func(int, gomol.Atom) bool) {
		for u := 0; u < X.order; u++ {
			if !yield(u, X.atoms[u]) {
				return
			}
		}
	}
}

// EdgesOf returns a copy of the adjacency list of u, in insertion order (or neighbor order after Sort).
func (X *Graph) EdgesOf(u int) ([]Edge, error) {
	if err := X.checkVertex(u); err != nil {
		return nil, err
	}
	return append([]Edge(nil), X.adj[u]...), nil
}

// Edges returns every edge once, in insertion order.
func (X *Graph) Edges() []Edge {
	return append([]Edge(nil), X.edges...)
}

// Neighbors returns the vertices adjacent to u in adjacency order.
func (X *Graph) Neighbors(u int) ([]int, error) {
	if err := X.checkVertex(u); err != nil {
		return nil, err
	}
	vs := make([]int, len(X.adj[u]))
	for i, e := range X.adj[u] {
		vs[i] = e.Other(u)
	}
	return vs, nil
}

func (X *Graph) Degree(u int) (int, error) {
	if err := X.checkVertex(u); err != nil {
		return 0, err
	}
	return len(X.adj[u]), nil
}

// Adjacent reports if an edge connects u and v.
func (X *Graph) Adjacent(u, v int) (bool, error) {
	_, found, err := X.findEdge(u, v)
	return found, err
}

// Edge returns the first edge in the adjacency of u that connects u and v.
func (X *Graph) Edge(u, v int) (Edge, error) {
	e, found, err := X.findEdge(u, v)
	if err != nil {
		return Edge{}, err
	}
	if !found {
		return Edge{}, errors.Wrapf(gomol.ErrNoSuchEdge, "%d, %d", u, v)
	}
	return e, nil
}

func (X *Graph) findEdge(u, v int) (Edge, bool, error) {
	if err := X.checkVertex(u); err != nil {
		return Edge{}, false, err
	}
	if err := X.checkVertex(v); err != nil {
		return Edge{}, false, err
	}
	for _, e := range X.adj[u] {
		if e.Other(u) == v {
			return e, true, nil
		}
	}
	return Edge{}, false, nil
}

// TopologyOf returns the stored topology of u, or Unknown() if none is stored.
// Any index is accepted.
func (X *Graph) TopologyOf(u int) Topology {
	if t, found := X.topologies.Get(u); found {
		return t.(Topology)
	}
	return unknownTopology
}

// ConfigurationOf returns TopologyOf(u).Configuration().
func (X *Graph) ConfigurationOf(u int) gomol.Configuration {
	return X.TopologyOf(u).config
}

// RelativeConfigurationOf returns the configuration of u re-expressed against its neighbors
// in ascending index order.
func (X *Graph) RelativeConfigurationOf(u int) gomol.Configuration {
	t := X.TopologyOf(u)
	if t.IsUnknown() {
		return t.config
	}

	n := X.order
	for _, v := range t.vs {
		if v >= n {
			n = v + 1
		}
	}
	return t.OrderBy(identityPerm(n)).config
}

// Topologies iterates over the stored topologies in ascending atom order.
func (X *Graph) Topologies() iter.Seq[Topology] {
	return func(yield func(Topology) bool) {
		it := X.topologies.Iterator()
		for it.Next() {
			if !yield(it.Value().(Topology)) {
				return
			}
		}
	}
}

// Sort orders every adjacency list by ascending neighbor.
// Stored topologies keep their own reference ordering and are unaffected.
func (X *Graph) Sort() {
	for u := 0; u < X.order; u++ {
		sort.Stable(EdgeList{
			Of:    u,
			Edges: X.adj[u],
		})
	}
}

func (X *Graph) Println(prefix string) {
	b := strings.Builder{}
	b.Grow(192)
	b.WriteString(prefix)
	X.WriteAsString(&b, gomol.DefaultPrintOpts)
	fmt.Println(b.String())
}

func (X *Graph) WriteAsString(out io.Writer, opts gomol.PrintOpts) {
	if len(opts.Label) > 0 {
		fmt.Fprintf(out, "%s,", opts.Label)
	}
	fmt.Fprintf(out, "order=%d,size=%d,", X.order, X.size)

	if opts.Atoms {
		io.WriteString(out, "\"")
		for u := 0; u < X.order; u++ {
			if u > 0 {
				io.WriteString(out, " ")
			}
			sym := "?"
			if X.atoms[u] != nil {
				sym = X.atoms[u].Symbol()
			}
			io.WriteString(out, sym)
		}
		io.WriteString(out, "\",")
	}

	if opts.Edges {
		io.WriteString(out, "\"")
		for i, e := range X.edges {
			if i > 0 {
				io.WriteString(out, " ")
			}
			io.WriteString(out, e.String())
		}
		io.WriteString(out, "\",")
	}

	if opts.Topologies {
		io.WriteString(out, "\"")
		i := 0
		for t := range X.Topologies() {
			if i > 0 {
				io.WriteString(out, " ")
			}
			io.WriteString(out, t.String())
			i++
		}
		io.WriteString(out, "\",")
	}
}
