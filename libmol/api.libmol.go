// Package libmol is the chemical graph engine: Edges, stereo Topologies and the Graph that holds them,
// plus the streams, encodings and catalog interfaces layered on top.
package libmol

import (
	"github.com/2x3systems/molgraph/gomol"
)

// GraphBuilder is the construction contract a line notation parser drives.
//
// Vertices referenced by an edge must already have been added.  A builder that reports an error
// should be discarded rather than repaired.
type GraphBuilder interface {
	AddAtom(atom gomol.Atom) int
	AddEdge(e Edge) error
	AddTopology(t Topology) bool
}

var _ GraphBuilder = (*Graph)(nil)

// GraphAdder accepts graphs, dropping those it already holds.
type GraphAdder interface {

	// TryAddGraph adds X if an identical graph is not already present.
	// Returns true if X was added.
	TryAddGraph(X *Graph) bool

	Close() error
}

type AddGraphOpts struct {
	AutoCloseCatalog bool
}

// AtomDecoder restores an Atom from its encoded form (see GraphDef).
type AtomDecoder func(def *AtomDef) (gomol.Atom, error)

// Catalog wraps a database of graph encodings.
type Catalog interface {
	GraphAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// Put stores X under the given name, replacing any graph stored under that name.
	Put(name string, X *Graph) error

	// Get loads the graph stored under name.  gomol.ErrGraphNotFound is returned if there is none.
	Get(name string, decode AtomDecoder) (*Graph, error)

	// Delete removes the graph stored under name (if any).
	Delete(name string) error

	// NumGraphs returns the number of graphs in this catalog.
	NumGraphs() int64

	// Select calls onHit with every graph in this catalog, in name order, until onHit returns false.
	Select(decode AtomDecoder, onHit func(name string, X *Graph) bool) error
}
