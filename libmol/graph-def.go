package libmol

import (
	"encoding"
	"sort"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/cespare/xxhash/v2"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// GraphDef is the wire form of a Graph.
type GraphDef struct {
	Atoms      []*AtomDef      `protobuf:"bytes,1,rep,name=atoms,proto3" json:"atoms,omitempty"`
	Edges      []*EdgeDef      `protobuf:"bytes,2,rep,name=edges,proto3" json:"edges,omitempty"`
	Adjacency  []*AdjacencyDef `protobuf:"bytes,3,rep,name=adjacency,proto3" json:"adjacency,omitempty"`
	Topologies []*TopologyDef  `protobuf:"bytes,4,rep,name=topologies,proto3" json:"topologies,omitempty"`
	Notation   string          `protobuf:"bytes,5,opt,name=notation,proto3" json:"notation,omitempty"`
}

func (m *GraphDef) Reset()         { *m = GraphDef{} }
func (m *GraphDef) String() string { return proto.CompactTextString(m) }
func (*GraphDef) ProtoMessage()    {}

// AtomDef holds an atom's symbol and, if the atom is an encoding.BinaryMarshaler, its payload.
type AtomDef struct {
	Symbol  string `protobuf:"bytes,1,opt,name=symbol,proto3" json:"symbol,omitempty"`
	Payload []byte `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *AtomDef) Reset()         { *m = AtomDef{} }
func (m *AtomDef) String() string { return proto.CompactTextString(m) }
func (*AtomDef) ProtoMessage()    {}

type EdgeDef struct {
	U    int32 `protobuf:"varint,1,opt,name=u,proto3" json:"u,omitempty"`
	V    int32 `protobuf:"varint,2,opt,name=v,proto3" json:"v,omitempty"`
	Bond int32 `protobuf:"varint,3,opt,name=bond,proto3" json:"bond,omitempty"`
}

func (m *EdgeDef) Reset()         { *m = EdgeDef{} }
func (m *EdgeDef) String() string { return proto.CompactTextString(m) }
func (*EdgeDef) ProtoMessage()    {}

// AdjacencyDef lists a vertex's adjacency as indices into GraphDef.Edges, in adjacency order.
type AdjacencyDef struct {
	EdgeIdx []int32 `protobuf:"varint,1,rep,packed,name=edge_idx,json=edgeIdx,proto3" json:"edge_idx,omitempty"`
}

func (m *AdjacencyDef) Reset()         { *m = AdjacencyDef{} }
func (m *AdjacencyDef) String() string { return proto.CompactTextString(m) }
func (*AdjacencyDef) ProtoMessage()    {}

type TopologyDef struct {
	Atom          int32   `protobuf:"varint,1,opt,name=atom,proto3" json:"atom,omitempty"`
	Neighbors     []int32 `protobuf:"varint,2,rep,packed,name=neighbors,proto3" json:"neighbors,omitempty"`
	Configuration int32   `protobuf:"varint,3,opt,name=configuration,proto3" json:"configuration,omitempty"`
}

func (m *TopologyDef) Reset()         { *m = TopologyDef{} }
func (m *TopologyDef) String() string { return proto.CompactTextString(m) }
func (*TopologyDef) ProtoMessage()    {}

// LabelAtom is an Atom known only by its symbol.  It is what a GraphDef decodes to without an AtomDecoder.
type LabelAtom string

func (a LabelAtom) Symbol() string {
	return string(a)
}

func decodeLabelAtom(def *AtomDef) (gomol.Atom, error) {
	return LabelAtom(def.Symbol), nil
}

// RawAtom is an Atom restored exactly as its AtomDef holds it, payload included.
// Re-exporting a graph of RawAtoms reproduces the GraphDef it was decoded from.
type RawAtom struct {
	Sym     string
	Payload []byte
}

func (a *RawAtom) Symbol() string {
	return a.Sym
}

func (a *RawAtom) MarshalBinary() ([]byte, error) {
	return a.Payload, nil
}

// DecodeRawAtom is an AtomDecoder that restores RawAtoms.
func DecodeRawAtom(def *AtomDef) (gomol.Atom, error) {
	return &RawAtom{
		Sym:     def.Symbol,
		Payload: def.Payload,
	}, nil
}

// ExportGraphDef returns the wire form of X.
func (X *Graph) ExportGraphDef() (*GraphDef, error) {
	def := &GraphDef{
		Atoms:     make([]*AtomDef, X.order),
		Edges:     make([]*EdgeDef, len(X.edges)),
		Adjacency: make([]*AdjacencyDef, X.order),
	}

	for u := 0; u < X.order; u++ {
		atomDef := &AtomDef{}
		if atom := X.atoms[u]; atom != nil {
			atomDef.Symbol = atom.Symbol()
			if m, ok := atom.(encoding.BinaryMarshaler); ok {
				payload, err := m.MarshalBinary()
				if err != nil {
					return nil, errors.Wrapf(err, "atom %d", u)
				}
				atomDef.Payload = payload
			}
		}
		def.Atoms[u] = atomDef
	}

	// Parallel edges of equal value are interchangeable, so the first index of a value suffices.
	edgeIdx := make(map[Edge]int32, len(X.edges))
	for i, e := range X.edges {
		def.Edges[i] = &EdgeDef{
			U:    int32(e.u),
			V:    int32(e.v),
			Bond: int32(e.bond),
		}
		if _, exists := edgeIdx[e]; !exists {
			edgeIdx[e] = int32(i)
		}
	}

	for u := 0; u < X.order; u++ {
		adj := &AdjacencyDef{
			EdgeIdx: make([]int32, len(X.adj[u])),
		}
		for i, e := range X.adj[u] {
			adj.EdgeIdx[i] = edgeIdx[e]
		}
		def.Adjacency[u] = adj
	}

	for t := range X.Topologies() {
		tdef := &TopologyDef{
			Atom:          int32(t.atom),
			Neighbors:     make([]int32, len(t.vs)),
			Configuration: int32(t.config),
		}
		for i, v := range t.vs {
			tdef.Neighbors[i] = int32(v)
		}
		def.Topologies = append(def.Topologies, tdef)
	}

	return def, nil
}

// MarshalGraphDef returns the protobuf encoding of X.
func (X *Graph) MarshalGraphDef() ([]byte, error) {
	def, err := X.ExportGraphDef()
	if err != nil {
		return nil, err
	}
	return proto.Marshal(def)
}

// Fingerprint hashes the canonic encoding of X (see CanonicEncoding).
func (X *Graph) Fingerprint() (uint64, error) {
	buf, err := X.CanonicEncoding()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(buf), nil
}

// CanonicEncoding returns the encoding of X with its edge and adjacency lists sorted.
// Graphs with the same labeled structure and atom payloads have the same canonic encoding,
// whatever order their edges were added in.
func (X *Graph) CanonicEncoding() ([]byte, error) {
	Xs := X.Clone()
	Xs.Sort()
	sort.Slice(Xs.edges, func(i, j int) bool {
		ei, ej := Xs.edges[i], Xs.edges[j]
		if ei.u != ej.u {
			return ei.u < ej.u
		}
		if ei.v != ej.v {
			return ei.v < ej.v
		}
		return ei.bond < ej.bond
	})
	return Xs.MarshalGraphDef()
}

// UnmarshalGraph decodes a Graph from the output of MarshalGraphDef().
func UnmarshalGraph(buf []byte, decode AtomDecoder) (*Graph, error) {
	def := &GraphDef{}
	if err := proto.Unmarshal(buf, def); err != nil {
		return nil, errors.Wrap(gomol.ErrUnmarshal, err.Error())
	}
	return NewGraphFromDef(def, decode)
}

// NewGraphFromDef builds a Graph from its wire form.  A nil decode restores LabelAtoms.
func NewGraphFromDef(def *GraphDef, decode AtomDecoder) (*Graph, error) {
	if decode == nil {
		decode = decodeLabelAtom
	}

	X := NewGraph(len(def.Atoms))
	for i, atomDef := range def.Atoms {
		atom, err := decode(atomDef)
		if err != nil {
			return nil, errors.Wrapf(gomol.ErrUnmarshal, "atom %d: %v", i, err)
		}
		X.AddAtom(atom)
	}

	edges := make([]Edge, len(def.Edges))
	for i, edgeDef := range def.Edges {
		bond := gomol.Bond(edgeDef.Bond)
		if int32(bond) != edgeDef.Bond || bond.Symbol() == "?" {
			return nil, errors.Wrapf(gomol.ErrUnmarshal, "edge %d: bad bond %d", i, edgeDef.Bond)
		}
		edges[i] = NewEdge(int(edgeDef.U), int(edgeDef.V), bond)
	}

	if len(def.Adjacency) == 0 {
		for _, e := range edges {
			if err := X.AddEdge(e); err != nil {
				return nil, errors.Wrap(gomol.ErrUnmarshal, err.Error())
			}
		}
	} else {
		if err := X.assignEdges(edges, def.Adjacency); err != nil {
			return nil, err
		}
	}

	for _, tdef := range def.Topologies {
		vs := make([]int, len(tdef.Neighbors))
		for i, v := range tdef.Neighbors {
			vs[i] = int(v)
		}
		c := gomol.Configuration(tdef.Configuration)
		if int32(c) != tdef.Configuration {
			return nil, errors.Wrapf(gomol.ErrUnmarshal, "atom %d: bad configuration %d", tdef.Atom, tdef.Configuration)
		}
		t, err := NewTopology(int(tdef.Atom), vs, c)
		if err != nil {
			return nil, errors.Wrap(gomol.ErrUnmarshal, err.Error())
		}
		X.AddTopology(t)
	}

	return X, nil
}

// assignEdges installs edges along with an explicit adjacency order for each vertex.
func (X *Graph) assignEdges(edges []Edge, adjacency []*AdjacencyDef) error {
	if len(adjacency) != X.order {
		return errors.Wrapf(gomol.ErrUnmarshal, "%d adjacency lists for %d atoms", len(adjacency), X.order)
	}

	// each edge value must appear at each of its endpoints as many times as it occurs
	type ends struct {
		count, atU, atV int
	}
	tally := make(map[Edge]*ends, len(edges))
	for _, e := range edges {
		if e.u < 0 || e.v >= X.order || e.u == e.v {
			return errors.Wrapf(gomol.ErrUnmarshal, "bad edge %v", e)
		}
		if tally[e] == nil {
			tally[e] = &ends{}
		}
		tally[e].count++
	}
	for u, adj := range adjacency {
		for _, idx := range adj.EdgeIdx {
			if idx < 0 || int(idx) >= len(edges) {
				return errors.Wrapf(gomol.ErrUnmarshal, "vertex %d: bad edge index %d", u, idx)
			}
			e := edges[idx]
			if e.u != u && e.v != u {
				return errors.Wrapf(gomol.ErrUnmarshal, "vertex %d: edge %v is not incident", u, e)
			}
			if e.u == u {
				tally[e].atU++
			} else {
				tally[e].atV++
			}
			X.adj[u] = append(X.adj[u], e)
		}
	}
	for _, e := range edges {
		if n := tally[e]; n.atU != n.count || n.atV != n.count {
			return errors.Wrapf(gomol.ErrUnmarshal, "edge %v occurs %d times but is listed %d times at %d and %d times at %d", e, n.count, n.atU, e.u, n.atV, e.v)
		}
	}

	X.edges = append(X.edges, edges...)
	X.size = len(edges)
	return nil
}
