package libmol

import (
	"strconv"
	"strings"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/pkg/errors"
)

// Topology is the stereo descriptor of a single atom: an explicit reference ordering of the
// atom's neighbors plus a Configuration stating the parity relative to that ordering.
//
// The ordering belongs to the Topology, not to the adjacency list of the graph, so reordering
// adjacency (see Graph.Sort) can never change stereo meaning.  The atom's own index may appear
// once in the ordering and stands for an implicit neighbor (implicit hydrogen or lone pair).
type Topology struct {
	atom   int
	vs     []int
	config gomol.Configuration
}

var unknownTopology = Topology{atom: -1}

// Unknown returns the topology of an atom without stereo information.
func Unknown() Topology {
	return unknownTopology
}

// NewTopology creates a topology for atom u with the reference ordering vs.
//
// Implicit @ / @@ are resolved against the class implied by the ordering (4 references: tetrahedral).
// gomol.Unknown yields Unknown().
func NewTopology(u int, vs []int, c gomol.Configuration) (Topology, error) {
	if c == gomol.Unknown {
		return unknownTopology, nil
	}
	if u < 0 {
		return unknownTopology, errors.Wrapf(gomol.ErrInvalidTopology, "atom %d", u)
	}

	switch c.Class() {
	case gomol.ClassImplicit:
		if len(vs) != 4 {
			return unknownTopology, errors.Wrapf(gomol.ErrInvalidTopology, "atom %d: %s needs 4 neighbors, got %d", u, c.Symbol(), len(vs))
		}
		c = c.Resolve(gomol.ClassTetrahedral)
	case gomol.ClassTetrahedral, gomol.ClassExtendedTetrahedral:
		if len(vs) != 4 {
			return unknownTopology, errors.Wrapf(gomol.ErrInvalidTopology, "atom %d: %s needs 4 neighbors, got %d", u, c.Symbol(), len(vs))
		}
	default:
		return unknownTopology, errors.Wrapf(gomol.ErrUnsupportedConfiguration, "atom %d: %s", u, c.Symbol())
	}

	for i, vi := range vs {
		if vi < 0 {
			return unknownTopology, errors.Wrapf(gomol.ErrInvalidTopology, "atom %d: negative neighbor %d", u, vi)
		}
		for _, vj := range vs[:i] {
			if vi == vj {
				return unknownTopology, errors.Wrapf(gomol.ErrInvalidTopology, "atom %d: neighbor %d repeated", u, vi)
			}
		}
	}

	return Topology{
		atom:   u,
		vs:     append([]int(nil), vs...),
		config: c,
	}, nil
}

// Atom returns the index of the atom this topology describes, or -1 for Unknown().
func (t Topology) Atom() int {
	return t.atom
}

func (t Topology) Configuration() gomol.Configuration {
	return t.config
}

func (t Topology) IsUnknown() bool {
	return t.config == gomol.Unknown
}

// Neighbors returns a copy of the reference ordering.
func (t Topology) Neighbors() []int {
	return append([]int(nil), t.vs...)
}

func (t Topology) Equal(other Topology) bool {
	if t.IsUnknown() || other.IsUnknown() {
		return t.IsUnknown() == other.IsUnknown()
	}
	if t.atom != other.atom || t.config != other.config || len(t.vs) != len(other.vs) {
		return false
	}
	for i := range t.vs {
		if t.vs[i] != other.vs[i] {
			return false
		}
	}
	return true
}

// Transform relabels the atom and every reference through perm (new index perm[i] holds old i).
func (t Topology) Transform(perm []int) Topology {
	if t.IsUnknown() {
		return t
	}
	vs := make([]int, len(t.vs))
	for i, v := range t.vs {
		vs[i] = perm[v]
	}
	return Topology{
		atom:   perm[t.atom],
		vs:     vs,
		config: t.config,
	}
}

// OrderBy reorders the references by ascending rank and re-expresses the configuration
// relative to that ordering: an odd reordering inverts the parity.
func (t Topology) OrderBy(rank []int) Topology {
	if t.IsUnknown() {
		return t
	}

	vs := append([]int(nil), t.vs...)
	swaps := 0
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && rank[vs[j]] < rank[vs[j-1]]; j-- {
			vs[j], vs[j-1] = vs[j-1], vs[j]
			swaps++
		}
	}

	c := t.config
	if swaps&1 != 0 {
		c = c.Inverse()
	}
	return Topology{
		atom:   t.atom,
		vs:     vs,
		config: c,
	}
}

// inRange reports if the atom and every reference lie in [0, order).
func (t Topology) inRange(order int) bool {
	if t.atom < 0 || t.atom >= order {
		return false
	}
	for _, v := range t.vs {
		if v >= order {
			return false
		}
	}
	return true
}

func (t Topology) String() string {
	if t.IsUnknown() {
		return "unknown"
	}
	b := strings.Builder{}
	b.WriteString(strconv.Itoa(t.atom))
	b.WriteString(t.config.Symbol())
	b.WriteByte('{')
	for i, v := range t.vs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte('}')
	return b.String()
}
