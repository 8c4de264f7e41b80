package smiles

import (
	"maps"
	"slices"
	"strconv"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type ringOpen struct {
	atom int
	bond gomol.Bond
	slot int // index into refs[atom] reserved for the closing atom
}

type stereoAtom struct {
	config  gomol.Configuration
	hasPrev bool
}

// smilesBuilder walks a parsed expression and drives a libmol.GraphBuilder.
//
// Alongside the graph it tracks, per atom, the neighbor reference order stereo is written against.
type smilesBuilder struct {
	dst    libmol.GraphBuilder
	refs   [][]int
	stereo map[int]stereoAtom
	rings  map[int]ringOpen
}

func newSmilesBuilder(dst libmol.GraphBuilder) *smilesBuilder {
	return &smilesBuilder{
		dst:    dst,
		stereo: make(map[int]stereoAtom),
		rings:  make(map[int]ringOpen),
	}
}

func (b *smilesBuilder) build(expr *smilesExpr) error {
	if expr.Chain != nil {
		if err := b.applyChain(expr.Chain, -1, ""); err != nil {
			return err
		}
	}

	if len(b.rings) > 0 {
		rnum := slices.Min(slices.Collect(maps.Keys(b.rings)))
		return errors.Wrapf(gomol.ErrBadSmiles, "ring %d is not closed", rnum)
	}

	return b.addTopologies()
}

func (b *smilesBuilder) applyChain(chain *chainExpr, prev int, bondSym string) error {
	cur, err := b.applyAtom(chain.Head, prev, bondSym)
	if err != nil {
		return err
	}

	for _, item := range chain.Items {
		switch {
		case item.Branch != nil:
			err = b.applyChain(item.Branch.Chain, cur, item.Branch.Bond)
		case len(item.Ring) > 0:
			err = b.applyRing(cur, item.Ring, item.Bond)
		default:
			cur, err = b.applyAtom(item.Atom, cur, item.Bond)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// applyAtom adds an atom and bonds it to prev unless prev < 0 or the bond is a '.' disconnection.
func (b *smilesBuilder) applyAtom(expr *atomExpr, prev int, bondSym string) (int, error) {
	var atom *Atom
	if expr.Bracket != nil {
		var err error
		if atom, err = newBracketAtom(expr.Bracket); err != nil {
			return -1, err
		}
	} else {
		atom = newOrganicAtom(expr.Organic)
	}

	u := b.dst.AddAtom(atom)
	b.refs = append(b.refs, nil)

	linked := prev >= 0 && bondSym != "."
	if linked {
		bond, err := gomol.ParseBond(bondSym)
		if err != nil {
			return -1, errors.Wrap(gomol.ErrBadSmiles, err.Error())
		}
		if err := b.addEdge(prev, u, bond); err != nil {
			return -1, err
		}
		b.refs[prev] = append(b.refs[prev], u)
		b.refs[u] = append(b.refs[u], prev)
	}

	if br := expr.Bracket; br != nil && len(br.Chiral) > 0 {
		config, err := gomol.ParseConfiguration(br.Chiral)
		if err != nil {
			return -1, errors.Wrap(gomol.ErrBadSmiles, err.Error())
		}
		b.stereo[u] = stereoAtom{
			config:  config,
			hasPrev: linked,
		}

		// an implicit H follows the preceding atom
		if br.HasH {
			b.refs[u] = append(b.refs[u], u)
		}
	}

	return u, nil
}

func (b *smilesBuilder) applyRing(u int, ringSym, bondSym string) error {
	if bondSym == "." {
		return errors.Wrapf(gomol.ErrBadSmiles, "ring %s follows a '.'", ringSym)
	}
	bond, err := gomol.ParseBond(bondSym)
	if err != nil {
		return errors.Wrap(gomol.ErrBadSmiles, err.Error())
	}

	rnum := parseRingNum(ringSym)
	open, isOpen := b.rings[rnum]
	if !isOpen {
		b.rings[rnum] = ringOpen{
			atom: u,
			bond: bond,
			slot: len(b.refs[u]),
		}
		b.refs[u] = append(b.refs[u], -1)
		return nil
	}
	delete(b.rings, rnum)

	switch {
	case open.bond == gomol.Implicit:
		// the bond as written at the closure reads from u back to the opening atom
		bond = bond.Inverse()
	case bond == gomol.Implicit:
		bond = open.bond
	case bond.Inverse() == open.bond && bond.IsDirectional():
		bond = open.bond
	case bond != open.bond:
		return errors.Wrapf(gomol.ErrBadSmiles, "ring %d: conflicting bonds %q and %q", rnum, open.bond.Symbol(), bond.Symbol())
	}

	if err := b.addEdge(open.atom, u, bond); err != nil {
		return err
	}
	b.refs[open.atom][open.slot] = u
	b.refs[u] = append(b.refs[u], open.atom)
	return nil
}

func (b *smilesBuilder) addEdge(u, v int, bond gomol.Bond) error {
	if err := b.dst.AddEdge(libmol.NewEdge(u, v, bond)); err != nil {
		return errors.Wrap(gomol.ErrBadSmiles, err.Error())
	}
	return nil
}

func (b *smilesBuilder) addTopologies() error {
	for _, u := range slices.Sorted(maps.Keys(b.stereo)) {
		st := b.stereo[u]
		class := st.config.Class()
		if class != gomol.ClassImplicit && class != gomol.ClassTetrahedral {
			klog.V(2).Infof("atom %d: %s stereo is not stored", u, st.config.Symbol())
			continue
		}

		vs := b.refs[u]
		if len(vs) == 3 {
			// a lone pair takes the place an implicit H would
			at := 0
			if st.hasPrev {
				at = 1
			}
			vs = append(vs[:at:at], append([]int{u}, vs[at:]...)...)
		}

		t, err := libmol.NewTopology(u, vs, st.config)
		if err != nil {
			return errors.Wrap(gomol.ErrBadSmiles, err.Error())
		}
		b.dst.AddTopology(t)
	}
	return nil
}

func parseRingNum(sym string) int {
	if sym[0] == '%' {
		sym = sym[1:]
	}
	rnum, _ := strconv.Atoi(sym)
	return rnum
}
