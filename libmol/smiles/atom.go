package smiles

import (
	"strconv"
	"strings"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// Atom is the payload the smiles front end attaches to each vertex.
//
// Only what was written is recorded: no valence model is applied, so HCount is -1 for an
// organic-subset atom and Isotope is 0 when none was given.
type Atom struct {
	Element  string `protobuf:"bytes,1,opt,name=element,proto3" json:"element,omitempty"`
	Aromatic bool   `protobuf:"varint,2,opt,name=aromatic,proto3" json:"aromatic,omitempty"`
	Bracket  bool   `protobuf:"varint,3,opt,name=bracket,proto3" json:"bracket,omitempty"`
	Isotope  int32  `protobuf:"varint,4,opt,name=isotope,proto3" json:"isotope,omitempty"`
	HCount   int32  `protobuf:"zigzag32,5,opt,name=h_count,json=hCount,proto3" json:"h_count,omitempty"`
	Charge   int32  `protobuf:"zigzag32,6,opt,name=charge,proto3" json:"charge,omitempty"`
	Class    int32  `protobuf:"varint,7,opt,name=class,proto3" json:"class,omitempty"`
}

func (m *Atom) Reset()         { *m = Atom{} }
func (m *Atom) String() string { return proto.CompactTextString(m) }
func (*Atom) ProtoMessage()    {}

// Symbol returns the element as written, lower case when aromatic.
func (m *Atom) Symbol() string {
	if m.Aromatic {
		return strings.ToLower(m.Element)
	}
	return m.Element
}

// Notation returns the atom as it would be written in a SMILES string (stereo excluded).
func (m *Atom) Notation() string {
	if !m.Bracket {
		return m.Symbol()
	}

	b := strings.Builder{}
	b.WriteByte('[')
	if m.Isotope > 0 {
		b.WriteString(strconv.Itoa(int(m.Isotope)))
	}
	b.WriteString(m.Symbol())
	if m.HCount > 0 {
		b.WriteByte('H')
		if m.HCount > 1 {
			b.WriteString(strconv.Itoa(int(m.HCount)))
		}
	}
	switch {
	case m.Charge == 1:
		b.WriteByte('+')
	case m.Charge == -1:
		b.WriteByte('-')
	case m.Charge > 1:
		b.WriteString("+" + strconv.Itoa(int(m.Charge)))
	case m.Charge < -1:
		b.WriteString(strconv.Itoa(int(m.Charge)))
	}
	if m.Class > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(m.Class)))
	}
	b.WriteByte(']')
	return b.String()
}

func (m *Atom) MarshalBinary() ([]byte, error) {
	return proto.Marshal(m)
}

func (m *Atom) UnmarshalBinary(buf []byte) error {
	return proto.Unmarshal(buf, m)
}

// DecodeAtom restores an Atom written by libmol.Graph.MarshalGraphDef; pass it wherever a
// libmol.AtomDecoder is expected.
func DecodeAtom(def *libmol.AtomDef) (gomol.Atom, error) {
	atom := &Atom{}
	if len(def.Payload) == 0 {
		return nil, errors.Wrapf(gomol.ErrUnmarshal, "atom %q has no payload", def.Symbol)
	}
	if err := atom.UnmarshalBinary(def.Payload); err != nil {
		return nil, errors.Wrap(gomol.ErrUnmarshal, err.Error())
	}
	return atom, nil
}

var _ libmol.AtomDecoder = DecodeAtom

func newOrganicAtom(sym string) *Atom {
	atom := &Atom{
		Element: sym,
		HCount:  -1,
	}
	if sym != "*" && strings.ToLower(sym) == sym {
		atom.Aromatic = true
		atom.Element = strings.ToUpper(sym)
	}
	return atom
}

func newBracketAtom(expr *bracketExpr) (*Atom, error) {
	atom := &Atom{
		Element: expr.Symbol,
		Bracket: true,
	}

	if sym := expr.Symbol; sym != "*" && strings.ToLower(sym) == sym {
		atom.Aromatic = true
		atom.Element = strings.ToUpper(sym[:1]) + sym[1:]
	}
	if !isElement(atom.Element) {
		return nil, errors.Wrapf(gomol.ErrBadSmiles, "unknown element %q", expr.Symbol)
	}

	if expr.Isotope != nil {
		atom.Isotope = int32(*expr.Isotope)
	}
	if expr.HasH {
		atom.HCount = 1
		if expr.HCount != nil {
			atom.HCount = int32(*expr.HCount)
		}
	}
	if expr.Class != nil {
		atom.Class = int32(*expr.Class)
	}

	charge, err := parseCharge(expr.Charge)
	if err != nil {
		return nil, err
	}
	atom.Charge = charge
	return atom, nil
}

func parseCharge(str string) (int32, error) {
	if len(str) == 0 {
		return 0, nil
	}
	sign := int32(1)
	if str[0] == '-' {
		sign = -1
	}
	if len(str) > 1 && str[1] >= '0' && str[1] <= '9' {
		n, err := strconv.Atoi(str[1:])
		if err != nil {
			return 0, errors.Wrapf(gomol.ErrBadSmiles, "charge %q", str)
		}
		return sign * int32(n), nil
	}
	return sign * int32(len(str)), nil
}

var sElements = map[string]struct{}{}

func init() {
	const table = "* H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca Sc Ti V Cr Mn Fe Co Ni Cu Zn " +
		"Ga Ge As Se Br Kr Rb Sr Y Zr Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb Te I Xe Cs Ba La Ce Pr Nd " +
		"Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re Os Ir Pt Au Hg Tl Pb Bi Po At Rn Fr Ra Ac Th " +
		"Pa U Np Pu Am Cm Bk Cf Es Fm Md No Lr Rf Db Sg Bh Hs Mt Ds Rg Cn Nh Fl Mc Lv Ts Og"
	for _, sym := range strings.Fields(table) {
		sElements[sym] = struct{}{}
	}
}

func isElement(sym string) bool {
	_, ok := sElements[sym]
	return ok
}
