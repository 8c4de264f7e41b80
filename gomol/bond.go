package gomol

import "github.com/pkg/errors"

// Bond labels an edge of a molecule graph.
type Bond byte

const (
	Implicit  Bond = iota // unspecified in the notation; single or aromatic by context
	Single                // -
	Double                // =
	Triple                // #
	Quadruple             // $
	Aromatic              // :
	Up                    // /
	Down                  // \

	numBonds
)

var bondSymbols = [numBonds]string{
	Implicit:  "",
	Single:    "-",
	Double:    "=",
	Triple:    "#",
	Quadruple: "$",
	Aromatic:  ":",
	Up:        "/",
	Down:      "\\",
}

var bondNames = [numBonds]string{
	Implicit:  "implicit",
	Single:    "single",
	Double:    "double",
	Triple:    "triple",
	Quadruple: "quadruple",
	Aromatic:  "aromatic",
	Up:        "up",
	Down:      "down",
}

// Symbol returns the line notation symbol for this bond ("" for Implicit).
func (b Bond) Symbol() string {
	if b >= numBonds {
		return "?"
	}
	return bondSymbols[b]
}

func (b Bond) String() string {
	if b >= numBonds {
		return "invalid"
	}
	return bondNames[b]
}

// Inverse returns the bond as seen walking the edge in the opposite direction.
// Only Up and Down are directional; every other bond is its own inverse.
func (b Bond) Inverse() Bond {
	switch b {
	case Up:
		return Down
	case Down:
		return Up
	}
	return b
}

func (b Bond) IsDirectional() bool {
	return b == Up || b == Down
}

// ParseBond maps a line notation bond symbol to a Bond.  The empty string is Implicit.
func ParseBond(sym string) (Bond, error) {
	for b, s := range bondSymbols {
		if s == sym {
			return Bond(b), nil
		}
	}
	return Implicit, errors.Wrapf(ErrBadBond, "%q", sym)
}
