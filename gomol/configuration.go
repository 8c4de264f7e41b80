package gomol

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Configuration is a stereo parity value carried by a Topology.
//
// A configuration is only meaningful relative to an explicit ordering of an atom's neighbors.
type Configuration byte

// ConfigClass is the stereo class a Configuration belongs to.
type ConfigClass byte

const (
	ClassNone ConfigClass = iota
	ClassImplicit
	ClassTetrahedral
	ClassExtendedTetrahedral
	ClassSquarePlanar
	ClassTrigonalBipyramidal
	ClassOctahedral
)

const (
	Unknown       Configuration = 0
	AntiClockwise Configuration = 1 // @
	Clockwise     Configuration = 2 // @@
	TH1           Configuration = 3
	TH2           Configuration = 4
	AL1           Configuration = 5
	AL2           Configuration = 6
	SP1           Configuration = 7
	SP2           Configuration = 8
	SP3           Configuration = 9

	// TB1..TB20 occupy [TB1, TB1+20) and OH1..OH30 occupy [OH1, OH1+30)
	TB1 Configuration = 10
	OH1 Configuration = TB1 + numTB

	numTB = 20
	numOH = 30

	numConfigs = int(OH1) + numOH
)

// TB returns the n-th (1-based) trigonal bipyramidal configuration.
func TB(n int) Configuration {
	if n < 1 || n > numTB {
		return Unknown
	}
	return TB1 + Configuration(n-1)
}

// OH returns the n-th (1-based) octahedral configuration.
func OH(n int) Configuration {
	if n < 1 || n > numOH {
		return Unknown
	}
	return OH1 + Configuration(n-1)
}

func (c Configuration) Class() ConfigClass {
	switch {
	case c == Unknown:
		return ClassNone
	case c == AntiClockwise || c == Clockwise:
		return ClassImplicit
	case c == TH1 || c == TH2:
		return ClassTetrahedral
	case c == AL1 || c == AL2:
		return ClassExtendedTetrahedral
	case c >= SP1 && c <= SP3:
		return ClassSquarePlanar
	case c >= TB1 && c < OH1:
		return ClassTrigonalBipyramidal
	case int(c) < numConfigs:
		return ClassOctahedral
	}
	return ClassNone
}

// Symbol returns the line notation form ("@", "@@", "@TH1", ...).  Unknown has no symbol.
func (c Configuration) Symbol() string {
	switch c.Class() {
	case ClassImplicit:
		if c == AntiClockwise {
			return "@"
		}
		return "@@"
	case ClassTetrahedral:
		return "@TH" + strconv.Itoa(int(c-TH1)+1)
	case ClassExtendedTetrahedral:
		return "@AL" + strconv.Itoa(int(c-AL1)+1)
	case ClassSquarePlanar:
		return "@SP" + strconv.Itoa(int(c-SP1)+1)
	case ClassTrigonalBipyramidal:
		return "@TB" + strconv.Itoa(int(c-TB1)+1)
	case ClassOctahedral:
		return "@OH" + strconv.Itoa(int(c-OH1)+1)
	}
	return ""
}

func (c Configuration) String() string {
	if c == Unknown {
		return "unknown"
	}
	return c.Symbol()
}

// Inverse flips the parity of the two-valued classes (@/@@, TH1/TH2, AL1/AL2).
// Any other configuration is returned unchanged.
func (c Configuration) Inverse() Configuration {
	switch c {
	case AntiClockwise:
		return Clockwise
	case Clockwise:
		return AntiClockwise
	case TH1:
		return TH2
	case TH2:
		return TH1
	case AL1:
		return AL2
	case AL2:
		return AL1
	}
	return c
}

// Resolve maps the implicit shorthands onto the first (@) or second (@@) value of the given class.
// Explicit configurations are returned unchanged.
func (c Configuration) Resolve(class ConfigClass) Configuration {
	if c.Class() != ClassImplicit {
		return c
	}
	second := c == Clockwise
	var first Configuration
	switch class {
	case ClassTetrahedral:
		first = TH1
	case ClassExtendedTetrahedral:
		first = AL1
	case ClassSquarePlanar:
		first = SP1
	case ClassTrigonalBipyramidal:
		first = TB1
	case ClassOctahedral:
		first = OH1
	default:
		return c
	}
	if second {
		return first + 1
	}
	return first
}

// ParseConfiguration maps a line notation chirality symbol to a Configuration.
func ParseConfiguration(sym string) (Configuration, error) {
	switch sym {
	case "":
		return Unknown, nil
	case "@":
		return AntiClockwise, nil
	case "@@":
		return Clockwise, nil
	}
	if len(sym) < 4 || sym[0] != '@' {
		return Unknown, errors.Wrapf(ErrBadConfiguration, "%q", sym)
	}

	n, err := strconv.Atoi(sym[3:])
	if err != nil || n < 1 {
		return Unknown, errors.Wrapf(ErrBadConfiguration, "%q", sym)
	}

	var first Configuration
	var count int
	switch strings.ToUpper(sym[1:3]) {
	case "TH":
		first, count = TH1, 2
	case "AL":
		first, count = AL1, 2
	case "SP":
		first, count = SP1, 3
	case "TB":
		first, count = TB1, numTB
	case "OH":
		first, count = OH1, numOH
	default:
		return Unknown, errors.Wrapf(ErrBadConfiguration, "%q", sym)
	}
	if n > count {
		return Unknown, errors.Wrapf(ErrBadConfiguration, "%q", sym)
	}
	return first + Configuration(n-1), nil
}
