// Package smiles reads SMILES line notation into a libmol graph.
//
// The accepted subset covers organic-subset and bracket atoms, bonds, branches, ring closures,
// '.' disconnections and tetrahedral stereo.  Atoms carry an *Atom payload.
package smiles

import (
	"strings"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/pkg/errors"
)

// Parse reads smi into a new Graph.  Text after the first space or tab is ignored.
func Parse(smi string) (*libmol.Graph, error) {
	X := libmol.NewGraph(len(smi))
	if err := ParseInto(X, smi); err != nil {
		return nil, err
	}
	return X, nil
}

// ParseInto reads smi and drives dst with the atoms, edges and topologies it describes.
//
// On error dst is left partially built and should be discarded.
func ParseInto(dst libmol.GraphBuilder, smi string) error {
	if i := strings.IndexAny(smi, " \t\r\n"); i >= 0 {
		smi = smi[:i]
	}

	expr, err := sParseSmiles.ParseString("", smi)
	if err != nil {
		return errors.Wrap(gomol.ErrBadSmiles, err.Error())
	}

	return newSmilesBuilder(dst).build(expr)
}

// MustParse is like Parse but panics on error.  It simplifies initializing fixtures.
func MustParse(smi string) *libmol.Graph {
	X, err := Parse(smi)
	if err != nil {
		panic(err)
	}
	return X
}
