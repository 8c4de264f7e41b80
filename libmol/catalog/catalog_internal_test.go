package catalog

import (
	"fmt"
	"testing"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol/smiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintCollision(t *testing.T) {
	libCat, err := OpenCatalog(gomol.CatalogOpts{})
	require.NoError(t, err)
	defer libCat.Close()
	cat := libCat.(*catalog)

	X := smiles.MustParse("CCN")
	Y := smiles.MustParse("CCO")
	fpY, err := Y.Fingerprint()
	require.NoError(t, err)

	// X stored under Y's fingerprint and default name
	cat.mu.Lock()
	err = cat.put(fmt.Sprintf("%016x", fpY), fpY, X)
	cat.mu.Unlock()
	require.NoError(t, err)

	assert.True(t, cat.TryAddGraph(Y))
	assert.False(t, cat.TryAddGraph(Y))
	assert.Equal(t, int64(2), cat.NumGraphs())

	Z, err := cat.Get(fmt.Sprintf("%016x-1", fpY), smiles.DecodeAtom)
	require.NoError(t, err)
	atom, err := Z.Atom(2)
	require.NoError(t, err)
	assert.Equal(t, "O", atom.Symbol())
}
