package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/2x3systems/molgraph/libmol/catalog"
	"github.com/2x3systems/molgraph/libmol/smiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var molecules = []string{
	"C",
	"CC",
	"CCO",
	"c1ccccc1",
	"N[C@@H](C)C(=O)O",
	"N[C@H](C)C(=O)O",
}

func openInMemory(t *testing.T) libmol.Catalog {
	cat, err := catalog.OpenCatalog(gomol.CatalogOpts{})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestTryAddGraph(t *testing.T) {
	cat := openInMemory(t)

	for _, smi := range molecules {
		X := smiles.MustParse(smi)
		assert.True(t, cat.TryAddGraph(X), smi)
		assert.False(t, cat.TryAddGraph(X), smi)

		// a relabeling that leaves the structure unchanged is still a duplicate
		Y := X.Clone()
		Y.Sort()
		assert.False(t, cat.TryAddGraph(Y), smi)
	}
	assert.Equal(t, int64(len(molecules)), cat.NumGraphs())
}

func TestPutGetDelete(t *testing.T) {
	cat := openInMemory(t)
	assert.False(t, cat.IsReadOnly())

	X := smiles.MustParse("O[C@]12CCCC[C@@]1(O)CCCC2")
	require.NoError(t, cat.Put("decalindiol", X))
	assert.Equal(t, int64(1), cat.NumGraphs())

	Y, err := cat.Get("decalindiol", smiles.DecodeAtom)
	require.NoError(t, err)
	assert.Equal(t, X.Order(), Y.Order())
	assert.Equal(t, X.Edges(), Y.Edges())
	assert.Equal(t, gomol.TH1, Y.RelativeConfigurationOf(1))
	assert.Equal(t, gomol.TH1, Y.RelativeConfigurationOf(6))
	atom, err := Y.Atom(0)
	require.NoError(t, err)
	assert.IsType(t, &smiles.Atom{}, atom)

	// stored graphs are found by fingerprint
	assert.False(t, cat.TryAddGraph(X))

	// replacing keeps the count
	require.NoError(t, cat.Put("decalindiol", smiles.MustParse("CCCC")))
	assert.Equal(t, int64(1), cat.NumGraphs())
	Y, err = cat.Get("decalindiol", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, Y.Order())
	assert.True(t, cat.TryAddGraph(X))

	require.NoError(t, cat.Delete("decalindiol"))
	require.NoError(t, cat.Delete("decalindiol"))
	_, err = cat.Get("decalindiol", nil)
	assert.ErrorIs(t, err, gomol.ErrGraphNotFound)
	assert.Equal(t, int64(1), cat.NumGraphs())

	assert.ErrorIs(t, cat.Put("", X), gomol.ErrBadCatalogParam)
}

func TestSharedFingerprint(t *testing.T) {
	cat := openInMemory(t)

	X := smiles.MustParse("CC(=O)O")
	require.NoError(t, cat.Put("a", X))
	require.NoError(t, cat.Put("b", X))
	require.NoError(t, cat.Delete("b"))
	assert.False(t, cat.TryAddGraph(X), "X is still stored as a")

	require.NoError(t, cat.Put("c", X))
	require.NoError(t, cat.Delete("a"))
	assert.False(t, cat.TryAddGraph(X), "X is still stored as c")

	// renaming to a different graph releases the fingerprint
	require.NoError(t, cat.Put("c", smiles.MustParse("CO")))
	assert.True(t, cat.TryAddGraph(X))
	assert.Equal(t, int64(2), cat.NumGraphs())
}

func TestSelect(t *testing.T) {
	cat := openInMemory(t)
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, cat.Put(name, smiles.MustParse("CC")))
	}

	var names []string
	err := cat.Select(nil, func(name string, X *libmol.Graph) bool {
		names = append(names, name)
		assert.Equal(t, 2, X.Order())
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	names = names[:0]
	err = cat.Select(nil, func(name string, X *libmol.Graph) bool {
		names = append(names, name)
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)

	all := libmol.SelectFromCatalog(cat, smiles.DecodeAtom).Collect()
	assert.Len(t, all, 3)
}

func TestStreamIntoCatalog(t *testing.T) {
	cat := openInMemory(t)

	stream := libmol.NewGraphStream()
	go func() {
		for _, smi := range append(molecules, molecules...) {
			stream.PushGraph(smiles.MustParse(smi))
		}
		stream.Close()
	}()

	added := stream.AddTo(cat, libmol.AddGraphOpts{}).PullAll()
	assert.Equal(t, len(molecules), added)
	assert.Equal(t, int64(len(molecules)), cat.NumGraphs())
}

func TestReopen(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "TestReopen")

	cat, err := catalog.OpenCatalog(gomol.CatalogOpts{DbPathName: pathname})
	require.NoError(t, err)
	for _, smi := range molecules {
		require.True(t, cat.TryAddGraph(smiles.MustParse(smi)))
	}
	require.NoError(t, cat.Close())
	require.NoError(t, cat.Close())

	cat, err = catalog.OpenCatalog(gomol.CatalogOpts{DbPathName: pathname, ReadOnly: true})
	require.NoError(t, err)
	defer cat.Close()

	assert.True(t, cat.IsReadOnly())
	assert.Equal(t, int64(len(molecules)), cat.NumGraphs())
	assert.False(t, cat.TryAddGraph(smiles.MustParse("CCCCCC")))
	assert.ErrorIs(t, cat.Put("x", smiles.MustParse("C")), gomol.ErrBadCatalogParam)

	count := 0
	require.NoError(t, cat.Select(smiles.DecodeAtom, func(name string, X *libmol.Graph) bool {
		count++
		return true
	}))
	assert.Equal(t, len(molecules), count)
}

func TestBadParams(t *testing.T) {
	_, err := catalog.OpenCatalog(gomol.CatalogOpts{ReadOnly: true})
	assert.ErrorIs(t, err, gomol.ErrBadCatalogParam)
}
