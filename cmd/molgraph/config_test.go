package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	pathname := filepath.Join(t.TempDir(), "molgraph.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte(body), 0600))
	return pathname
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
capacity_hint: 64
catalog: /tmp/molecules
workers: 0
sort: true
`))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.CapacityHint)
	assert.Equal(t, "/tmp/molecules", cfg.Catalog)
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.Sort)
	assert.Empty(t, cfg.Script)

	_, err = LoadConfig(writeConfig(t, "colour: blue\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMergeFlags(t *testing.T) {
	fset := flag.NewFlagSet("test", flag.ContinueOnError)
	flagCfg := DefaultConfig()
	fset.BoolVar(&flagCfg.Sort, "sort", false, "")
	fset.StringVar(&flagCfg.Catalog, "catalog", "", "")
	fset.IntVar(&flagCfg.Workers, "workers", flagCfg.Workers, "")
	require.NoError(t, fset.Parse([]string{"-workers", "9"}))

	fileCfg := DefaultConfig()
	fileCfg.Catalog = "from-file"
	fileCfg.Sort = true

	cfg := mergeFlags(fset, fileCfg, flagCfg)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, "from-file", cfg.Catalog)
	assert.True(t, cfg.Sort)
	assert.True(t, isFlagSet(fset, "workers"))
	assert.False(t, isFlagSet(fset, "sort"))
}

func TestPermList(t *testing.T) {
	var perms permList
	require.NoError(t, perms.Set("1,0,3,2"))
	require.NoError(t, perms.Set(" 0, 1 "))
	assert.Equal(t, permList{{1, 0, 3, 2}, {0, 1}}, perms)
	assert.Equal(t, "1,0,3,2 0,1", perms.String())

	assert.ErrorIs(t, perms.Set("1,x"), gomol.ErrInvalidPermutation)
}
