package libmol_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fingerprintSet struct {
	mu     sync.Mutex
	seen   map[uint64]struct{}
	closed bool
}

func (s *fingerprintSet) TryAddGraph(X *libmol.Graph) bool {
	fp, err := X.Fingerprint()
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.seen[fp]; exists {
		return false
	}
	s.seen[fp] = struct{}{}
	return true
}

func (s *fingerprintSet) Close() error {
	s.closed = true
	return nil
}

func sendPerms(perms ...[]int) <-chan []int {
	ch := make(chan []int, len(perms))
	for _, perm := range perms {
		ch <- perm
	}
	close(ch)
	return ch
}

func TestPermuteStream(t *testing.T) {
	X := newPath(t, 0, 4)

	perms := sendPerms(
		[]int{0, 1, 2, 3},
		[]int{3, 2, 1, 0},
		[]int{0, 0, 1, 2}, // skipped
		[]int{1, 0, 3, 2},
		[]int{0, 1}, // skipped
	)
	all := libmol.PermuteStream(context.Background(), X, perms, 3).Collect()
	require.Len(t, all, 3)
	for _, Y := range all {
		assert.Equal(t, 4, Y.Order())
		assert.Equal(t, 3, Y.Size())
	}
}

func TestPermuteStreamCancel(t *testing.T) {
	X := newPath(t, 0, 4)
	perms := make(chan []int)
	ctx, cancel := context.WithCancel(context.Background())

	stream := libmol.PermuteStream(ctx, X, perms, 2)
	perms <- []int{0, 1, 2, 3}
	Y := stream.PullGraph()
	require.NotNil(t, Y)

	cancel()
	for range stream.Outlet {
	}
}

func TestStreamDedupe(t *testing.T) {
	X := newPath(t, 0, 3)

	// permutations of a path that map it onto itself collapse to one graph
	perms := sendPerms(
		[]int{0, 1, 2},
		[]int{2, 1, 0},
		[]int{0, 1, 2},
		[]int{1, 0, 2},
	)
	target := &fingerprintSet{seen: map[uint64]struct{}{}}
	stream := libmol.PermuteStream(context.Background(), X, perms, 1).
		Sort().
		AddTo(target, libmol.AddGraphOpts{AutoCloseCatalog: true})

	assert.Equal(t, 2, stream.PullAll())
	assert.True(t, target.closed)
}

func TestStreamPrint(t *testing.T) {
	X := libmol.NewGraph(0)
	X.AddAtom(libmol.LabelAtom("C"))
	X.AddAtom(libmol.LabelAtom("N"))
	require.NoError(t, X.AddEdge(libmol.NewEdge(0, 1, gomol.Triple)))

	out := &stringWriter{}
	n := libmol.StreamGraph(X).Print(out, gomol.PrintOpts{Atoms: true, Edges: true}).PullAll()
	assert.Equal(t, 1, n)
	assert.Equal(t, "000001,order=2,size=1,\"C N\",\"0#1\",\n", out.String())
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}
