package libmol

import (
	"github.com/2x3systems/molgraph/gomol"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"
)

// ValidatePermutation checks that perm is a bijection of [0, order).
func ValidatePermutation(perm []int, order int) error {
	if len(perm) != order {
		return errors.Wrapf(gomol.ErrInvalidPermutation, "length %d, order %d", len(perm), order)
	}

	seen := make([]bool, order)
	for i, pi := range perm {
		if pi < 0 || pi >= order {
			return errors.Wrapf(gomol.ErrInvalidPermutation, "perm[%d] = %d is out of range", i, pi)
		}
		if seen[pi] {
			return errors.Wrapf(gomol.ErrInvalidPermutation, "perm[%d] = %d is repeated", i, pi)
		}
		seen[pi] = true
	}
	return nil
}

// Permute returns a new Graph where vertex perm[i] holds atom i of X.
//
// Every edge endpoint, adjacency list (keeping its order) and stored topology is relabeled through perm,
// so the new graph is structurally identical under the new labeling.  X is never modified, so many
// goroutines may permute a shared X at once.
//
// Topologies that refer to vertices outside [0, Order()) can't be relabeled and are not carried over.
func (X *Graph) Permute(perm []int) (*Graph, error) {
	if err := ValidatePermutation(perm, X.order); err != nil {
		return nil, err
	}
	return X.permute(perm), nil
}

// Clone returns an independent copy of X.
func (X *Graph) Clone() *Graph {
	return X.permute(identityPerm(X.order))
}

func (X *Graph) permute(perm []int) *Graph {
	Y := &Graph{
		order:      X.order,
		size:       X.size,
		topologies: treemap.NewWithIntComparator(),
	}
	Y.grow(X.order)

	for u := 0; u < X.order; u++ {
		pu := perm[u]
		Y.atoms[pu] = X.atoms[u]

		adj := make([]Edge, len(X.adj[u]))
		for i, e := range X.adj[u] {
			adj[i] = e.Relabel(perm)
		}
		Y.adj[pu] = adj
	}

	Y.edges = make([]Edge, len(X.edges))
	for i, e := range X.edges {
		Y.edges[i] = e.Relabel(perm)
	}

	it := X.topologies.Iterator()
	for it.Next() {
		t := it.Value().(Topology)
		if t.inRange(X.order) {
			Y.topologies.Put(perm[t.atom], t.Transform(perm))
		}
	}

	return Y
}

func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
