package libmol

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/plan-systems/klog"
)

// GraphStream is a stage of a graph pipeline.  The stage that creates a stream closes its Outlet.
type GraphStream struct {
	Outlet chan *Graph
}

func NewGraphStream() *GraphStream {
	stream := &GraphStream{
		Outlet: make(chan *Graph, 1),
	}
	return stream
}

// StreamGraph returns a stream that emits a copy of X and then closes.
func StreamGraph(X *Graph) *GraphStream {
	next := NewGraphStream()

	go func() {
		next.Outlet <- X.Clone()
		next.Close()
	}()

	return next
}

func (stream *GraphStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *GraphStream) PushGraph(X *Graph) {
	stream.Outlet <- X
}

// PullGraph blocks until the next graph arrives, returning nil once the stream is closed.
func (stream *GraphStream) PullGraph() *Graph {
	X := <-stream.Outlet
	return X
}

// PullAll drains the stream and returns the number of graphs received.
func (stream *GraphStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains the stream into a slice, in arrival order.
func (stream *GraphStream) Collect() []*Graph {
	var all []*Graph
	for X := range stream.Outlet {
		all = append(all, X)
	}
	return all
}

// Print writes one line per graph to out and passes each graph on.  out is closed once the stream ends.
func (stream *GraphStream) Print(out io.WriteCloser, opts gomol.PrintOpts) *GraphStream {
	next := NewGraphStream()

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for X := range stream.Outlet {
			count++
			fmt.Fprintf(&buf, "%06d,", count)
			X.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			io.WriteString(out, buf.String())
			buf.Reset()
			next.Outlet <- X
		}
		out.Close()
		next.Close()
	}()

	return next
}

// Sort passes on each graph after sorting its adjacency lists.
func (stream *GraphStream) Sort() *GraphStream {
	next := NewGraphStream()

	go func() {
		for X := range stream.Outlet {
			X.Sort()
			next.Outlet <- X
		}
		next.Close()
	}()

	return next
}

// AddTo offers each graph to target and passes on only those target accepted.
func (stream *GraphStream) AddTo(target GraphAdder, opts AddGraphOpts) *GraphStream {
	next := NewGraphStream()

	go func() {
		for X := range stream.Outlet {
			if target.TryAddGraph(X) {
				next.Outlet <- X
			}
		}
		if opts.AutoCloseCatalog {
			if err := target.Close(); err != nil {
				klog.Warningf("error closing graph target: %v", err)
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams every graph in cat, in name order.
func SelectFromCatalog(cat Catalog, decode AtomDecoder) *GraphStream {
	next := NewGraphStream()

	go func() {
		err := cat.Select(decode, func(name string, X *Graph) bool {
			next.Outlet <- X
			return true
		})
		if err != nil {
			klog.Errorf("catalog select failed: %v", err)
		}
		next.Close()
	}()

	return next
}

// PermuteStream emits X.Permute(perm) for every perm received, using numWorkers goroutines that share X.
//
// Output order follows completion, not input order.  Invalid permutations are logged and skipped.
// The stream closes once perms is closed and drained, or once ctx is done.
// X must not be mutated until the stream closes.
func PermuteStream(ctx context.Context, X *Graph, perms <-chan []int, numWorkers int) *GraphStream {
	if numWorkers < 1 {
		numWorkers = 1
	}
	next := NewGraphStream()

	wg := sync.WaitGroup{}
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for {
				var perm []int
				var ok bool
				select {
				case <-ctx.Done():
					return
				case perm, ok = <-perms:
					if !ok {
						return
					}
				}

				Y, err := X.Permute(perm)
				if err != nil {
					klog.Warningf("skipping permutation %v: %v", perm, err)
					continue
				}

				select {
				case <-ctx.Done():
					return
				case next.Outlet <- Y:
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		next.Close()
	}()

	return next
}
