package libmol

import (
	"bytes"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/plan-systems/klog"
)

type dropDupes struct {
	mu        sync.Mutex
	hashMap   map[uint64][]byte
	bufPool   []byte
	bufPoolSz int
	opts      DropDupeOpts
}

const DefaultPoolSz = 32 * 1024

type DropDupeOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// NewDropDupes returns a memory resident GraphAdder that accepts each distinct graph once.
// Two graphs are the same if their canonic encodings are equal.
func NewDropDupes(opts DropDupeOpts) GraphAdder {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return &dropDupes{
		hashMap: make(map[uint64][]byte),
		opts:    opts,
	}
}

func (cat *dropDupes) Reset() {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	cat.bufPool = nil
	cat.bufPoolSz = 0
	clear(cat.hashMap)
}

func (cat *dropDupes) Close() error {
	cat.Reset()
	return nil
}

func (cat *dropDupes) TryAddGraph(X *Graph) bool {
	Xkey, err := X.CanonicEncoding()
	if err != nil {
		klog.Warningf("dropping graph: %v", err)
		return false
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	// open addressing: step past colliding hashes until a match or a free slot
	hash := xxhash.Sum64(Xkey)
	existing, found := cat.hashMap[hash]
	for found {
		if bytes.Equal(existing, Xkey) {
			return false
		}
		hash++
		existing, found = cat.hashMap[hash]
	}

	// Place a copy of the key in the backing pool, starting a new pool once this one is full
	pos := cat.bufPoolSz
	itemLen := len(Xkey)
	if pos+itemLen > cap(cat.bufPool) {
		cat.bufPool = make([]byte, max(cat.opts.PoolSz, itemLen))
		cat.bufPoolSz = 0
		pos = 0
	}

	cat.hashMap[hash] = append(cat.bufPool[pos:pos], Xkey...)
	cat.bufPoolSz += itemLen
	return true
}

// DropDupes passes on only the first of each distinct graph.
func (stream *GraphStream) DropDupes() *GraphStream {
	return stream.AddTo(NewDropDupes(DropDupeOpts{}), AddGraphOpts{
		AutoCloseCatalog: true,
	})
}
