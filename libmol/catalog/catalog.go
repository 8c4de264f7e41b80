package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	gGraphPrefix, name => fingerprint (8 bytes, big endian), GraphDef
	...

	gFingerprintPrefix, fingerprint (8 bytes, big endian) => name
	...

Graph entries sort by name, so Select() visits graphs in name order.  The fingerprint index names one
live graph per fingerprint, so TryAddGraph() decodes a stored graph only when fingerprints match.

***/

var (
	gCatalogStateKey   = []byte{0x00, 0x00, 0x01}
	gGraphPrefix       = []byte("g/")
	gFingerprintPrefix = []byte("f/")
)

const (
	kMajorVers = 2026
	kMinorVers = 1
)

// CatalogState is the header record of a catalog.
type CatalogState struct {
	MajorVers int32 `protobuf:"varint,1,opt,name=major_vers,json=majorVers,proto3" json:"major_vers,omitempty"`
	MinorVers int32 `protobuf:"varint,2,opt,name=minor_vers,json=minorVers,proto3" json:"minor_vers,omitempty"`
	NumGraphs int64 `protobuf:"varint,3,opt,name=num_graphs,json=numGraphs,proto3" json:"num_graphs,omitempty"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}

// catalog is a badger wrapper holding graphs by name.
type catalog struct {
	mu         sync.Mutex
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName, or an in-memory catalog if no path is given.
func OpenCatalog(opts gomol.CatalogOpts) (libmol.Catalog, error) {
	cat := &catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // writes are serialized by cat.mu
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gomol.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}

	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(gomol.ErrBadCatalogParam, "catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("opened catalog %q (%d graphs)", opts.DbPathName, cat.state.NumGraphs)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := proto.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (cat *catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}

	err := cat.flushState()
	if closeErr := cat.db.Close(); err == nil {
		err = closeErr
	}
	cat.db = nil
	klog.V(2).Infof("closed catalog (%d graphs)", cat.state.NumGraphs)
	return err
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumGraphs() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumGraphs
}

func graphKey(name string) []byte {
	key := make([]byte, 0, len(gGraphPrefix)+len(name))
	key = append(key, gGraphPrefix...)
	return append(key, name...)
}

func fingerprintKey(fp uint64) []byte {
	key := make([]byte, len(gFingerprintPrefix)+8)
	copy(key, gFingerprintPrefix)
	binary.BigEndian.PutUint64(key[len(gFingerprintPrefix):], fp)
	return key
}

func (cat *catalog) checkWritable() error {
	if cat.db == nil {
		return errors.Wrap(gomol.ErrBadCatalogParam, "catalog is closed")
	}
	if cat.readOnly {
		return errors.Wrap(gomol.ErrBadCatalogParam, "catalog is read-only")
	}
	return nil
}

func (cat *catalog) Put(name string, X *libmol.Graph) error {
	if len(name) == 0 {
		return errors.Wrap(gomol.ErrBadCatalogParam, "graph name is empty")
	}
	fp, err := X.Fingerprint()
	if err != nil {
		return err
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.put(name, fp, X)
}

// put writes X under name and updates the fingerprint index.  cat.mu must be held.
func (cat *catalog) put(name string, fp uint64, X *libmol.Graph) error {
	if err := cat.checkWritable(); err != nil {
		return err
	}

	def, err := X.MarshalGraphDef()
	if err != nil {
		return err
	}
	val := make([]byte, 8, 8+len(def))
	binary.BigEndian.PutUint64(val, fp)
	val = append(val, def...)

	isNew := false
	err = cat.db.Update(func(txn *badger.Txn) error {
		key := graphKey(name)
		oldFP, err := getFingerprint(txn, key)
		switch err {
		case nil:
			if err = cat.unindex(txn, oldFP, name); err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
			isNew = true
		default:
			return err
		}

		if err = txn.Set(key, val); err != nil {
			return err
		}

		// An existing entry already names a live graph with this fingerprint.
		fpKey := fingerprintKey(fp)
		_, err = txn.Get(fpKey)
		if err == badger.ErrKeyNotFound {
			return txn.Set(fpKey, []byte(name))
		}
		return err
	})
	if err != nil {
		return err
	}

	if isNew {
		cat.state.NumGraphs++
		cat.stateDirty = true
	}
	return nil
}

func getFingerprint(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err != nil {
		return 0, err
	}
	var fp uint64
	err = item.Value(func(val []byte) error {
		if len(val) < 8 {
			return errors.Wrapf(gomol.ErrUnmarshal, "entry %q is truncated", key)
		}
		fp = binary.BigEndian.Uint64(val)
		return nil
	})
	return fp, err
}

// unindex moves the fingerprint entry for fp off of name, onto another graph with the same fingerprint if there is one.
func (cat *catalog) unindex(txn *badger.Txn, fp uint64, name string) error {
	fpKey := fingerprintKey(fp)
	item, err := txn.Get(fpKey)
	if err == badger.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(owner, []byte(name)) {
		return nil
	}

	heir := ""
	err = scanFingerprint(txn, fp, func(other string, _ []byte) (bool, error) {
		if other == name {
			return true, nil
		}
		heir = other
		return false, nil
	})
	if err != nil {
		return err
	}
	if len(heir) > 0 {
		return txn.Set(fpKey, []byte(heir))
	}
	return txn.Delete(fpKey)
}

// scanFingerprint calls fn with each graph entry whose fingerprint is fp, in name order, until fn returns false.
func scanFingerprint(txn *badger.Txn, fp uint64, fn func(name string, val []byte) (bool, error)) error {
	it := txn.NewIterator(badger.IteratorOptions{
		Prefix: gGraphPrefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		name := string(item.Key()[len(gGraphPrefix):])

		more := true
		err := item.Value(func(val []byte) error {
			if len(val) < 8 || binary.BigEndian.Uint64(val) != fp {
				return nil
			}
			var err error
			more, err = fn(name, val)
			return err
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}

// hasGraph reports if a graph with fingerprint fp and the given canonic encoding is stored.
func hasGraph(txn *badger.Txn, fp uint64, canon []byte) (bool, error) {
	item, err := txn.Get(fingerprintKey(fp))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return false, err
	}

	item, err = txn.Get(graphKey(string(owner)))
	if err != nil {
		return false, err
	}
	found := false
	err = item.Value(func(val []byte) error {
		found, err = sameCanonic(val, canon)
		return err
	})
	if err != nil || found {
		return found, err
	}

	// fp collides with a different graph, so check the rest sharing it
	err = scanFingerprint(txn, fp, func(name string, val []byte) (bool, error) {
		if name == string(owner) {
			return true, nil
		}
		var err error
		found, err = sameCanonic(val, canon)
		return !found, err
	})
	return found, err
}

func sameCanonic(val []byte, canon []byte) (bool, error) {
	X, err := decodeEntry(val, libmol.DecodeRawAtom)
	if err != nil {
		return false, err
	}
	buf, err := X.CanonicEncoding()
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, canon), nil
}

func (cat *catalog) Get(name string, decode libmol.AtomDecoder) (*libmol.Graph, error) {
	cat.mu.Lock()
	db := cat.db
	cat.mu.Unlock()
	if db == nil {
		return nil, errors.Wrap(gomol.ErrBadCatalogParam, "catalog is closed")
	}

	var X *libmol.Graph
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(graphKey(name))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(gomol.ErrGraphNotFound, "%q", name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			X, err = decodeEntry(val, decode)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return X, nil
}

func decodeEntry(val []byte, decode libmol.AtomDecoder) (*libmol.Graph, error) {
	if len(val) < 8 {
		return nil, errors.Wrap(gomol.ErrUnmarshal, "catalog entry is truncated")
	}
	return libmol.UnmarshalGraph(val[8:], decode)
}

func (cat *catalog) Delete(name string) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if err := cat.checkWritable(); err != nil {
		return err
	}

	wasPresent := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		key := graphKey(name)
		fp, err := getFingerprint(txn, key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if err = cat.unindex(txn, fp, name); err != nil {
			return err
		}
		wasPresent = true
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	if wasPresent {
		cat.state.NumGraphs--
		cat.stateDirty = true
	}
	return nil
}

// TryAddGraph adds X, named by its fingerprint, if no identical graph is present.
//
// If true is returned, X was not present and was added.
func (cat *catalog) TryAddGraph(X *libmol.Graph) bool {
	canon, err := X.CanonicEncoding()
	if err != nil {
		klog.Warningf("graph not added: %v", err)
		return false
	}
	fp := xxhash.Sum64(canon)

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.checkWritable() != nil {
		return false
	}

	exists := false
	name := fmt.Sprintf("%016x", fp)
	err = cat.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = hasGraph(txn, fp, canon)
		if err != nil || exists {
			return err
		}

		// a different graph with the same fingerprint may hold the name
		for n := 1; ; n++ {
			_, err = txn.Get(graphKey(name))
			if err == badger.ErrKeyNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			name = fmt.Sprintf("%016x-%d", fp, n)
		}
	})
	if err != nil {
		klog.Warningf("catalog lookup failed: %v", err)
		return false
	}
	if exists {
		return false
	}

	if err = cat.put(name, fp, X); err != nil {
		klog.Warningf("graph not added: %v", err)
		return false
	}
	return true
}

// Select will call onHit() with every graph in the catalog, in name order.
//
// Enumeration stops when there are no more graphs or if onHit() returns false.
func (cat *catalog) Select(decode libmol.AtomDecoder, onHit func(name string, X *libmol.Graph) bool) error {
	cat.mu.Lock()
	db := cat.db
	cat.mu.Unlock()
	if db == nil {
		return errors.Wrap(gomol.ErrBadCatalogParam, "catalog is closed")
	}

	txn := db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         gGraphPrefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		name := string(item.Key()[len(gGraphPrefix):])

		var X *libmol.Graph
		err := item.Value(func(val []byte) error {
			var err error
			X, err = decodeEntry(val, decode)
			return err
		})
		if err != nil {
			return errors.Wrapf(err, "graph %q", name)
		}
		if !onHit(name, X) {
			break
		}
	}
	return nil
}
