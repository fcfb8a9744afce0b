package catalog

import (
	"fmt"
	"sync"

	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/internal/hash"
	"github.com/duskcore/olapcore/rowset"
)

// SegmentBlobPath derives the storage path for one segment belonging to
// rowset id within tabletID. The leading hash-derived shard component
// spreads a table's segment objects across key prefixes instead of
// clustering them under one ever-growing "tabletID/..." prefix, avoiding
// the hot-prefix throttling common to object stores addressed by sorted
// key order.
func SegmentBlobPath(tabletID uint64, id rowset.ID, seq int) string {
	shard := hash.ID(fmt.Sprintf("%d", tabletID)) % 256
	return fmt.Sprintf("%02x/%d/%d-%d.seg", shard, tabletID, id, seq)
}

// Blob is the external persistence capability of spec §6.3: the core
// treats segment bytes as opaque and delegates durability to it, providing
// atomic put (write-temp-then-rename semantics are the caller's concern,
// not this interface's), get, delete and existence-check over named byte
// objects.
type Blob interface {
	Put(path string, data []byte) error
	Get(path string) ([]byte, error)
	Delete(path string) error
	Exists(path string) (bool, error)
}

// MemBlobStore is a process-local Blob backed by a map. Put replaces the
// prior value wholesale, satisfying the "atomic put" contract trivially
// since no partial write is ever observable by a concurrent Get.
type MemBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemBlobStore returns an empty MemBlobStore.
func NewMemBlobStore() *MemBlobStore {
	return &MemBlobStore{objects: make(map[string][]byte)}
}

// Put stores data under path, replacing any prior object there.
func (m *MemBlobStore) Put(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[path] = cp
	return nil
}

// Get returns the bytes stored at path.
func (m *MemBlobStore) Get(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, errs.NewNotFound("blob: " + path)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Delete removes the object at path. A no-op if absent.
func (m *MemBlobStore) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

// Exists reports whether an object is stored at path.
func (m *MemBlobStore) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}
