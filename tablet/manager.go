package tablet

import (
	"sync"
	"time"

	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/rowset"
	"github.com/duskcore/olapcore/schema"
)

// shardCount is the number of independently-locked buckets in Manager's
// registry. Sharding by tablet id keeps lock contention local to tablets
// that happen to collide mod shardCount, rather than serializing every
// lookup in the table behind one global lock.
const shardCount = 64

// tabletKey pairs a tablet id with the schema hash it was created under, so
// a stale caller holding a pre-migration schema hash gets NotFound instead
// of silently resolving to a tablet now running a different schema.
type tabletKey struct {
	id         uint64
	schemaHash uint64
}

type shard struct {
	mu      sync.RWMutex
	tablets map[tabletKey]*Tablet
}

// Manager is a sharded registry of every Tablet belonging to one table.
type Manager struct {
	shards [shardCount]*shard
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	m := &Manager{}
	for i := range m.shards {
		m.shards[i] = &shard{tablets: make(map[tabletKey]*Tablet)}
	}
	return m
}

func (m *Manager) shardFor(tabletID uint64) *shard {
	return m.shards[tabletID%shardCount]
}

// CreateTablet registers a new, empty Tablet under id. Returns
// AlreadyExists if id is already registered under sch's schema hash.
func (m *Manager) CreateTablet(id uint64, sch *schema.TabletSchema, createdAt time.Time) (*Tablet, error) {
	s := m.shardFor(id)
	key := tabletKey{id: id, schemaHash: sch.Hash()}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tablets[key]; exists {
		return nil, errs.NewAlreadyExists("tablet: id already registered")
	}

	t := New(id, sch, createdAt)
	s.tablets[key] = t
	return t, nil
}

// GetTablet locates the tablet registered under (id, schemaHash).
func (m *Manager) GetTablet(id uint64, schemaHash uint64) (*Tablet, error) {
	s := m.shardFor(id)
	key := tabletKey{id: id, schemaHash: schemaHash}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tablets[key]
	if !ok {
		return nil, errs.NewNotFound("tablet: id")
	}
	return t, nil
}

// PublishRowset locates (tabletID, schemaHash) and publishes meta to it,
// per spec §4.9's locate-then-mutate protocol: the shard lock and tablet
// lookup are held only long enough to find and return the tablet, then
// released before the tablet's own exclusive lock is acquired for
// validation and insertion, so a slow publish on one tablet never blocks
// lookups for others in the same shard.
func (m *Manager) PublishRowset(tabletID uint64, schemaHash uint64, meta rowset.Meta) error {
	s := m.shardFor(tabletID)
	key := tabletKey{id: tabletID, schemaHash: schemaHash}

	s.mu.RLock()
	t, ok := s.tablets[key]
	s.mu.RUnlock()

	if !ok {
		return errs.NewNotFound("tablet: id")
	}

	return t.Publish(meta)
}

// Tablets returns every tablet currently registered, across all shards.
func (m *Manager) Tablets() []*Tablet {
	var out []*Tablet
	for _, s := range m.shards {
		s.mu.RLock()
		for _, t := range s.tablets {
			out = append(out, t)
		}
		s.mu.RUnlock()
	}
	return out
}
