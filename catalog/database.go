// Package catalog implements the routing layer spec §6.3 treats as an
// external collaborator: databases, tables, partition/bucket-based row
// routing, and the Blob/Clock capabilities the core delegates persistence
// and timestamps to. None of this carries the algorithmic depth of the
// segment or tablet packages; it is conventional range/list partitioning
// plus hash bucketing, using the map-plus-RWMutex registry idiom common to
// this codebase's other registries, generalized here to a two-level
// database→table registry.
package catalog

import (
	"sync"

	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/tablet"
	"github.com/duskcore/olapcore/value"
)

// Database is a named grouping of tables.
type Database struct {
	ID   uint64
	Name string

	mu     sync.RWMutex
	tables map[uint64]*Table
}

// Catalog is the root of the routing layer: every database, keyed by id.
type Catalog struct {
	mu        sync.RWMutex
	databases map[uint64]*Database
	clock     Clock
}

// NewCatalog returns an empty Catalog using clock for tablet creation
// timestamps.
func NewCatalog(clock Clock) *Catalog {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Catalog{databases: make(map[uint64]*Database), clock: clock}
}

// CreateDatabase idempotently creates a database: a repeat call with the
// same id and name is a no-op; a repeat call with the same id and a
// different name fails with AlreadyExists.
func (c *Catalog) CreateDatabase(id uint64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.databases[id]; ok {
		if existing.Name == name {
			return nil
		}
		return errs.NewAlreadyExists("catalog: database id")
	}

	c.databases[id] = &Database{ID: id, Name: name, tables: make(map[uint64]*Table)}
	return nil
}

// GetDatabase returns the database registered under id.
func (c *Catalog) GetDatabase(id uint64) (*Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	db, ok := c.databases[id]
	if !ok {
		return nil, errs.NewNotFound("catalog: database")
	}
	return db, nil
}

// CreateTableWithPartitions registers a table under dbID and pre-creates
// every (partition, bucket, replica) tablet it will ever route rows to,
// per spec §6.2.
func (c *Catalog) CreateTableWithPartitions(
	dbID, tableID uint64,
	name string,
	sch *schema.TabletSchema,
	partition PartitionInfo,
	bucket BucketSpec,
	replicas int,
) (*Table, error) {
	db, err := c.GetDatabase(dbID)
	if err != nil {
		return nil, err
	}
	if bucket.NumBuckets <= 0 {
		return nil, errs.NewInvalidArgument("catalog: NumBuckets must be positive")
	}
	if replicas <= 0 {
		return nil, errs.NewInvalidArgument("catalog: replicas must be positive")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tables[tableID]; exists {
		return nil, errs.NewAlreadyExists("catalog: table id")
	}

	t := &Table{
		ID:        tableID,
		Name:      name,
		Schema:    sch,
		Partition: partition,
		Bucket:    bucket,
		Replicas:  replicas,
		tablets:   tablet.NewManager(),
	}

	now := c.clock.Now()
	count := t.tabletCount()
	for i := 0; i < count; i++ {
		if _, err := t.tablets.CreateTablet(uint64(i), sch, now); err != nil { //nolint:gosec
			return nil, err
		}
	}

	db.tables[tableID] = t
	return t, nil
}

// GetTable returns the table registered under tableID within db.
func (db *Database) GetTable(tableID uint64) (*Table, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tables[tableID]
	if !ok {
		return nil, errs.NewNotFound("catalog: table")
	}
	return t, nil
}

// GetTable returns the table registered under (dbID, tableID).
func (c *Catalog) GetTable(dbID, tableID uint64) (*Table, error) {
	db, err := c.GetDatabase(dbID)
	if err != nil {
		return nil, err
	}
	return db.GetTable(tableID)
}

// TabletForRow routes values to a tablet id within (dbID, tableID).
func (c *Catalog) TabletForRow(dbID, tableID uint64, values []value.Value) (uint64, error) {
	t, err := c.GetTable(dbID, tableID)
	if err != nil {
		return 0, err
	}
	return t.TabletForRow(values)
}
