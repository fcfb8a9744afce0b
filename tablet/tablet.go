// Package tablet implements the per-bucket versioned storage unit of spec
// §4: a tablet owns one schema, a set of published rowsets, and the version
// graph those rowsets form. Manager is the sharded registry of tablets
// belonging to one table.
//
// The RWMutex-guarded, map-of-metadata shape follows this module's usual
// registry idiom of guarding a plain map with a sync.RWMutex, generalized
// from a single-lifetime map to a long-lived, concurrently-read struct.
package tablet

import (
	"sync"
	"time"

	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/rowset"
	"github.com/duskcore/olapcore/schema"
	"github.com/duskcore/olapcore/versiongraph"
)

// Tablet is one schema's worth of published rowsets plus the version graph
// they form. All access beyond construction must go through its mutex.
type Tablet struct {
	ID     uint64
	Schema *schema.TabletSchema

	mu                   sync.RWMutex
	rowsets              map[rowset.ID]rowset.Meta
	graph                *versiongraph.Graph
	maxContinuousVersion int64
	nextRowsetID         rowset.ID
	creationTime         time.Time
}

// New creates an empty Tablet for id and sch, stamped with createdAt (the
// caller's clock, so tests can supply a fixed time).
func New(id uint64, sch *schema.TabletSchema, createdAt time.Time) *Tablet {
	return &Tablet{
		ID:                   id,
		Schema:               sch,
		rowsets:              make(map[rowset.ID]rowset.Meta),
		graph:                versiongraph.New(),
		maxContinuousVersion: continuousVersionFromGraph(0),
		nextRowsetID:         1,
		creationTime:         createdAt,
	}
}

// CreationTime returns the time the tablet was created.
func (t *Tablet) CreationTime() time.Time { return t.creationTime }

// NextRowsetID reserves and returns the next rowset id for this tablet.
// Callers use the reserved id to build the rowset.Meta passed to Publish.
func (t *Tablet) NextRowsetID() rowset.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextRowsetID
	t.nextRowsetID++
	return id
}

// Publish validates and installs meta as a new Visible rowset, then
// extends the version graph and recomputes the continuous-coverage
// watermark. Per spec §4.9: schema digest, version ordering, duplicate
// edges and rowset state are all validated under the tablet's exclusive
// lock so a reader never observes a partially-published rowset.
func (t *Tablet) Publish(meta rowset.Meta) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if meta.SchemaHash != t.Schema.Hash() {
		return errs.NewSchemaMismatch("tablet.Publish", t.Schema.Hash(), meta.SchemaHash)
	}
	if meta.VersionTo < meta.VersionFrom {
		return errs.NewInvalidArgument("tablet: rowset VersionTo must not be less than VersionFrom")
	}
	if meta.State != rowset.Visible {
		return errs.NewInvalidArgument("tablet: only Visible rowsets may be published")
	}
	if _, exists := t.rowsets[meta.ID]; exists {
		return errs.NewAlreadyExists("tablet: rowset id already published")
	}

	// meta's version range is inclusive (rowset.Meta doc comment); the
	// version graph's edges are exclusive on their upper bound, so the
	// translation to that representation happens here, once, at the
	// boundary.
	if err := t.graph.AddRowset(meta.VersionFrom, meta.VersionTo+1, meta.ID); err != nil {
		return err
	}

	t.rowsets[meta.ID] = meta
	t.maxContinuousVersion = continuousVersionFromGraph(t.graph.MaxContinuousVersion())
	return nil
}

// continuousVersionFromGraph translates the version graph's exclusive
// upper-bound coverage into the inclusive version number tablet callers
// see: graph value 0 means not even version 0 is covered, which has no
// valid inclusive representation, so it maps to -1.
func continuousVersionFromGraph(graphValue int64) int64 {
	return graphValue - 1
}

// MarkState transitions an existing rowset to a new lifecycle state (e.g.
// Stale once a compaction supersedes it, Dropped once no snapshot
// references it any longer). Transitioning out of Visible removes the
// rowset's edge from the version graph and recomputes the watermark.
func (t *Tablet) MarkState(id rowset.ID, state rowset.State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.rowsets[id]
	if !ok {
		return errs.NewNotFound("tablet: rowset")
	}

	if meta.State == rowset.Visible && state != rowset.Visible {
		t.graph.Remove(id)
		t.maxContinuousVersion = continuousVersionFromGraph(t.graph.MaxContinuousVersion())
	}

	meta.State = state
	t.rowsets[id] = meta
	return nil
}

// MaxContinuousVersion returns the largest version v such that [0, v] is
// fully covered by Visible rowsets with no hole, computed as of the last
// Publish/MarkState. Returns -1 if not even version 0 is covered.
func (t *Tablet) MaxContinuousVersion() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.maxContinuousVersion
}

// CaptureConsistentVersions returns the minimal set of rowset ids covering
// the inclusive range [from, to], per the version graph's
// greatest-span-first selection.
func (t *Tablet) CaptureConsistentVersions(from, to int64) ([]rowset.ID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.CaptureConsistentVersions(from, to+1)
}

// Rowset returns the metadata for id, if published.
func (t *Tablet) Rowset(id rowset.ID) (rowset.Meta, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.rowsets[id]
	return m, ok
}

// Rowsets returns a snapshot of every published rowset's metadata,
// regardless of state.
func (t *Tablet) Rowsets() []rowset.Meta {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]rowset.Meta, 0, len(t.rowsets))
	for _, m := range t.rowsets {
		out = append(out, m)
	}
	return out
}
