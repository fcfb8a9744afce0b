// Package versiongraph implements the per-tablet version DAG of spec §4.8:
// each published rowset is an edge from its start version to its end
// version (exclusive), and a consistent snapshot for a requested range is
// the smallest set of edges whose union covers it, preferring fewer,
// larger-span edges at each step.
//
// The incremental-build-then-traverse shape matches this module's other
// registries: edges accumulate as rowsets publish, and
// CaptureConsistentVersions/MaxContinuousVersion walk the accumulated
// structure on demand rather than maintaining a live running index.
package versiongraph

import (
	"sort"

	"github.com/duskcore/olapcore/errs"
	"github.com/duskcore/olapcore/rowset"
)

type edge struct {
	start int64
	end   int64
	id    rowset.ID
}

// Graph is the set of edges representing every currently Visible rowset of
// one tablet. Callers are responsible for removing an edge (via Remove)
// once its rowset transitions out of Visible.
type Graph struct {
	edges   []edge
	byStart map[int64][]edge
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{byStart: make(map[int64][]edge)}
}

// AddRowset records a new edge [start, end) for rowset id. It rejects an
// edge that exactly duplicates one already present, per spec's
// DuplicateVersion invariant; overlapping-but-distinct edges are allowed,
// since compaction can legitimately republish an overlapping, coarser
// rowset before the finer ones are dropped.
func (g *Graph) AddRowset(start, end int64, id rowset.ID) error {
	if end <= start {
		return errs.NewInvalidArgument("versiongraph: end must be greater than start")
	}
	for _, e := range g.byStart[start] {
		if e.end == end {
			return errs.NewDuplicateVersion(start, end)
		}
	}

	e := edge{start: start, end: end, id: id}
	g.edges = append(g.edges, e)
	g.byStart[start] = append(g.byStart[start], e)
	return nil
}

// Remove drops the edge for rowset id, e.g. once its rowset is no longer
// Visible. A no-op if id is not present.
func (g *Graph) Remove(id rowset.ID) {
	filtered := g.edges[:0]
	for _, e := range g.edges {
		if e.id != id {
			filtered = append(filtered, e)
		}
	}
	g.edges = filtered

	for start, list := range g.byStart {
		kept := list[:0]
		for _, e := range list {
			if e.id != id {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(g.byStart, start)
		} else {
			g.byStart[start] = kept
		}
	}
}

func (g *Graph) sortedEdges() []edge {
	sorted := make([]edge, len(g.edges))
	copy(sorted, g.edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end > sorted[j].end
	})
	return sorted
}

// CaptureConsistentVersions returns, in order, the rowset ids forming the
// minimum-cardinality cover of [from, to), preferring at each step the
// available edge with the greatest span and breaking ties by the smallest
// rowset id. Returns a VersionHoleError naming the highest version reached
// if no edge continues the cover.
func (g *Graph) CaptureConsistentVersions(from, to int64) ([]rowset.ID, error) {
	if to <= from {
		return nil, nil
	}

	sorted := g.sortedEdges()
	idx := 0
	curEnd := from
	var best *edge
	var chosen []rowset.ID

	for curEnd < to {
		for idx < len(sorted) && sorted[idx].start <= curEnd {
			e := sorted[idx]
			if best == nil || e.end > best.end || (e.end == best.end && e.id < best.id) {
				best = &e
			}
			idx++
		}

		if best == nil || best.end <= curEnd {
			return nil, errs.NewVersionHole(curEnd)
		}

		chosen = append(chosen, best.id)
		curEnd = best.end
	}

	return chosen, nil
}

// MaxContinuousVersion returns the largest version v such that [0, v) is
// fully covered by Visible rowset edges with no hole.
func (g *Graph) MaxContinuousVersion() int64 {
	sorted := g.sortedEdges()
	idx := 0
	curEnd := int64(0)
	var best *edge

	for {
		for idx < len(sorted) && sorted[idx].start <= curEnd {
			e := sorted[idx]
			if best == nil || e.end > best.end {
				best = &e
			}
			idx++
		}

		if best == nil || best.end <= curEnd {
			return curEnd
		}
		curEnd = best.end
	}
}
