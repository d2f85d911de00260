// Package sparseindex is a column-oriented store of sparse vectors: one
// posting list per dimension, with an in-memory buffer that is flushed to
// an immutable segment once it grows past a configurable trigger. It
// generalizes the teacher's single-column, single-valued ColumnStore to
// many independently-flushing dimensions of (point id, weight) pairs.
package sparseindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/weaviate/sroar"

	"vibe-sparse/pkg/issues"
	"vibe-sparse/pkg/postings"
)

// dimState is one dimension's memtable plus its immutable segment history,
// oldest first.
type dimState struct {
	pending  *postings.PostingBuilder
	pendingN int
	segments []*postings.PostingList
}

// Index is a multi-dimensional sparse vector store.
type Index struct {
	mu           sync.RWMutex
	dims         map[uint32]*dimState
	flushTrigger int
	tombstones   *sroar.Bitmap
	issues       *issues.Dashboard
}

// IndexOption configures an Index at construction time.
type IndexOption func(*Index)

// WithFlushTrigger sets the number of pending entries in a dimension's
// memtable that triggers an automatic flush to a new segment. The zero
// value (the default) disables automatic flushing; call FlushAll
// explicitly instead.
func WithFlushTrigger(n int) IndexOption {
	return func(idx *Index) { idx.flushTrigger = n }
}

// WithDashboard attaches an issues.Dashboard that the index reports
// flush-time anomalies to (e.g. a duplicate id within one memtable
// window). If omitted, a private dashboard is used.
func WithDashboard(d *issues.Dashboard) IndexOption {
	return func(idx *Index) { idx.issues = d }
}

// NewIndex returns an empty index.
func NewIndex(opts ...IndexOption) *Index {
	idx := &Index{
		dims:       make(map[uint32]*dimState),
		tombstones: sroar.NewBitmap(),
		issues:     issues.NewDashboard(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Upsert adds or overwrites a sparse vector at pointID. Each dimension's
// weight is appended to that dimension's memtable; a dimension whose
// memtable reaches the configured flush trigger is flushed immediately.
// A point re-upserted before its dimension flushes simply gets two
// memtable entries for the same id; flushing resolves that by keeping the
// most recently added one, so the pending weight always wins over a stale
// one (see pkg/postings.PostingBuilder.BuildLastWriteWins and DESIGN.md).
func (idx *Index) Upsert(pointID uint32, vector map[uint32]float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tombstones.Remove(uint64(pointID))

	for dimID, weight := range vector {
		d, ok := idx.dims[dimID]
		if !ok {
			d = &dimState{pending: postings.NewBuilder()}
			idx.dims[dimID] = d
		}
		d.pending.Add(pointID, weight)
		d.pendingN++

		if idx.flushTrigger > 0 && d.pendingN >= idx.flushTrigger {
			idx.flushDimLocked(dimID)
		}
	}
	return nil
}

// Delete marks pointID as removed. Removed points are excluded from the
// scores computed by the scorer package; their entries are not purged
// from existing segments, so SegmentsForScoring still returns them.
func (idx *Index) Delete(pointID uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tombstones.Set(uint64(pointID))
}

// IsDeleted reports whether pointID has been deleted.
func (idx *Index) IsDeleted(pointID uint32) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tombstones.Contains(uint64(pointID))
}

// FlushAll flushes every dimension with a non-empty memtable into a new
// segment. Dimensions with nothing pending are left untouched.
func (idx *Index) FlushAll() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	dimIDs := make([]uint32, 0, len(idx.dims))
	for id := range idx.dims {
		dimIDs = append(dimIDs, id)
	}
	sort.Slice(dimIDs, func(i, j int) bool { return dimIDs[i] < dimIDs[j] })

	for _, dimID := range dimIDs {
		if idx.dims[dimID].pendingN == 0 {
			continue
		}
		idx.flushDimLocked(dimID)
	}
	return nil
}

// flushDimLocked builds the pending memtable for dimID into a segment and
// appends it to that dimension's segment list. If the memtable holds two
// entries for the same point (re-upserted before this flush), the
// collision is reported to the dashboard and the segment keeps the most
// recently added entry. Callers must hold idx.mu.
func (idx *Index) flushDimLocked(dimID uint32) {
	d := idx.dims[dimID]
	if d.pendingN == 0 {
		return
	}
	code := issues.Code{Type: "duplicate_id_in_flush_window", Distinctive: fmt.Sprintf("dim-%d", dimID)}
	segment, err := d.pending.BuildStrict()
	if err != nil {
		idx.issues.Submit(code, err.Error())
		segment = d.pending.BuildLastWriteWins()
	} else {
		idx.issues.Solve(code)
	}
	d.segments = append(d.segments, segment)
	d.pending = postings.NewBuilder()
	d.pendingN = 0
}

// ActiveIssueCodes returns the codes of every health issue currently
// active on this index's dashboard (e.g. a flush that had to resolve a
// duplicate id within one memtable window).
func (idx *Index) ActiveIssueCodes() []issues.Code {
	return idx.issues.Codes()
}

// Dimensions returns the ids of every dimension with at least one entry,
// pending or flushed.
func (idx *Index) Dimensions() []uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]uint32, 0, len(idx.dims))
	for id := range idx.dims {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SegmentsForScoring returns dimID's flushed segments (oldest first) and,
// if non-empty, its pending memtable built into a trailing segment acting
// as the newest one. Used by pkg/scorer.
func (idx *Index) SegmentsForScoring(dimID uint32) []*postings.PostingList {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	d, ok := idx.dims[dimID]
	if !ok {
		return nil
	}
	out := make([]*postings.PostingList, len(d.segments), len(d.segments)+1)
	copy(out, d.segments)
	if d.pendingN > 0 {
		out = append(out, d.pending.BuildLastWriteWins())
	}
	return out
}

// DeletedSnapshot returns a copy of the current tombstone bitmap.
func (idx *Index) DeletedSnapshot() *sroar.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tombstones.Clone()
}
