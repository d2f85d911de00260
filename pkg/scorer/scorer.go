// Package scorer computes sparse dot-product scores against a
// sparseindex.Index. It adapts the teacher's MultiReader.Aggregate: walk
// each dimension's segments from newest to oldest, using a bitmap of ids
// already scored as a deny list so a re-upserted point only ever
// contributes its newest weight.
package scorer

import (
	"sort"

	"github.com/weaviate/sroar"

	"vibe-sparse/pkg/postings"
	"vibe-sparse/pkg/sparseindex"
)

// ScoredPoint is one candidate's accumulated dot product against the
// query vector.
type ScoredPoint struct {
	PointID uint32
	Score   float32
}

// Options configures a Score call.
type Options struct {
	// Limit caps the number of results returned, highest score first. Zero
	// means unlimited.
	Limit int
}

// Score computes the sparse dot product of query against every
// non-deleted point in idx, returning the top results by score
// descending (ties broken by ascending point id).
func Score(idx *sparseindex.Index, query map[uint32]float32, opts Options) []ScoredPoint {
	deleted := idx.DeletedSnapshot()
	acc := make(map[uint32]float32)

	for dimID, queryWeight := range query {
		if queryWeight == 0 {
			continue
		}
		accumulateDim(idx, dimID, queryWeight, deleted, acc)
	}

	out := make([]ScoredPoint, 0, len(acc))
	for id, score := range acc {
		out = append(out, ScoredPoint{PointID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PointID < out[j].PointID
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// accumulateDim walks one dimension's segments newest to oldest, adding
// queryWeight*weight to acc for every undeleted, not-yet-seen point id.
func accumulateDim(idx *sparseindex.Index, dimID uint32, queryWeight float32, deleted *sroar.Bitmap, acc map[uint32]float32) {
	segments := idx.SegmentsForScoring(dimID)
	if len(segments) == 0 {
		return
	}

	seen := sroar.NewBitmap()
	for i := len(segments) - 1; i >= 0; i-- {
		it := segments[i].Iter()
		it.TryForEach(func(e postings.Element) bool {
			if !deleted.Contains(uint64(e.ID)) && !seen.Contains(uint64(e.ID)) {
				acc[e.ID] += queryWeight * e.Weight
			}
			seen.Set(uint64(e.ID))
			return true
		})
	}
}
