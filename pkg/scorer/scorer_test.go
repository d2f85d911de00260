package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-sparse/pkg/sparseindex"
)

func TestScoreDotProduct(t *testing.T) {
	idx := sparseindex.NewIndex()
	require.NoError(t, idx.Upsert(1, map[uint32]float32{1: 1.0, 2: 2.0}))
	require.NoError(t, idx.Upsert(2, map[uint32]float32{1: 3.0}))
	require.NoError(t, idx.FlushAll())

	results := Score(idx, map[uint32]float32{1: 1.0, 2: 1.0}, Options{})
	require.Len(t, results, 2)

	byID := map[uint32]float32{}
	for _, r := range results {
		byID[r.PointID] = r.Score
	}
	assert.Equal(t, float32(3.0), byID[1]) // 1*1.0 + 1*2.0
	assert.Equal(t, float32(3.0), byID[2]) // 1*3.0

	assert.Equal(t, uint32(1), results[0].PointID) // tie broken by ascending id
}

func TestScoreRespectsTombstones(t *testing.T) {
	idx := sparseindex.NewIndex()
	require.NoError(t, idx.Upsert(1, map[uint32]float32{1: 5.0}))
	require.NoError(t, idx.FlushAll())
	idx.Delete(1)

	results := Score(idx, map[uint32]float32{1: 1.0}, Options{})
	assert.Empty(t, results)
}

func TestScoreNewerSegmentWinsOnReupsert(t *testing.T) {
	idx := sparseindex.NewIndex()
	require.NoError(t, idx.Upsert(1, map[uint32]float32{1: 1.0}))
	require.NoError(t, idx.FlushAll())
	require.NoError(t, idx.Upsert(1, map[uint32]float32{1: 9.0}))
	require.NoError(t, idx.FlushAll())

	results := Score(idx, map[uint32]float32{1: 1.0}, Options{})
	require.Len(t, results, 1)
	assert.Equal(t, float32(9.0), results[0].Score)
}

func TestScoreLimit(t *testing.T) {
	idx := sparseindex.NewIndex()
	for i := uint32(0); i < 5; i++ {
		require.NoError(t, idx.Upsert(i, map[uint32]float32{1: float32(i)}))
	}
	require.NoError(t, idx.FlushAll())

	results := Score(idx, map[uint32]float32{1: 1.0}, Options{Limit: 2})
	require.Len(t, results, 2)
	assert.Equal(t, uint32(4), results[0].PointID)
	assert.Equal(t, uint32(3), results[1].PointID)
}
