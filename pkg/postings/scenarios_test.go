package postings

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: 130 entries (i*3+32, i) -- one full block plus two remainders.
func TestS1BuilderLayout(t *testing.T) {
	b := NewBuilder()
	for i := uint32(0); i < 130; i++ {
		b.Add(i*3+32, float32(i))
	}
	list := b.Build()

	require.Equal(t, 130, list.Len())
	require.Len(t, list.blocks, 1)
	require.Len(t, list.remainders, 2)

	elems := list.ToSlice()
	require.Len(t, elems, 130)
	assert.Equal(t, uint32(32), elems[0].ID)
	assert.Equal(t, uint32(32+129*3), elems[129].ID)
	assert.Equal(t, float32(129), elems[129].Weight)

	last, ok := list.Last()
	require.True(t, ok)
	assert.Equal(t, elems[129], last)
}

// S2: out-of-order insertion, skip_to behavior.
func TestS2SkipToBehavior(t *testing.T) {
	b := NewBuilder()
	for _, e := range []struct {
		id     uint32
		weight float32
	}{
		{1, 1.0}, {2, 2.1}, {5, 5.0}, {3, 2.0}, {8, 3.4},
		{10, 3.0}, {20, 3.0}, {7, 4.0}, {11, 3.0},
	} {
		b.Add(e.id, e.weight)
	}
	list := b.Build()

	want := []uint32{1, 2, 3, 5, 7, 8, 10, 11, 20}
	var got []uint32
	it := list.Iter()
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, e.ID)
	}
	assert.Equal(t, want, got)

	it = list.Iter()
	e, ok := it.SkipTo(7)
	require.True(t, ok)
	assert.Equal(t, uint32(7), e.ID)

	e, ok = it.SkipTo(9)
	assert.False(t, ok)
	peeked, peekOK := it.Peek()
	require.True(t, peekOK)
	assert.Equal(t, uint32(10), peeked.ID)

	e, ok = it.SkipTo(20)
	require.True(t, ok)
	assert.Equal(t, uint32(20), e.ID)

	_, ok = it.SkipTo(21)
	assert.False(t, ok)
	_, peekOK = it.Peek()
	assert.False(t, peekOK)
}

// S3: upsert ids 1..=n one at a time, observing block/remainder counts,
// the cached Last() after every single upsert, and the final sequence
// against the full input, across sizes that cross zero, one, and two
// block boundaries.
func TestS3UpsertBlockBoundary(t *testing.T) {
	for _, n := range []uint32{0, 64, 128, 192, 256, 320} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			list := New()
			want := make([]Element, 0, n)
			for id := uint32(1); id <= n; id++ {
				e := Element{ID: id, Weight: float32(id), MaxNextWeight: float32(id)}
				require.NoError(t, list.Upsert(e))
				want = append(want, e)

				last, ok := list.Last()
				require.True(t, ok, "id=%d", id)
				assert.Equal(t, id, last.ID, "id=%d", id)

				fullBlocks := int(id) / BlockSize
				assert.Equal(t, fullBlocks, len(list.blocks), "id=%d", id)
				assert.Equal(t, int(id)-fullBlocks*BlockSize, len(list.remainders), "id=%d", id)
			}

			if n == 0 {
				_, ok := list.Last()
				assert.False(t, ok)
			}
			assert.Equal(t, want, list.ToSlice())
		})
	}
}

// S7: LenToEnd decrements by exactly one per Next, starting from Len and
// reaching zero exactly when the iterator is exhausted, across sizes that
// cross zero, one, and two block boundaries.
func TestS7LenToEndTracksRemainingElements(t *testing.T) {
	for _, n := range []uint32{0, 64, 128, 192, 256, 320} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			b := NewBuilder()
			for id := uint32(1); id <= n; id++ {
				b.Add(id, float32(id))
			}
			list := b.Build()

			it := list.Iter()
			remaining := list.Len()
			require.Equal(t, remaining, it.LenToEnd())
			for {
				_, ok := it.Next()
				if !ok {
					break
				}
				remaining--
				assert.Equal(t, remaining, it.LenToEnd())
			}
			assert.Equal(t, 0, remaining)
			assert.Equal(t, 0, it.LenToEnd())
		})
	}
}

// S4: save/load round trip, byte-exact on repeat save.
func TestS4SaveLoadRoundTrip(t *testing.T) {
	b := NewBuilder()
	for i := uint32(0); i < 130; i++ {
		b.Add(i*3+32, float32(i))
	}
	list := b.Build()

	var buf1 bytes.Buffer
	require.NoError(t, list.Save(&buf1))

	var buf2 bytes.Buffer
	require.NoError(t, list.Save(&buf2))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())

	loaded, err := Load(bytes.NewReader(buf1.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, list.ToSlice(), loaded.ToSlice())

	origLast, _ := list.Last()
	loadedLast, _ := loaded.Last()
	assert.Equal(t, origLast, loadedLast)
}

// S5: TryForEach resumes across calls.
func TestS5TryForEachResumes(t *testing.T) {
	b := NewBuilder()
	for i := uint32(0); i < 320; i++ {
		b.Add(i*3+32, float32(i))
	}
	list := b.Build()
	it := list.Iter()

	const k = 150
	var first []uint32
	count := 0
	it.TryForEach(func(e Element) bool {
		if count == k {
			return false
		}
		first = append(first, e.ID)
		count++
		return true
	})
	require.Len(t, first, k)

	var rest []uint32
	it.TryForEach(func(e Element) bool {
		rest = append(rest, e.ID)
		return true
	})

	all := list.ToSlice()
	var wantFirst, wantRest []uint32
	for i, e := range all {
		if i < k {
			wantFirst = append(wantFirst, e.ID)
		} else {
			wantRest = append(wantRest, e.ID)
		}
	}
	assert.Equal(t, wantFirst, first)
	assert.Equal(t, wantRest, rest)
}

// S6: empty list behavior.
func TestS6EmptyList(t *testing.T) {
	list := New()
	it := list.Iter()

	_, ok := it.Peek()
	assert.False(t, ok)
	assert.Equal(t, 0, it.LenToEnd())
	_, ok = list.Last()
	assert.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, list.Save(&buf))
	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
	_, ok = loaded.Last()
	assert.False(t, ok)
}
