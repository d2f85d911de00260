package postings

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrDuplicateID is returned by BuildStrict when two entries share an id.
var ErrDuplicateID = errors.New("postings: duplicate id in builder entries")

// PostingBuilder accumulates (id, weight) entries in any order and
// produces an immutable PostingList. This mirrors the teacher's
// Writer-then-Finalize split, but for arbitrary-order construction rather
// than incremental block emission (that's PostingList.Upsert).
type PostingBuilder struct {
	entries []Element
}

// NewBuilder returns an empty builder.
func NewBuilder() *PostingBuilder {
	return &PostingBuilder{}
}

// Add appends an entry. Order does not matter; Build sorts by id.
func (b *PostingBuilder) Add(id uint32, weight float32) {
	b.entries = append(b.entries, Element{ID: id, Weight: weight, MaxNextWeight: weight})
}

// dedupMode selects how build resolves two entries sharing an id.
type dedupMode int

const (
	dedupFirst dedupMode = iota // keep the first-added entry, drop the rest
	dedupLast                   // keep the last-added entry, drop the rest
	dedupError                  // return ErrDuplicateID instead of dropping anything
)

// Build sorts the accumulated entries by id and encodes them into a
// PostingList. If two entries share an id, the first one encountered after
// the stable sort (i.e. the one added first) silently wins; use
// BuildStrict to reject duplicates instead, or BuildLastWriteWins if the
// most recently added entry should win instead. This matches the original
// implementation's debug-only duplicate assertion, which is compiled out
// in release builds (see DESIGN.md).
func (b *PostingBuilder) Build() *PostingList {
	list, _ := b.build(dedupFirst)
	return list
}

// BuildStrict behaves like Build but returns ErrDuplicateID instead of
// silently keeping the first of a duplicate pair.
func (b *PostingBuilder) BuildStrict() (*PostingList, error) {
	return b.build(dedupError)
}

// BuildLastWriteWins behaves like Build but, for entries sharing an id,
// keeps the last-added one instead of the first. This is the dedup
// direction a memtable that buffers repeated Upserts before a flush needs,
// since a point re-upserted with a new weight should win over its stale
// one (see pkg/sparseindex).
func (b *PostingBuilder) BuildLastWriteWins() *PostingList {
	list, _ := b.build(dedupLast)
	return list
}

func (b *PostingBuilder) build(mode dedupMode) (*PostingList, error) {
	sorted := make([]Element, len(b.entries))
	copy(sorted, b.entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	deduped := sorted[:0:0]
	for i, e := range sorted {
		if i > 0 && e.ID == sorted[i-1].ID {
			switch mode {
			case dedupError:
				return nil, errors.Wrapf(ErrDuplicateID, "id %d", e.ID)
			case dedupLast:
				deduped[len(deduped)-1] = e
			}
			continue
		}
		deduped = append(deduped, e)
	}

	list := &PostingList{}
	if len(deduped) == 0 {
		return list, nil
	}

	fullBlocks := len(deduped) / BlockSize
	tailStart := fullBlocks * BlockSize

	list.blocks = make([]blockHeader, fullBlocks)
	bitWidths := make([]uint8, fullBlocks)
	offset := uint32(0)
	var ids [BlockSize]uint32
	for bi := 0; bi < fullBlocks; bi++ {
		for i := 0; i < BlockSize; i++ {
			ids[i] = deduped[bi*BlockSize+i].ID
		}
		initial := ids[0]
		bitWidth := bitsNeeded(predecessorOf(initial), &ids)
		bitWidths[bi] = bitWidth

		var weights [BlockSize]float32
		for i := 0; i < BlockSize; i++ {
			weights[i] = deduped[bi*BlockSize+i].Weight
		}

		list.blocks[bi] = blockHeader{initial: initial, offset: offset, weights: weights}
		offset += uint32(compressedSize(bitWidth))
	}

	list.idBytes = make([]byte, offset)
	for bi := 0; bi < fullBlocks; bi++ {
		for i := 0; i < BlockSize; i++ {
			ids[i] = deduped[bi*BlockSize+i].ID
		}
		hdr := &list.blocks[bi]
		size := compressedSize(bitWidths[bi])
		encodeBlock(predecessorOf(hdr.initial), &ids, list.idBytes[hdr.offset:int(hdr.offset)+size], bitWidths[bi])
	}

	for _, e := range deduped[tailStart:] {
		list.remainders = append(list.remainders, remainder{id: e.ID, weight: e.Weight})
	}

	last := deduped[len(deduped)-1]
	list.last = &last
	list.hasLast = true

	return list, nil
}
