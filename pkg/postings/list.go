package postings

import "github.com/pkg/errors"

// ErrOutOfOrder is returned by Upsert when the given element's id is not
// strictly greater than the list's current last id.
var ErrOutOfOrder = errors.New("postings: upsert id must be strictly greater than the current last id")

// Element is one (id, weight) entry of a posting list.
type Element struct {
	ID     uint32
	Weight float32

	// MaxNextWeight is advisory only: this implementation always sets it
	// equal to Weight (see DESIGN.md open question on §9's max_next_weight
	// semantics). Do not rely on it for pruning.
	MaxNextWeight float32
}

// blockHeader describes one compressed block of BlockSize ids.
type blockHeader struct {
	initial uint32
	offset  uint32
	weights [BlockSize]float32
}

// remainder is one uncompressed tail entry.
type remainder struct {
	id     uint32
	weight float32
}

// PostingList is an owning, immutable-after-build container for a single
// sparse dimension's (id, weight) pairs, kept in strictly increasing id
// order. It is safe for concurrent reads (multiple iterators) as long as
// no Upsert is in flight; Upsert requires exclusive access.
type PostingList struct {
	idBytes    []byte
	blocks     []blockHeader
	remainders []remainder
	last       *Element
	hasLast    bool
}

// New returns an empty posting list.
func New() *PostingList {
	return &PostingList{}
}

// From is a convenience equivalent of draining a PostingBuilder loaded
// with entries.
func From(entries []Element) *PostingList {
	b := NewBuilder()
	for _, e := range entries {
		b.Add(e.ID, e.Weight)
	}
	return b.Build()
}

// NewOne returns a singleton posting list holding one element.
func NewOne(id uint32, weight float32) *PostingList {
	return From([]Element{{ID: id, Weight: weight, MaxNextWeight: weight}})
}

// Len returns the total number of elements: BlockSize*len(blocks) +
// len(remainders).
func (l *PostingList) Len() int {
	return len(l.blocks)*BlockSize + len(l.remainders)
}

// ToSlice materializes every element by iterating the list.
func (l *PostingList) ToSlice() []Element {
	out := make([]Element, 0, l.Len())
	it := l.Iter()
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// Last returns the cached last element in O(1), or false if the list is
// empty.
func (l *PostingList) Last() (Element, bool) {
	if !l.hasLast {
		return Element{}, false
	}
	return *l.last, true
}

// Iter returns a cursor initialized at block 0, intra-block position
// BlockSize (meaning "nothing decoded"), remainder position 0.
func (l *PostingList) Iter() *PostingListIterator {
	return &PostingListIterator{
		list:          l,
		blockIdx:      0,
		scratchCursor: BlockSize,
	}
}

// Upsert appends element to the list. element.ID must be strictly greater
// than the current last id (or the list must be empty); otherwise
// ErrOutOfOrder is returned and the list is left unchanged. Every BlockSize
// remainders accumulated this way are compressed into a new block; earlier
// bytes are never rewritten.
func (l *PostingList) Upsert(element Element) error {
	if l.hasLast && element.ID <= l.last.ID {
		return ErrOutOfOrder
	}

	l.remainders = append(l.remainders, remainder{id: element.ID, weight: element.Weight})
	last := element
	last.MaxNextWeight = element.Weight
	l.last = &last
	l.hasLast = true

	if len(l.remainders) == BlockSize {
		l.compressPendingBlock()
	}
	return nil
}

// compressPendingBlock encodes the current (exactly BlockSize long)
// remainder buffer into a new block, appended to idBytes, and clears the
// remainder buffer. Never touches bytes belonging to earlier blocks.
func (l *PostingList) compressPendingBlock() {
	var ids [BlockSize]uint32
	var weights [BlockSize]float32
	for i, r := range l.remainders {
		ids[i] = r.id
		weights[i] = r.weight
	}

	initial := ids[0]
	prev := predecessorOf(initial)
	bitWidth := bitsNeeded(prev, &ids)
	size := compressedSize(bitWidth)

	hdr := blockHeader{
		initial: initial,
		offset:  uint32(len(l.idBytes)),
		weights: weights,
	}

	l.idBytes = append(l.idBytes, make([]byte, size)...)
	encodeBlock(prev, &ids, l.idBytes[hdr.offset:hdr.offset+uint32(size)], bitWidth)

	l.blocks = append(l.blocks, hdr)
	l.remainders = l.remainders[:0]
}

// predecessorOf returns the predecessor id this package always uses when
// encoding/decoding a block: the block's own first id minus one, or nil if
// that would underflow. See DESIGN.md for why a block never uses the true
// id of the previous block.
func predecessorOf(initial uint32) *uint32 {
	if initial == 0 {
		return nil
	}
	p := initial - 1
	return &p
}

// blockByteSize returns the number of compressed bytes belonging to block
// index i.
func (l *PostingList) blockByteSize(i int) int {
	if i+1 < len(l.blocks) {
		return int(l.blocks[i+1].offset - l.blocks[i].offset)
	}
	return len(l.idBytes) - int(l.blocks[i].offset)
}

// decodeBlockInto decodes block index i into scratch.
func (l *PostingList) decodeBlockInto(i int, scratch *[BlockSize]uint32) {
	hdr := &l.blocks[i]
	size := l.blockByteSize(i)
	bitWidth := uint8(size * 8 / BlockSize)
	decodeBlock(predecessorOf(hdr.initial), l.idBytes[hdr.offset:int(hdr.offset)+size], scratch, bitWidth)
}
