package postings

import "sort"

// PostingListIterator is a borrowed cursor over a PostingList. It decodes
// at most one block at a time into its own scratch array, so creating an
// iterator and scanning or skipping through it never touches blocks it
// doesn't visit.
type PostingListIterator struct {
	list *PostingList

	scratch         [BlockSize]uint32
	blockIdx        int // index of the block scratch currently holds, or len(blocks) once scanning remainders
	scratchCursor   int // position within scratch; BlockSize means "nothing decoded"
	remainderCursor int
}

// Visitor is invoked once per element by TryForEach. Returning true means
// "continue" (the element is consumed and the cursor advances past it);
// returning false means "stop" (the element is left unconsumed, so the
// next Peek/Next/TryForEach call sees it again).
type Visitor func(Element) bool

// Last returns the list's cached last element, same as PostingList.Last.
func (it *PostingListIterator) Last() (Element, bool) {
	return it.list.Last()
}

// Peek returns the next element without advancing the cursor.
func (it *PostingListIterator) Peek() (Element, bool) {
	return it.TryForEach(func(Element) bool { return false })
}

// Next returns the next element and advances past it.
func (it *PostingListIterator) Next() (Element, bool) {
	var got Element
	consumed := false
	it.TryForEach(func(e Element) bool {
		if consumed {
			return false
		}
		got = e
		consumed = true
		return true
	})
	return got, consumed
}

// LenToEnd returns the exact number of elements still to be yielded,
// computed from cursor position without decoding anything.
func (it *PostingListIterator) LenToEnd() int {
	total := it.list.Len()
	var passed int
	if it.blockIdx >= len(it.list.blocks) {
		passed = len(it.list.blocks)*BlockSize + it.remainderCursor
	} else {
		passed = it.blockIdx * BlockSize
		if it.scratchCursor < BlockSize {
			passed += it.scratchCursor
		}
	}
	return total - passed
}

// SkipToEnd positions the cursor past the last element; a subsequent Peek
// returns false.
func (it *PostingListIterator) SkipToEnd() {
	it.blockIdx = len(it.list.blocks)
	it.scratchCursor = BlockSize
	it.remainderCursor = len(it.list.remainders)
}

// SkipTo advances to the first element with id >= target. It returns that
// element and true if id == target, or the element and false if the
// cursor landed on the first greater element (a subsequent Peek returns
// the same element again). If no such element exists, it returns
// (Element{}, false) and the cursor is positioned at the end.
//
// The search locates the candidate block by binary-searching the block
// headers' initial fields, decodes only that block, and binary-searches
// within it, giving O(log(#blocks) + log(BlockSize) + BlockSize) worst
// case (the BlockSize term is the one-time cost of decoding the candidate
// block), never a linear scan across blocks.
func (it *PostingListIterator) SkipTo(target uint32) (Element, bool) {
	list := it.list

	if it.blockIdx < len(list.blocks) {
		lo := it.blockIdx
		hi := len(list.blocks)
		firstGreater := lo + sort.Search(hi-lo, func(i int) bool {
			return list.blocks[lo+i].initial > target
		})
		candidate := firstGreater - 1
		if candidate < lo {
			candidate = lo
		}

		if it.blockIdx != candidate || it.scratchCursor >= BlockSize {
			list.decodeBlockInto(candidate, &it.scratch)
			it.blockIdx = candidate
			it.scratchCursor = 0
		}

		start := it.scratchCursor
		pos := start + sort.Search(BlockSize-start, func(i int) bool {
			return it.scratch[start+i] >= target
		})
		if pos < BlockSize {
			it.scratchCursor = pos
			hdr := &list.blocks[candidate]
			e := Element{ID: it.scratch[pos], Weight: hdr.weights[pos], MaxNextWeight: hdr.weights[pos]}
			return e, it.scratch[pos] == target
		}

		// target is past every id in this block; the search range proved
		// every later block's initial > target, so target cannot occur in
		// any compressed block from here on.
		it.blockIdx = candidate + 1
		it.scratchCursor = BlockSize
		if it.blockIdx < len(list.blocks) {
			hdr := &list.blocks[it.blockIdx]
			return Element{ID: hdr.initial, Weight: hdr.weights[0], MaxNextWeight: hdr.weights[0]}, false
		}
	}

	rem := list.remainders
	pos := it.remainderCursor + sort.Search(len(rem)-it.remainderCursor, func(i int) bool {
		return rem[it.remainderCursor+i].id >= target
	})
	it.remainderCursor = pos
	if pos < len(rem) {
		r := rem[pos]
		return Element{ID: r.id, Weight: r.weight, MaxNextWeight: r.weight}, r.id == target
	}
	return Element{}, false
}

// TryForEach is the short-circuiting internal-iteration hot path: it scans
// forward, invoking visit for each element in order, until visit returns
// false or the list is exhausted. The element visit returned false on (if
// any) is returned alongside true; calling TryForEach again resumes
// exactly where the previous call stopped — iterator state is permanent,
// not scoped to one call.
func (it *PostingListIterator) TryForEach(visit Visitor) (Element, bool) {
	list := it.list

	if it.blockIdx < len(list.blocks) {
		if it.scratchCursor < BlockSize {
			hdr := &list.blocks[it.blockIdx]
			for it.scratchCursor < BlockSize {
				e := Element{
					ID:            it.scratch[it.scratchCursor],
					Weight:        hdr.weights[it.scratchCursor],
					MaxNextWeight: hdr.weights[it.scratchCursor],
				}
				if !visit(e) {
					return e, true
				}
				it.scratchCursor++
			}
			it.blockIdx++
		}

		for it.blockIdx < len(list.blocks) {
			list.decodeBlockInto(it.blockIdx, &it.scratch)
			hdr := &list.blocks[it.blockIdx]
			it.scratchCursor = 0
			for it.scratchCursor < BlockSize {
				e := Element{
					ID:            it.scratch[it.scratchCursor],
					Weight:        hdr.weights[it.scratchCursor],
					MaxNextWeight: hdr.weights[it.scratchCursor],
				}
				if !visit(e) {
					return e, true
				}
				it.scratchCursor++
			}
			it.blockIdx++
		}
	}

	for it.remainderCursor < len(list.remainders) {
		r := list.remainders[it.remainderCursor]
		e := Element{ID: r.id, Weight: r.weight, MaxNextWeight: r.weight}
		if !visit(e) {
			return e, true
		}
		it.remainderCursor++
	}

	return Element{}, false
}
