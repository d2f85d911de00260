// Package postings implements a compressed posting list for a single
// sparse-vector dimension: the set of document ids that are non-zero in
// that dimension, each paired with a float32 weight.
//
// A PostingList stores the bulk of its ids as fixed-size blocks packed by
// the block codec in codec.go, plus a short uncompressed tail (the
// "remainders") that has not yet filled a block. Building is split into
// PostingBuilder (arbitrary-order construction) and PostingList.Upsert
// (strictly-monotonic append), matching the teacher's Writer/WriterOption
// split between one-shot construction and incremental block emission.
package postings

// This file holds the package documentation and BlockSize. The
// implementation is split across:
//   - codec.go:     bit-packed block encode/decode
//   - list.go:      PostingList, Element, block/remainder bookkeeping
//   - builder.go:   PostingBuilder
//   - iterator.go:  PostingListIterator
//   - format.go:    Save/Load on-disk layout
//   - floatbits.go: float32 <-> uint32 bit conversion for Save/Load

// BlockSize is the fixed number of ids packed per compressed block (B in
// the spec). It is a compile-time constant, not configurable.
const BlockSize = 128
