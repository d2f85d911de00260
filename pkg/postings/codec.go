package postings

import "math/bits"

// block codec: packs BlockSize strictly increasing uint32 ids into a
// tightly packed, little-endian variable-bit-width byte buffer.
//
// The predecessor of the block's first id is used only to compute the
// first delta; callers that always pass predecessor = initial-1 (as every
// caller does via predecessorOf in list.go) get a first delta of
// exactly zero, which is this package's fixed convention for avoiding a
// dependency on the true preceding block (see DESIGN.md).

// bitsNeeded returns the minimum bit width 1..=32 required to store every
// per-position delta of block against prev (nil means the block begins
// the list, i.e. the implicit predecessor is -1).
func bitsNeeded(prev *uint32, block *[BlockSize]uint32) uint8 {
	var maxDelta uint32
	for i := 0; i < BlockSize; i++ {
		delta := block[i] - blockBase(prev, block, i)
		if delta > maxDelta {
			maxDelta = delta
		}
	}
	if maxDelta == 0 {
		return 1
	}
	return uint8(bits.Len32(maxDelta))
}

// blockBase returns prev_i + 1, the base that delta_i is measured from.
func blockBase(prev *uint32, block *[BlockSize]uint32, i int) uint32 {
	if i == 0 {
		if prev == nil {
			return 0
		}
		return *prev + 1
	}
	return block[i-1] + 1
}

// compressedSize returns the number of bytes a block occupies once packed
// at the given bit width.
func compressedSize(bitWidth uint8) int {
	return int(bitWidth) * BlockSize / 8
}

// encodeBlock packs block into out (which must be exactly
// compressedSize(bitWidth) bytes and zeroed) using bitWidth bits per delta.
func encodeBlock(prev *uint32, block *[BlockSize]uint32, out []byte, bitWidth uint8) {
	if bitWidth == 0 {
		return
	}
	var bitPos uint
	for i := 0; i < BlockSize; i++ {
		delta := uint64(block[i] - blockBase(prev, block, i))
		writeBits(out, bitPos, delta, uint(bitWidth))
		bitPos += uint(bitWidth)
	}
}

// decodeBlock reverses encodeBlock, filling out with BlockSize ids.
func decodeBlock(prev *uint32, in []byte, out *[BlockSize]uint32, bitWidth uint8) {
	if bitWidth == 0 {
		for i := range out {
			out[i] = blockBase(prev, out, i)
		}
		return
	}
	var bitPos uint
	for i := 0; i < BlockSize; i++ {
		delta := uint32(readBits(in, bitPos, uint(bitWidth)))
		out[i] = blockBase(prev, out, i) + delta
		bitPos += uint(bitWidth)
	}
}

// writeBits writes the low nbits bits of value into out starting at bit
// offset bitPos, little-endian within each byte.
func writeBits(out []byte, bitPos uint, value uint64, nbits uint) {
	for nbits > 0 {
		byteIdx := bitPos / 8
		bitOff := bitPos % 8
		free := 8 - bitOff
		n := nbits
		if n > free {
			n = free
		}
		mask := uint64(1)<<n - 1
		out[byteIdx] |= byte(value&mask) << bitOff
		value >>= n
		bitPos += n
		nbits -= n
	}
}

// readBits reads nbits bits from in starting at bit offset bitPos,
// little-endian within each byte, as written by writeBits.
func readBits(in []byte, bitPos uint, nbits uint) uint64 {
	var result uint64
	var shift uint
	for nbits > 0 {
		byteIdx := bitPos / 8
		bitOff := bitPos % 8
		free := 8 - bitOff
		n := nbits
		if n > free {
			n = free
		}
		mask := byte(1)<<n - 1
		chunk := (in[byteIdx] >> bitOff) & mask
		result |= uint64(chunk) << shift
		shift += n
		bitPos += n
		nbits -= n
	}
	return result
}
