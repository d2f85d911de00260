package postings

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Save writes the list's on-disk representation to w, little-endian
// throughout:
//
//	u32 len(idBytes), u32 #blocks, u32 #remainders
//	idBytes
//	for each block: u32 initial, u32 offset, 128 x f32 weight
//	for each remainder: u32 id, f32 weight
func (l *PostingList) Save(w io.Writer) error {
	header := [12]byte{}
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(l.idBytes)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(l.blocks)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(l.remainders)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("postings: write header: %w", err)
	}

	if len(l.idBytes) > 0 {
		if _, err := w.Write(l.idBytes); err != nil {
			return fmt.Errorf("postings: write id bytes: %w", err)
		}
	}

	blockBuf := make([]byte, 8+4*BlockSize)
	for _, hdr := range l.blocks {
		binary.LittleEndian.PutUint32(blockBuf[0:4], hdr.initial)
		binary.LittleEndian.PutUint32(blockBuf[4:8], hdr.offset)
		for i, wgt := range hdr.weights {
			binary.LittleEndian.PutUint32(blockBuf[8+4*i:12+4*i], floatBits(wgt))
		}
		if _, err := w.Write(blockBuf); err != nil {
			return fmt.Errorf("postings: write block header: %w", err)
		}
	}

	remBuf := make([]byte, 8)
	for _, r := range l.remainders {
		binary.LittleEndian.PutUint32(remBuf[0:4], r.id)
		binary.LittleEndian.PutUint32(remBuf[4:8], floatBits(r.weight))
		if _, err := w.Write(remBuf); err != nil {
			return fmt.Errorf("postings: write remainder: %w", err)
		}
	}

	return nil
}

// Load reads a PostingList previously written by Save. It reconstructs the
// cached last element without decoding any non-terminal block: a
// non-empty remainder tail supplies it directly, otherwise only the final
// block is decoded.
func Load(r io.Reader) (*PostingList, error) {
	header := [12]byte{}
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("postings: read header: %w", err)
	}
	idBytesLen := binary.LittleEndian.Uint32(header[0:4])
	numBlocks := binary.LittleEndian.Uint32(header[4:8])
	numRemainders := binary.LittleEndian.Uint32(header[8:12])

	idBytes := make([]byte, idBytesLen)
	if idBytesLen > 0 {
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, fmt.Errorf("postings: read id bytes (short read): %w", err)
		}
	}

	blocks := make([]blockHeader, numBlocks)
	blockBuf := make([]byte, 8+4*BlockSize)
	for i := range blocks {
		if _, err := io.ReadFull(r, blockBuf); err != nil {
			return nil, fmt.Errorf("postings: read block header %d (short read): %w", i, err)
		}
		blocks[i].initial = binary.LittleEndian.Uint32(blockBuf[0:4])
		blocks[i].offset = binary.LittleEndian.Uint32(blockBuf[4:8])
		for j := range blocks[i].weights {
			blocks[i].weights[j] = floatFromBits(binary.LittleEndian.Uint32(blockBuf[8+4*j : 12+4*j]))
		}
	}

	remainders := make([]remainder, numRemainders)
	remBuf := make([]byte, 8)
	for i := range remainders {
		if _, err := io.ReadFull(r, remBuf); err != nil {
			return nil, fmt.Errorf("postings: read remainder %d (short read): %w", i, err)
		}
		remainders[i].id = binary.LittleEndian.Uint32(remBuf[0:4])
		remainders[i].weight = floatFromBits(binary.LittleEndian.Uint32(remBuf[4:8]))
	}

	list := &PostingList{idBytes: idBytes, blocks: blocks, remainders: remainders}

	if n := len(remainders); n > 0 {
		last := Element{ID: remainders[n-1].id, Weight: remainders[n-1].weight, MaxNextWeight: remainders[n-1].weight}
		list.last = &last
		list.hasLast = true
	} else if n := len(blocks); n > 0 {
		var scratch [BlockSize]uint32
		list.decodeBlockInto(n-1, &scratch)
		w := blocks[n-1].weights[BlockSize-1]
		last := Element{ID: scratch[BlockSize-1], Weight: w, MaxNextWeight: w}
		list.last = &last
		list.hasLast = true
	}

	return list, nil
}
