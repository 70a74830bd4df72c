//
// block.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"
)

// MessagePair implements the sender's output of one 1-out-of-2 OT:
// the receiver obtains M0 or M1 depending on its choice bit.
type MessagePair struct {
	M0 Block
	M1 Block
}

func (p MessagePair) String() string {
	return fmt.Sprintf("%s/%s", p.M0, p.M1)
}

// Get returns the message selected by bit.
func (p MessagePair) Get(bit bool) Block {
	if bit {
		return p.M1
	}
	return p.M0
}

// PairBlocks returns the pairs as 2*len(pairs) blocks sharing the
// storage of pairs: block 2i is pairs[i].M0 and block 2i+1 is
// pairs[i].M1.
func PairBlocks(pairs []MessagePair) []Block {
	if len(pairs) == 0 {
		return nil
	}
	return unsafe.Slice(&pairs[0].M0, 2*len(pairs))
}

// Block implements a 128 bit value, the unit of OT material. The D0
// holds bits 64-127 and D1 holds bits 0-63.
type Block struct {
	D0 uint64
	D1 uint64
}

// BlockData contains block data as byte array.
type BlockData [16]byte

func (b Block) String() string {
	return fmt.Sprintf("%016x%016x", b.D0, b.D1)
}

// Equal tests if the blocks are equal.
func (b Block) Equal(o Block) bool {
	return b.D0 == o.D0 && b.D1 == o.D1
}

// IsZero tests if all bits of the block are zero.
func (b Block) IsZero() bool {
	return b.D0 == 0 && b.D1 == 0
}

// NewBlock creates a new random block.
func NewBlock(rand io.Reader) (Block, error) {
	var buf BlockData
	var block Block

	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return block, err
	}
	block.SetData(&buf)
	return block, nil
}

// Bit returns the block's bit i.
func (b Block) Bit(i int) uint {
	if i < 64 {
		return uint((b.D1 >> i) & 1)
	}
	return uint((b.D0 >> (i - 64)) & 1)
}

// SetBit sets the block's bit i to the value v (0 or 1).
func (b *Block) SetBit(i int, v uint) {
	if i < 64 {
		b.D1 &^= 1 << i
		b.D1 |= uint64(v&1) << i
	} else {
		b.D0 &^= 1 << (i - 64)
		b.D0 |= uint64(v&1) << (i - 64)
	}
}

// Xor xors the block with the argument block.
func (b *Block) Xor(o Block) {
	b.D0 ^= o.D0
	b.D1 ^= o.D1
}

// Mask returns the block if bit is set and the zero block otherwise.
func (b Block) Mask(bit uint) Block {
	m := -uint64(bit & 1)
	return Block{
		D0: b.D0 & m,
		D1: b.D1 & m,
	}
}

// GetData gets the block as block data.
func (b Block) GetData(buf *BlockData) {
	binary.BigEndian.PutUint64(buf[0:8], b.D0)
	binary.BigEndian.PutUint64(buf[8:16], b.D1)
}

// SetData sets the block from block data.
func (b *Block) SetData(data *BlockData) {
	b.D0 = binary.BigEndian.Uint64((*data)[0:8])
	b.D1 = binary.BigEndian.Uint64((*data)[8:16])
}

// Bytes returns the block data as bytes.
func (b Block) Bytes(buf *BlockData) []byte {
	b.GetData(buf)
	return buf[:]
}

// SetBytes sets the block data from bytes.
func (b *Block) SetBytes(data []byte) {
	b.D0 = binary.BigEndian.Uint64(data[0:8])
	b.D1 = binary.BigEndian.Uint64(data[8:16])
}

// PackBits packs the flags into blocks so that flags[i] is the bit
// i%128 of the block i/128.
func PackBits(flags []bool) []Block {
	result := make([]Block, (len(flags)+127)/128)
	for i, f := range flags {
		if f {
			result[i/128].SetBit(i%128, 1)
		}
	}
	return result
}

// UnpackBits unpacks the count first bits of the block into flags.
func UnpackBits(b Block, flags []bool) {
	for i := range flags {
		flags[i] = b.Bit(i) == 1
	}
}
