//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"
)

func TestBlockBits(t *testing.T) {
	var b Block
	b.SetBit(0, 1)
	b.SetBit(63, 1)
	b.SetBit(64, 1)
	b.SetBit(127, 1)

	if b.D1 != 0x8000000000000001 || b.D0 != 0x8000000000000001 {
		t.Fatalf("SetBit: %v", b)
	}
	for i := 0; i < 128; i++ {
		expected := uint(0)
		if i == 0 || i == 63 || i == 64 || i == 127 {
			expected = 1
		}
		if b.Bit(i) != expected {
			t.Errorf("Bit(%d)=%d, expected %d", i, b.Bit(i), expected)
		}
	}
	b.SetBit(63, 0)
	if b.Bit(63) != 0 {
		t.Errorf("SetBit(63, 0) failed: %v", b)
	}
}

func TestBlockData(t *testing.T) {
	b, err := NewBlock(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var d BlockData
	var c Block
	c.SetBytes(b.Bytes(&d))
	if !b.Equal(c) {
		t.Errorf("SetBytes: %v != %v", c, b)
	}
	if d[0] != byte(b.D0>>56) || d[15] != byte(b.D1) {
		t.Errorf("block data is not big-endian: %x", d)
	}
}

func TestBlockMask(t *testing.T) {
	b := Block{D0: 0x1234, D1: 0x5678}
	if !b.Mask(1).Equal(b) {
		t.Errorf("Mask(1): %v", b.Mask(1))
	}
	if !b.Mask(0).IsZero() {
		t.Errorf("Mask(0): %v", b.Mask(0))
	}
}

func TestPackBits(t *testing.T) {
	flags := make([]bool, 200)
	for i := range flags {
		flags[i] = i%3 == 0
	}
	packed := PackBits(flags)
	if len(packed) != 2 {
		t.Fatalf("PackBits: got %d blocks", len(packed))
	}
	unpacked := make([]bool, 72)
	UnpackBits(packed[1], unpacked)
	for i := range unpacked {
		if unpacked[i] != flags[128+i] {
			t.Errorf("flag %d: %v != %v", 128+i, unpacked[i], flags[128+i])
		}
	}
	for i := 72; i < 128; i++ {
		if packed[1].Bit(i) != 0 {
			t.Errorf("padding bit %d set", i)
		}
	}
}

func TestMessagePairGet(t *testing.T) {
	p := MessagePair{
		M0: Block{D1: 1},
		M1: Block{D1: 2},
	}
	if !p.Get(false).Equal(p.M0) || !p.Get(true).Equal(p.M1) {
		t.Errorf("Get: %v", p)
	}
}

func TestPairBlocks(t *testing.T) {
	pairs := make([]MessagePair, 3)
	blocks := PairBlocks(pairs)
	if len(blocks) != 6 {
		t.Fatalf("PairBlocks: got %d blocks", len(blocks))
	}
	for i := range blocks {
		blocks[i] = Block{D1: uint64(i)}
	}
	for i, p := range pairs {
		if p.M0.D1 != uint64(2*i) || p.M1.D1 != uint64(2*i+1) {
			t.Errorf("pair %d: %v", i, p)
		}
	}
	if PairBlocks(nil) != nil {
		t.Errorf("PairBlocks(nil) != nil")
	}
}
