//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// AES-128 with the zero key maps the zero block to
// 66e94bd4ef8a2c3b884cfa59ca342b2e and π(0) ⊕ 0 = π(0).
var crhashTests = []struct {
	key    Block
	input  Block
	output string
}{
	{
		output: "66e94bd4ef8a2c3b884cfa59ca342b2e",
	},
}

func TestFixedKeyHash(t *testing.T) {
	for idx, test := range crhashTests {
		h := NewFixedKeyHash(test.key)

		expected, err := hex.DecodeString(test.output)
		if err != nil {
			t.Fatal(err)
		}
		var d BlockData
		result := h.Hash(test.input)
		if !bytes.Equal(expected, result.Bytes(&d)) {
			t.Errorf("test-%d: %x != %x", idx, expected, result.Bytes(&d))
		}
	}
}

func TestFixedKeyHashBlocks(t *testing.T) {
	h := NewFixedKeyHash(DefaultHashKey)

	src := make([]Block, 20)
	for i := range src {
		src[i] = Block{
			D0: uint64(i) * 0x9e3779b97f4a7c15,
			D1: uint64(i),
		}
	}
	dst := make([]Block, len(src))
	h.HashBlocks(dst, src)

	for i := range src {
		if !dst[i].Equal(h.Hash(src[i])) {
			t.Errorf("block %d: HashBlocks %v != Hash %v",
				i, dst[i], h.Hash(src[i]))
		}
	}

	// In-place hashing.
	inPlace := make([]Block, len(src))
	copy(inPlace, src)
	h.HashBlocks(inPlace, inPlace)
	for i := range src {
		if !inPlace[i].Equal(dst[i]) {
			t.Errorf("block %d: in-place %v != %v", i, inPlace[i], dst[i])
		}
	}
}

func TestFixedKeyHashShortDst(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("HashBlocks did not panic")
		}
	}()
	h := NewFixedKeyHash(DefaultHashKey)
	h.HashBlocks(make([]Block, 1), make([]Block, 2))
}

func BenchmarkFixedKeyHash(b *testing.B) {
	h := NewFixedKeyHash(DefaultHashKey)

	var pad [16]Block

	for b.Loop() {
		h.HashBlocks(pad[:], pad[:])
	}
}
