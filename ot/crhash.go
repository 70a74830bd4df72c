//
// crhash.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Efficient and Secure Multiparty Computation from Fixed-Key Block
// Ciphers
//  - https://eprint.iacr.org/2019/074.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
)

// DefaultHashKey is the public fixed key of the FixedKeyHash. Both
// peers must use the same key.
var DefaultHashKey = Block{
	D0: 0x243f6a8885a308d3,
	D1: 0x13198a2e03707344,
}

// BlockHasher hashes blocks with a correlation robust hash function.
type BlockHasher interface {
	// HashBlocks hashes src into dst. The dst must be at least as
	// long as src. The slices may be the same slice.
	HashBlocks(dst, src []Block)
}

// FixedKeyHash implements the correlation robust hash function
// H(x) = π(x) ⊕ x where π is AES with a fixed public key.
type FixedKeyHash struct {
	cipher cipher.Block
}

// NewFixedKeyHash creates a new fixed-key hash with the key.
func NewFixedKeyHash(key Block) *FixedKeyHash {
	var d BlockData
	block, err := aes.NewCipher(key.Bytes(&d))
	if err != nil {
		panic(err)
	}
	return &FixedKeyHash{
		cipher: block,
	}
}

// HashBlocks implements BlockHasher.HashBlocks.
func (h *FixedKeyHash) HashBlocks(dst, src []Block) {
	if len(dst) < len(src) {
		panic("len(dst) < len(src)")
	}
	var d BlockData
	for i := range src {
		x := src[i]
		x.GetData(&d)
		h.cipher.Encrypt(d[:], d[:])
		dst[i].SetData(&d)
		dst[i].Xor(x)
	}
}

// Hash hashes the block.
func (h *FixedKeyHash) Hash(x Block) Block {
	var d BlockData
	x.GetData(&d)
	h.cipher.Encrypt(d[:], d[:])

	var r Block
	r.SetData(&d)
	r.Xor(x)
	return r
}
