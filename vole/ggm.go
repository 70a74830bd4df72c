//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"golang.org/x/crypto/chacha20"

	"github.com/markkurossi/softspoken/ot"
)

// prgChaCha20 expands keyBytes into n bytes using ChaCha20. The
// keyBytes is repeated to fill the 32 byte key. The nonce is zero for
// each stream but the key is unique per tree node.
func prgChaCha20(keyBytes []byte, n int) []byte {
	key := make([]byte, chacha20.KeySize)
	for i := 0; i < len(key); i++ {
		key[i] = keyBytes[i%len(keyBytes)]
	}
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		panic(err)
	}
	out := make([]byte, n)
	c.XORKeyStream(out, out)
	return out
}

// expandNode expands the tree node into its left and right children.
func expandNode(node ot.Block) (left, right ot.Block) {
	var d ot.BlockData
	out := prgChaCha20(node.Bytes(&d), 32)
	left.SetBytes(out[0:16])
	right.SetBytes(out[16:32])
	return
}

// expandTree expands the GGM tree of the root into 2^depth leaves.
// The nodes of depth d are indexed by the low d bits of their leaves
// so the branch taken at depth d is the bit d of the leaf index. The
// sums[d] holds the XOR of all left (M0) and all right (M1) children
// created at depth d.
func expandTree(root ot.Block, depth int) (leaves []ot.Block,
	sums []ot.MessagePair) {

	level := []ot.Block{root}
	sums = make([]ot.MessagePair, depth)

	for d := 0; d < depth; d++ {
		next := make([]ot.Block, 2*len(level))
		for v, node := range level {
			l, r := expandNode(node)
			next[v] = l
			next[v|1<<d] = r
			sums[d].M0.Xor(l)
			sums[d].M1.Xor(r)
		}
		level = next
	}
	return level, sums
}

// puncturedTree reconstructs all leaves except the leaf p from the
// sibling sums. The sums[d] must be the XOR of the children of depth
// d that are not on the path to p. The leaf p is left zero.
func puncturedTree(p, depth int, sums []ot.Block) []ot.Block {
	level := []ot.Block{{}}

	for d := 0; d < depth; d++ {
		next := make([]ot.Block, 2*len(level))
		path := p & (1<<d - 1)
		nb := ((p >> d) & 1) ^ 1
		sibling := sums[d]

		for v, node := range level {
			if v == path {
				continue
			}
			l, r := expandNode(node)
			next[v] = l
			next[v|1<<d] = r
			if nb == 0 {
				sibling.Xor(l)
			} else {
				sibling.Xor(r)
			}
		}
		next[path|nb<<d] = sibling
		level = next
	}
	return level
}
