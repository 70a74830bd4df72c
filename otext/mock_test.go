//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"github.com/markkurossi/softspoken/ot"
)

var mockDelta = ot.Block{
	D0: 0x0123456789abcdef,
	D1: 0xfedcba9876543210,
}

// mockT returns the deterministic raw block t_i of the OT i of the
// chunk blockIdx.
func mockT(blockIdx, i int) ot.Block {
	return ot.Block{
		D0: uint64(blockIdx)<<32 | uint64(i),
		D1: 0x9e3779b97f4a7c15 * uint64(i+1),
	}
}

// mockChoices returns the random mode choice bits of the chunk
// blockIdx.
func mockChoices(blockIdx int) ot.Block {
	return ot.Block{
		D0: 0xa5a5a5a5a5a5a5a5 ^ uint64(blockIdx),
		D1: 0x3c3c3c3c3c3c3c3c + uint64(blockIdx),
	}
}

func mockCorrectionBlocks(chosen bool) int {
	if chosen {
		return 1
	}
	return 0
}

// mockSender is a deterministic SenderExpander with q_i = t_i ⊕
// c_i·Δ.
type mockSender struct{}

func (mockSender) WPadded() int {
	return ChunkSize
}

func (mockSender) Delta() ot.Block {
	return mockDelta
}

func (mockSender) CorrectionBlocks(chosen bool) int {
	return mockCorrectionBlocks(chosen)
}

func (mockSender) generate(blockIdx int, c ot.Block, out []ot.Block) {
	for i := 0; i < ChunkSize; i++ {
		q := mockT(blockIdx, i)
		q.Xor(mockDelta.Mask(c.Bit(i)))
		out[i] = q
	}
}

func (m mockSender) GenerateRandom(blockIdx int, correction, out []ot.Block) {
	m.generate(blockIdx, mockChoices(blockIdx), out)
}

func (m mockSender) GenerateChosen(blockIdx int, correction, out []ot.Block) {
	m.generate(blockIdx, correction[0], out)
}

// mockReceiver is the ReceiverExpander peer of mockSender. The chosen
// mode correction is the choice block itself.
type mockReceiver struct{}

func (mockReceiver) VPadded() int {
	return ChunkSize
}

func (mockReceiver) CorrectionBlocks(chosen bool) int {
	return mockCorrectionBlocks(chosen)
}

func (mockReceiver) generate(blockIdx int, out []ot.Block) {
	for i := 0; i < ChunkSize; i++ {
		out[i] = mockT(blockIdx, i)
	}
}

func (m mockReceiver) GenerateRandom(blockIdx int, choices *ot.Block,
	out, correction []ot.Block) {
	*choices = mockChoices(blockIdx)
	m.generate(blockIdx, out)
}

func (m mockReceiver) GenerateChosen(blockIdx int, choices ot.Block,
	out, correction []ot.Block) {
	correction[0] = choices
	m.generate(blockIdx, out)
}

// countingHasher counts the blocks it hashes.
type countingHasher struct {
	hasher ot.BlockHasher
	count  int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{
		hasher: ot.NewFixedKeyHash(ot.DefaultHashKey),
	}
}

func (h *countingHasher) HashBlocks(dst, src []ot.Block) {
	h.count += len(src)
	h.hasher.HashBlocks(dst, src)
}
