//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/softspoken/chunk"
	"github.com/markkurossi/softspoken/env"
	"github.com/markkurossi/softspoken/log"
	"github.com/markkurossi/softspoken/ot"
	"github.com/markkurossi/softspoken/vole"
)

// Receiver implements the OT extension receiver. The Receiver is not
// safe for concurrent use.
type Receiver struct {
	config   *env.Config
	base     ReceiverExpander
	hasher   ot.BlockHasher
	blockIdx int
	aborted  bool
	scratch  []ot.Block
}

// NewReceiver creates a new OT extension receiver. The config must
// not be modified after this call; nil selects the defaults.
func NewReceiver(config *env.Config) *Receiver {
	if config == nil {
		config = &env.Config{}
	}
	r := &Receiver{
		config: config,
		hasher: ot.NewFixedKeyHash(ot.DefaultHashKey),
	}
	r.InitTemporaryStorage()
	return r
}

// InitTemporaryStorage releases the pipeline storage and clears the
// aborted state of a failed run.
func (r *Receiver) InitTemporaryStorage() {
	r.scratch = nil
	r.aborted = false
}

// SetBase sets the base expander. The block index restarts from zero.
func (r *Receiver) SetBase(base ReceiverExpander) {
	r.base = base
	r.blockIdx = 0
}

// SetHasher sets the whitening hash function.
func (r *Receiver) SetHasher(hasher ot.BlockHasher) {
	r.hasher = hasher
}

// HasBaseOTs tests if the receiver has a base expander.
func (r *Receiver) HasBaseOTs() bool {
	return r.base != nil
}

// BlockIndex returns the block index of the next chunk.
func (r *Receiver) BlockIndex() int {
	return r.blockIdx
}

// GenBaseOTs runs the base OTs with the peer and sets up the VOLE
// base expander. The receiver is the base OT sender.
func (r *Receiver) GenBaseOTs(ctx context.Context, base ot.OT,
	conn ot.IO) error {
	return r.genBaseOTs(ctx, base, conn, r.config.GetRandom())
}

func (r *Receiver) genBaseOTs(ctx context.Context, base ot.OT, conn ot.IO,
	rand io.Reader) error {

	logger := log.GetLoggerFromContextWithName(withLogger(ctx, r.config),
		"receiver")
	start := time.Now()

	expander := vole.NewSender(r.config.GetFieldBits(),
		r.config.GetNumThreads())
	if err := expander.Setup(base, conn, rand); err != nil {
		return errors.Wrap(err, "otext: receiver base OTs")
	}
	r.SetBase(expander)

	logger.V(1).Info("base OTs", "params", expander.Params.String(),
		"count", expander.NumBaseOTs(), "elapsed", time.Since(start))
	return nil
}

// Receive receives len(messages) OTs. For each i, messages[i] is set
// to the sender's message selected by choices[i]. If the receiver has
// no base OTs, they are generated first with CO OT using rand.
func (r *Receiver) Receive(ctx context.Context, choices []bool,
	messages []ot.Block, rand io.Reader, conn ot.IO) error {
	return r.receive(ctx, choices, messages, rand, conn, true)
}

// ReceiveRandom receives len(messages) random OTs. The random choice
// bits are returned in choices.
func (r *Receiver) ReceiveRandom(ctx context.Context, choices []bool,
	messages []ot.Block, rand io.Reader, conn ot.IO) error {
	return r.receive(ctx, choices, messages, rand, conn, false)
}

func (r *Receiver) receive(ctx context.Context, choices []bool,
	messages []ot.Block, rand io.Reader, conn ot.IO, chosen bool) error {

	if len(choices) != len(messages) {
		panic("len(choices) != len(messages)")
	}
	if r.aborted {
		return ErrAborted
	}
	ctx = withLogger(ctx, r.config)
	logger := log.GetLoggerFromContextWithName(ctx, "receiver")

	if !r.HasBaseOTs() {
		if rand == nil {
			rand = r.config.GetRandom()
		}
		if err := r.genBaseOTs(ctx, ot.NewCO(rand), conn, rand); err != nil {
			r.aborted = true
			return err
		}
	}

	n := len(messages)
	numChunks, _ := chunk.Count(n)
	start := time.Now()
	logger.V(1).Info("receive start", "count", n, "chunks", numChunks,
		"chosen", chosen, "blockIdx", r.blockIdx)

	stream := chunk.Stream{
		N:        n,
		Payload:  r.base.CorrectionBlocks(chosen),
		BlockIdx: r.blockIdx,
		Verify:   r.config.VerifyBlockIndex,
	}
	err := chunk.Send(ctx, conn, stream, func(c *chunk.Chunk) error {
		logger.V(2).Info("chunk", "index", c.Index, "blockIdx", c.BlockIdx,
			"used", c.NumUsed)
		return r.processChunk(c, messages, choices, chosen)
	})
	if err != nil {
		r.aborted = true
		return errors.Wrap(err, "otext: receive")
	}
	r.blockIdx += numChunks

	logger.V(1).Info("receive done", "count", n, "elapsed", time.Since(start))
	return nil
}

// processChunk generates and whitens the chunk's OTs into messages
// and fills the chunk's correction payload.
func (r *Receiver) processChunk(c *chunk.Chunk, messages []ot.Block,
	choices []bool, chosen bool) error {

	out := messages[c.Offset:]
	direct := len(out) >= r.base.VPadded()
	if !direct {
		if len(r.scratch) < r.base.VPadded() {
			r.scratch = make([]ot.Block, r.base.VPadded())
		}
		out = r.scratch
	}
	used := choices[c.Offset : c.Offset+c.NumUsed]

	if chosen {
		var packed ot.Block
		for i, choice := range used {
			if choice {
				packed.SetBit(i, 1)
			}
		}
		r.GenerateChosen(c.BlockIdx, c.NumUsed, packed, out, c.Data)
	} else {
		var packed ot.Block
		r.GenerateRandom(c.BlockIdx, c.NumUsed, &packed, out, c.Data)
		ot.UnpackBits(packed, used)
	}
	if !direct {
		copy(messages[c.Offset:c.Offset+c.NumUsed], out[:c.NumUsed])
	}
	return nil
}

func (r *Receiver) checkGenerate(numUsed int, messages []ot.Block) {
	if r.base == nil {
		panic("otext: no base OTs")
	}
	if numUsed > ChunkSize || numUsed > len(messages) {
		panic(fmt.Sprintf("otext: invalid numUsed %d", numUsed))
	}
	if len(messages) < r.base.VPadded() {
		panic(fmt.Sprintf("otext: messages too small: %d blocks < %d",
			len(messages), r.base.VPadded()))
	}
}

// truncate clears the bits n..127 of b.
func truncate(b ot.Block, n int) ot.Block {
	switch {
	case n <= 0:
		return ot.Block{}
	case n < 64:
		b.D1 &= 1<<uint(n) - 1
		b.D0 = 0
	case n < 128:
		b.D0 &= 1<<uint(n-64) - 1
	}
	return b
}

// GenerateRandom generates numUsed random mode OTs of the chunk
// blockIdx into messages and their random choice bits into
// choicesOut. The correction receives the blocks for the sender. The
// messages must hold at least VPadded() blocks.
func (r *Receiver) GenerateRandom(blockIdx, numUsed int, choicesOut *ot.Block,
	messages, correction []ot.Block) {

	r.checkGenerate(numUsed, messages)
	r.base.GenerateRandom(blockIdx, choicesOut, messages, correction)
	*choicesOut = truncate(*choicesOut, numUsed)
	r.hasher.HashBlocks(messages[:numUsed], messages[:numUsed])
}

// GenerateChosen generates numUsed OTs of the chunk blockIdx into
// messages for the choice bits choicesIn. The correction receives the
// blocks for the sender. The messages must hold at least VPadded()
// blocks.
func (r *Receiver) GenerateChosen(blockIdx, numUsed int, choicesIn ot.Block,
	messages, correction []ot.Block) {

	r.checkGenerate(numUsed, messages)
	r.base.GenerateChosen(blockIdx, choicesIn, messages, correction)
	r.hasher.HashBlocks(messages[:numUsed], messages[:numUsed])
}

// Split creates an independent receiver from this receiver. It is not
// implemented and always returns ErrNotImplemented.
func (r *Receiver) Split() (*Receiver, error) {
	return nil, ErrNotImplemented
}
