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

// Sender implements the OT extension sender. The Sender is not safe
// for concurrent use.
type Sender struct {
	config   *env.Config
	base     SenderExpander
	hasher   ot.BlockHasher
	blockIdx int
	aborted  bool
	scratch  []ot.MessagePair
}

// NewSender creates a new OT extension sender. The config must not be
// modified after this call; nil selects the defaults.
func NewSender(config *env.Config) *Sender {
	if config == nil {
		config = &env.Config{}
	}
	s := &Sender{
		config: config,
		hasher: ot.NewFixedKeyHash(ot.DefaultHashKey),
	}
	s.InitTemporaryStorage()
	return s
}

// InitTemporaryStorage allocates the pipeline storage and clears the
// aborted state of a failed run.
func (s *Sender) InitTemporaryStorage() {
	s.scratch = make([]ot.MessagePair, ChunkSize)
	s.aborted = false
}

// SetBase sets the base expander. The block index restarts from zero.
func (s *Sender) SetBase(base SenderExpander) {
	s.base = base
	s.blockIdx = 0
}

// SetHasher sets the whitening hash function.
func (s *Sender) SetHasher(hasher ot.BlockHasher) {
	s.hasher = hasher
}

// HasBaseOTs tests if the sender has a base expander.
func (s *Sender) HasBaseOTs() bool {
	return s.base != nil
}

// BlockIndex returns the block index of the next chunk.
func (s *Sender) BlockIndex() int {
	return s.blockIdx
}

// Delta returns the sender's correlation Δ.
func (s *Sender) Delta() ot.Block {
	if s.base == nil {
		panic("otext: no base OTs")
	}
	return s.base.Delta()
}

// GenBaseOTs runs the base OTs with the peer and sets up the VOLE
// base expander. The sender is the base OT receiver.
func (s *Sender) GenBaseOTs(ctx context.Context, base ot.OT,
	conn ot.IO) error {
	return s.genBaseOTs(ctx, base, conn, s.config.GetRandom())
}

func (s *Sender) genBaseOTs(ctx context.Context, base ot.OT, conn ot.IO,
	rand io.Reader) error {

	logger := log.GetLoggerFromContextWithName(withLogger(ctx, s.config),
		"sender")
	start := time.Now()

	expander := vole.NewReceiver(s.config.GetFieldBits(),
		s.config.GetNumThreads())
	if err := expander.Setup(base, conn, rand); err != nil {
		return errors.Wrap(err, "otext: sender base OTs")
	}
	s.SetBase(expander)

	logger.V(1).Info("base OTs", "params", expander.Params.String(),
		"count", expander.NumBaseOTs(), "elapsed", time.Since(start))
	return nil
}

// Send sends len(messages) OTs. The messages are filled with random
// message pairs of which the receiver learns one per its choice bits.
// If the sender has no base OTs, they are generated first with CO OT
// using rand.
func (s *Sender) Send(ctx context.Context, messages []ot.MessagePair,
	rand io.Reader, conn ot.IO) error {
	return s.send(ctx, messages, rand, conn, true)
}

// SendRandom sends len(messages) random OTs. The receiver's choice
// bits are random and the receiver transmits one correction block less
// per chunk than with Send.
func (s *Sender) SendRandom(ctx context.Context, messages []ot.MessagePair,
	rand io.Reader, conn ot.IO) error {
	return s.send(ctx, messages, rand, conn, false)
}

func (s *Sender) send(ctx context.Context, messages []ot.MessagePair,
	rand io.Reader, conn ot.IO, chosen bool) error {

	if s.aborted {
		return ErrAborted
	}
	ctx = withLogger(ctx, s.config)
	logger := log.GetLoggerFromContextWithName(ctx, "sender")

	if !s.HasBaseOTs() {
		if rand == nil {
			rand = s.config.GetRandom()
		}
		if err := s.genBaseOTs(ctx, ot.NewCO(rand), conn, rand); err != nil {
			s.aborted = true
			return err
		}
	}

	n := len(messages)
	numChunks, _ := chunk.Count(n)
	start := time.Now()
	logger.V(1).Info("send start", "count", n, "chunks", numChunks,
		"chosen", chosen, "blockIdx", s.blockIdx)

	stream := chunk.Stream{
		N:        n,
		Payload:  s.base.CorrectionBlocks(chosen),
		BlockIdx: s.blockIdx,
		Verify:   s.config.VerifyBlockIndex,
	}
	err := chunk.Receive(ctx, conn, stream, func(c *chunk.Chunk) error {
		logger.V(2).Info("chunk", "index", c.Index, "blockIdx", c.BlockIdx,
			"used", c.NumUsed)
		return s.processChunk(c, messages, chosen)
	})
	if err != nil {
		s.aborted = true
		return errors.Wrap(err, "otext: send")
	}
	s.blockIdx += numChunks

	logger.V(1).Info("send done", "count", n, "elapsed", time.Since(start))
	return nil
}

// processChunk generates and whitens the chunk's OTs into messages.
func (s *Sender) processChunk(c *chunk.Chunk, messages []ot.MessagePair,
	chosen bool) error {

	// The expander output may exceed the chunk's NumUsed pairs. The
	// last chunk is generated into scratch if the tail of messages is
	// too short for it.
	out := messages[c.Offset:]
	direct := 2*len(out) >= s.base.WPadded()
	if !direct {
		out = s.scratch
	}
	if chosen {
		s.GenerateChosen(c.BlockIdx, c.NumUsed, c.Data, out)
	} else {
		s.GenerateRandom(c.BlockIdx, c.NumUsed, c.Data, out)
	}
	if !direct {
		copy(messages[c.Offset:c.Offset+c.NumUsed], out[:c.NumUsed])
	}
	return nil
}

func (s *Sender) checkGenerate(numUsed int, messages []ot.MessagePair) {
	if s.base == nil {
		panic("otext: no base OTs")
	}
	if numUsed > ChunkSize || numUsed > len(messages) {
		panic(fmt.Sprintf("otext: invalid numUsed %d", numUsed))
	}
	if 2*len(messages) < s.base.WPadded() {
		panic(fmt.Sprintf("otext: messages too small: %d blocks < %d",
			2*len(messages), s.base.WPadded()))
	}
}

// GenerateRandom generates numUsed random mode OTs of the chunk
// blockIdx into messages. The messages must hold at least WPadded()
// blocks.
func (s *Sender) GenerateRandom(blockIdx, numUsed int, correction []ot.Block,
	messages []ot.MessagePair) {

	s.checkGenerate(numUsed, messages)
	blocks := ot.PairBlocks(messages)
	s.base.GenerateRandom(blockIdx, correction, blocks)
	s.xorAndHashMessages(numUsed, blocks)
}

// GenerateChosen generates numUsed chosen mode OTs of the chunk
// blockIdx into messages. The messages must hold at least WPadded()
// blocks.
func (s *Sender) GenerateChosen(blockIdx, numUsed int, correction []ot.Block,
	messages []ot.MessagePair) {

	s.checkGenerate(numUsed, messages)
	blocks := ot.PairBlocks(messages)
	s.base.GenerateChosen(blockIdx, correction, blocks)
	s.xorAndHashMessages(numUsed, blocks)
}

// xorAndHashMessages expands the raw q_i in blocks[0:numUsed] into the
// message pairs (H(q_i), H(q_i ⊕ Δ)) in blocks[0:2*numUsed]. The
// batches are processed from the end so that the pair outputs never
// overwrite raw values that are still needed.
func (s *Sender) xorAndHashMessages(numUsed int, blocks []ot.Block) {
	delta := s.base.Delta()
	var tmp [2 * hashBatch]ot.Block

	if numUsed == 0 {
		return
	}
	for i := ((numUsed - 1) / hashBatch) * hashBatch; i >= 0; i -= hashBatch {
		n := numUsed - i
		if n > hashBatch {
			n = hashBatch
		}
		for j := 0; j < n; j++ {
			q := blocks[i+j]
			tmp[2*j] = q
			q.Xor(delta)
			tmp[2*j+1] = q
		}
		s.hasher.HashBlocks(blocks[2*i:2*(i+n)], tmp[:2*n])
	}
}

// Split creates an independent sender from this sender. It is not
// implemented and always returns ErrNotImplemented.
func (s *Sender) Split() (*Sender, error) {
	return nil, ErrNotImplemented
}
