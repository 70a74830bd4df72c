//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package chunk implements the chunk pipeline of the OT extension. A
// batch of OTs is processed in chunks of Size OTs. The pipeline
// overlaps the computation of one chunk with the transfer of another
// and keeps at most NumBuffers chunks in flight.
//
// The buffer slots are handed between the compute and transfer
// goroutines through channels so that every slot has exactly one
// owner at a time.
//
// A transfer goroutine that is blocked in a network read is not
// interrupted by context cancellation; closing the connection
// unblocks it.
package chunk

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/softspoken/ot"
)

const (
	// Size is the number of OTs in one chunk.
	Size = 128

	// NumBuffers is the number of chunk buffers in flight.
	NumBuffers = 2
)

// ErrDesync is returned when a received chunk frame carries a
// different block index than the receiver expects.
var ErrDesync = errors.New("chunk: block index mismatch")

// Chunk holds the state of one chunk in the pipeline.
type Chunk struct {
	// Index is the chunk number within the batch.
	Index int

	// BlockIdx is the session block index of the chunk.
	BlockIdx int

	// Offset is the index of the first OT of the chunk.
	Offset int

	// NumUsed is the number of valid OTs in the chunk.
	NumUsed int

	// Data is the transferred payload of the chunk.
	Data []ot.Block
}

// Stream describes one batch of chunks.
type Stream struct {
	// N is the number of OTs in the batch.
	N int

	// Payload is the number of blocks in each chunk frame.
	Payload int

	// BlockIdx is the block index of the first chunk.
	BlockIdx int

	// Verify adds the block index to each frame. The receiving side
	// returns ErrDesync if the index does not match.
	Verify bool
}

// Func processes one chunk.
type Func func(c *Chunk) error

// Count returns the number of chunks for n OTs and the number of
// OTs in the last chunk.
func Count(n int) (chunks, last int) {
	if n <= 0 {
		return 0, 0
	}
	chunks = (n + Size - 1) / Size
	last = n - (chunks-1)*Size
	return
}

func (s Stream) newBuffers() chan *Chunk {
	free := make(chan *Chunk, NumBuffers)
	for i := 0; i < NumBuffers; i++ {
		free <- &Chunk{
			Data: make([]ot.Block, s.Payload),
		}
	}
	return free
}

func (s Stream) set(c *Chunk, idx, chunks, last int) {
	c.Index = idx
	c.BlockIdx = s.BlockIdx + idx
	c.Offset = idx * Size
	if idx+1 == chunks {
		c.NumUsed = last
	} else {
		c.NumUsed = Size
	}
}

// Send runs the sending pipeline: process computes the payload of
// chunk k+1 while chunk k is being written to conn.
func Send(ctx context.Context, conn ot.IO, s Stream, process Func) error {
	chunks, last := Count(s.N)
	free := s.newBuffers()
	filled := make(chan *Chunk, NumBuffers)

	eg, ctx := errgroup.WithContext(ctx)

	// Writer.
	eg.Go(func() error {
		buf := make([]byte, s.Payload*16)
		for c := range filled {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.Verify {
				if err := conn.SendUint32(c.BlockIdx); err != nil {
					return errors.Wrapf(err, "chunk %d", c.Index)
				}
			}
			if err := ot.SendBlocks(conn, c.Data, buf); err != nil {
				return errors.Wrapf(err, "chunk %d", c.Index)
			}
			// The compute goroutine owns c after it is returned.
			idx := c.Index
			free <- c
			if len(filled) == 0 {
				if err := conn.Flush(); err != nil {
					return errors.Wrapf(err, "chunk %d", idx)
				}
			}
		}
		return conn.Flush()
	})

	// Compute.
	eg.Go(func() error {
		defer close(filled)
		for i := 0; i < chunks; i++ {
			var c *Chunk
			select {
			case <-ctx.Done():
				return ctx.Err()
			case c = <-free:
			}
			s.set(c, i, chunks, last)
			if err := process(c); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case filled <- c:
			}
		}
		return nil
	})

	return eg.Wait()
}

// Receive runs the receiving pipeline: chunk k+1 is read from conn
// while process handles chunk k.
func Receive(ctx context.Context, conn ot.IO, s Stream, process Func) error {
	chunks, last := Count(s.N)
	free := s.newBuffers()
	filled := make(chan *Chunk, NumBuffers)

	eg, ctx := errgroup.WithContext(ctx)

	// Reader.
	eg.Go(func() error {
		defer close(filled)
		for i := 0; i < chunks; i++ {
			var c *Chunk
			select {
			case <-ctx.Done():
				return ctx.Err()
			case c = <-free:
			}
			s.set(c, i, chunks, last)
			if s.Verify {
				idx, err := conn.ReceiveUint32()
				if err != nil {
					return errors.Wrapf(err, "chunk %d", i)
				}
				if idx != int(uint32(c.BlockIdx)) {
					return errors.Wrapf(ErrDesync,
						"chunk %d: got block %d, expected %d",
						i, idx, c.BlockIdx)
				}
			}
			if err := ot.ReceiveBlocks(conn, c.Data); err != nil {
				return errors.Wrapf(err, "chunk %d", i)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case filled <- c:
			}
		}
		return nil
	})

	// Compute.
	eg.Go(func() error {
		for c := range filled {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := process(c); err != nil {
				return err
			}
			free <- c
		}
		return nil
	})

	return eg.Wait()
}
