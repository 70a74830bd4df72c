//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package chunk

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/softspoken/ot"
	"github.com/markkurossi/softspoken/p2p"
)

func TestCount(t *testing.T) {
	tests := []struct {
		n      int
		chunks int
		last   int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{127, 1, 127},
		{128, 1, 128},
		{129, 2, 1},
		{200, 2, 72},
		{256, 2, 128},
		{1000, 8, 104},
	}
	for _, test := range tests {
		chunks, last := Count(test.n)
		require.Equal(t, test.chunks, chunks, "n=%d", test.n)
		require.Equal(t, test.last, last, "n=%d", test.n)
	}
}

func payload(c *Chunk, j int) ot.Block {
	return ot.Block{
		D0: uint64(c.BlockIdx),
		D1: uint64(j),
	}
}

func testPipeline(t *testing.T, send, recv Stream) ([]*Chunk, error) {
	c0, c1 := p2p.Pipe()
	defer c0.Close()

	var m sync.Mutex
	var received []*Chunk
	buffers := make(map[*ot.Block]bool)

	var eg errgroup.Group
	eg.Go(func() error {
		return Send(context.Background(), c0, send, func(c *Chunk) error {
			for j := range c.Data {
				c.Data[j] = payload(c, j)
			}
			return nil
		})
	})

	err := Receive(context.Background(), c1, recv, func(c *Chunk) error {
		for j := range c.Data {
			if !c.Data[j].Equal(payload(c, j)) {
				return fmt.Errorf("chunk %d: block %d: %v", c.Index, j,
					c.Data[j])
			}
		}
		m.Lock()
		cp := *c
		cp.Data = nil
		received = append(received, &cp)
		buffers[&c.Data[0]] = true
		m.Unlock()
		return nil
	})
	if err != nil {
		c1.Close()
		eg.Wait()
		return nil, err
	}
	require.NoError(t, eg.Wait())
	require.LessOrEqual(t, len(buffers), NumBuffers)

	return received, nil
}

func TestPipeline(t *testing.T) {
	for _, verify := range []bool{false, true} {
		for _, n := range []int{1, 128, 200, 1000} {
			s := Stream{
				N:        n,
				Payload:  16,
				BlockIdx: 42,
				Verify:   verify,
			}
			received, err := testPipeline(t, s, s)
			require.NoError(t, err)

			chunks, last := Count(n)
			require.Len(t, received, chunks)
			for i, c := range received {
				require.Equal(t, i, c.Index)
				require.Equal(t, 42+i, c.BlockIdx)
				require.Equal(t, i*Size, c.Offset)
				if i+1 == chunks {
					require.Equal(t, last, c.NumUsed)
				} else {
					require.Equal(t, Size, c.NumUsed)
				}
			}
		}
	}
}

func TestDesync(t *testing.T) {
	send := Stream{
		N:        300,
		Payload:  4,
		BlockIdx: 5,
		Verify:   true,
	}
	recv := send
	recv.BlockIdx = 6

	_, err := testPipeline(t, send, recv)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDesync), "%v", err)
}

func TestProcessError(t *testing.T) {
	failure := errors.New("process failed")

	c0, c1 := p2p.Pipe()
	s := Stream{
		N:       1000,
		Payload: 8,
	}
	var eg errgroup.Group
	eg.Go(func() error {
		return Send(context.Background(), c0, s, func(c *Chunk) error {
			return nil
		})
	})
	err := Receive(context.Background(), c1, s, func(c *Chunk) error {
		if c.Index == 2 {
			return failure
		}
		return nil
	})
	require.True(t, errors.Is(err, failure), "%v", err)

	// Unblock the sender if it is still writing.
	c1.Close()
	eg.Wait()
	c0.Close()
}

// failingFlush fails every Flush after the data is queued.
type failingFlush struct {
	*ot.Pipe
	err error
}

func (f *failingFlush) Flush() error {
	return f.err
}

func TestFlushError(t *testing.T) {
	failure := errors.New("flush failed")

	pipe, _ := ot.NewPipe()
	conn := &failingFlush{
		Pipe: pipe,
		err:  failure,
	}
	s := Stream{
		N:       20 * Size,
		Payload: 8,
	}
	err := Send(context.Background(), conn, s, func(c *Chunk) error {
		for j := range c.Data {
			c.Data[j] = payload(c, j)
		}
		return nil
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, failure), "%v", err)
}

func TestCancel(t *testing.T) {
	c0, _ := p2p.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Send(ctx, c0, Stream{N: 1000, Payload: 8}, func(c *Chunk) error {
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
