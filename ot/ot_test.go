//
// ot_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newPairs(t testing.TB, size int) ([]MessagePair, []bool) {
	pairs := make([]MessagePair, size)
	flags := make([]bool, size)

	for i := range pairs {
		var err error
		pairs[i].M0, err = NewBlock(rand.Reader)
		require.NoError(t, err)
		pairs[i].M1, err = NewBlock(rand.Reader)
		require.NoError(t, err)
		flags[i] = i%3 == 0
	}
	return pairs, flags
}

// transfer runs count batches of OTs between sender and receiver and
// verifies the received messages.
func transfer(t testing.TB, sender, receiver OT, pairs []MessagePair,
	flags []bool, count int) {

	pipe, rPipe := NewPipe()
	done := make(chan error, 1)

	go func() {
		defer rPipe.Close()
		if err := receiver.InitReceiver(rPipe); err != nil {
			done <- err
			return
		}
		result := make([]Block, len(flags))
		for n := 0; n < count; n++ {
			if err := receiver.Receive(flags, result); err != nil {
				done <- err
				return
			}
			for i, flag := range flags {
				if !result[i].Equal(pairs[i].Get(flag)) {
					done <- fmt.Errorf("message %d mismatch: %v %v", i,
						result[i], pairs[i])
					return
				}
				if result[i].Equal(pairs[i].Get(!flag)) {
					done <- fmt.Errorf("message %d: other message", i)
					return
				}
			}
		}
		done <- nil
	}()

	require.NoError(t, sender.InitSender(pipe))
	for n := 0; n < count; n++ {
		require.NoError(t, sender.Send(pairs))
	}
	require.NoError(t, <-done)
	require.NoError(t, pipe.Close())
}

func TestOT(t *testing.T) {
	tests := []struct {
		name     string
		sender   OT
		receiver OT
	}{
		{"CO", NewCO(rand.Reader), NewCO(nil)},
		{"Simplest", NewSimplest(rand.Reader), NewSimplest(nil)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, size := range []int{0, 1, 64, 200} {
				pairs, flags := newPairs(t, size)
				transfer(t, test.sender, test.receiver, pairs, flags, 2)
			}
		})
	}
}

func TestOTMismatch(t *testing.T) {
	pipe, rPipe := NewPipe()

	go func() {
		NewSimplest(nil).InitSender(pipe)
	}()
	err := NewCO(nil).InitReceiver(rPipe)
	require.Error(t, err, "CO receiver accepted Simplest sender")
}

func TestInvalidPoint(t *testing.T) {
	pipe, rPipe := NewPipe()

	go func() {
		NewCO(nil).InitSender(pipe)
		pipe.SendData([]byte{0x04, 0x01, 0x02})
	}()
	receiver := NewCO(nil)
	require.NoError(t, receiver.InitReceiver(rPipe))
	err := receiver.Receive([]bool{true}, make([]Block, 1))
	require.Error(t, err)
}

func benchmarkOT(b *testing.B, sender, receiver OT, batchSize int) {
	pairs, flags := newPairs(b, batchSize)
	b.ResetTimer()
	transfer(b, sender, receiver, pairs, flags, b.N)
}

func BenchmarkOTCO_1(b *testing.B) {
	benchmarkOT(b, NewCO(nil), NewCO(nil), 1)
}

func BenchmarkOTCO_128(b *testing.B) {
	benchmarkOT(b, NewCO(nil), NewCO(nil), 128)
}

func BenchmarkOTSimplest_1(b *testing.B) {
	benchmarkOT(b, NewSimplest(nil), NewSimplest(nil), 1)
}

func BenchmarkOTSimplest_128(b *testing.B) {
	benchmarkOT(b, NewSimplest(nil), NewSimplest(nil), 128)
}
