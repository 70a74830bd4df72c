//
// simplest.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// The Simplest Protocol for Oblivious Transfer over the ristretto255
// prime order group.
//  - https://eprint.iacr.org/2015/267.pdf

package ot

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	gr "github.com/bwesterb/go-ristretto"
	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"
)

const (
	simplestName = "ristretto255"
	pointLen     = 32
)

var (
	_ OT = &Simplest{}
)

// Simplest implements the Simplest OT over ristretto255 as the OT
// interface.
type Simplest struct {
	rand io.Reader
	io   IO
}

// NewSimplest creates a new Simplest OT. The rand is the source of
// the secret scalars; if it is nil, crypto/rand is used.
func NewSimplest(r io.Reader) *Simplest {
	if r == nil {
		r = rand.Reader
	}
	return &Simplest{
		rand: r,
	}
}

// InitSender initializes the OT sender.
func (s *Simplest) InitSender(io IO) error {
	s.io = io
	if err := SendString(io, simplestName); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (s *Simplest) InitReceiver(io IO) error {
	s.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != simplestName {
		return errors.Newf("invalid group %s, expected %s", name, simplestName)
	}
	return nil
}

func (s *Simplest) scalar(out *gr.Scalar) error {
	var buf [64]byte
	if _, err := io.ReadFull(s.rand, buf[:]); err != nil {
		return err
	}
	out.SetReduced(&buf)
	return nil
}

func (s *Simplest) sendPoint(p *gr.Point) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	return s.io.SendData(data)
}

func (s *Simplest) receivePoint(p *gr.Point) error {
	data, err := s.io.ReceiveData()
	if err != nil {
		return err
	}
	if len(data) != pointLen {
		return errors.Newf("invalid point length %d", len(data))
	}
	return p.UnmarshalBinary(data)
}

// deriveKey hashes the point and the transfer index into a block
// sized key.
func deriveKey(h *blake3.Hasher, p *gr.Point, id uint64) (Block, error) {
	var key Block

	data, err := p.MarshalBinary()
	if err != nil {
		return key, err
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], id)

	h.Reset()
	h.Write(data)
	h.Write(tmp[:])
	key.SetBytes(h.Sum(nil))

	return key, nil
}

// Send sends the message pairs with OT.
func (s *Simplest) Send(pairs []MessagePair) error {
	var a gr.Scalar
	if err := s.scalar(&a); err != nil {
		return err
	}
	// A = aG, T = aA
	var A, T gr.Point
	A.ScalarMultBase(&a)
	T.ScalarMult(&A, &a)

	if err := s.sendPoint(&A); err != nil {
		return err
	}
	if err := s.io.Flush(); err != nil {
		return err
	}

	B := make([]gr.Point, len(pairs))
	for i := range B {
		if err := s.receivePoint(&B[i]); err != nil {
			return errors.Wrapf(err, "point %d", i)
		}
	}

	h := blake3.New()
	buf := make([]byte, 32)
	var K0, K1 gr.Point
	for i := range pairs {
		// k0 = aB, k1 = a(B - A) = aB - aA
		K0.ScalarMult(&B[i], &a)
		K1.Sub(&K0, &T)

		key0, err := deriveKey(h, &K0, uint64(i))
		if err != nil {
			return err
		}
		key1, err := deriveKey(h, &K1, uint64(i))
		if err != nil {
			return err
		}
		key0.Xor(pairs[i].M0)
		key1.Xor(pairs[i].M1)

		if err := SendBlocks(s.io, []Block{key0, key1}, buf); err != nil {
			return err
		}
	}

	return s.io.Flush()
}

// Receive receives the messages with OT based on the flag values.
func (s *Simplest) Receive(flags []bool, result []Block) error {
	if len(flags) != len(result) {
		panic("len(flags) != len(result)")
	}

	var A gr.Point
	if err := s.receivePoint(&A); err != nil {
		return err
	}

	b := make([]gr.Scalar, len(flags))
	var B gr.Point
	for i := range flags {
		if err := s.scalar(&b[i]); err != nil {
			return err
		}
		B.ScalarMultBase(&b[i])
		if flags[i] {
			// B = A + bG
			B.Add(&A, &B)
		}
		if err := s.sendPoint(&B); err != nil {
			return err
		}
	}
	if err := s.io.Flush(); err != nil {
		return err
	}

	h := blake3.New()
	e := make([]Block, 2)
	var K gr.Point
	for i := range flags {
		if err := ReceiveBlocks(s.io, e); err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
		K.ScalarMult(&A, &b[i])
		key, err := deriveKey(h, &K, uint64(i))
		if err != nil {
			return err
		}
		if flags[i] {
			key.Xor(e[1])
		} else {
			key.Xor(e[0])
		}
		result[i] = key
	}

	return nil
}
