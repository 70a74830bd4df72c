//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

package ot

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"
	"math/big"

	"github.com/cockroachdb/errors"
)

var (
	_ OT = &CO{}
)

// CO implements the Chou Orlandi OT over the NIST P-256 curve. It is
// the default base OT of the extension.
type CO struct {
	rand  io.Reader
	curve elliptic.Curve
	hash  hash.Hash
	io    IO
}

// NewCO creates a new CO OT implementing the OT interface. The rand
// is the source of the secret scalars; if it is nil, crypto/rand is
// used.
func NewCO(r io.Reader) *CO {
	if r == nil {
		r = rand.Reader
	}
	return &CO{
		rand:  r,
		curve: elliptic.P256(),
		hash:  sha256.New(),
	}
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, co.curve.Params().Name); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != co.curve.Params().Name {
		return errors.Newf("invalid curve %s, expected %s",
			name, co.curve.Params().Name)
	}
	return nil
}

// point is an affine curve point.
type point struct {
	x, y *big.Int
}

func (co *CO) scalar() ([]byte, error) {
	k, err := rand.Int(co.rand, co.curve.Params().N)
	if err != nil {
		return nil, err
	}
	return k.Bytes(), nil
}

func (co *CO) sendPoint(p point) error {
	return co.io.SendData(elliptic.Marshal(co.curve, p.x, p.y))
}

func (co *CO) receivePoint() (point, error) {
	data, err := co.io.ReceiveData()
	if err != nil {
		return point{}, err
	}
	// Unmarshal rejects points that are not on the curve.
	x, y := elliptic.Unmarshal(co.curve, data)
	if x == nil {
		return point{}, errors.New("invalid curve point")
	}
	return point{x: x, y: y}, nil
}

// key hashes the point and the transfer index into a block sized key.
func (co *CO) key(p point, id uint64) Block {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], id)

	co.hash.Reset()
	co.hash.Write(p.x.Bytes())
	co.hash.Write(p.y.Bytes())
	co.hash.Write(tmp[:])

	var key Block
	key.SetBytes(co.hash.Sum(nil))
	return key
}

// Send sends the message pairs with OT.
func (co *CO) Send(pairs []MessagePair) error {
	a, err := co.scalar()
	if err != nil {
		return err
	}
	// A = aG, T = -aA
	var A, T point
	A.x, A.y = co.curve.ScalarBaseMult(a)
	T.x, T.y = co.curve.ScalarMult(A.x, A.y, a)
	T.y.Sub(co.curve.Params().P, T.y)

	if err := co.sendPoint(A); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	B := make([]point, len(pairs))
	for i := range B {
		B[i], err = co.receivePoint()
		if err != nil {
			return errors.Wrapf(err, "point %d", i)
		}
	}

	buf := make([]byte, 32)
	for i := range pairs {
		// k0 = aB, k1 = a(B - A) = aB - aA
		var K0, K1 point
		K0.x, K0.y = co.curve.ScalarMult(B[i].x, B[i].y, a)
		K1.x, K1.y = co.curve.Add(K0.x, K0.y, T.x, T.y)

		e0 := co.key(K0, uint64(i))
		e1 := co.key(K1, uint64(i))
		e0.Xor(pairs[i].M0)
		e1.Xor(pairs[i].M1)

		if err := SendBlocks(co.io, []Block{e0, e1}, buf); err != nil {
			return err
		}
	}

	return co.io.Flush()
}

// Receive receives the messages with OT based on the flag values.
func (co *CO) Receive(flags []bool, result []Block) error {
	if len(flags) != len(result) {
		panic("len(flags) != len(result)")
	}

	A, err := co.receivePoint()
	if err != nil {
		return errors.Wrap(err, "sender point")
	}

	b := make([][]byte, len(flags))
	for i := range flags {
		b[i], err = co.scalar()
		if err != nil {
			return err
		}
		var B point
		B.x, B.y = co.curve.ScalarBaseMult(b[i])
		if flags[i] {
			// B = A + bG
			B.x, B.y = co.curve.Add(A.x, A.y, B.x, B.y)
		}
		if err := co.sendPoint(B); err != nil {
			return err
		}
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	e := make([]Block, 2)
	for i := range flags {
		if err := ReceiveBlocks(co.io, e); err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
		var K point
		K.x, K.y = co.curve.ScalarMult(A.x, A.y, b[i])
		key := co.key(K, uint64(i))
		if flags[i] {
			key.Xor(e[1])
		} else {
			key.Xor(e[0])
		}
		result[i] = key
	}

	return nil
}
