//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"crypto/cipher"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/softspoken/ot"
)

// Sender implements the VOLE sender that owns the GGM trees. It is
// the base expander of the OT extension receiver.
type Sender struct {
	Params
	threads int
	ciphers [][]cipher.Block
	u       []ot.Block
}

// NewSender creates a new VOLE sender for the field width fieldBits.
func NewSender(fieldBits, threads int) *Sender {
	params := NewParams(fieldBits)
	return &Sender{
		Params:  params,
		threads: threads,
		u:       make([]ot.Block, params.NumVoles),
	}
}

// HasSetup tests if the sender trees have been created.
func (s *Sender) HasSetup() bool {
	return s.ciphers != nil
}

// newTrees creates random trees and returns the base OT message pairs
// for the receiver.
func (s *Sender) newTrees(rand io.Reader) ([]ot.MessagePair, error) {
	k := s.FieldBits
	pairs := make([]ot.MessagePair, s.NumBaseOTs())
	ciphers := make([][]cipher.Block, s.NumVoles)

	for g := 0; g < s.NumVoles; g++ {
		root, err := ot.NewBlock(rand)
		if err != nil {
			return nil, err
		}
		leaves, sums := expandTree(root, k)
		copy(pairs[g*k:], sums)

		ciphers[g], err = newCiphers(leaves, -1)
		if err != nil {
			return nil, err
		}
	}
	s.ciphers = ciphers
	return pairs, nil
}

// Setup creates the trees and sends the level sums to the receiver
// with the base OT.
func (s *Sender) Setup(base ot.OT, conn ot.IO, rand io.Reader) error {
	pairs, err := s.newTrees(rand)
	if err != nil {
		return errors.Wrap(err, "vole: create trees")
	}
	if err := base.InitSender(conn); err != nil {
		return errors.Wrap(err, "vole: InitSender")
	}
	if err := base.Send(pairs); err != nil {
		return errors.Wrap(err, "vole: base OT send")
	}
	return nil
}

// VPadded returns the number of output blocks GenerateRandom and
// GenerateChosen use.
func (s *Sender) VPadded() int {
	return s.Padded
}

// expand computes the rows v_g,b into out and u_g into s.u.
func (s *Sender) expand(blockIdx int, out []ot.Block) {
	if s.ciphers == nil {
		panic("vole: sender not set up")
	}
	k := s.FieldBits
	in := indexData(blockIdx)

	forVoles(s.NumVoles, s.threads, func(g int) {
		v := out[g*k : (g+1)*k]
		for b := range v {
			v[b] = ot.Block{}
		}
		var u ot.Block
		for x, c := range s.ciphers[g] {
			r := leafRow(c, &in)
			u.Xor(r)
			for b := 0; b < k; b++ {
				if (x>>b)&1 == 1 {
					v[b].Xor(r)
				}
			}
		}
		s.u[g] = u
	})
	for i := s.Rows; i < s.Padded; i++ {
		out[i] = ot.Block{}
	}
}

// GenerateRandom generates the rows of the chunk blockIdx in random
// mode. The choice bits c = u_0 are returned in choices and the
// corrections u_g ⊕ u_0, g ≥ 1, are stored in correction. The first
// 128 blocks of out are set to the per-OT values t_i.
func (s *Sender) GenerateRandom(blockIdx int, choices *ot.Block,
	out, correction []ot.Block) {

	checkBuffers(s.Params, out, correction, false)
	s.expand(blockIdx, out)

	c := s.u[0]
	for g := 1; g < s.NumVoles; g++ {
		correction[g-1] = s.u[g]
		correction[g-1].Xor(c)
	}
	*choices = c
	transpose(out)
}

// GenerateChosen generates the rows of the chunk blockIdx for the
// choice bits choices. The corrections u_g ⊕ c are stored in
// correction. The first 128 blocks of out are set to the per-OT
// values t_i.
func (s *Sender) GenerateChosen(blockIdx int, choices ot.Block,
	out, correction []ot.Block) {

	checkBuffers(s.Params, out, correction, true)
	s.expand(blockIdx, out)

	for g := 0; g < s.NumVoles; g++ {
		correction[g] = s.u[g]
		correction[g].Xor(choices)
	}
	transpose(out)
}
