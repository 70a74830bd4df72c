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

// Receiver implements the VOLE receiver that holds the secret points
// p_g and the punctured trees. It is the base expander of the OT
// extension sender.
type Receiver struct {
	Params
	threads int
	points  []int
	delta   ot.Block
	ciphers [][]cipher.Block
}

// NewReceiver creates a new VOLE receiver for the field width
// fieldBits.
func NewReceiver(fieldBits, threads int) *Receiver {
	return &Receiver{
		Params:  NewParams(fieldBits),
		threads: threads,
	}
}

// HasSetup tests if the receiver trees have been reconstructed.
func (r *Receiver) HasSetup() bool {
	return r.ciphers != nil
}

// newPoints samples the secret points p_g and returns the base OT
// choice flags that select the sibling of each path node.
func (r *Receiver) newPoints(rand io.Reader) ([]bool, error) {
	k := r.FieldBits
	buf := make([]byte, r.NumVoles)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, err
	}
	points := make([]int, r.NumVoles)
	flags := make([]bool, r.NumBaseOTs())
	var delta ot.Block

	for g := 0; g < r.NumVoles; g++ {
		p := int(buf[g]) & (r.Leaves() - 1)
		points[g] = p
		for b := 0; b < k; b++ {
			bit := uint(p>>b) & 1
			flags[g*k+b] = bit == 0
			if g*k+b < Bits {
				delta.SetBit(g*k+b, bit)
			}
		}
	}
	r.points = points
	r.delta = delta

	return flags, nil
}

// setTrees reconstructs the punctured trees from the sibling sums.
func (r *Receiver) setTrees(sums []ot.Block) error {
	k := r.FieldBits
	ciphers := make([][]cipher.Block, r.NumVoles)
	for g := 0; g < r.NumVoles; g++ {
		leaves := puncturedTree(r.points[g], k, sums[g*k:(g+1)*k])
		c, err := newCiphers(leaves, r.points[g])
		if err != nil {
			return err
		}
		ciphers[g] = c
	}
	r.ciphers = ciphers
	return nil
}

// Setup samples the secret points and receives the punctured trees
// with the base OT.
func (r *Receiver) Setup(base ot.OT, conn ot.IO, rand io.Reader) error {
	flags, err := r.newPoints(rand)
	if err != nil {
		return errors.Wrap(err, "vole: sample points")
	}
	if err := base.InitReceiver(conn); err != nil {
		return errors.Wrap(err, "vole: InitReceiver")
	}
	sums := make([]ot.Block, len(flags))
	if err := base.Receive(flags, sums); err != nil {
		return errors.Wrap(err, "vole: base OT receive")
	}
	return r.setTrees(sums)
}

// WPadded returns the number of output blocks GenerateRandom and
// GenerateChosen use.
func (r *Receiver) WPadded() int {
	return r.Padded
}

// Delta returns the correlation Δ: bit j is the bit j%k of the point
// of VOLE j/k.
func (r *Receiver) Delta() ot.Block {
	return r.delta
}

// generate computes the corrected rows q_g,b into out. The corr
// returns the correction d_g of the VOLE g.
func (r *Receiver) generate(blockIdx int, out []ot.Block,
	corr func(g int) ot.Block) {

	if r.ciphers == nil {
		panic("vole: receiver not set up")
	}
	k := r.FieldBits
	in := indexData(blockIdx)

	forVoles(r.NumVoles, r.threads, func(g int) {
		p := r.points[g]
		w := out[g*k : (g+1)*k]
		for b := range w {
			w[b] = ot.Block{}
		}
		for x, c := range r.ciphers[g] {
			if x == p {
				continue
			}
			row := leafRow(c, &in)
			d := x ^ p
			for b := 0; b < k; b++ {
				if (d>>b)&1 == 1 {
					w[b].Xor(row)
				}
			}
		}
		dg := corr(g)
		for b := 0; b < k; b++ {
			w[b].Xor(dg.Mask(uint(p>>b) & 1))
		}
	})
	for i := r.Rows; i < r.Padded; i++ {
		out[i] = ot.Block{}
	}
	transpose(out)
}

// GenerateRandom generates the per-OT values q_i of the chunk
// blockIdx into the first 128 blocks of out. The correction holds the
// sender's random mode corrections.
func (r *Receiver) GenerateRandom(blockIdx int, correction, out []ot.Block) {
	checkBuffers(r.Params, out, correction, false)
	r.generate(blockIdx, out, func(g int) ot.Block {
		if g == 0 {
			return ot.Block{}
		}
		return correction[g-1]
	})
}

// GenerateChosen generates the per-OT values q_i of the chunk
// blockIdx into the first 128 blocks of out. The correction holds the
// sender's chosen mode corrections.
func (r *Receiver) GenerateChosen(blockIdx int, correction, out []ot.Block) {
	checkBuffers(r.Params, out, correction, true)
	r.generate(blockIdx, out, func(g int) ot.Block {
		return correction[g]
	})
}
