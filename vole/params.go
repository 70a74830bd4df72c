//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/markkurossi/softspoken/ot"
)

const (
	// Bits is the width of the correlation in bits. It equals the
	// number of OTs in one chunk.
	Bits = 128

	// MinFieldBits is the smallest supported field width.
	MinFieldBits = 1

	// MaxFieldBits is the largest supported field width.
	MaxFieldBits = 8
)

// Params define the VOLE dimensions for a field width.
type Params struct {
	FieldBits int
	NumVoles  int
	Rows      int
	Padded    int
}

// NewParams creates the parameters for the field width fieldBits.
func NewParams(fieldBits int) Params {
	if fieldBits < MinFieldBits || fieldBits > MaxFieldBits {
		panic(fmt.Sprintf("vole: invalid field bits %d", fieldBits))
	}
	numVoles := (Bits + fieldBits - 1) / fieldBits
	rows := numVoles * fieldBits

	return Params{
		FieldBits: fieldBits,
		NumVoles:  numVoles,
		Rows:      rows,
		Padded:    (rows + 7) &^ 7,
	}
}

// Leaves returns the number of leaves of one VOLE tree.
func (p Params) Leaves() int {
	return 1 << p.FieldBits
}

// NumBaseOTs returns the number of base OTs the setup consumes.
func (p Params) NumBaseOTs() int {
	return p.NumVoles * p.FieldBits
}

// CorrectionBlocks returns the number of correction blocks per chunk.
// The random mode omits the correction of the first VOLE.
func (p Params) CorrectionBlocks(chosen bool) int {
	if chosen {
		return p.NumVoles
	}
	return p.NumVoles - 1
}

func (p Params) String() string {
	return fmt.Sprintf("k=%d, voles=%d, rows=%d", p.FieldBits, p.NumVoles,
		p.Rows)
}

func newCiphers(leaves []ot.Block, punctured int) ([]cipher.Block, error) {
	result := make([]cipher.Block, len(leaves))
	var d ot.BlockData
	for x, leaf := range leaves {
		if x == punctured {
			continue
		}
		c, err := aes.NewCipher(leaf.Bytes(&d))
		if err != nil {
			return nil, err
		}
		result[x] = c
	}
	return result, nil
}

// leafRow returns the row of the leaf cipher c for the block index.
func leafRow(c cipher.Block, in *ot.BlockData) ot.Block {
	var out ot.BlockData
	c.Encrypt(out[:], in[:])

	var r ot.Block
	r.SetData(&out)
	return r
}

func indexData(blockIdx int) ot.BlockData {
	var d ot.BlockData
	binary.BigEndian.PutUint64(d[8:], uint64(blockIdx))
	return d
}

// forVoles calls fn for each VOLE. With more than one thread the VOLEs
// are divided into contiguous ranges, one goroutine per range.
func forVoles(numVoles, threads int, fn func(g int)) {
	if threads <= 1 || numVoles <= 1 {
		for g := 0; g < numVoles; g++ {
			fn(g)
		}
		return
	}
	if threads > numVoles {
		threads = numVoles
	}
	per := (numVoles + threads - 1) / threads

	var wg sync.WaitGroup
	for start := 0; start < numVoles; start += per {
		end := start + per
		if end > numVoles {
			end = numVoles
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := start; g < end; g++ {
				fn(g)
			}
		}()
	}
	wg.Wait()
}

func checkBuffers(p Params, out, correction []ot.Block, chosen bool) {
	if len(out) < p.Padded {
		panic(fmt.Sprintf("vole: output buffer too small: %d < %d",
			len(out), p.Padded))
	}
	if len(correction) < p.CorrectionBlocks(chosen) {
		panic(fmt.Sprintf("vole: correction buffer too small: %d < %d",
			len(correction), p.CorrectionBlocks(chosen)))
	}
}

func transpose(out []ot.Block) {
	ot.Transpose128((*[Bits]ot.Block)(out[:Bits]))
}
