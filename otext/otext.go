//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package otext implements the SoftSpoken 1-out-of-2 OT extension in
// the semi-honest model. The extension derives correlated OTs from a
// subspace VOLE base expander, whitens them with a fixed-key
// correlation robust hash, and streams the per-chunk corrections
// between the peers through the chunk pipeline.
//
//   - SoftSpoken: Communication-Efficient OT Extension
//     https://eprint.iacr.org/2022/192.pdf
package otext

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/markkurossi/softspoken/chunk"
	"github.com/markkurossi/softspoken/env"
	"github.com/markkurossi/softspoken/log"
	"github.com/markkurossi/softspoken/ot"
)

const (
	// ChunkSize is the number of OTs in one chunk.
	ChunkSize = chunk.Size

	// hashBatch is the number of raw blocks whitened per hash call.
	hashBatch = 8
)

var (
	// ErrNotImplemented is returned by Split.
	ErrNotImplemented = errors.New("otext: not implemented")

	// ErrAborted is returned when an instance whose previous run
	// failed is used before InitTemporaryStorage.
	ErrAborted = errors.New("otext: aborted by previous error")

	// ErrDesync is returned when the peers disagree on the block
	// index. It is reported only with env.Config.VerifyBlockIndex.
	ErrDesync = chunk.ErrDesync
)

// SenderExpander produces the OT extension sender's raw correlated
// blocks q_i = t_i ⊕ c_i·Δ.
type SenderExpander interface {
	// WPadded returns the number of blocks the generate functions
	// write.
	WPadded() int

	// Delta returns the sender's correlation Δ.
	Delta() ot.Block

	// CorrectionBlocks returns the number of correction blocks the
	// receiver sends per chunk.
	CorrectionBlocks(chosen bool) int

	// GenerateRandom writes q_i of the chunk blockIdx to out[0:128]
	// using the random mode correction.
	GenerateRandom(blockIdx int, correction, out []ot.Block)

	// GenerateChosen writes q_i of the chunk blockIdx to out[0:128]
	// using the chosen mode correction.
	GenerateChosen(blockIdx int, correction, out []ot.Block)
}

// ReceiverExpander produces the OT extension receiver's raw blocks
// t_i and the corrections for the sender.
type ReceiverExpander interface {
	// VPadded returns the number of blocks the generate functions
	// write.
	VPadded() int

	// CorrectionBlocks returns the number of correction blocks per
	// chunk.
	CorrectionBlocks(chosen bool) int

	// GenerateRandom writes t_i of the chunk blockIdx to out[0:128]
	// and returns random choice bits in choices.
	GenerateRandom(blockIdx int, choices *ot.Block, out,
		correction []ot.Block)

	// GenerateChosen writes t_i of the chunk blockIdx to out[0:128]
	// for the choice bits choices.
	GenerateChosen(blockIdx int, choices ot.Block, out,
		correction []ot.Block)
}

// withLogger adds the configured logger to the context unless the
// context already carries one.
func withLogger(ctx context.Context, config *env.Config) context.Context {
	if _, err := logr.FromContext(ctx); err == nil {
		return ctx
	}
	return log.ContextWithLogger(ctx, config.GetLogger())
}
