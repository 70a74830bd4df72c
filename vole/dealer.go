//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"

	"github.com/markkurossi/softspoken/ot"
)

// Dealer creates a VOLE sender and receiver pair without base OTs.
// All trees and points are derived from the seed so the pair is
// deterministic and insecure: it is meant for tests and benchmarks.
func Dealer(seed []byte, fieldBits, threads int) (*Sender, *Receiver, error) {
	h := blake3.New()
	h.Write([]byte("softspoken vole dealer"))
	h.Write(seed)
	xof := h.Digest()

	sender := NewSender(fieldBits, threads)
	pairs, err := sender.newTrees(xof)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dealer: create trees")
	}

	receiver := NewReceiver(fieldBits, threads)
	flags, err := receiver.newPoints(xof)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dealer: sample points")
	}

	sums := make([]ot.Block, len(flags))
	for i, flag := range flags {
		sums[i] = pairs[i].Get(flag)
	}
	if err := receiver.setTrees(sums); err != nil {
		return nil, nil, errors.Wrap(err, "dealer: set trees")
	}
	return sender, receiver, nil
}
