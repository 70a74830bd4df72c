//
// pipe.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

var (
	_ IO = &Pipe{}
)

// pipeFrames is the number of frames a pipe buffers before the
// sender blocks.
const pipeFrames = 256

// Pipe implements the IO interface with in-memory frame channels. The
// frames keep their boundaries so no length prefix is needed.
type Pipe struct {
	in  <-chan []byte
	out chan<- []byte
}

// NewPipe creates a new in-memory pipe.
func NewPipe() (*Pipe, *Pipe) {
	a := make(chan []byte, pipeFrames)
	b := make(chan []byte, pipeFrames)

	return &Pipe{in: a, out: b}, &Pipe{in: b, out: a}
}

// SendData sends binary data.
func (p *Pipe) SendData(val []byte) error {
	frame := make([]byte, len(val))
	copy(frame, val)
	p.out <- frame
	return nil
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	frame := make([]byte, 4)
	binary.BigEndian.PutUint32(frame, uint32(val))
	p.out <- frame
	return nil
}

// Flush flushed any pending data in the connection.
func (p *Pipe) Flush() error {
	return nil
}

// Drain consumes all input from the pipe until the peer closes it.
func (p *Pipe) Drain() error {
	for range p.in {
	}
	return nil
}

// Close closes the pipe. The peer's receive calls return io.EOF after
// the buffered frames.
func (p *Pipe) Close() error {
	close(p.out)
	return nil
}

// ReceiveData receives binary data.
func (p *Pipe) ReceiveData() ([]byte, error) {
	frame, ok := <-p.in
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	frame, err := p.ReceiveData()
	if err != nil {
		return 0, err
	}
	if len(frame) != 4 {
		return 0, errors.Wrapf(ErrFrameSize, "uint32 frame of %d bytes",
			len(frame))
	}
	return int(binary.BigEndian.Uint32(frame)), nil
}
