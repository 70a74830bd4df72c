//
// io.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"github.com/cockroachdb/errors"
)

// ErrFrameSize is returned when a received frame does not have the
// expected number of blocks.
var ErrFrameSize = errors.New("ot: invalid frame size")

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// Flush flushed any pending data in the connection.
	Flush() error

	// ReceiveData receives binary data. The returned slice may be
	// reused by the next receive call.
	ReceiveData() ([]byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)
}

// SendString sends a string value.
func SendString(io IO, str string) error {
	return io.SendData([]byte(str))
}

// ReceiveString receives a string value.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SendBlocks sends the blocks as one data frame. The buf is used as
// the encoding buffer if it is large enough.
func SendBlocks(io IO, blocks []Block, buf []byte) error {
	l := len(blocks) * 16
	if cap(buf) < l {
		buf = make([]byte, l)
	}
	buf = buf[:l]
	var data BlockData
	for i, b := range blocks {
		b.GetData(&data)
		copy(buf[i*16:], data[:])
	}
	return io.SendData(buf)
}

// ReceiveBlocks receives a data frame of exactly len(blocks) blocks.
func ReceiveBlocks(io IO, blocks []Block) error {
	data, err := io.ReceiveData()
	if err != nil {
		return err
	}
	if len(data) != len(blocks)*16 {
		return errors.Wrapf(ErrFrameSize, "got %d bytes, expected %d",
			len(data), len(blocks)*16)
	}
	for i := range blocks {
		blocks[i].SetBytes(data[i*16:])
	}
	return nil
}
