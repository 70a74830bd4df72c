//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"encoding/binary"
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/softspoken/ot"
)

var (
	_ ot.IO = &Conn{}
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024
)

// Conn implements a framed protocol connection. Writes are buffered
// and handed to a writer goroutine on Flush so that the caller can
// fill the next buffer while the previous one is on the wire.
type Conn struct {
	conn   io.ReadWriter
	wbuf   []byte
	wpos   int
	rbuf   []byte
	rstart int
	rend   int
	Stats  IOStats

	fromWriter chan []byte
	toWriter   chan []byte
	writerErr  atomic.Pointer[error]
}

// IOStats implements I/O statistics.
type IOStats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewIOStats creates a new I/O statistics object.
func NewIOStats() IOStats {
	return IOStats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Add adds the argument stats to this IOStats and returns the sum.
func (stats IOStats) Add(o IOStats) IOStats {
	result := NewIOStats()
	result.Sent.Store(stats.Sent.Load() + o.Sent.Load())
	result.Recvd.Store(stats.Recvd.Load() + o.Recvd.Load())
	result.Flushed.Store(stats.Flushed.Load() + o.Flushed.Load())
	return result
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent.Load() + stats.Recvd.Load()
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:       conn,
		rbuf:       make([]byte, readBufSize),
		fromWriter: make(chan []byte, numBuffers),
		toWriter:   make(chan []byte, numBuffers),
		Stats:      NewIOStats(),
	}
	for i := 0; i < numBuffers; i++ {
		c.fromWriter <- make([]byte, writeBufSize)
	}
	go c.writer()

	c.wbuf = <-c.fromWriter

	return c
}

func (c *Conn) writer() {
	for buf := range c.toWriter {
		if _, err := c.conn.Write(buf); err != nil {
			c.writerErr.CompareAndSwap(nil, &err)
		}
		c.fromWriter <- buf[0:cap(buf)]
	}
	close(c.fromWriter)
}

func (c *Conn) err() error {
	if err := c.writerErr.Load(); err != nil {
		return *err
	}
	return nil
}

// reserve returns the next n bytes of the write buffer. The n must
// not exceed writeBufSize.
func (c *Conn) reserve(n int) ([]byte, error) {
	if c.wpos+n > len(c.wbuf) {
		if err := c.Flush(); err != nil {
			return nil, err
		}
	}
	buf := c.wbuf[c.wpos : c.wpos+n]
	c.wpos += n
	return buf, nil
}

// Flush hands the buffered data to the writer goroutine. It returns
// the error of any earlier failed write.
func (c *Conn) Flush() error {
	if c.wpos > 0 {
		c.Stats.Sent.Add(uint64(c.wpos))
		c.toWriter <- c.wbuf[0:c.wpos]
		c.wbuf = <-c.fromWriter
		c.wpos = 0
		c.Stats.Flushed.Add(1)
	}
	return c.err()
}

// fill reads from the connection until at least n bytes are buffered.
// Any unread data is moved to the beginning of the buffer.
func (c *Conn) fill(n int) error {
	if c.rstart > 0 {
		copy(c.rbuf, c.rbuf[c.rstart:c.rend])
		c.rend -= c.rstart
		c.rstart = 0
	}
	for c.rend < n {
		got, err := c.conn.Read(c.rbuf[c.rend:])
		if err != nil {
			return err
		}
		c.Stats.Recvd.Add(uint64(got))
		c.rend += got
	}
	return nil
}

// next returns the next n buffered bytes. The n must not exceed
// readBufSize.
func (c *Conn) next(n int) ([]byte, error) {
	if c.rstart+n > c.rend {
		if err := c.fill(n); err != nil {
			return nil, err
		}
	}
	buf := c.rbuf[c.rstart : c.rstart+n]
	c.rstart += n
	return buf, nil
}

// Close flushes any pending data, waits for the writer goroutine and
// closes the connection.
func (c *Conn) Close() error {
	c.Flush()
	close(c.toWriter)
	for range c.fromWriter {
	}
	var closeErr error
	if closer, ok := c.conn.(io.Closer); ok {
		closeErr = closer.Close()
	}
	return errors.CombineErrors(c.err(), closeErr)
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	buf, err := c.reserve(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(buf, uint32(val))
	return nil
}

// SendData sends a length prefixed data frame. Data longer than the
// write buffer is written in buffer sized segments.
func (c *Conn) SendData(val []byte) error {
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	for len(val) > 0 {
		if c.wpos == len(c.wbuf) {
			if err := c.Flush(); err != nil {
				return err
			}
		}
		n := copy(c.wbuf[c.wpos:], val)
		c.wpos += n
		val = val[n:]
	}
	return nil
}

// SendBlock sends an OT block without framing.
func (c *Conn) SendBlock(val ot.Block, data *ot.BlockData) error {
	buf, err := c.reserve(len(data))
	if err != nil {
		return err
	}
	copy(buf, val.Bytes(data))
	return nil
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	buf, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(buf)), nil
}

// ReceiveData receives a data frame. Frames that fit in the read
// buffer are returned without copying and are valid until the next
// receive call.
func (c *Conn) ReceiveData() ([]byte, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if n <= len(c.rbuf) {
		return c.next(n)
	}
	result := make([]byte, n)
	for pos := 0; pos < n; {
		if c.rstart == c.rend {
			if err := c.fill(1); err != nil {
				return nil, err
			}
		}
		m := copy(result[pos:], c.rbuf[c.rstart:c.rend])
		c.rstart += m
		pos += m
	}
	return result, nil
}

// ReceiveBlock receives an OT block sent with SendBlock.
func (c *Conn) ReceiveBlock(val *ot.Block, data *ot.BlockData) error {
	buf, err := c.next(len(data))
	if err != nil {
		return err
	}
	copy(data[:], buf)
	val.SetData(data)
	return nil
}
