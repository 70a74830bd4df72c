//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// RetryDelay is the delay between connection attempts in Dial.
var RetryDelay = 5 * time.Second

// Dial connects to the peer at addr. The connection is retried until
// it succeeds or the context is done.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	logger := logr.FromContextOrDiscard(ctx).WithName("p2p")
	var dialer net.Dialer

	for {
		logger.V(1).Info("connecting to peer", "addr", addr)
		nc, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			logger.Info("connected", "addr", addr)
			return NewConn(nc), nil
		}
		logger.Info("connect failed, retrying", "addr", addr,
			"delay", RetryDelay, "error", err.Error())

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "dial %s", addr)
		case <-time.After(RetryDelay):
		}
	}
}

// Listen accepts one peer connection at addr. The listener is closed
// when the peer has connected or the context is done.
func Listen(ctx context.Context, addr string) (*Conn, error) {
	logger := logr.FromContextOrDiscard(ctx).WithName("p2p")

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	defer listener.Close()

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stop()

	logger.Info("listening", "addr", listener.Addr().String())
	nc, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "listen %s", addr)
		}
		return nil, errors.Wrap(err, "accept")
	}
	logger.Info("accepted", "peer", nc.RemoteAddr().String())

	return NewConn(nc), nil
}
