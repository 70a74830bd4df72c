//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(),
		100*time.Millisecond)
	defer cancel()

	_, err := Listen(ctx, "127.0.0.1:0")
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDialCancel(t *testing.T) {
	saved := RetryDelay
	RetryDelay = 10 * time.Millisecond
	defer func() {
		RetryDelay = saved
	}()

	ctx, cancel := context.WithTimeout(context.Background(),
		100*time.Millisecond)
	defer cancel()

	// Port 1 on localhost is not expected to accept connections.
	_, err := Dial(ctx, "127.0.0.1:1")
	require.Error(t, err)
}
