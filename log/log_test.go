//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package log

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

func TestContextLogger(t *testing.T) {
	ctx := context.Background()

	logger := GetLoggerFromContextWithName(ctx, "sender")
	require.True(t, logger.GetSink() == nil || !logger.Enabled(),
		"logger without context must discard")

	ctx = ContextWithLogger(ctx, GetLogger(1))
	logger, err := logr.FromContext(ctx)
	require.NoError(t, err)
	require.True(t, logger.V(1).Enabled())
	require.False(t, logger.V(2).Enabled())

	named := GetLoggerFromContextWithName(ctx, "receiver")
	require.True(t, named.Enabled())
}

func TestInvalidVerbosity(t *testing.T) {
	logger := GetLogger(7)
	require.True(t, logger.Enabled())
	require.False(t, logger.V(1).Enabled())
}
