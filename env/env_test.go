//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var config *Config

	require.Equal(t, rand.Reader, config.GetRandom())
	require.Equal(t, DefaultFieldBits, config.GetFieldBits())
	require.Equal(t, 1, config.GetNumThreads())
	require.False(t, config.GetLogger().Enabled())

	config = &Config{}
	require.Equal(t, rand.Reader, config.GetRandom())
	require.Equal(t, DefaultFieldBits, config.GetFieldBits())
	require.Equal(t, 1, config.GetNumThreads())
}

func TestFieldBits(t *testing.T) {
	tests := []struct {
		bits     int
		expected int
	}{
		{-1, MinFieldBits},
		{1, 1},
		{4, 4},
		{8, 8},
		{9, MaxFieldBits},
	}
	for _, test := range tests {
		config := &Config{
			FieldBits: test.bits,
		}
		require.Equal(t, test.expected, config.GetFieldBits(),
			"FieldBits=%d", test.bits)
	}
}

func TestRandom(t *testing.T) {
	r := bytes.NewReader(nil)
	config := &Config{
		Rand: r,
	}
	require.Equal(t, r, config.GetRandom())
	require.Greater(t, (&Config{NumThreads: -1}).GetNumThreads(), 0)
}
