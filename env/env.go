//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the OT extension.
package env

import (
	"crypto/rand"
	"io"
	"runtime"

	"github.com/go-logr/logr"
)

const (
	// DefaultFieldBits is the default subspace VOLE field width.
	DefaultFieldBits = 2

	// MinFieldBits is the smallest supported field width.
	MinFieldBits = 1

	// MaxFieldBits is the largest supported field width.
	MaxFieldBits = 8
)

// Config defines the global system configuration for the OT
// extension. It configures system operation for all modules. Config
// must not be modified after being passed to any module. It is safe
// for concurrent use by multiple modules as they do not modify it.
type Config struct {
	// Rand is the source of entropy for base OTs and the VOLE seeds.
	Rand io.Reader

	// Logger is used when the operation context carries no logger.
	Logger logr.Logger

	// FieldBits is the number of bits k of the small field. The
	// expander runs ceil(128/k) VOLEs with 2^k leaves each. Zero
	// selects DefaultFieldBits.
	FieldBits int

	// NumThreads is the number of goroutines expanding the VOLEs. Zero
	// selects one thread and a negative value selects GOMAXPROCS.
	NumThreads int

	// VerifyBlockIndex adds the block index to every chunk frame and
	// makes the OT sender verify it.
	VerifyBlockIndex bool
}

// GetRandom returns the source of entropy for OT and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config != nil && config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetFieldBits returns the field width in bits, clamped to the
// supported range.
func (config *Config) GetFieldBits() int {
	if config == nil || config.FieldBits == 0 {
		return DefaultFieldBits
	}
	if config.FieldBits < MinFieldBits {
		return MinFieldBits
	}
	if config.FieldBits > MaxFieldBits {
		return MaxFieldBits
	}
	return config.FieldBits
}

// GetNumThreads returns the number of expansion goroutines.
func (config *Config) GetNumThreads() int {
	if config == nil || config.NumThreads == 0 {
		return 1
	}
	if config.NumThreads < 0 {
		return runtime.GOMAXPROCS(0)
	}
	return config.NumThreads
}

// GetLogger returns the configured logger or a discarding logger if
// none is configured.
func (config *Config) GetLogger() logr.Logger {
	if config == nil || config.Logger.GetSink() == nil {
		return logr.Discard()
	}
	return config.Logger
}
