//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package log provides the structured loggers of the OT extension.
package log

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// MaxVerbosity is the highest supported verbosity level.
const MaxVerbosity = 2

// GetLogger returns a stdr.Logger that implements the logr.Logger
// interface and sets the verbosity of the returned logger. Set v to 0
// for info level messages, 1 for per-batch debug messages and 2 for
// per-chunk trace messages. Any other verbosity level defaults to 0.
func GetLogger(v int) logr.Logger {
	logger := stdr.New(nil).WithName("softspoken")
	if v > MaxVerbosity || v < 0 {
		v = 0
		logger.Info("Invalid verbosity, setting logger to display info level messages only.")
	}
	stdr.SetVerbosity(v)

	return logger
}

// ContextWithLogger returns a context that carries the logger. The
// OT extension Send and Receive functions log to it.
func ContextWithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// GetLoggerFromContextWithName returns the logger of the context, or a
// discarding logger if the context has none, named with name.
func GetLoggerFromContextWithName(ctx context.Context, name string) logr.Logger {
	logger := logr.FromContextOrDiscard(ctx)
	if name != "" {
		return logger.WithName(name)
	}
	return logger
}
