//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package log provides the leveled logger used throughout this
// module. It is a thin wrapper around zap's sugared logger.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging levels, ordered from most to least verbose.
const (
	LogDebug = int(zapcore.DebugLevel)
	LogInfo  = int(zapcore.InfoLevel)
	LogWarn  = int(zapcore.WarnLevel)
	LogError = int(zapcore.ErrorLevel)
)

// Logger is the logging interface of this module. Protocol trace
// output goes to the debug level.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// With returns a logger with the key-value pairs attached to
	// all messages.
	With(args ...interface{}) Logger

	// Named returns a logger with the name segment appended to its
	// path.
	Named(name string) Logger
}

type logger struct {
	*zap.SugaredLogger
}

// New returns a logger writing to output at the given level. A nil
// output means stdout. The json flag selects JSON encoding over
// console encoding.
func New(output zapcore.WriteSyncer, level int, json bool) Logger {
	if output == nil {
		output = os.Stdout
	}
	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	}
	core := zapcore.NewCore(encoder, output, zapcore.Level(level))
	return logger{
		SugaredLogger: zap.New(core).Sugar(),
	}
}

// Nop returns a logger that discards all messages.
func Nop() Logger {
	return logger{
		SugaredLogger: zap.NewNop().Sugar(),
	}
}

var (
	defaultLogger Logger
	defaultOnce   sync.Once
)

// Default returns the shared default logger: console encoding to
// stdout at the info level.
func Default() Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(nil, LogInfo, false)
	})
	return defaultLogger
}

func (l logger) With(args ...interface{}) Logger {
	return logger{
		SugaredLogger: l.SugaredLogger.With(args...),
	}
}

func (l logger) Named(name string) Logger {
	return logger{
		SugaredLogger: l.SugaredLogger.Named(name),
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
