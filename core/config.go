//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package core

import (
	"crypto/rand"
	"io"

	"github.com/markkurossi/mpcore/log"
	"github.com/markkurossi/mpcore/stats"
)

// Config defines the per-party configuration of the runtime. It
// configures operation for all runtime modules. Config must not be
// modified after being passed to any module. It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	// ID is the party id.
	ID int

	// Parties is the number of parties in the computation.
	Parties int

	// Rand is the source of entropy for sharing and other
	// cryptography operations. Nil means crypto/rand.
	Rand io.Reader

	// Logger receives the protocol trace. Nil means the default
	// logger.
	Logger log.Logger

	// Stats collects run-time statistics. Nil disables collection.
	Stats *stats.RunTime
}

// GetRandom returns the source of entropy.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the configured logger.
func (config *Config) GetLogger() log.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	return log.Default()
}
