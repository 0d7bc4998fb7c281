//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package arith implements the arithmetic multi-party protocol:
// wires whose values are additively secret shared modulo 2^n, and
// the gates operating on them. Multiplicative gates consume the
// correlated randomness of the beaver package.
package arith

import (
	"errors"
	"io"

	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/zn"
)

// Wire is an arithmetic wire. It holds one additive share modulo
// 2^n for each of its SIMD values.
type Wire[T any] struct {
	core.WireCore
	ring   zn.Ring[T]
	shares []T
}

// NewWire creates a wire for nsimd pending share values. The wire
// becomes done when its producing gate evaluates.
func NewWire[T any](c *core.Core, ring zn.Ring[T], nsimd int) (
	*Wire[T], error) {

	if nsimd < 1 {
		return nil, errors.New("arith: number of values must be positive")
	}
	w := &Wire[T]{
		ring:   ring,
		shares: make([]T, nsimd),
	}
	err := w.WireCore.Init(c, w, nsimd, false)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewWireFromShares creates a wire holding the party's share
// values. The wire is born done.
func NewWireFromShares[T any](c *core.Core, ring zn.Ring[T], shares []T) (
	*Wire[T], error) {

	if len(shares) < 1 {
		return nil, errors.New("arith: number of values must be positive")
	}
	w := &Wire[T]{
		ring:   ring,
		shares: append([]T(nil), shares...),
	}
	err := w.WireCore.Init(c, w, len(shares), false)
	if err != nil {
		return nil, err
	}
	w.Complete()
	return w, nil
}

// NewConstWire creates a wire carrying cleartext constant values.
// Constant values are not secret shared: party 0 contributes the
// cleartext and all other parties contribute zero. The wire is born
// done.
func NewConstWire[T any](c *core.Core, ring zn.Ring[T], values []T) (
	*Wire[T], error) {

	if len(values) < 1 {
		return nil, errors.New("arith: number of values must be positive")
	}
	w := &Wire[T]{
		ring:   ring,
		shares: append([]T(nil), values...),
	}
	err := w.WireCore.Init(c, w, len(values), true)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Ring returns the wire's arithmetic ring.
func (w *Wire[T]) Ring() zn.Ring[T] {
	return w.ring
}

// Shares returns the wire's share values. For constant wires the
// result is the cleartext values.
func (w *Wire[T]) Shares() []T {
	return w.shares
}

// contribution returns the party's additive contribution of the
// wire: its share values, or for constant wires the cleartext at
// party 0 and zero elsewhere.
func (w *Wire[T]) contribution(party int) []T {
	if !w.IsConstant() || party == 0 {
		return w.shares
	}
	return make([]T, len(w.shares))
}

// SplitShares splits the cleartext values into additive shares, one
// share vector per party.
func SplitShares[T any](ring zn.Ring[T], rand io.Reader, values []T,
	parties int) ([][]T, error) {

	if parties < 1 {
		return nil, errors.New("arith: number of parties must be positive")
	}
	shares := make([][]T, parties)

	acc := append([]T(nil), values...)
	for i := 1; i < parties; i++ {
		share := make([]T, len(values))
		for j := range share {
			r, err := ring.Rand(rand)
			if err != nil {
				return nil, err
			}
			share[j] = r
			acc[j] = ring.Sub(acc[j], r)
		}
		shares[i] = share
	}
	shares[0] = acc

	return shares, nil
}
