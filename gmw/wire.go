//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"errors"
	"io"

	"github.com/markkurossi/mpcore/core"
)

// Wire is a boolean GMW wire. It holds one XOR share bit for each
// of its SIMD values.
type Wire struct {
	core.WireCore
	shares *BitVector
}

// NewWire creates a wire for nsimd pending share values. The wire
// becomes done when its producing gate evaluates.
func NewWire(c *core.Core, nsimd int) (*Wire, error) {
	if nsimd < 1 {
		return nil, errors.New("gmw: number of values must be positive")
	}
	w := &Wire{
		shares: NewBitVector(nsimd),
	}
	err := w.WireCore.Init(c, w, nsimd, false)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewWireFromShares creates a wire holding the party's share
// values. The wire is born done.
func NewWireFromShares(c *core.Core, shares *BitVector) (*Wire, error) {
	if shares == nil || shares.Bits() < 1 {
		return nil, errors.New("gmw: number of values must be positive")
	}
	w := &Wire{
		shares: shares.Clone(),
	}
	err := w.WireCore.Init(c, w, shares.Bits(), false)
	if err != nil {
		return nil, err
	}
	w.Complete()
	return w, nil
}

// NewWireFromBool creates a single-value wire holding the party's
// share bit. The wire is born done.
func NewWireFromBool(c *core.Core, share bool) (*Wire, error) {
	shares := NewBitVector(1)
	if share {
		shares.SetBit(0, 1)
	}
	w := &Wire{
		shares: shares,
	}
	err := w.WireCore.Init(c, w, 1, false)
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
func NewConstWire(c *core.Core, values *BitVector) (*Wire, error) {
	if values == nil || values.Bits() < 1 {
		return nil, errors.New("gmw: number of values must be positive")
	}
	w := &Wire{
		shares: values.Clone(),
	}
	err := w.WireCore.Init(c, w, values.Bits(), true)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Shares returns the wire's share values. For constant wires the
// result is the cleartext values.
func (w *Wire) Shares() *BitVector {
	return w.shares
}

// contribution returns the party's XOR contribution of the wire:
// its share values, or for constant wires the cleartext at party 0
// and zero elsewhere.
func (w *Wire) contribution(party int) *BitVector {
	if !w.IsConstant() || party == 0 {
		return w.shares
	}
	return NewBitVector(w.shares.Bits())
}

// SplitShares splits the cleartext values into XOR shares, one per
// party.
func SplitShares(rand io.Reader, values *BitVector, parties int) (
	[]*BitVector, error) {

	if parties < 1 {
		return nil, errors.New("gmw: number of parties must be positive")
	}
	shares := make([]*BitVector, parties)

	acc := values.Clone()
	for i := 1; i < parties; i++ {
		r, err := Rand(rand, values.Bits())
		if err != nil {
			return nil, err
		}
		shares[i] = r
		err = acc.XOR(r)
		if err != nil {
			return nil, err
		}
	}
	shares[0] = acc

	return shares, nil
}
