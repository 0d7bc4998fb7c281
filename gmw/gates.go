//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gmw implements the boolean GMW multi-party protocol:
// wires whose values are XOR secret shared between the parties, and
// the gates operating on them.
package gmw

import (
	"errors"
	"fmt"

	"github.com/markkurossi/mpcore/core"
)

// Op identifies a boolean gate operation.
type Op byte

// Boolean gate operations.
const (
	OpXOR Op = iota
	OpINV
	OpAND
)

var opNames = map[Op]string{
	OpXOR: "XOR",
	OpINV: "INV",
	OpAND: "AND",
}

func (op Op) String() string {
	name, ok := opNames[op]
	if ok {
		return name
	}
	return fmt.Sprintf("{Op %d}", op)
}

// InputGate provides a party's secret input to the computation. The
// input owner splits its cleartext values into XOR shares with
// SplitShares and distributes them; every party sets its own share
// with SetShare before evaluation.
type InputGate struct {
	core.GateCore
	party     int
	owner     int
	sharingID uint64
	share     *BitVector
	out       *Wire
}

// NewInputGate creates an input gate for nsimd values owned by the
// party owner. The gate reserves one boolean GMW sharing id for
// each value.
func NewInputGate(c *core.Core, owner, nsimd int) (*InputGate, error) {
	out, err := NewWire(c, nsimd)
	if err != nil {
		return nil, err
	}
	sharingID, err := c.NextBooleanGMWSharingID(uint64(nsimd))
	if err != nil {
		return nil, err
	}
	g := &InputGate{
		party:     c.Config().ID,
		owner:     owner,
		sharingID: sharingID,
		out:       out,
	}
	err = g.GateCore.InitInput(c, g, nil, []core.Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Owner returns the id of the party whose input this gate provides.
func (g *InputGate) Owner() int {
	return g.owner
}

// SharingID returns the first sharing id of the gate's values.
func (g *InputGate) SharingID() uint64 {
	return g.sharingID
}

// Out returns the gate's output wire.
func (g *InputGate) Out() *Wire {
	return g.out
}

// SetShare sets the party's share of the input values.
func (g *InputGate) SetShare(share *BitVector) error {
	if share.Bits() != g.out.NumSIMD() {
		return fmt.Errorf("gmw: share has %d values, expected %d",
			share.Bits(), g.out.NumSIMD())
	}
	g.share = share.Clone()
	return nil
}

// Evaluate implements core.Gate.Evaluate.
func (g *InputGate) Evaluate() error {
	if g.share == nil {
		return fmt.Errorf("gmw: input of party %d not set", g.owner)
	}
	g.out.shares = g.share.Clone()
	return nil
}

// XORGate computes the exclusive or of its input wires. XOR
// evaluates locally on the shares without communication.
type XORGate struct {
	core.GateCore
	party int
	a, b  *Wire
	out   *Wire
}

// NewXORGate creates an XOR gate for the input wires.
func NewXORGate(c *core.Core, a, b *Wire) (*XORGate, error) {
	if a.NumSIMD() != b.NumSIMD() {
		return nil, fmt.Errorf("gmw: wire size mismatch: %d vs %d",
			a.NumSIMD(), b.NumSIMD())
	}
	out, err := NewWire(c, a.NumSIMD())
	if err != nil {
		return nil, err
	}
	g := &XORGate{
		party: c.Config().ID,
		a:     a,
		b:     b,
		out:   out,
	}
	err = g.GateCore.Init(c, g, []core.Wire{a, b}, []core.Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Out returns the gate's output wire.
func (g *XORGate) Out() *Wire {
	return g.out
}

// Evaluate implements core.Gate.Evaluate.
func (g *XORGate) Evaluate() error {
	result := g.a.contribution(g.party).Clone()
	err := result.XOR(g.b.contribution(g.party))
	if err != nil {
		return err
	}
	g.out.shares = result
	return nil
}

// INVGate computes the negation of its input wire. Party 0 flips
// its share bits and all other parties keep theirs.
type INVGate struct {
	core.GateCore
	party int
	a     *Wire
	out   *Wire
}

// NewINVGate creates an INV gate for the input wire.
func NewINVGate(c *core.Core, a *Wire) (*INVGate, error) {
	out, err := NewWire(c, a.NumSIMD())
	if err != nil {
		return nil, err
	}
	g := &INVGate{
		party: c.Config().ID,
		a:     a,
		out:   out,
	}
	err = g.GateCore.Init(c, g, []core.Wire{a}, []core.Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Out returns the gate's output wire.
func (g *INVGate) Out() *Wire {
	return g.out
}

// Evaluate implements core.Gate.Evaluate.
func (g *INVGate) Evaluate() error {
	result := g.a.contribution(g.party).Clone()
	if g.party == 0 {
		result.Invert()
	}
	g.out.shares = result
	return nil
}

// NewANDGate creates an AND gate for the input wires. AND gates
// need boolean multiplication triples for their evaluation.
func NewANDGate(c *core.Core, a, b *Wire) (core.Gate, error) {
	return nil, fmt.Errorf("gmw: gate %v not supported", OpAND)
}

// OutputGate opens the values of its input wire to all parties:
// each party contributes its share and the cleartext values are the
// exclusive or of all shares.
//
// Opening blocks until all parties have contributed. The parties
// must therefore evaluate opening gates in compatible orders; with
// a single evaluation worker the order is the same on every party.
type OutputGate struct {
	core.GateCore
	party  int
	opener core.Opener
	in     *Wire
	value  *BitVector
}

// NewOutputGate creates an output gate for the input wire. The
// opener exchanges the shares with the other parties.
func NewOutputGate(c *core.Core, opener core.Opener, in *Wire) (
	*OutputGate, error) {

	if opener == nil {
		return nil, errors.New("gmw: opener not set")
	}
	g := &OutputGate{
		party:  c.Config().ID,
		opener: opener,
		in:     in,
	}
	err := g.GateCore.Init(c, g, []core.Wire{in}, nil)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Value returns the opened cleartext values. The result is nil
// until the gate has been evaluated.
func (g *OutputGate) Value() *BitVector {
	return g.value
}

// Evaluate implements core.Gate.Evaluate.
func (g *OutputGate) Evaluate() error {
	share := g.in.contribution(g.party)

	others, err := g.opener.Open(g.ID(), share.Bytes())
	if err != nil {
		return err
	}

	result := share.Clone()
	for _, data := range others {
		bv, err := NewBitVectorFromBytes(data, g.in.NumSIMD())
		if err != nil {
			return err
		}
		err = result.XOR(bv)
		if err != nil {
			return err
		}
	}
	g.value = result
	return nil
}
