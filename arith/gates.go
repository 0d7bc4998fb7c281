//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package arith

import (
	"errors"
	"fmt"

	"github.com/markkurossi/mpcore/beaver"
	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/zn"
)

// open opens masked values: each party contributes its share vector
// and the cleartext result is the sum of all parties' vectors.
func open[T any](ring zn.Ring[T], opener core.Opener, id uint64, own []T) (
	[]T, error) {

	var payload []byte
	for _, v := range own {
		payload = ring.Encode(payload, v)
	}
	others, err := opener.Open(id, payload)
	if err != nil {
		return nil, err
	}

	result := append([]T(nil), own...)
	nb := ring.Bytes()

	for party, data := range others {
		if len(data) != len(own)*nb {
			return nil, fmt.Errorf("arith: party %d opened %d bytes, expected %d",
				party, len(data), len(own)*nb)
		}
		for j := range result {
			result[j] = ring.Add(result[j], ring.Decode(data[j*nb:]))
		}
	}
	return result, nil
}

// InputGate provides a party's secret input to the computation. The
// input owner splits its cleartext values into additive shares with
// SplitShares and distributes them; every party sets its own share
// with SetShare before evaluation.
type InputGate[T any] struct {
	core.GateCore
	party     int
	owner     int
	sharingID uint64
	share     []T
	out       *Wire[T]
}

// NewInputGate creates an input gate for nsimd values owned by the
// party owner. The gate reserves one arithmetic sharing id for each
// value.
func NewInputGate[T any](c *core.Core, ring zn.Ring[T], owner, nsimd int) (
	*InputGate[T], error) {

	out, err := NewWire(c, ring, nsimd)
	if err != nil {
		return nil, err
	}
	sharingID, err := c.NextArithmeticSharingID(uint64(nsimd))
	if err != nil {
		return nil, err
	}
	g := &InputGate[T]{
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
func (g *InputGate[T]) Owner() int {
	return g.owner
}

// SharingID returns the first sharing id of the gate's values.
func (g *InputGate[T]) SharingID() uint64 {
	return g.sharingID
}

// Out returns the gate's output wire.
func (g *InputGate[T]) Out() *Wire[T] {
	return g.out
}

// SetShare sets the party's share of the input values.
func (g *InputGate[T]) SetShare(share []T) error {
	if len(share) != g.out.NumSIMD() {
		return fmt.Errorf("arith: share has %d values, expected %d",
			len(share), g.out.NumSIMD())
	}
	g.share = append([]T(nil), share...)
	return nil
}

// Evaluate implements core.Gate.Evaluate.
func (g *InputGate[T]) Evaluate() error {
	if g.share == nil {
		return fmt.Errorf("arith: input of party %d not set", g.owner)
	}
	g.out.shares = append([]T(nil), g.share...)
	return nil
}

// AddGate computes the sum of its input wires. Addition evaluates
// locally on the shares without communication.
type AddGate[T any] struct {
	core.GateCore
	party int
	a, b  *Wire[T]
	out   *Wire[T]
}

// NewAddGate creates an addition gate for the input wires.
func NewAddGate[T any](c *core.Core, a, b *Wire[T]) (*AddGate[T], error) {
	if a.NumSIMD() != b.NumSIMD() {
		return nil, fmt.Errorf("arith: wire size mismatch: %d vs %d",
			a.NumSIMD(), b.NumSIMD())
	}
	out, err := NewWire(c, a.ring, a.NumSIMD())
	if err != nil {
		return nil, err
	}
	g := &AddGate[T]{
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
func (g *AddGate[T]) Out() *Wire[T] {
	return g.out
}

// Evaluate implements core.Gate.Evaluate.
func (g *AddGate[T]) Evaluate() error {
	ring := g.a.ring
	x := g.a.contribution(g.party)
	y := g.b.contribution(g.party)

	shares := make([]T, len(x))
	for j := range shares {
		shares[j] = ring.Add(x[j], y[j])
	}
	g.out.shares = shares
	return nil
}

// SquareGate computes the square of its input wire. The gate
// consumes one squaring pair per SIMD value: the parties open the
// masked difference d = x-a and compute the shares of x^2 from
// x^2 = d^2 + 2*d*a + a^2.
type SquareGate[T any] struct {
	core.GateCore
	party  int
	opener core.Opener
	in     *Wire[T]
	pairs  *beaver.Pairs[T]
	offset int
	out    *Wire[T]
}

// NewSquareGate creates a squaring gate for the input wire. The
// gate consumes the pairs at the offset, one pair per SIMD value.
func NewSquareGate[T any](c *core.Core, opener core.Opener, in *Wire[T],
	pairs *beaver.Pairs[T], offset int) (*SquareGate[T], error) {

	if opener == nil {
		return nil, errors.New("arith: opener not set")
	}
	if pairs == nil || len(pairs.A) != len(pairs.C) || offset < 0 ||
		offset+in.NumSIMD() > len(pairs.A) {
		return nil, errors.New("arith: not enough squaring pairs")
	}
	out, err := NewWire(c, in.ring, in.NumSIMD())
	if err != nil {
		return nil, err
	}
	g := &SquareGate[T]{
		party:  c.Config().ID,
		opener: opener,
		in:     in,
		pairs:  pairs,
		offset: offset,
		out:    out,
	}
	err = g.GateCore.Init(c, g, []core.Wire{in}, []core.Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Out returns the gate's output wire.
func (g *SquareGate[T]) Out() *Wire[T] {
	return g.out
}

// Evaluate implements core.Gate.Evaluate.
func (g *SquareGate[T]) Evaluate() error {
	ring := g.in.ring
	x := g.in.contribution(g.party)

	masked := make([]T, len(x))
	for j := range masked {
		masked[j] = ring.Sub(x[j], g.pairs.A[g.offset+j])
	}
	d, err := open(ring, g.opener, g.ID(), masked)
	if err != nil {
		return err
	}

	shares := make([]T, len(x))
	for j := range shares {
		a := g.pairs.A[g.offset+j]
		z := ring.Add(g.pairs.C[g.offset+j], ring.Lsh(ring.Mul(d[j], a), 1))
		if g.party == 0 {
			z = ring.Add(z, ring.Mul(d[j], d[j]))
		}
		shares[j] = z
	}
	g.out.shares = shares
	return nil
}

// MulGate computes the product of its input wires. The gate
// consumes one multiplication triple per SIMD value: the parties
// open the masked differences d = x-a and e = y-b and compute the
// shares of x*y from x*y = d*e + d*b + e*a + a*b.
type MulGate[T any] struct {
	core.GateCore
	party   int
	opener  core.Opener
	a, b    *Wire[T]
	triples *beaver.Triples[T]
	offset  int
	out     *Wire[T]
}

// NewMulGate creates a multiplication gate for the input wires. The
// gate consumes the triples at the offset, one triple per SIMD
// value.
func NewMulGate[T any](c *core.Core, opener core.Opener, a, b *Wire[T],
	triples *beaver.Triples[T], offset int) (*MulGate[T], error) {

	if opener == nil {
		return nil, errors.New("arith: opener not set")
	}
	if a.NumSIMD() != b.NumSIMD() {
		return nil, fmt.Errorf("arith: wire size mismatch: %d vs %d",
			a.NumSIMD(), b.NumSIMD())
	}
	if triples == nil || len(triples.A) != len(triples.B) ||
		len(triples.A) != len(triples.C) || offset < 0 ||
		offset+a.NumSIMD() > len(triples.A) {
		return nil, errors.New("arith: not enough multiplication triples")
	}
	out, err := NewWire(c, a.ring, a.NumSIMD())
	if err != nil {
		return nil, err
	}
	g := &MulGate[T]{
		party:   c.Config().ID,
		opener:  opener,
		a:       a,
		b:       b,
		triples: triples,
		offset:  offset,
		out:     out,
	}
	err = g.GateCore.Init(c, g, []core.Wire{a, b}, []core.Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Out returns the gate's output wire.
func (g *MulGate[T]) Out() *Wire[T] {
	return g.out
}

// Evaluate implements core.Gate.Evaluate.
func (g *MulGate[T]) Evaluate() error {
	ring := g.a.ring
	x := g.a.contribution(g.party)
	y := g.b.contribution(g.party)
	n := len(x)

	masked := make([]T, 2*n)
	for j := 0; j < n; j++ {
		masked[j] = ring.Sub(x[j], g.triples.A[g.offset+j])
		masked[n+j] = ring.Sub(y[j], g.triples.B[g.offset+j])
	}
	opened, err := open(ring, g.opener, g.ID(), masked)
	if err != nil {
		return err
	}
	d := opened[:n]
	e := opened[n:]

	shares := make([]T, n)
	for j := 0; j < n; j++ {
		z := ring.Add(g.triples.C[g.offset+j],
			ring.Mul(d[j], g.triples.B[g.offset+j]))
		z = ring.Add(z, ring.Mul(e[j], g.triples.A[g.offset+j]))
		if g.party == 0 {
			z = ring.Add(z, ring.Mul(d[j], e[j]))
		}
		shares[j] = z
	}
	g.out.shares = shares
	return nil
}

// OutputGate opens the values of its input wire to all parties:
// each party contributes its share and the cleartext values are the
// sum of all shares.
//
// Opening blocks until all parties have contributed. The parties
// must therefore evaluate opening gates in compatible orders; with
// a single evaluation worker the order is the same on every party.
type OutputGate[T any] struct {
	core.GateCore
	party  int
	opener core.Opener
	in     *Wire[T]
	value  []T
}

// NewOutputGate creates an output gate for the input wire. The
// opener exchanges the shares with the other parties.
func NewOutputGate[T any](c *core.Core, opener core.Opener, in *Wire[T]) (
	*OutputGate[T], error) {

	if opener == nil {
		return nil, errors.New("arith: opener not set")
	}
	g := &OutputGate[T]{
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
func (g *OutputGate[T]) Value() []T {
	return g.value
}

// Evaluate implements core.Gate.Evaluate.
func (g *OutputGate[T]) Evaluate() error {
	value, err := open(g.in.ring, g.opener, g.ID(),
		g.in.contribution(g.party))
	if err != nil {
		return err
	}
	g.value = value
	return nil
}
