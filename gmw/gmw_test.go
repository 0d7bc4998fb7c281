//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/log"
)

func TestBitVector(t *testing.T) {
	bv := NewBitVector(11)
	if bv.Bits() != 11 {
		t.Errorf("Bits %d, expected 11", bv.Bits())
	}
	if len(bv.Bytes()) != 2 {
		t.Errorf("Bytes %d, expected 2", len(bv.Bytes()))
	}
	bv.SetBit(0, 1)
	bv.SetBit(10, 1)
	bv.SetBit(5, 1)
	bv.SetBit(5, 0)
	for i := 0; i < bv.Bits(); i++ {
		expected := uint(0)
		if i == 0 || i == 10 {
			expected = 1
		}
		if bv.Bit(i) != expected {
			t.Errorf("Bit(%d)=%d, expected %d", i, bv.Bit(i), expected)
		}
	}

	clone := bv.Clone()
	if !clone.Equal(bv) {
		t.Errorf("clone %v differs from original %v", clone, bv)
	}
	clone.SetBit(3, 1)
	if clone.Equal(bv) {
		t.Errorf("modified clone equals original")
	}

	inv := bv.Clone()
	inv.Invert()
	for i := 0; i < bv.Bits(); i++ {
		if inv.Bit(i) == bv.Bit(i) {
			t.Errorf("Bit(%d) not inverted", i)
		}
	}
	err := inv.XOR(bv)
	if err != nil {
		t.Fatalf("XOR: %v", err)
	}
	for i := 0; i < inv.Bits(); i++ {
		if inv.Bit(i) != 1 {
			t.Errorf("Bit(%d)=%d after XOR with inverse", i, inv.Bit(i))
		}
	}

	err = inv.XOR(NewBitVector(8))
	if err == nil {
		t.Errorf("XOR with different size succeeded")
	}
	_, err = NewBitVectorFromBytes([]byte{1}, 11)
	if err == nil {
		t.Errorf("NewBitVectorFromBytes with short data succeeded")
	}
}

func TestSplitShares(t *testing.T) {
	values, err := Rand(rand.Reader, 23)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	shares, err := SplitShares(rand.Reader, values, 3)
	if err != nil {
		t.Fatalf("SplitShares: %v", err)
	}
	if len(shares) != 3 {
		t.Fatalf("got %d shares, expected 3", len(shares))
	}
	acc := NewBitVector(23)
	for _, share := range shares {
		err = acc.XOR(share)
		if err != nil {
			t.Fatalf("XOR: %v", err)
		}
	}
	if !acc.Equal(values) {
		t.Errorf("shares combine to %v, expected %v", acc, values)
	}

	_, err = SplitShares(rand.Reader, values, 0)
	if err == nil {
		t.Errorf("SplitShares for zero parties succeeded")
	}
}

type testParty struct {
	core   *core.Core
	opener core.Opener
}

func newTestParties(parties int, le *core.LocalExchange) []*testParty {
	result := make([]*testParty, parties)
	for i := 0; i < parties; i++ {
		result[i] = &testParty{
			core: core.NewCore(&core.Config{
				ID:      i,
				Parties: parties,
				Logger:  log.Nop(),
			}),
			opener: le.Opener(i),
		}
	}
	return result
}

// evalParty builds and evaluates one party's circuit. The build
// function returns the output gates to check.
func evalParty(p *testParty, build func(p *testParty) ([]*OutputGate, error)) (
	[]*BitVector, error) {

	outputs, err := build(p)
	if err != nil {
		return nil, err
	}
	err = p.core.Run(1)
	if err != nil {
		return nil, err
	}
	var values []*BitVector
	for _, out := range outputs {
		values = append(values, out.Value())
	}
	return values, nil
}

func testCircuit(t *testing.T, parties int, expected []*BitVector,
	build func(p *testParty) ([]*OutputGate, error)) {

	le := core.NewLocalExchange(parties)
	ps := newTestParties(parties, le)

	type result struct {
		party  int
		values []*BitVector
		err    error
	}
	done := make(chan result)

	for i := 0; i < parties; i++ {
		go func(p *testParty, party int) {
			values, err := evalParty(p, build)
			done <- result{
				party:  party,
				values: values,
				err:    err,
			}
		}(ps[i], i)
	}
	for i := 0; i < parties; i++ {
		r := <-done
		if r.err != nil {
			t.Fatalf("party %d: %v", r.party, r.err)
		}
		if len(r.values) != len(expected) {
			t.Fatalf("party %d: got %d values, expected %d",
				r.party, len(r.values), len(expected))
		}
		for j, value := range r.values {
			if !value.Equal(expected[j]) {
				t.Errorf("party %d: output %d: got %v, expected %v",
					r.party, j, value, expected[j])
			}
		}
	}
}

func TestXOR(t *testing.T) {
	const parties = 2
	const bits = 13

	x, err := Rand(rand.Reader, bits)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	y, err := Rand(rand.Reader, bits)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	xShares, err := SplitShares(rand.Reader, x, parties)
	if err != nil {
		t.Fatalf("SplitShares: %v", err)
	}
	yShares, err := SplitShares(rand.Reader, y, parties)
	if err != nil {
		t.Fatalf("SplitShares: %v", err)
	}

	expected := x.Clone()
	err = expected.XOR(y)
	if err != nil {
		t.Fatalf("XOR: %v", err)
	}

	testCircuit(t, parties, []*BitVector{expected},
		func(p *testParty) ([]*OutputGate, error) {
			id := p.core.Config().ID

			inX, err := NewInputGate(p.core, 0, bits)
			if err != nil {
				return nil, err
			}
			err = inX.SetShare(xShares[id])
			if err != nil {
				return nil, err
			}
			inY, err := NewInputGate(p.core, 1, bits)
			if err != nil {
				return nil, err
			}
			err = inY.SetShare(yShares[id])
			if err != nil {
				return nil, err
			}
			xor, err := NewXORGate(p.core, inX.Out(), inY.Out())
			if err != nil {
				return nil, err
			}
			out, err := NewOutputGate(p.core, p.opener, xor.Out())
			if err != nil {
				return nil, err
			}
			return []*OutputGate{out}, nil
		})
}

func TestINV(t *testing.T) {
	const parties = 3
	const bits = 8

	x, err := Rand(rand.Reader, bits)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	xShares, err := SplitShares(rand.Reader, x, parties)
	if err != nil {
		t.Fatalf("SplitShares: %v", err)
	}

	expected := x.Clone()
	expected.Invert()

	testCircuit(t, parties, []*BitVector{expected},
		func(p *testParty) ([]*OutputGate, error) {
			id := p.core.Config().ID

			in, err := NewInputGate(p.core, 0, bits)
			if err != nil {
				return nil, err
			}
			err = in.SetShare(xShares[id])
			if err != nil {
				return nil, err
			}
			inv, err := NewINVGate(p.core, in.Out())
			if err != nil {
				return nil, err
			}
			out, err := NewOutputGate(p.core, p.opener, inv.Out())
			if err != nil {
				return nil, err
			}
			return []*OutputGate{out}, nil
		})
}

func TestConstXOR(t *testing.T) {
	const parties = 2
	const bits = 16

	x, err := Rand(rand.Reader, bits)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	c, err := Rand(rand.Reader, bits)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	xShares, err := SplitShares(rand.Reader, x, parties)
	if err != nil {
		t.Fatalf("SplitShares: %v", err)
	}

	expected := x.Clone()
	err = expected.XOR(c)
	if err != nil {
		t.Fatalf("XOR: %v", err)
	}

	testCircuit(t, parties, []*BitVector{expected},
		func(p *testParty) ([]*OutputGate, error) {
			id := p.core.Config().ID

			in, err := NewInputGate(p.core, 0, bits)
			if err != nil {
				return nil, err
			}
			err = in.SetShare(xShares[id])
			if err != nil {
				return nil, err
			}
			constant, err := NewConstWire(p.core, c)
			if err != nil {
				return nil, err
			}
			xor, err := NewXORGate(p.core, in.Out(), constant)
			if err != nil {
				return nil, err
			}
			out, err := NewOutputGate(p.core, p.opener, xor.Out())
			if err != nil {
				return nil, err
			}
			return []*OutputGate{out}, nil
		})
}

func TestBoolWires(t *testing.T) {
	const parties = 2

	// x = true, y = false as XOR shares.
	xShares := []bool{true, false}
	yShares := []bool{true, true}

	expected := NewBitVector(1)
	expected.SetBit(0, 1)

	testCircuit(t, parties, []*BitVector{expected},
		func(p *testParty) ([]*OutputGate, error) {
			id := p.core.Config().ID

			wx, err := NewWireFromBool(p.core, xShares[id])
			if err != nil {
				return nil, err
			}
			wy, err := NewWireFromBool(p.core, yShares[id])
			if err != nil {
				return nil, err
			}
			xor, err := NewXORGate(p.core, wx, wy)
			if err != nil {
				return nil, err
			}
			out, err := NewOutputGate(p.core, p.opener, xor.Out())
			if err != nil {
				return nil, err
			}
			return []*OutputGate{out}, nil
		})
}

func TestAND(t *testing.T) {
	c := core.NewCore(&core.Config{
		ID:      0,
		Parties: 2,
		Logger:  log.Nop(),
	})
	a, err := NewWire(c, 1)
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	b, err := NewWire(c, 1)
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	_, err = NewANDGate(c, a, b)
	if err == nil {
		t.Errorf("creating AND gate succeeded")
	}
}

func TestGateErrors(t *testing.T) {
	c := core.NewCore(&core.Config{
		ID:      0,
		Parties: 2,
		Logger:  log.Nop(),
	})

	_, err := NewWire(c, 0)
	if err == nil {
		t.Errorf("creating empty wire succeeded")
	}

	a, err := NewWire(c, 8)
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	b, err := NewWire(c, 16)
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	_, err = NewXORGate(c, a, b)
	if err == nil {
		t.Errorf("XOR of different sized wires succeeded")
	}

	in, err := NewInputGate(c, 0, 8)
	if err != nil {
		t.Fatalf("NewInputGate: %v", err)
	}
	err = in.SetShare(NewBitVector(4))
	if err == nil {
		t.Errorf("setting share of wrong size succeeded")
	}
	err = in.Evaluate()
	if err == nil {
		t.Errorf("evaluating input gate without share succeeded")
	}

	xor, err := NewXORGate(c, a, a)
	if err != nil {
		t.Fatalf("NewXORGate: %v", err)
	}
	_, err = NewOutputGate(c, nil, xor.Out())
	if err == nil {
		t.Errorf("creating output gate without opener succeeded")
	}
}

func TestSharingIDs(t *testing.T) {
	c := core.NewCore(&core.Config{
		ID:      0,
		Parties: 2,
		Logger:  log.Nop(),
	})
	g0, err := NewInputGate(c, 0, 5)
	if err != nil {
		t.Fatalf("NewInputGate: %v", err)
	}
	g1, err := NewInputGate(c, 1, 3)
	if err != nil {
		t.Fatalf("NewInputGate: %v", err)
	}
	if g1.SharingID() != g0.SharingID()+5 {
		t.Errorf("sharing ids %d, %d: expected distance 5",
			g0.SharingID(), g1.SharingID())
	}
	if len(c.InputGates()) != 2 {
		t.Errorf("got %d input gates, expected 2", len(c.InputGates()))
	}
}
