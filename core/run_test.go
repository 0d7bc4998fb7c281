//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package core

import (
	"errors"
	"testing"
)

type testWire struct {
	WireCore
	value int
}

func newTestWire(c *Core, constant bool, value int) (*testWire, error) {
	w := &testWire{
		value: value,
	}
	err := w.WireCore.Init(c, w, 1, constant)
	if err != nil {
		return nil, err
	}
	return w, nil
}

type inputTestGate struct {
	GateCore
	value int
	out   *testWire
}

func newInputTestGate(c *Core, value int) (*inputTestGate, error) {
	out, err := newTestWire(c, false, 0)
	if err != nil {
		return nil, err
	}
	g := &inputTestGate{
		value: value,
		out:   out,
	}
	err = g.GateCore.InitInput(c, g, nil, []Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *inputTestGate) Evaluate() error {
	g.out.value = g.value
	return nil
}

type addTestGate struct {
	GateCore
	a, b *testWire
	out  *testWire
}

func newAddTestGate(c *Core, a, b *testWire) (*addTestGate, error) {
	out, err := newTestWire(c, false, 0)
	if err != nil {
		return nil, err
	}
	g := &addTestGate{
		a:   a,
		b:   b,
		out: out,
	}
	err = g.GateCore.Init(c, g, []Wire{a, b}, []Wire{out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *addTestGate) Evaluate() error {
	g.out.value = g.a.value + g.b.value
	return nil
}

type failTestGate struct {
	GateCore
}

func (g *failTestGate) Evaluate() error {
	return errors.New("gate evaluation failed")
}

func TestRun(t *testing.T) {
	c := NewCore(testConfig(0, 2))

	in0, err := newInputTestGate(c, 1)
	if err != nil {
		t.Fatalf("newInputTestGate: %v", err)
	}
	in1, err := newInputTestGate(c, 2)
	if err != nil {
		t.Fatalf("newInputTestGate: %v", err)
	}
	in2, err := newInputTestGate(c, 3)
	if err != nil {
		t.Fatalf("newInputTestGate: %v", err)
	}

	add0, err := newAddTestGate(c, in0.out, in1.out)
	if err != nil {
		t.Fatalf("newAddTestGate: %v", err)
	}
	add1, err := newAddTestGate(c, add0.out, in2.out)
	if err != nil {
		t.Fatalf("newAddTestGate: %v", err)
	}
	add2, err := newAddTestGate(c, add0.out, add1.out)
	if err != nil {
		t.Fatalf("newAddTestGate: %v", err)
	}

	err = c.Run(3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.EvaluatedGates() != c.TotalGates() {
		t.Errorf("evaluated %d of %d gates",
			c.EvaluatedGates(), c.TotalGates())
	}
	if c.TotalGates() != 6 {
		t.Errorf("TotalGates %d, expected 6", c.TotalGates())
	}
	if add2.out.value != 9 {
		t.Errorf("result %d, expected 9", add2.out.value)
	}
}

func TestRunConstant(t *testing.T) {
	c := NewCore(testConfig(0, 2))

	in, err := newInputTestGate(c, 5)
	if err != nil {
		t.Fatalf("newInputTestGate: %v", err)
	}
	constant, err := newTestWire(c, true, 10)
	if err != nil {
		t.Fatalf("newTestWire: %v", err)
	}
	add, err := newAddTestGate(c, in.out, constant)
	if err != nil {
		t.Fatalf("newAddTestGate: %v", err)
	}

	err = c.Run(1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if add.out.value != 15 {
		t.Errorf("result %d, expected 15", add.out.value)
	}
}

func TestRunError(t *testing.T) {
	c := NewCore(testConfig(0, 2))

	g := &failTestGate{}
	err := g.GateCore.Init(c, g, nil, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	err = c.Run(2)
	if err == nil {
		t.Fatalf("Run with failing gate succeeded")
	}
}
