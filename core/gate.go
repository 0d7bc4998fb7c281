//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package core

import (
	"sync"
	"sync/atomic"
)

// Gate is a unit of computation. The core schedules a gate once all
// of its input wires are done.
type Gate interface {
	// ID returns the gate id.
	ID() uint64

	// InputWires returns the ids of the gate's input wires.
	InputWires() []uint64

	// OutputWires returns the ids of the gate's output wires.
	OutputWires() []uint64

	// Deps returns the number of input wires that are not yet
	// done.
	Deps() int64

	// ResolveDependency records one input wire becoming done and
	// returns the number of input wires still pending.
	ResolveDependency() int64

	// Evaluate computes the gate's output wire values from its
	// input wire values.
	Evaluate() error
}

// Wire carries values between gates. A wire holds NumSIMD parallel
// values that are shared, computed, and opened together.
type Wire interface {
	// ID returns the wire id.
	ID() uint64

	// NumSIMD returns the number of parallel values on the wire.
	NumSIMD() int

	// IsConstant reports whether the wire carries cleartext
	// constants.
	IsConstant() bool

	// IsDone reports whether the wire values are available.
	IsDone() bool

	// AddConsumer subscribes the gate to the wire. It returns true
	// if the wire is already done, in which case the gate was not
	// subscribed.
	AddConsumer(gate uint64) bool

	// Complete marks the wire done and returns the subscribed
	// consumer gates.
	Complete() []uint64
}

// GateCore implements the gate bookkeeping that is common to all
// protocols. Concrete gates embed GateCore and implement Evaluate.
type GateCore struct {
	id      uint64
	inputs  []uint64
	outputs []uint64
	deps    atomic.Int64
}

// Init connects the gate to the core: it allocates the gate id,
// subscribes to the input wires, and registers the gate. The self
// argument is the concrete gate embedding this GateCore.
func (g *GateCore) Init(c *Core, self Gate, inputs, outputs []Wire) error {
	return g.init(c, self, inputs, outputs, false)
}

// InitInput is like Init but registers the gate as an input gate.
func (g *GateCore) InitInput(c *Core, self Gate,
	inputs, outputs []Wire) error {

	return g.init(c, self, inputs, outputs, true)
}

func (g *GateCore) init(c *Core, self Gate, inputs, outputs []Wire,
	input bool) error {

	g.id = c.NextGateID()

	var deps int64
	for _, w := range inputs {
		g.inputs = append(g.inputs, w.ID())
		if !w.AddConsumer(g.id) {
			deps++
		}
	}
	for _, w := range outputs {
		g.outputs = append(g.outputs, w.ID())
	}
	g.deps.Store(deps)

	if input {
		return c.RegisterNextInputGate(self)
	}
	return c.RegisterNextGate(self)
}

// ID implements Gate.ID.
func (g *GateCore) ID() uint64 {
	return g.id
}

// InputWires implements Gate.InputWires.
func (g *GateCore) InputWires() []uint64 {
	return g.inputs
}

// OutputWires implements Gate.OutputWires.
func (g *GateCore) OutputWires() []uint64 {
	return g.outputs
}

// Deps implements Gate.Deps.
func (g *GateCore) Deps() int64 {
	return g.deps.Load()
}

// ResolveDependency implements Gate.ResolveDependency.
func (g *GateCore) ResolveDependency() int64 {
	return g.deps.Add(-1)
}

// WireCore implements the wire bookkeeping that is common to all
// protocols. Concrete wires embed WireCore and add their share
// values.
type WireCore struct {
	id       uint64
	nsimd    int
	constant bool
	done     atomic.Bool

	m         sync.Mutex
	consumers []uint64
}

// Init connects the wire to the core: it allocates the wire id and
// registers the wire. Constant wires are born done. The self
// argument is the concrete wire embedding this WireCore.
func (w *WireCore) Init(c *Core, self Wire, nsimd int, constant bool) error {
	w.id = c.NextWireID()
	w.nsimd = nsimd
	w.constant = constant
	if constant {
		w.done.Store(true)
	}
	return c.RegisterNextWire(self)
}

// ID implements Wire.ID.
func (w *WireCore) ID() uint64 {
	return w.id
}

// NumSIMD implements Wire.NumSIMD.
func (w *WireCore) NumSIMD() int {
	return w.nsimd
}

// IsConstant implements Wire.IsConstant.
func (w *WireCore) IsConstant() bool {
	return w.constant
}

// IsDone implements Wire.IsDone.
func (w *WireCore) IsDone() bool {
	return w.done.Load()
}

// AddConsumer implements Wire.AddConsumer.
func (w *WireCore) AddConsumer(gate uint64) bool {
	w.m.Lock()
	defer w.m.Unlock()

	if w.done.Load() {
		return true
	}
	w.consumers = append(w.consumers, gate)
	return false
}

// Complete implements Wire.Complete.
func (w *WireCore) Complete() []uint64 {
	w.m.Lock()
	defer w.m.Unlock()

	w.done.Store(true)
	consumers := w.consumers
	w.consumers = nil
	return consumers
}
