//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package core implements the gate and wire registry and the
// dependency-driven scheduler of one computation party. Protocol
// packages build their gates and wires on top of the core and the
// core evaluates them once their inputs become available.
package core

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/markkurossi/mpcore/log"
	"github.com/markkurossi/text/superscript"
)

// CommunicationHandler delivers messages to one peer party.
type CommunicationHandler interface {
	// SendMessage sends the message to the peer.
	SendMessage(msg []byte) error
}

// Core holds the gates, wires, and sharing id spaces of one party
// and schedules gate evaluation. All operations are safe for
// concurrent use.
type Core struct {
	config *Config
	lg     log.Logger

	gateID     atomic.Uint64
	wireID     atomic.Uint64
	arithID    atomic.Uint64
	boolGMWID  atomic.Uint64
	registered atomic.Uint64
	evaluated  atomic.Uint64

	m          sync.RWMutex
	gates      []Gate
	wires      []Wire
	inputGates []Gate

	queueM sync.Mutex
	queue  []uint64

	commM    sync.RWMutex
	handlers map[int]CommunicationHandler
}

// NewCore creates a runtime core for the party.
func NewCore(config *Config) *Core {
	return &Core{
		config:   config,
		lg:       config.GetLogger().Named("core"),
		handlers: make(map[int]CommunicationHandler),
	}
}

// Config returns the core's configuration.
func (c *Core) Config() *Config {
	return c.config
}

// IDString returns the party id in superscript for log output.
func (c *Core) IDString() string {
	return superscript.Itoa(c.config.ID)
}

// NextGateID reserves and returns the next gate id. Ids are never
// reused.
func (c *Core) NextGateID() uint64 {
	return c.gateID.Add(1) - 1
}

// NextWireID reserves and returns the next wire id. Ids are never
// reused.
func (c *Core) NextWireID() uint64 {
	return c.wireID.Add(1) - 1
}

// NextArithmeticSharingID reserves count consecutive arithmetic
// sharing ids and returns the first one. Each shared value of an
// arithmetic wire has its own sharing id.
func (c *Core) NextArithmeticSharingID(count uint64) (uint64, error) {
	if count == 0 {
		return 0, errors.New("core: sharing id count must be positive")
	}
	return c.arithID.Add(count) - count, nil
}

// NextBooleanGMWSharingID reserves count consecutive boolean GMW
// sharing ids and returns the first one. Each shared bit of a
// boolean wire has its own sharing id.
func (c *Core) NextBooleanGMWSharingID(count uint64) (uint64, error) {
	if count == 0 {
		return 0, errors.New("core: sharing id count must be positive")
	}
	return c.boolGMWID.Add(count) - count, nil
}

// RegisterNextGate stores the gate so that Gate(gate.ID()) finds
// it. The gate must have its id from NextGateID.
func (c *Core) RegisterNextGate(gate Gate) error {
	return c.registerGate(gate, false)
}

// RegisterNextInputGate is like RegisterNextGate but also records
// the gate in the input gate list.
func (c *Core) RegisterNextInputGate(gate Gate) error {
	return c.registerGate(gate, true)
}

func (c *Core) registerGate(gate Gate, input bool) error {
	if gate == nil {
		return errors.New("core: cannot register nil gate")
	}
	id := gate.ID()

	c.m.Lock()
	defer c.m.Unlock()

	for uint64(len(c.gates)) <= id {
		c.gates = append(c.gates, nil)
	}
	if c.gates[id] != nil {
		return fmt.Errorf("core: gate %d already registered", id)
	}
	c.gates[id] = gate
	c.registered.Add(1)
	if input {
		c.inputGates = append(c.inputGates, gate)
	}
	return nil
}

// RegisterNextWire stores the wire so that Wire(wire.ID()) finds
// it. The wire must have its id from NextWireID.
func (c *Core) RegisterNextWire(wire Wire) error {
	if wire == nil {
		return errors.New("core: cannot register nil wire")
	}
	id := wire.ID()

	c.m.Lock()
	defer c.m.Unlock()

	for uint64(len(c.wires)) <= id {
		c.wires = append(c.wires, nil)
	}
	if c.wires[id] != nil {
		return fmt.Errorf("core: wire %d already registered", id)
	}
	c.wires[id] = wire
	return nil
}

// Gate returns the gate registered with the id. The result is nil
// if the gate has been unregistered.
func (c *Core) Gate(id uint64) (Gate, error) {
	c.m.RLock()
	defer c.m.RUnlock()

	if id >= uint64(len(c.gates)) {
		return nil, fmt.Errorf("core: gate index %d out of range", id)
	}
	return c.gates[id], nil
}

// Wire returns the wire registered with the id. The result is nil
// if the wire has been unregistered.
func (c *Core) Wire(id uint64) (Wire, error) {
	c.m.RLock()
	defer c.m.RUnlock()

	if id >= uint64(len(c.wires)) {
		return nil, fmt.Errorf("core: wire index %d out of range", id)
	}
	return c.wires[id], nil
}

// InputGates returns the registered input gates.
func (c *Core) InputGates() []Gate {
	c.m.RLock()
	defer c.m.RUnlock()

	result := make([]Gate, len(c.inputGates))
	copy(result, c.inputGates)
	return result
}

// UnregisterGate clears the gate's registry slot. The gate id is
// not reused.
func (c *Core) UnregisterGate(id uint64) error {
	c.m.Lock()
	defer c.m.Unlock()

	if id >= uint64(len(c.gates)) {
		return fmt.Errorf("core: gate index %d out of range", id)
	}
	c.gates[id] = nil
	return nil
}

// UnregisterWire clears the wire's registry slot. The wire id is
// not reused.
func (c *Core) UnregisterWire(id uint64) error {
	c.m.Lock()
	defer c.m.Unlock()

	if id >= uint64(len(c.wires)) {
		return fmt.Errorf("core: wire index %d out of range", id)
	}
	c.wires[id] = nil
	return nil
}

// AddToActiveQueue appends the gate id to the queue of gates that
// are ready for evaluation.
func (c *Core) AddToActiveQueue(id uint64) {
	c.queueM.Lock()
	c.queue = append(c.queue, id)
	c.queueM.Unlock()

	c.lg.Debugf("%s: gate %d ready", c.IDString(), id)
}

// NextGateFromOnlineQueue pops the oldest ready gate id. The bool
// result is false if the queue is empty.
func (c *Core) NextGateFromOnlineQueue() (uint64, bool) {
	c.queueM.Lock()
	defer c.queueM.Unlock()

	if len(c.queue) == 0 {
		return 0, false
	}
	id := c.queue[0]
	c.queue = c.queue[1:]
	return id, true
}

// RegisterCommunicationHandler sets the message handler for the
// peer party.
func (c *Core) RegisterCommunicationHandler(party int,
	handler CommunicationHandler) error {

	if party == c.config.ID {
		return errors.New("core: cannot register handler for self")
	}
	if handler == nil {
		return errors.New("core: cannot register nil handler")
	}

	c.commM.Lock()
	defer c.commM.Unlock()

	_, ok := c.handlers[party]
	if ok {
		return fmt.Errorf("core: handler for party %d already defined", party)
	}
	c.handlers[party] = handler
	return nil
}

// Send sends the message to the party.
func (c *Core) Send(party int, msg []byte) error {
	if party == c.config.ID {
		return errors.New("core: cannot send message to self")
	}

	c.commM.RLock()
	handler, ok := c.handlers[party]
	c.commM.RUnlock()

	if !ok {
		return fmt.Errorf("core: no handler for party %d", party)
	}
	return handler.SendMessage(msg)
}

// IncrementEvaluatedGates counts one gate as evaluated.
func (c *Core) IncrementEvaluatedGates() {
	c.evaluated.Add(1)
}

// EvaluatedGates returns the number of evaluated gates.
func (c *Core) EvaluatedGates() uint64 {
	return c.evaluated.Load()
}

// TotalGates returns the number of registered gates. Unregistering
// a gate does not decrement the count.
func (c *Core) TotalGates() uint64 {
	return c.registered.Load()
}
