//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package beaver generates the correlated randomness of the
// arithmetic protocols: squaring pairs and multiplication triples.
// The providers run in two stages: PreSetup creates the local
// randomness and registers the oblivious transfers, and Setup runs
// the transfers and assembles the shares.
package beaver

import (
	"fmt"
	"sync"
)

// State is the setup state of a correlated randomness provider.
type State int

// Provider states.
const (
	Idle State = iota
	PreSetupDone
	SetupDone
)

var stateNames = map[State]string{
	Idle:         "Idle",
	PreSetupDone: "PreSetupDone",
	SetupDone:    "SetupDone",
}

func (s State) String() string {
	name, ok := stateNames[s]
	if ok {
		return name
	}
	return fmt.Sprintf("{State %d}", s)
}

// Pairs holds the party's additive shares of squaring pairs: A[i]
// is the share of a random value and C[i] the share of its square.
type Pairs[T any] struct {
	A []T
	C []T
}

// Triples holds the party's additive shares of multiplication
// triples: A[i] and B[i] are shares of random values and C[i] the
// share of their product.
type Triples[T any] struct {
	A []T
	B []T
	C []T
}

// provider implements the setup state machine common to the
// correlated randomness providers.
type provider struct {
	m        sync.Mutex
	c        *sync.Cond
	state    State
	finished bool
}

func (p *provider) init() {
	p.c = sync.NewCond(&p.m)
}

// State returns the provider's setup state.
func (p *provider) State() State {
	p.m.Lock()
	defer p.m.Unlock()

	return p.state
}

// Wait blocks until the provider's setup has finished.
func (p *provider) Wait() {
	p.m.Lock()
	defer p.m.Unlock()

	for !p.finished {
		p.c.Wait()
	}
}

// finish marks the setup finished and wakes up the waiters.
func (p *provider) finish() {
	p.m.Lock()
	defer p.m.Unlock()

	p.state = SetupDone
	p.finished = true
	p.c.Broadcast()
}
