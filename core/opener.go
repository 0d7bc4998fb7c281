//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package core

import (
	"fmt"
	"sync"
)

// Opener opens shared values. Each party contributes its own share
// and receives the shares of the other parties.
type Opener interface {
	// Open contributes the party's share of the sharing id and
	// returns the other parties' shares, keyed by party id. Open
	// blocks until all parties have contributed their shares.
	Open(id uint64, share []byte) (map[int][]byte, error)
}

var (
	_ Opener = &localOpener{}
)

// LocalExchange implements share opening for parties that run in
// the same process. It is used by tests and local simulations.
type LocalExchange struct {
	parties int
	m       sync.Mutex
	c       *sync.Cond
	rounds  map[uint64]*exchangeRound
}

type exchangeRound struct {
	shares map[int][]byte
	taken  int
}

// NewLocalExchange creates a local exchange for the number of
// parties.
func NewLocalExchange(parties int) *LocalExchange {
	le := &LocalExchange{
		parties: parties,
		rounds:  make(map[uint64]*exchangeRound),
	}
	le.c = sync.NewCond(&le.m)
	return le
}

// Opener returns the party's endpoint to the exchange.
func (le *LocalExchange) Opener(party int) Opener {
	return &localOpener{
		le:    le,
		party: party,
	}
}

type localOpener struct {
	le    *LocalExchange
	party int
}

// Open implements Opener.Open.
func (lo *localOpener) Open(id uint64, share []byte) (map[int][]byte, error) {
	le := lo.le

	le.m.Lock()
	defer le.m.Unlock()

	round, ok := le.rounds[id]
	if !ok {
		round = &exchangeRound{
			shares: make(map[int][]byte),
		}
		le.rounds[id] = round
	}
	_, ok = round.shares[lo.party]
	if ok {
		return nil, fmt.Errorf("core: party %d already opened sharing %d",
			lo.party, id)
	}
	round.shares[lo.party] = share
	le.c.Broadcast()

	for len(round.shares) < le.parties {
		le.c.Wait()
	}

	result := make(map[int][]byte)
	for party, s := range round.shares {
		if party != lo.party {
			result[party] = s
		}
	}
	round.taken++
	if round.taken == le.parties {
		delete(le.rounds, id)
	}
	return result, nil
}
