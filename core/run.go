//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package core

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/markkurossi/mpcore/stats"
)

// Run evaluates the registered gates with the given number of
// worker goroutines. It returns when all gates have been evaluated
// or any gate evaluation fails. The gate graph must be acyclic and
// fully constructed before Run is called.
func (c *Core) Run(workers int) error {
	if workers < 1 {
		workers = 1
	}
	c.config.Stats.RecordStart(stats.PhaseEvaluate)
	defer c.config.Stats.RecordEnd(stats.PhaseEvaluate)

	// Seed the queue with gates whose inputs are already
	// available.
	var ready []uint64
	c.m.RLock()
	for _, gate := range c.gates {
		if gate != nil && gate.Deps() == 0 {
			ready = append(ready, gate.ID())
		}
	}
	c.m.RUnlock()
	for _, id := range ready {
		c.AddToActiveQueue(id)
	}

	var wg sync.WaitGroup
	var failed atomic.Bool

	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !failed.Load() {
				if c.EvaluatedGates() >= c.TotalGates() {
					return
				}
				id, ok := c.NextGateFromOnlineQueue()
				if !ok {
					runtime.Gosched()
					continue
				}
				err := c.evaluateGate(id)
				if err != nil {
					errs <- err
					failed.Store(true)
					return
				}
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func (c *Core) evaluateGate(id uint64) error {
	gate, err := c.Gate(id)
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("core: gate %d not registered", id)
	}
	c.lg.Debugf("%s: evaluating gate %d", c.IDString(), id)

	err = gate.Evaluate()
	if err != nil {
		return err
	}
	c.IncrementEvaluatedGates()

	for _, wid := range gate.OutputWires() {
		wire, err := c.Wire(wid)
		if err != nil {
			return err
		}
		if wire == nil {
			continue
		}
		for _, consumer := range wire.Complete() {
			g, err := c.Gate(consumer)
			if err != nil {
				return err
			}
			if g == nil {
				continue
			}
			if g.ResolveDependency() == 0 {
				c.AddToActiveQueue(consumer)
			}
		}
	}
	return nil
}
