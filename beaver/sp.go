//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/log"
	"github.com/markkurossi/mpcore/ot"
	"github.com/markkurossi/mpcore/stats"
	"github.com/markkurossi/mpcore/zn"
	"github.com/markkurossi/text/superscript"
)

// DefaultBatchSize is the number of squaring pairs or triples
// registered per oblivious-transfer exchange.
const DefaultBatchSize = 10000

// spWidth holds the requested and generated squaring pairs of one
// sharing width.
type spWidth[T any] struct {
	ring  zn.Ring[T]
	count int
	pairs *Pairs[T]
}

// otJob is one registered oblivious-transfer exchange: run performs
// the communication and parse applies the outputs to the shares.
type otJob struct {
	peer  int
	run   func() error
	parse func() error
}

// SpProvider generates additive shares of squaring pairs (a, a^2).
// Each party requests pairs per sharing width, then all parties run
// PreSetup and Setup: PreSetup creates the local random shares and
// registers the oblivious transfers of the cross terms, Setup runs
// the transfers and assembles the shares.
//
// Requests, PreSetup, and Setup must be driven from one goroutine
// per party. Wait and the pair accessors are safe to call
// concurrently.
type SpProvider struct {
	provider
	config *core.Config
	lg     log.Logger
	ots    map[int]ot.Provider

	// BatchSize overrides DefaultBatchSize when positive. It must
	// be set to the same value on all parties before PreSetup:
	// mismatched batch sizes desynchronize the exchange
	// registration order on the peer connections.
	BatchSize int

	sps8   spWidth[uint8]
	sps16  spWidth[uint16]
	sps32  spWidth[uint32]
	sps64  spWidth[uint64]
	sps128 spWidth[zn.Uint128]

	jobs []otJob
}

// NewSpProvider creates a squaring pair provider for the party. The
// ots argument maps each peer party to the oblivious-transfer
// provider of its connection.
func NewSpProvider(config *core.Config, ots map[int]ot.Provider) (
	*SpProvider, error) {

	_, ok := ots[config.ID]
	if ok {
		return nil, errors.New(
			"beaver: oblivious-transfer provider for self")
	}
	for party := 0; party < config.Parties; party++ {
		if party == config.ID {
			continue
		}
		_, ok = ots[party]
		if !ok {
			return nil, fmt.Errorf(
				"beaver: no oblivious-transfer provider for party %d",
				party)
		}
	}
	p := &SpProvider{
		config: config,
		lg:     config.GetLogger().Named("beaver"),
		ots:    ots,
		sps8:   spWidth[uint8]{ring: zn.U8, pairs: &Pairs[uint8]{}},
		sps16:  spWidth[uint16]{ring: zn.U16, pairs: &Pairs[uint16]{}},
		sps32:  spWidth[uint32]{ring: zn.U32, pairs: &Pairs[uint32]{}},
		sps64:  spWidth[uint64]{ring: zn.U64, pairs: &Pairs[uint64]{}},
		sps128: spWidth[zn.Uint128]{
			ring:  zn.U128,
			pairs: &Pairs[zn.Uint128]{},
		},
	}
	p.provider.init()
	return p, nil
}

func (p *SpProvider) request(count *int, n int) (int, error) {
	if n < 0 {
		return 0, errors.New("beaver: pair count must be non-negative")
	}
	p.m.Lock()
	defer p.m.Unlock()

	if n == 0 {
		// Zero-count requests are no-ops.
		return *count, nil
	}
	if p.state != Idle {
		return 0, fmt.Errorf("beaver: cannot request pairs in state %v",
			p.state)
	}
	offset := *count
	*count += n
	return offset, nil
}

// Request8 requests n 8-bit squaring pairs and returns the offset
// of the first pair.
func (p *SpProvider) Request8(n int) (int, error) {
	return p.request(&p.sps8.count, n)
}

// Request16 requests n 16-bit squaring pairs and returns the offset
// of the first pair.
func (p *SpProvider) Request16(n int) (int, error) {
	return p.request(&p.sps16.count, n)
}

// Request32 requests n 32-bit squaring pairs and returns the offset
// of the first pair.
func (p *SpProvider) Request32(n int) (int, error) {
	return p.request(&p.sps32.count, n)
}

// Request64 requests n 64-bit squaring pairs and returns the offset
// of the first pair.
func (p *SpProvider) Request64(n int) (int, error) {
	return p.request(&p.sps64.count, n)
}

// Request128 requests n 128-bit squaring pairs and returns the
// offset of the first pair.
func (p *SpProvider) Request128(n int) (int, error) {
	return p.request(&p.sps128.count, n)
}

// NeedSps reports whether any squaring pairs have been requested.
func (p *SpProvider) NeedSps() bool {
	p.m.Lock()
	defer p.m.Unlock()

	return p.sps8.count > 0 || p.sps16.count > 0 || p.sps32.count > 0 ||
		p.sps64.count > 0 || p.sps128.count > 0
}

// PreSetup generates the party's random shares and registers the
// oblivious transfers of the cross terms. All parties must run
// PreSetup before Setup.
func (p *SpProvider) PreSetup() error {
	p.m.Lock()
	if p.state != Idle {
		state := p.state
		p.m.Unlock()
		return fmt.Errorf("beaver: PreSetup in state %v", state)
	}
	p.m.Unlock()

	p.config.Stats.RecordStart(stats.PhaseSpPresetup)
	defer p.config.Stats.RecordEnd(stats.PhaseSpPresetup)

	err := spPreSetup(p, &p.sps8)
	if err != nil {
		return err
	}
	err = spPreSetup(p, &p.sps16)
	if err != nil {
		return err
	}
	err = spPreSetup(p, &p.sps32)
	if err != nil {
		return err
	}
	err = spPreSetup(p, &p.sps64)
	if err != nil {
		return err
	}
	err = spPreSetup(p, &p.sps128)
	if err != nil {
		return err
	}

	p.m.Lock()
	p.state = PreSetupDone
	p.m.Unlock()
	return nil
}

// spPreSetup generates the party's shares of the squaring pairs of
// one width and registers the cross-term oblivious transfers with
// all peers. For each peer pair, the party with the smaller id is
// the sender.
func spPreSetup[T any](p *SpProvider, w *spWidth[T]) error {
	bits := w.ring.Bits()

	pairs := &Pairs[T]{
		A: make([]T, w.count),
		C: make([]T, w.count),
	}
	rand := p.config.GetRandom()
	for i := 0; i < w.count; i++ {
		a, err := w.ring.Rand(rand)
		if err != nil {
			return err
		}
		pairs.A[i] = a
		pairs.C[i] = w.ring.Mul(a, a)
	}
	w.pairs = pairs

	if w.count == 0 {
		return nil
	}

	batch := p.BatchSize
	if batch < 1 {
		batch = DefaultBatchSize
	}

	for peer := 0; peer < p.config.Parties; peer++ {
		if peer == p.config.ID {
			continue
		}
		for lo := 0; lo < w.count; lo += batch {
			hi := lo + batch
			if hi > w.count {
				hi = w.count
			}
			count := (hi - lo) * bits

			if p.config.ID < peer {
				sender, err := p.ots[peer].RegisterSend(bits, count,
					ot.ACOT)
				if err != nil {
					return err
				}
				p.jobs = append(p.jobs, otJob{
					peer: peer,
					run: func() error {
						return otSend(w.ring, sender, pairs.A[lo:hi])
					},
					parse: func() error {
						return otParseSend(w.ring, sender,
							pairs.C[lo:hi], 1)
					},
				})
			} else {
				receiver, err := p.ots[peer].RegisterReceive(bits, count,
					ot.ACOT)
				if err != nil {
					return err
				}
				p.jobs = append(p.jobs, otJob{
					peer: peer,
					run: func() error {
						return otReceive(w.ring, receiver, pairs.A[lo:hi])
					},
					parse: func() error {
						return otParseReceive(w.ring, receiver,
							pairs.C[lo:hi], 1)
					},
				})
			}
		}
		p.lg.Debugf("%s: registered %d %d-bit squaring pairs with party %d",
			superscript.Itoa(p.config.ID), w.count, bits, peer)
	}
	return nil
}

// otSend runs the sender side of one cross-term exchange: the
// sender inputs each of its values shifted left by each bit
// position.
func otSend[T any](ring zn.Ring[T], sender ot.Sender, values []T) error {
	bits := ring.Bits()

	inputs := make([][]byte, 0, len(values)*bits)
	for _, v := range values {
		for bit := 0; bit < bits; bit++ {
			inputs = append(inputs, ring.Encode(nil, ring.Lsh(v, bit)))
		}
	}
	err := sender.SetInputs(inputs)
	if err != nil {
		return err
	}
	return sender.SendMessages()
}

// otReceive runs the receiver side of one cross-term exchange: the
// receiver chooses with the bits of its values.
func otReceive[T any](ring zn.Ring[T], receiver ot.Receiver,
	values []T) error {

	bits := ring.Bits()

	choices := make([]bool, 0, len(values)*bits)
	for _, v := range values {
		for bit := 0; bit < bits; bit++ {
			choices = append(choices, ring.Bit(v, bit) == 1)
		}
	}
	err := receiver.SetChoices(choices)
	if err != nil {
		return err
	}
	return receiver.SendCorrections()
}

// otParseSend subtracts the sender outputs, shifted left by shift,
// from the shares.
func otParseSend[T any](ring zn.Ring[T], sender ot.Sender, shares []T,
	shift int) error {

	outputs, err := sender.Outputs()
	if err != nil {
		return err
	}
	bits := ring.Bits()

	idx := 0
	for i := range shares {
		for bit := 0; bit < bits; bit++ {
			out := ring.Decode(outputs[idx])
			shares[i] = ring.Sub(shares[i], ring.Lsh(out, shift))
			idx++
		}
	}
	return nil
}

// otParseReceive adds the receiver outputs, shifted left by shift,
// to the shares.
func otParseReceive[T any](ring zn.Ring[T], receiver ot.Receiver,
	shares []T, shift int) error {

	outputs, err := receiver.Outputs()
	if err != nil {
		return err
	}
	bits := ring.Bits()

	idx := 0
	for i := range shares {
		for bit := 0; bit < bits; bit++ {
			out := ring.Decode(outputs[idx])
			shares[i] = ring.Add(shares[i], ring.Lsh(out, shift))
			idx++
		}
	}
	return nil
}

// Setup runs the registered oblivious transfers and assembles the
// squaring pair shares. When Setup returns, the pairs are available
// from the accessors.
func (p *SpProvider) Setup() error {
	p.m.Lock()
	state := p.state
	p.m.Unlock()

	switch state {
	case PreSetupDone:

	case Idle:
		if p.NeedSps() {
			return fmt.Errorf("beaver: Setup in state %v", state)
		}
		// Nothing requested: the setup finishes without any
		// transfers.
		p.finish()
		return nil

	default:
		return fmt.Errorf("beaver: Setup in state %v", state)
	}

	p.config.Stats.RecordStart(stats.PhaseSpSetup)
	defer p.config.Stats.RecordEnd(stats.PhaseSpSetup)

	err := runJobs(p.jobs)
	if err != nil {
		return err
	}
	for _, job := range p.jobs {
		err = job.parse()
		if err != nil {
			return err
		}
	}
	p.finish()
	return nil
}

// runJobs runs the registered exchanges: the exchanges of each peer
// run sequentially in registration order, different peers run in
// parallel.
func runJobs(jobs []otJob) error {
	perPeer := make(map[int][]otJob)
	for _, job := range jobs {
		perPeer[job.peer] = append(perPeer[job.peer], job)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(perPeer))

	for _, jobs := range perPeer {
		wg.Add(1)
		go func(jobs []otJob) {
			defer wg.Done()
			for _, job := range jobs {
				err := job.run()
				if err != nil {
					errs <- err
					return
				}
			}
		}(jobs)
	}
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// Sps8 returns the 8-bit squaring pairs. The call blocks until the
// setup has finished.
func (p *SpProvider) Sps8() *Pairs[uint8] {
	p.Wait()
	return p.sps8.pairs
}

// Sps16 returns the 16-bit squaring pairs. The call blocks until
// the setup has finished.
func (p *SpProvider) Sps16() *Pairs[uint16] {
	p.Wait()
	return p.sps16.pairs
}

// Sps32 returns the 32-bit squaring pairs. The call blocks until
// the setup has finished.
func (p *SpProvider) Sps32() *Pairs[uint32] {
	p.Wait()
	return p.sps32.pairs
}

// Sps64 returns the 64-bit squaring pairs. The call blocks until
// the setup has finished.
func (p *SpProvider) Sps64() *Pairs[uint64] {
	p.Wait()
	return p.sps64.pairs
}

// Sps128 returns the 128-bit squaring pairs. The call blocks until
// the setup has finished.
func (p *SpProvider) Sps128() *Pairs[zn.Uint128] {
	p.Wait()
	return p.sps128.pairs
}
