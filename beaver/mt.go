//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"errors"
	"fmt"

	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/log"
	"github.com/markkurossi/mpcore/ot"
	"github.com/markkurossi/mpcore/stats"
	"github.com/markkurossi/mpcore/zn"
	"github.com/markkurossi/text/superscript"
)

// mtWidth holds the requested and generated multiplication triples
// of one sharing width.
type mtWidth[T any] struct {
	ring    zn.Ring[T]
	count   int
	triples *Triples[T]
}

// MtProvider generates additive shares of multiplication triples
// (a, b, a*b). Each party requests triples per sharing width, then
// all parties run PreSetup and Setup like with SpProvider. Unlike
// squaring pairs, each peer pair runs the cross-term transfers in
// both directions: a_i*b_j and a_j*b_i are separate products.
//
// Requests, PreSetup, and Setup must be driven from one goroutine
// per party. Wait and the triple accessors are safe to call
// concurrently.
type MtProvider struct {
	provider
	config *core.Config
	lg     log.Logger
	ots    map[int]ot.Provider

	// BatchSize overrides DefaultBatchSize when positive. It must
	// be set to the same value on all parties before PreSetup:
	// mismatched batch sizes desynchronize the exchange
	// registration order on the peer connections.
	BatchSize int

	mts8   mtWidth[uint8]
	mts16  mtWidth[uint16]
	mts32  mtWidth[uint32]
	mts64  mtWidth[uint64]
	mts128 mtWidth[zn.Uint128]

	jobs []otJob
}

// NewMtProvider creates a multiplication triple provider for the
// party. The ots argument maps each peer party to the
// oblivious-transfer provider of its connection.
func NewMtProvider(config *core.Config, ots map[int]ot.Provider) (
	*MtProvider, error) {

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
	p := &MtProvider{
		config: config,
		lg:     config.GetLogger().Named("beaver"),
		ots:    ots,
		mts8:   mtWidth[uint8]{ring: zn.U8, triples: &Triples[uint8]{}},
		mts16:  mtWidth[uint16]{ring: zn.U16, triples: &Triples[uint16]{}},
		mts32:  mtWidth[uint32]{ring: zn.U32, triples: &Triples[uint32]{}},
		mts64:  mtWidth[uint64]{ring: zn.U64, triples: &Triples[uint64]{}},
		mts128: mtWidth[zn.Uint128]{
			ring:    zn.U128,
			triples: &Triples[zn.Uint128]{},
		},
	}
	p.provider.init()
	return p, nil
}

func (p *MtProvider) request(count *int, n int) (int, error) {
	if n < 0 {
		return 0, errors.New("beaver: triple count must be non-negative")
	}
	p.m.Lock()
	defer p.m.Unlock()

	if n == 0 {
		// Zero-count requests are no-ops.
		return *count, nil
	}
	if p.state != Idle {
		return 0, fmt.Errorf("beaver: cannot request triples in state %v",
			p.state)
	}
	offset := *count
	*count += n
	return offset, nil
}

// Request8 requests n 8-bit multiplication triples and returns the
// offset of the first triple.
func (p *MtProvider) Request8(n int) (int, error) {
	return p.request(&p.mts8.count, n)
}

// Request16 requests n 16-bit multiplication triples and returns
// the offset of the first triple.
func (p *MtProvider) Request16(n int) (int, error) {
	return p.request(&p.mts16.count, n)
}

// Request32 requests n 32-bit multiplication triples and returns
// the offset of the first triple.
func (p *MtProvider) Request32(n int) (int, error) {
	return p.request(&p.mts32.count, n)
}

// Request64 requests n 64-bit multiplication triples and returns
// the offset of the first triple.
func (p *MtProvider) Request64(n int) (int, error) {
	return p.request(&p.mts64.count, n)
}

// Request128 requests n 128-bit multiplication triples and returns
// the offset of the first triple.
func (p *MtProvider) Request128(n int) (int, error) {
	return p.request(&p.mts128.count, n)
}

// NeedMts reports whether any multiplication triples have been
// requested.
func (p *MtProvider) NeedMts() bool {
	p.m.Lock()
	defer p.m.Unlock()

	return p.mts8.count > 0 || p.mts16.count > 0 || p.mts32.count > 0 ||
		p.mts64.count > 0 || p.mts128.count > 0
}

// PreSetup generates the party's random shares and registers the
// oblivious transfers of the cross terms. All parties must run
// PreSetup before Setup.
func (p *MtProvider) PreSetup() error {
	p.m.Lock()
	if p.state != Idle {
		state := p.state
		p.m.Unlock()
		return fmt.Errorf("beaver: PreSetup in state %v", state)
	}
	p.m.Unlock()

	p.config.Stats.RecordStart(stats.PhaseMtPresetup)
	defer p.config.Stats.RecordEnd(stats.PhaseMtPresetup)

	err := mtPreSetup(p, &p.mts8)
	if err != nil {
		return err
	}
	err = mtPreSetup(p, &p.mts16)
	if err != nil {
		return err
	}
	err = mtPreSetup(p, &p.mts32)
	if err != nil {
		return err
	}
	err = mtPreSetup(p, &p.mts64)
	if err != nil {
		return err
	}
	err = mtPreSetup(p, &p.mts128)
	if err != nil {
		return err
	}

	p.m.Lock()
	p.state = PreSetupDone
	p.m.Unlock()
	return nil
}

// mtPreSetup generates the party's shares of the multiplication
// triples of one width and registers the cross-term oblivious
// transfers with all peers. The party with the smaller id sends
// first; then the roles swap for the opposite product.
func mtPreSetup[T any](p *MtProvider, w *mtWidth[T]) error {
	bits := w.ring.Bits()

	triples := &Triples[T]{
		A: make([]T, w.count),
		B: make([]T, w.count),
		C: make([]T, w.count),
	}
	rand := p.config.GetRandom()
	for i := 0; i < w.count; i++ {
		a, err := w.ring.Rand(rand)
		if err != nil {
			return err
		}
		b, err := w.ring.Rand(rand)
		if err != nil {
			return err
		}
		triples.A[i] = a
		triples.B[i] = b
		triples.C[i] = w.ring.Mul(a, b)
	}
	w.triples = triples

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
				err := mtRegisterSend(p, w, triples, peer, count, lo, hi)
				if err != nil {
					return err
				}
				err = mtRegisterReceive(p, w, triples, peer, count, lo, hi)
				if err != nil {
					return err
				}
			} else {
				err := mtRegisterReceive(p, w, triples, peer, count, lo, hi)
				if err != nil {
					return err
				}
				err = mtRegisterSend(p, w, triples, peer, count, lo, hi)
				if err != nil {
					return err
				}
			}
		}
		p.lg.Debugf(
			"%s: registered %d %d-bit multiplication triples with party %d",
			superscript.Itoa(p.config.ID), w.count, bits, peer)
	}
	return nil
}

// mtRegisterSend registers the transfer of this party's a values:
// the sender learns its share of a_i*b_peer.
func mtRegisterSend[T any](p *MtProvider, w *mtWidth[T],
	triples *Triples[T], peer, count, lo, hi int) error {

	sender, err := p.ots[peer].RegisterSend(w.ring.Bits(), count, ot.ACOT)
	if err != nil {
		return err
	}
	p.jobs = append(p.jobs, otJob{
		peer: peer,
		run: func() error {
			return otSend(w.ring, sender, triples.A[lo:hi])
		},
		parse: func() error {
			return otParseSend(w.ring, sender, triples.C[lo:hi], 0)
		},
	})
	return nil
}

// mtRegisterReceive registers the transfer choosing with this
// party's b values: the receiver learns its share of a_peer*b_i.
func mtRegisterReceive[T any](p *MtProvider, w *mtWidth[T],
	triples *Triples[T], peer, count, lo, hi int) error {

	receiver, err := p.ots[peer].RegisterReceive(w.ring.Bits(), count,
		ot.ACOT)
	if err != nil {
		return err
	}
	p.jobs = append(p.jobs, otJob{
		peer: peer,
		run: func() error {
			return otReceive(w.ring, receiver, triples.B[lo:hi])
		},
		parse: func() error {
			return otParseReceive(w.ring, receiver, triples.C[lo:hi], 0)
		},
	})
	return nil
}

// Setup runs the registered oblivious transfers and assembles the
// multiplication triple shares. When Setup returns, the triples are
// available from the accessors.
func (p *MtProvider) Setup() error {
	p.m.Lock()
	state := p.state
	p.m.Unlock()

	switch state {
	case PreSetupDone:

	case Idle:
		if p.NeedMts() {
			return fmt.Errorf("beaver: Setup in state %v", state)
		}
		// Nothing requested: the setup finishes without any
		// transfers.
		p.finish()
		return nil

	default:
		return fmt.Errorf("beaver: Setup in state %v", state)
	}

	p.config.Stats.RecordStart(stats.PhaseMtSetup)
	defer p.config.Stats.RecordEnd(stats.PhaseMtSetup)

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

// Mts8 returns the 8-bit multiplication triples. The call blocks
// until the setup has finished.
func (p *MtProvider) Mts8() *Triples[uint8] {
	p.Wait()
	return p.mts8.triples
}

// Mts16 returns the 16-bit multiplication triples. The call blocks
// until the setup has finished.
func (p *MtProvider) Mts16() *Triples[uint16] {
	p.Wait()
	return p.mts16.triples
}

// Mts32 returns the 32-bit multiplication triples. The call blocks
// until the setup has finished.
func (p *MtProvider) Mts32() *Triples[uint32] {
	p.Wait()
	return p.mts32.triples
}

// Mts64 returns the 64-bit multiplication triples. The call blocks
// until the setup has finished.
func (p *MtProvider) Mts64() *Triples[uint64] {
	p.Wait()
	return p.mts64.triples
}

// Mts128 returns the 128-bit multiplication triples. The call
// blocks until the setup has finished.
func (p *MtProvider) Mts128() *Triples[zn.Uint128] {
	p.Wait()
	return p.mts128.triples
}
