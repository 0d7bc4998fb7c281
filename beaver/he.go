//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package beaver

import (
	"errors"
	"fmt"

	"github.com/ldsec/lattigo/bfv"
	"github.com/ldsec/lattigo/ring"
	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/log"
	"github.com/markkurossi/mpcore/ot"
	"github.com/markkurossi/mpcore/stats"
	"github.com/markkurossi/text/superscript"
)

// TriplesModT holds the party's additive shares of multiplication
// triples modulo the BFV plaintext modulus T.
type TriplesModT struct {
	T uint64
	A []uint64
	B []uint64
	C []uint64
}

// HEMtProvider generates multiplication triples with homomorphic
// encryption instead of oblivious transfer. Each party sends the
// encryption of its a share to every peer; the peer multiplies the
// ciphertext with its own b share, masks the product, floods the
// ciphertext noise, and returns it for decryption.
//
// The triples are shared modulo the BFV plaintext modulus T, not
// modulo a power of two.
type HEMtProvider struct {
	provider
	config *core.Config
	lg     log.Logger
	conns  map[int]ot.IO

	params    *bfv.Parameters
	encoder   bfv.Encoder
	evaluator bfv.Evaluator
	ctx       *ring.Context

	count   int
	triples *TriplesModT

	sk        *bfv.SecretKey
	decryptor bfv.Decryptor
	encA      []*bfv.Ciphertext
	bPts      []*bfv.Plaintext

	a []uint64
	b []uint64
	c []uint64
}

// NewHEMtProvider creates a homomorphic triple provider for the
// party. The conns argument maps each peer party to the framed
// connection to it.
func NewHEMtProvider(config *core.Config, conns map[int]ot.IO) (
	*HEMtProvider, error) {

	_, ok := conns[config.ID]
	if ok {
		return nil, errors.New("beaver: connection for self")
	}
	for party := 0; party < config.Parties; party++ {
		if party == config.ID {
			continue
		}
		_, ok = conns[party]
		if !ok {
			return nil, fmt.Errorf("beaver: no connection for party %d",
				party)
		}
	}
	params := bfv.DefaultParams[bfv.PN13QP218]
	ctx, err := ring.NewContextWithParams(1<<params.LogN, params.Qi)
	if err != nil {
		return nil, err
	}
	p := &HEMtProvider{
		config:    config,
		lg:        config.GetLogger().Named("beaver"),
		conns:     conns,
		params:    params,
		encoder:   bfv.NewEncoder(params),
		evaluator: bfv.NewEvaluator(params),
		ctx:       ctx,
		triples: &TriplesModT{
			T: params.T,
		},
	}
	p.provider.init()
	return p, nil
}

// T returns the plaintext modulus of the triples.
func (p *HEMtProvider) T() uint64 {
	return p.params.T
}

// Request requests n triples and returns the offset of the first
// triple.
func (p *HEMtProvider) Request(n int) (int, error) {
	if n < 0 {
		return 0, errors.New("beaver: triple count must be non-negative")
	}
	p.m.Lock()
	defer p.m.Unlock()

	if n == 0 {
		// Zero-count requests are no-ops.
		return p.count, nil
	}
	if p.state != Idle {
		return 0, fmt.Errorf("beaver: cannot request triples in state %v",
			p.state)
	}
	offset := p.count
	p.count += n
	return offset, nil
}

// NeedMts reports whether any triples have been requested.
func (p *HEMtProvider) NeedMts() bool {
	p.m.Lock()
	defer p.m.Unlock()

	return p.count > 0
}

// PreSetup generates the party's random shares and the encryptions
// of its a shares. All parties must run PreSetup before Setup.
func (p *HEMtProvider) PreSetup() error {
	p.m.Lock()
	if p.state != Idle {
		state := p.state
		p.m.Unlock()
		return fmt.Errorf("beaver: PreSetup in state %v", state)
	}
	p.m.Unlock()

	p.config.Stats.RecordStart(stats.PhaseMtPresetup)
	defer p.config.Stats.RecordEnd(stats.PhaseMtPresetup)

	if p.count > 0 {
		slots := 1 << p.params.LogN
		blocks := (p.count + slots - 1) / slots
		n := blocks * slots

		p.a = randVecT(n, p.params.T)
		p.b = randVecT(n, p.params.T)
		p.c = mulVecT(p.a, p.b, p.params.T)

		keyGen := bfv.NewKeyGenerator(p.params)
		p.sk = keyGen.GenSecretKey()
		p.decryptor = bfv.NewDecryptor(p.params, p.sk)
		encryptor := bfv.NewEncryptorFromSk(p.params, p.sk)

		for block := 0; block < blocks; block++ {
			lo := block * slots

			aPt := bfv.NewPlaintext(p.params)
			p.encoder.EncodeUint(p.a[lo:lo+slots], aPt)
			p.encA = append(p.encA, encryptor.EncryptNew(aPt))

			bPt := bfv.NewPlaintext(p.params)
			p.encoder.EncodeUint(p.b[lo:lo+slots], bPt)
			p.bPts = append(p.bPts, bPt)
		}
		p.lg.Debugf("%s: encrypted %d triple shares in %d blocks",
			superscript.Itoa(p.config.ID), p.count, blocks)
	}

	p.m.Lock()
	p.state = PreSetupDone
	p.m.Unlock()
	return nil
}

// Setup runs the pairwise exchanges and assembles the triple
// shares. When Setup returns, the triples are available from Mts.
func (p *HEMtProvider) Setup() error {
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
		// exchanges.
		p.finish()
		return nil

	default:
		return fmt.Errorf("beaver: Setup in state %v", state)
	}

	p.config.Stats.RecordStart(stats.PhaseMtSetup)
	defer p.config.Stats.RecordEnd(stats.PhaseMtSetup)

	if p.count > 0 {
		// The peers run in increasing id order and the party with
		// the smaller id sends first in each exchange.
		for peer := 0; peer < p.config.Parties; peer++ {
			if peer == p.config.ID {
				continue
			}
			err := p.runPeer(peer)
			if err != nil {
				return err
			}
		}
		p.triples.A = p.a[:p.count]
		p.triples.B = p.b[:p.count]
		p.triples.C = p.c[:p.count]
	}
	p.finish()
	return nil
}

func (p *HEMtProvider) runPeer(peer int) error {
	conn := p.conns[peer]

	for block := 0; block < len(p.encA); block++ {
		data, err := p.encA[block].MarshalBinary()
		if err != nil {
			return err
		}
		var theirData []byte
		if p.config.ID < peer {
			err = p.send(conn, data)
			if err != nil {
				return err
			}
			theirData, err = conn.ReceiveData()
			if err != nil {
				return err
			}
		} else {
			theirData, err = conn.ReceiveData()
			if err != nil {
				return err
			}
			err = p.send(conn, data)
			if err != nil {
				return err
			}
		}

		response, err := p.respond(theirData, block)
		if err != nil {
			return err
		}
		var respData []byte
		if p.config.ID < peer {
			err = p.send(conn, response)
			if err != nil {
				return err
			}
			respData, err = conn.ReceiveData()
			if err != nil {
				return err
			}
		} else {
			respData, err = conn.ReceiveData()
			if err != nil {
				return err
			}
			err = p.send(conn, response)
			if err != nil {
				return err
			}
		}
		err = p.absorb(respData, block)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *HEMtProvider) send(conn ot.IO, data []byte) error {
	err := conn.SendData(data)
	if err != nil {
		return err
	}
	return conn.Flush()
}

// respond multiplies the peer's encrypted a share with this party's
// b share, masks the product with a fresh random vector, and floods
// the ciphertext noise. The mask is subtracted from this party's c
// shares.
func (p *HEMtProvider) respond(data []byte, block int) ([]byte, error) {
	ct := bfv.NewCiphertext(p.params, 1)
	err := ct.UnmarshalBinary(data)
	if err != nil {
		return nil, err
	}

	slots := 1 << p.params.LogN
	lo := block * slots

	r := randVecT(slots, p.params.T)
	copy(p.c[lo:lo+slots], subVecT(p.c[lo:lo+slots], r, p.params.T))

	rPt := bfv.NewPlaintext(p.params)
	p.encoder.EncodeUint(r, rPt)

	mul := bfv.NewCiphertext(p.params, 1)
	p.evaluator.Mul(ct, p.bPts[block], mul)

	masked := bfv.NewCiphertext(p.params, 1)
	p.evaluator.Add(mul, rPt, masked)

	// Noise flooding hides the b share from the decrypting peer.
	bound := uint64(p.params.Sigma * 6)
	values := masked.Value()
	for i := range values {
		noise := p.ctx.SampleGaussianNTTNew(p.params.Sigma, bound)
		sum := p.ctx.NewPoly()
		p.ctx.Add(values[i], noise, sum)
		values[i] = sum
	}
	flooded := bfv.NewCiphertext(p.params, 1)
	flooded.SetValue(values)

	return flooded.MarshalBinary()
}

// absorb decrypts the peer's response and adds it to this party's c
// shares.
func (p *HEMtProvider) absorb(data []byte, block int) error {
	ct := bfv.NewCiphertext(p.params, 1)
	err := ct.UnmarshalBinary(data)
	if err != nil {
		return err
	}
	vec := p.encoder.DecodeUint(p.decryptor.DecryptNew(ct))

	slots := 1 << p.params.LogN
	lo := block * slots

	copy(p.c[lo:lo+slots], addVecT(p.c[lo:lo+slots], vec, p.params.T))
	return nil
}

// Mts returns the triples. The call blocks until the setup has
// finished.
func (p *HEMtProvider) Mts() *TriplesModT {
	p.Wait()
	return p.triples
}

// randVecT generates a uniform random vector modulo T.
func randVecT(n int, T uint64) []uint64 {
	vec := make([]uint64, n)
	t := ring.NewUint(T)
	for i := range vec {
		vec[i] = ring.RandInt(t).Uint64()
	}
	return vec
}

// addVecT adds the vectors element-wise modulo T.
func addVecT(a, b []uint64, T uint64) []uint64 {
	res := make([]uint64, len(a))
	t := ring.NewUint(T)
	for i := range res {
		v := ring.NewUint(0)
		v.Add(ring.NewUint(a[i]), ring.NewUint(b[i])).Mod(v, t)
		res[i] = v.Uint64()
	}
	return res
}

// subVecT subtracts the vectors element-wise modulo T.
func subVecT(a, b []uint64, T uint64) []uint64 {
	res := make([]uint64, len(a))
	t := ring.NewUint(T)
	for i := range res {
		v := ring.NewUint(0)
		v.Sub(ring.NewUint(a[i]), ring.NewUint(b[i])).Mod(v, t)
		res[i] = v.Uint64()
	}
	return res
}

// mulVecT multiplies the vectors element-wise modulo T.
func mulVecT(a, b []uint64, T uint64) []uint64 {
	res := make([]uint64, len(a))
	t := ring.NewUint(T)
	for i := range res {
		v := ring.NewUint(0)
		v.Mul(ring.NewUint(a[i]), ring.NewUint(b[i])).Mod(v, t)
		res[i] = v.Uint64()
	}
	return res
}
