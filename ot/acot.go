//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/bwesterb/go-ristretto"
	"github.com/markkurossi/mpcore/zn"
)

var (
	_ Provider = &ConnProvider{}
	_ Sender   = &acotSender{}
	_ Receiver = &acotReceiver{}
)

// ConnProvider implements the Provider interface over a peer
// connection. Correlated OT is realized by derandomizing
// Chou-Orlandi random OTs: the receiver corrects its random choice
// bits, the sender responds with masked correlation values. The base
// exchange of a transfer direction runs lazily before the
// direction's first exchange.
type ConnProvider struct {
	io IO

	// m serializes exchanges on the connection.
	m sync.Mutex

	sender *coSender
	sendID uint64

	receiver *coReceiver
	recvID   uint64
}

// NewConnProvider creates an OT provider running its exchanges over
// the connection io.
func NewConnProvider(io IO) *ConnProvider {
	return &ConnProvider{
		io: io,
	}
}

// RegisterSend implements Provider.RegisterSend.
func (p *ConnProvider) RegisterSend(bits, count int, protocol Protocol) (
	Sender, error) {

	if err := checkParams(bits, count); err != nil {
		return nil, err
	}
	if protocol != ACOT {
		return nil, fmt.Errorf("ot: protocol %v not supported", protocol)
	}
	return &acotSender{
		prov:  p,
		bits:  bits,
		count: count,
	}, nil
}

// RegisterReceive implements Provider.RegisterReceive.
func (p *ConnProvider) RegisterReceive(bits, count int, protocol Protocol) (
	Receiver, error) {

	if err := checkParams(bits, count); err != nil {
		return nil, err
	}
	if protocol != ACOT {
		return nil, fmt.Errorf("ot: protocol %v not supported", protocol)
	}
	return &acotReceiver{
		prov:  p,
		bits:  bits,
		count: count,
	}, nil
}

// acotSender is the sending endpoint of one correlated-OT exchange.
type acotSender struct {
	prov    *ConnProvider
	bits    int
	count   int
	inputs  [][]byte
	outputs [][]byte
}

// SetInputs implements Sender.SetInputs.
func (s *acotSender) SetInputs(inputs [][]byte) error {
	if s.outputs != nil {
		return fmt.Errorf("ot: exchange already completed")
	}
	if len(inputs) != s.count {
		return fmt.Errorf("ot: got %d inputs, expected %d",
			len(inputs), s.count)
	}
	for i, input := range inputs {
		if len(input) != s.bits/8 {
			return fmt.Errorf("ot: input %d: got %d bytes, expected %d",
				i, len(input), s.bits/8)
		}
	}
	s.inputs = inputs
	return nil
}

// SendMessages implements Sender.SendMessages.
func (s *acotSender) SendMessages() error {
	if s.outputs != nil {
		return fmt.Errorf("ot: exchange already completed")
	}
	if s.inputs == nil {
		return fmt.Errorf("ot: sender inputs not set")
	}
	p := s.prov
	p.m.Lock()
	defer p.m.Unlock()

	if p.sender == nil {
		p.sender = newCOSender()
		if err := p.io.SendData(p.sender.A.Bytes()); err != nil {
			return err
		}
		if err := p.io.Flush(); err != nil {
			return err
		}
	}
	nb := s.bits / 8

	// Receiver points.
	data, err := p.io.ReceiveData()
	if err != nil {
		return err
	}
	if len(data) != s.count*pointSize {
		return fmt.Errorf("ot: invalid receiver points: %d bytes", len(data))
	}
	k0s := make([][]byte, s.count)
	k1s := make([][]byte, s.count)

	var buf [pointSize]byte
	var B ristretto.Point
	for j := 0; j < s.count; j++ {
		copy(buf[:], data[j*pointSize:])
		if !B.SetBytes(&buf) {
			return fmt.Errorf("ot: invalid receiver point %d", j)
		}
		k0s[j], k1s[j], err = p.sender.keys(&B, p.sendID, nb)
		if err != nil {
			return err
		}
		p.sendID++
	}

	// Choice corrections.
	d, err := p.io.ReceiveData()
	if err != nil {
		return err
	}
	if len(d) != (s.count+7)/8 {
		return fmt.Errorf("ot: invalid corrections: %d bytes", len(d))
	}

	// Masked correlation values: u = x + k0 - k1.
	outputs := make([][]byte, s.count)
	u := make([]byte, 0, s.count*nb)
	for j := 0; j < s.count; j++ {
		k0, k1 := k0s[j], k1s[j]
		if d[j/8]&(1<<(j%8)) != 0 {
			k0, k1 = k1, k0
		}
		outputs[j] = k0

		uj := append([]byte{}, s.inputs[j]...)
		zn.AddLE(uj, k0)
		zn.SubLE(uj, k1)
		u = append(u, uj...)
	}
	if err := p.io.SendData(u); err != nil {
		return err
	}
	if err := p.io.Flush(); err != nil {
		return err
	}
	s.outputs = outputs
	return nil
}

// Outputs implements Sender.Outputs.
func (s *acotSender) Outputs() ([][]byte, error) {
	if s.outputs == nil {
		return nil, fmt.Errorf("ot: exchange not completed")
	}
	return s.outputs, nil
}

// acotReceiver is the receiving endpoint of one correlated-OT
// exchange.
type acotReceiver struct {
	prov    *ConnProvider
	bits    int
	count   int
	choices []bool
	outputs [][]byte
}

// SetChoices implements Receiver.SetChoices.
func (r *acotReceiver) SetChoices(choices []bool) error {
	if r.outputs != nil {
		return fmt.Errorf("ot: exchange already completed")
	}
	if len(choices) != r.count {
		return fmt.Errorf("ot: got %d choices, expected %d",
			len(choices), r.count)
	}
	r.choices = choices
	return nil
}

// SendCorrections implements Receiver.SendCorrections.
func (r *acotReceiver) SendCorrections() error {
	if r.outputs != nil {
		return fmt.Errorf("ot: exchange already completed")
	}
	if r.choices == nil {
		return fmt.Errorf("ot: receiver choices not set")
	}
	p := r.prov
	p.m.Lock()
	defer p.m.Unlock()

	if p.receiver == nil {
		data, err := p.io.ReceiveData()
		if err != nil {
			return err
		}
		if len(data) != pointSize {
			return fmt.Errorf("ot: invalid sender point: %d bytes",
				len(data))
		}
		var buf [pointSize]byte
		copy(buf[:], data)
		A := new(ristretto.Point)
		if !A.SetBytes(&buf) {
			return fmt.Errorf("ot: invalid sender point")
		}
		p.receiver = &coReceiver{
			A: A,
		}
	}
	nb := r.bits / 8

	// The random OT runs on random choice bits; the correction d
	// derandomizes them to the real choices.
	rb := make([]byte, (r.count+7)/8)
	if _, err := rand.Read(rb); err != nil {
		return err
	}

	keys := make([][]byte, r.count)
	points := make([]byte, 0, r.count*pointSize)
	d := make([]byte, (r.count+7)/8)
	for j := 0; j < r.count; j++ {
		rbit := rb[j/8]&(1<<(j%8)) != 0
		B, key, err := p.receiver.sample(rbit, p.recvID, nb)
		if err != nil {
			return err
		}
		p.recvID++
		points = append(points, B.Bytes()...)
		keys[j] = key
		if rbit != r.choices[j] {
			d[j/8] |= 1 << (j % 8)
		}
	}
	if err := p.io.SendData(points); err != nil {
		return err
	}
	if err := p.io.SendData(d); err != nil {
		return err
	}
	if err := p.io.Flush(); err != nil {
		return err
	}

	// Masked correlation values.
	data, err := p.io.ReceiveData()
	if err != nil {
		return err
	}
	if len(data) != r.count*nb {
		return fmt.Errorf("ot: invalid correlation data: %d bytes",
			len(data))
	}
	outputs := make([][]byte, r.count)
	for j := 0; j < r.count; j++ {
		out := keys[j]
		if r.choices[j] {
			zn.AddLE(out, data[j*nb:(j+1)*nb])
		}
		outputs[j] = out
	}
	r.outputs = outputs
	return nil
}

// Outputs implements Receiver.Outputs.
func (r *acotReceiver) Outputs() ([][]byte, error) {
	if r.outputs == nil {
		return nil, fmt.Errorf("ot: exchange not completed")
	}
	return r.outputs, nil
}
