//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ot implements the oblivious-transfer channel of the
// protocol backends. A Provider hands out per-exchange sender and
// receiver handles; the exchanges run over the IO transport
// interface. The package provides a correlated-OT realization built
// on the Chou-Orlandi random OT.
package ot

import (
	"fmt"
)

// Protocol identifies an oblivious-transfer flavor.
type Protocol byte

// Known oblivious-transfer flavors.
const (
	// ROT is random OT: the protocol samples both messages and the
	// choice bits.
	ROT Protocol = iota

	// ACOT is additively correlated OT: the sender inputs a
	// correlation value x per transfer and learns s, the receiver
	// learns s+b*x for its choice bit b.
	ACOT
)

var protocolNames = map[Protocol]string{
	ROT:  "ROT",
	ACOT: "ACOT",
}

func (p Protocol) String() string {
	name, ok := protocolNames[p]
	if ok {
		return name
	}
	return fmt.Sprintf("{Protocol %d}", p)
}

// Provider registers oblivious-transfer exchanges. An exchange
// transfers count values of bits bits each. The two endpoints of a
// provider pair must register matching exchanges in the same order;
// exchanges complete in registration order.
type Provider interface {
	// RegisterSend registers the sending endpoint of an exchange.
	RegisterSend(bits, count int, protocol Protocol) (Sender, error)

	// RegisterReceive registers the receiving endpoint of an
	// exchange.
	RegisterReceive(bits, count int, protocol Protocol) (Receiver, error)
}

// Sender is the sending endpoint of one registered exchange.
type Sender interface {
	// SetInputs sets the sender inputs, one little-endian value of
	// the registered width per transfer.
	SetInputs(inputs [][]byte) error

	// SendMessages runs the sender side of the exchange. The call
	// blocks until the exchange completes.
	SendMessages() error

	// Outputs returns the sender outputs of the completed exchange.
	Outputs() ([][]byte, error)
}

// Receiver is the receiving endpoint of one registered exchange.
type Receiver interface {
	// SetChoices sets the receiver choice bits, one per transfer.
	SetChoices(choices []bool) error

	// SendCorrections runs the receiver side of the exchange. The
	// call blocks until the exchange completes.
	SendCorrections() error

	// Outputs returns the receiver outputs of the completed
	// exchange.
	Outputs() ([][]byte, error)
}

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)

	// Flush flushes any pending data in the connection.
	Flush() error
}

func checkParams(bits, count int) error {
	if bits <= 0 || bits%8 != 0 {
		return fmt.Errorf("ot: invalid transfer width %d", bits)
	}
	if count <= 0 {
		return fmt.Errorf("ot: invalid transfer count %d", count)
	}
	return nil
}
