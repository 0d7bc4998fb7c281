//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"testing"
	"time"

	"github.com/markkurossi/mpcore/log"
)

func TestNetwork(t *testing.T) {
	nw0, err := NewNetwork("127.0.0.1:0", 0, log.Nop())
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	defer nw0.Close()

	nw1, err := NewNetwork("127.0.0.1:0", 1, log.Nop())
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	defer nw1.Close()

	if err := nw1.AddPeer(nw0.Addr(), 0); err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	nw1.m.Lock()
	peer10 := nw1.Peers[0]
	nw1.m.Unlock()
	if peer10 == nil {
		t.Fatalf("dialer has no peer")
	}
	if peer10.ID() != 0 {
		t.Errorf("peer id: got %v", peer10.ID())
	}

	// Wait for the accept side to register the peer.
	var peer01 *Peer
	for i := 0; i < 100 && peer01 == nil; i++ {
		nw0.m.Lock()
		peer01 = nw0.Peers[1]
		nw0.m.Unlock()
		if peer01 == nil {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if peer01 == nil {
		t.Fatalf("acceptor has no peer")
	}

	msg := []byte("hello, peer")
	go func() {
		peer10.SendMessage(msg)
	}()
	got, err := peer01.ReceiveMessage()
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("got %q, want %q", got, msg)
	}

	reply := []byte("hello back")
	go func() {
		peer01.SendMessage(reply)
	}()
	got, err = peer10.ReceiveMessage()
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	if !bytes.Equal(got, reply) {
		t.Errorf("got %q, want %q", got, reply)
	}

	if nw1.Stats().Sum() == 0 {
		t.Errorf("no I/O counted")
	}
}
