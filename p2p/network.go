//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
	"sync"
	"time"

	"github.com/markkurossi/mpcore/core"
	"github.com/markkurossi/mpcore/log"
)

var _ core.CommunicationHandler = (*Peer)(nil)

// Network implements a peer-to-peer network. Peers are identified by
// their party ids; the connection mesh is built by dialing the peers
// and accepting inbound connections.
type Network struct {
	ID       int
	m        sync.Mutex
	Peers    map[int]*Peer
	addr     string
	listener net.Listener
	lg       log.Logger
}

// NewNetwork creates a new peer-to-peer network, listening on the
// address addr. A nil logger means the default logger.
func NewNetwork(addr string, id int, lg log.Logger) (*Network, error) {
	if lg == nil {
		lg = log.Default()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	nw := &Network{
		ID:       id,
		Peers:    make(map[int]*Peer),
		addr:     addr,
		listener: listener,
		lg:       lg,
	}
	go nw.acceptLoop()
	return nw, nil
}

// Addr returns the listener address of the network.
func (nw *Network) Addr() string {
	return nw.listener.Addr().String()
}

// Close closes the network.
func (nw *Network) Close() error {
	return nw.listener.Close()
}

// AddPeer connects to the peer id at the address addr. The dial is
// retried until the peer answers or an inbound connection from the
// peer arrives.
func (nw *Network) AddPeer(addr string, id int) error {
	for {
		// Check if we have already accepted peer `id`.
		nw.m.Lock()
		_, ok := nw.Peers[id]
		nw.m.Unlock()
		if ok {
			return nil
		}

		nw.lg.Debugf("NW %d: connecting to peer %d...", nw.ID, id)
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			delay := 5 * time.Second
			nw.lg.Debugf("NW %d: connect to %s failed, retrying in %s",
				nw.ID, addr, delay)
			<-time.After(delay)
			continue
		}
		nw.lg.Debugf("NW %d: connected to %s", nw.ID, addr)
		conn := NewConn(nc)

		if err := conn.SendUint32(nw.ID); err != nil {
			conn.Close()
			return err
		}
		if err := conn.Flush(); err != nil {
			conn.Close()
			return err
		}
		if err := nw.newPeer(true, conn, id); err != nil {
			nw.lg.Errorf("NW %d: failed to add peer: %s", nw.ID, err)
		}
	}
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	nw.m.Lock()
	defer nw.m.Unlock()

	result := NewIOStats()
	for _, peer := range nw.Peers {
		result = result.Add(peer.conn.Stats)
	}
	return result
}

func (nw *Network) acceptLoop() {
	for {
		nc, err := nw.listener.Accept()
		if err != nil {
			nw.lg.Debugf("NW %d: accept failed: %s", nw.ID, err)
			return
		}
		conn := NewConn(nc)

		// Read peer ID.
		id, err := conn.ReceiveUint32()
		if err != nil {
			nw.lg.Errorf("NW %d: I/O error: %s", nw.ID, err)
			conn.Close()
			continue
		}

		err = nw.newPeer(false, conn, id)
		if err != nil {
			nw.lg.Errorf("NW %d: inbound connection error: %s", nw.ID, err)
		}
	}
}

func (nw *Network) newPeer(client bool, conn *Conn, id int) error {
	nw.m.Lock()
	_, ok := nw.Peers[id]
	if ok {
		nw.m.Unlock()
		nw.lg.Debugf("NW %d: peer %d already connected", nw.ID, id)
		return conn.Close()
	}
	nw.Peers[id] = &Peer{
		id:     id,
		conn:   conn,
		client: client,
	}
	nw.m.Unlock()

	nw.lg.Debugf("NW %d: peer %d connected, client=%v", nw.ID, id, client)
	return nil
}

// Peer implements a peer in the peer-to-peer network.
type Peer struct {
	id     int
	conn   *Conn
	client bool
}

// ID returns the party id of the peer.
func (peer *Peer) ID() int {
	return peer.id
}

// Conn returns the peer connection.
func (peer *Peer) Conn() *Conn {
	return peer.conn
}

// Close closes the peer connection.
func (peer *Peer) Close() error {
	return peer.conn.Close()
}

// SendMessage sends a message to the peer.
func (peer *Peer) SendMessage(msg []byte) error {
	if err := peer.conn.SendData(msg); err != nil {
		return err
	}
	return peer.conn.Flush()
}

// ReceiveMessage receives a message from the peer.
func (peer *Peer) ReceiveMessage() ([]byte, error) {
	return peer.conn.ReceiveData()
}
