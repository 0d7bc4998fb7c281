//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"sync"

	"github.com/markkurossi/mpcore/core"
)

var _ core.Opener = (*Opener)(nil)

// Opener opens secret-shared values over the peer connections. Each
// opening is tagged with its id so several openings can be in flight
// concurrently; a reader goroutine per peer delivers inbound shares.
type Opener struct {
	conns map[int]*Conn

	sendM sync.Mutex

	m     sync.Mutex
	c     *sync.Cond
	recvd map[uint64]map[int][]byte
	err   error
}

// NewOpener creates an opener over the peer connections. The conns
// map is keyed by peer id. The opener owns the read side of the
// connections.
func NewOpener(conns map[int]*Conn) *Opener {
	o := &Opener{
		conns: conns,
		recvd: make(map[uint64]map[int][]byte),
	}
	o.c = sync.NewCond(&o.m)

	for id, conn := range conns {
		go o.reader(id, conn)
	}
	return o
}

func (o *Opener) reader(peer int, conn *Conn) {
	for {
		data, err := conn.ReceiveData()
		if err == nil && len(data) < 8 {
			err = fmt.Errorf("p2p: invalid share frame: %d bytes",
				len(data))
		}
		if err != nil {
			o.m.Lock()
			if o.err == nil {
				o.err = err
			}
			o.c.Broadcast()
			o.m.Unlock()
			return
		}
		id := bo.Uint64(data[:8])

		o.m.Lock()
		byPeer, ok := o.recvd[id]
		if !ok {
			byPeer = make(map[int][]byte)
			o.recvd[id] = byPeer
		}
		byPeer[peer] = data[8:]
		o.c.Broadcast()
		o.m.Unlock()
	}
}

// Open opens the sharing id: it distributes the local share to all
// peers and returns their shares, keyed by peer id. The caller
// combines the shares according to the sharing scheme.
func (o *Opener) Open(id uint64, share []byte) (map[int][]byte, error) {
	frame := make([]byte, 8+len(share))
	bo.PutUint64(frame[:8], id)
	copy(frame[8:], share)

	o.sendM.Lock()
	for _, conn := range o.conns {
		if err := conn.SendData(frame); err != nil {
			o.sendM.Unlock()
			return nil, err
		}
		if err := conn.Flush(); err != nil {
			o.sendM.Unlock()
			return nil, err
		}
	}
	o.sendM.Unlock()

	o.m.Lock()
	defer o.m.Unlock()
	for {
		if o.err != nil {
			return nil, o.err
		}
		byPeer := o.recvd[id]
		if len(byPeer) == len(o.conns) {
			delete(o.recvd, id)
			return byPeer, nil
		}
		o.c.Wait()
	}
}
