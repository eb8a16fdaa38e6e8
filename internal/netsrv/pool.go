package netsrv

import (
	"sort"

	"github.com/jscyril/playd/internal/player"
)

// pool is the insertion-ordered, sparse ClientId -> Connection mapping
// described in §3 (C9). It is touched only from the reactor's single
// goroutine, so it needs no synchronisation of its own.
type pool struct {
	conns    map[player.ClientId]*Connection
	free     []player.ClientId
	nextFree player.ClientId
}

func newPool() *pool {
	return &pool{
		conns:    make(map[player.ClientId]*Connection),
		nextFree: player.Broadcast + 1,
	}
}

// admit assigns conn the next available ClientId, popping the free list
// if non-empty or extending the pool by one otherwise, and returns the
// assigned id. IDs are never reused while still live, and Broadcast (0)
// is never assigned.
func (p *pool) admit(conn *Connection) player.ClientId {
	var id player.ClientId
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		id = p.nextFree
		p.nextFree++
	}
	conn.id = id
	p.conns[id] = conn
	return id
}

// remove drops id from the pool and pushes it onto the free list for
// reuse by a future connection.
func (p *pool) remove(id player.ClientId) {
	if _, ok := p.conns[id]; !ok {
		return
	}
	delete(p.conns, id)
	p.free = append(p.free, id)
}

func (p *pool) get(id player.ClientId) (*Connection, bool) {
	c, ok := p.conns[id]
	return c, ok
}

// each calls fn for every live connection, in ascending ClientId order,
// matching §4.10's broadcast-iterates-in-id-order requirement.
func (p *pool) each(fn func(*Connection)) {
	ids := make([]player.ClientId, 0, len(p.conns))
	for id := range p.conns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(p.conns[id])
	}
}
