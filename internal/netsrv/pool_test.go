package netsrv

import (
	"testing"

	"github.com/jscyril/playd/internal/player"
)

func TestPoolAdmitNeverAssignsBroadcast(t *testing.T) {
	p := newPool()
	id := p.admit(&Connection{})
	if id == player.Broadcast {
		t.Fatal("admit assigned the reserved Broadcast id")
	}
}

func TestPoolAdmitAssignsDistinctIDs(t *testing.T) {
	p := newPool()
	seen := map[player.ClientId]bool{}
	for i := 0; i < 5; i++ {
		id := p.admit(&Connection{})
		if seen[id] {
			t.Fatalf("id %d assigned twice", id)
		}
		seen[id] = true
	}
}

func TestPoolReusesFreedID(t *testing.T) {
	p := newPool()
	a := p.admit(&Connection{})
	b := p.admit(&Connection{})
	p.remove(a)
	c := p.admit(&Connection{})
	if c != a {
		t.Fatalf("expected freed id %d to be reused, got %d", a, c)
	}
	if _, ok := p.get(b); !ok {
		t.Fatal("unrelated live connection was removed")
	}
}

func TestPoolEachVisitsInAscendingOrder(t *testing.T) {
	p := newPool()
	ids := make([]player.ClientId, 0, 4)
	for i := 0; i < 4; i++ {
		ids = append(ids, p.admit(&Connection{}))
	}
	p.remove(ids[1])
	p.admit(&Connection{}) // reuses ids[1], out of original insertion order

	var visited []player.ClientId
	p.each(func(c *Connection) { visited = append(visited, c.id) })

	for i := 1; i < len(visited); i++ {
		if visited[i-1] >= visited[i] {
			t.Fatalf("each() did not visit in ascending order: %v", visited)
		}
	}
}
