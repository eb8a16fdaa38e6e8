package netsrv

import (
	"bufio"
	"net"

	"github.com/jscyril/playd/internal/player"
	"github.com/jscyril/playd/internal/response"
)

// Connection is one admitted client (§3, C8): an id, an owned transport
// handle, a Tokeniser, and a pending write queue. All of its fields are
// touched only from the reactor goroutine; readLoop and writeLoop are
// dumb I/O goroutines that forward bytes and events through channels and
// hold no state the reactor needs to coordinate over.
type Connection struct {
	id   player.ClientId
	conn net.Conn
	tok  *response.Tokeniser

	writeCh   chan []byte
	closeOnce chan struct{}

	removing bool // set once a close/error has been observed, pending drain
}

func newConnection(conn net.Conn) *Connection {
	return &Connection{
		conn:      conn,
		tok:       response.NewTokeniser(),
		writeCh:   make(chan []byte, 64),
		closeOnce: make(chan struct{}),
	}
}

// Name is a diagnostic, log-only helper (kept from the original's
// connection naming, per SPEC_FULL's supplemented features); it is never
// part of the wire protocol.
func (c *Connection) Name() string {
	return c.conn.RemoteAddr().String()
}

// enqueue serialises r, appends the line terminator, and queues the bytes
// for the write goroutine. It never blocks the reactor: the write channel
// is sized generously, and when it is full the line is dropped and the
// connection is marked for removal (carried out the next time that
// connection's inbound data is handled) rather than stalling every other
// client's delivery.
func (c *Connection) enqueue(r response.Response) {
	line := append([]byte(r.Pack()), '\n')
	select {
	case c.writeCh <- line:
	default:
		c.removing = true
	}
}

// readLoop blocks on the socket and forwards each chunk (or the
// terminating error) to events. It never touches Connection state beyond
// the immutable conn handle.
func (c *Connection) readLoop(events chan<- event) {
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			events <- event{kind: evData, id: c.id, data: chunk}
		}
		if err != nil {
			events <- event{kind: evClosed, id: c.id, err: err}
			return
		}
	}
}

// writeLoop drains writeCh and performs the blocking socket writes, so a
// slow client never stalls the reactor goroutine. It exits once writeCh
// is closed and drained (graceful teardown queues its final messages and
// then calls close, which only closes writeCh), at which point it closes
// the socket itself so every queued write lands before the read side
// observes EOF.
func (c *Connection) writeLoop(events chan<- event) {
	w := bufio.NewWriter(c.conn)
	for line := range c.writeCh {
		if _, err := w.Write(line); err != nil {
			events <- event{kind: evWriteErr, id: c.id, err: err}
			continue
		}
		if err := w.Flush(); err != nil {
			events <- event{kind: evWriteErr, id: c.id, err: err}
		}
	}
	_ = c.conn.Close()
}

// close signals the write goroutine that no further writes are coming.
// It does not touch the socket directly; writeLoop closes it once it has
// drained whatever was already queued, so graceful shutdown's final
// broadcast is never truncated.
func (c *Connection) close() {
	close(c.writeCh)
}
