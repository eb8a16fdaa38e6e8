// Package netsrv implements the reactor (C9), the connection (C8), and
// the response sink addressing abstraction (C10): the single-threaded
// cooperative event loop that interleaves TCP accept/read/write with the
// player's periodic tick.
package netsrv

import (
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jscyril/playd/internal/player"
	"github.com/jscyril/playd/internal/response"
	perr "github.com/jscyril/playd/pkg/errors"
)

// tickPeriod is the reactor's periodic pipeline-update interval (§4.9).
const tickPeriod = 5 * time.Millisecond

type eventKind uint8

const (
	evAccept eventKind = iota
	evData
	evClosed
	evWriteErr
)

// event is the one channel every I/O goroutine and the ticker funnel
// through; the reactor goroutine is the sole consumer, which is what
// makes the design single-threaded at the logic level despite the
// per-connection I/O goroutines underneath it.
type event struct {
	kind eventKind
	id   player.ClientId
	conn net.Conn
	data []byte
	err  error
}

// Reactor owns the connection pool and drives the Player. It implements
// player.ResponseSink directly: Respond is only ever called from the
// reactor's own goroutine (via Player.Update or Player.Dispatch, both
// invoked from Run), so it needs no locking.
type Reactor struct {
	listener net.Listener
	pool     *pool
	player   *player.Player
	events   chan event
	conns    sync.WaitGroup
}

var _ player.ResponseSink = (*Reactor)(nil)

// New builds a Reactor bound to p. Call Run to start serving; SetIO must
// be called on p with this Reactor (or another ResponseSink) before
// commands can produce visible responses.
func New(p *player.Player) *Reactor {
	return &Reactor{
		pool:   newPool(),
		player: p,
		events: make(chan event, 256),
	}
}

// Respond implements player.ResponseSink. ClientId Broadcast delivers to
// every live connection, in ascending id order; per-connection failures
// are recorded but do not abort the broadcast (§4.10).
func (r *Reactor) Respond(id player.ClientId, resp response.Response) {
	if id == player.Broadcast {
		r.pool.each(func(c *Connection) { c.enqueue(resp) })
		return
	}
	if c, ok := r.pool.get(id); ok {
		c.enqueue(resp)
	}
}

// Run binds host:port, admits connections, and drives the event loop
// until a quit command or a signal ends it. An accept error stops new
// connections from being admitted but does not end the loop. It returns
// after every connection has been drained and closed.
func (r *Reactor) Run(host, port string) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return perr.New(perr.KindNet, "Reactor.Run", err)
	}
	r.listener = ln
	slog.Info("playd listening", "host", host, "port", port)

	go r.acceptLoop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !r.player.Update() {
				r.shutdown()
				return nil
			}
		case ev := <-r.events:
			if shouldStop := r.handleEvent(ev); shouldStop {
				r.shutdown()
				return nil
			}
		case <-sigCh:
			slog.Info("signal received, shutting down")
			r.shutdown()
			return nil
		}
	}
}

func (r *Reactor) acceptLoop() {
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			return
		}
		r.events <- event{kind: evAccept, conn: conn}
	}
}

// handleEvent processes one funnelled event and reports whether the
// reactor should stop. No event kind stops it today; the return value
// gives future fatal conditions a place to signal through.
func (r *Reactor) handleEvent(ev event) bool {
	switch ev.kind {
	case evAccept:
		r.admit(ev.conn)
	case evData:
		r.onData(ev.id, ev.data)
	case evClosed:
		r.onClosed(ev.id)
	case evWriteErr:
		r.onClosed(ev.id)
	}
	return false
}

func (r *Reactor) admit(conn net.Conn) {
	c := newConnection(conn)
	id := r.pool.admit(c)
	r.conns.Add(2)
	go func() { defer r.conns.Done(); c.readLoop(r.events) }()
	go func() { defer r.conns.Done(); c.writeLoop(r.events) }()
	slog.Info("client connected", "id", id, "addr", c.Name())
	r.player.Dump(id)
}

func (r *Reactor) onData(id player.ClientId, data []byte) {
	c, ok := r.pool.get(id)
	if !ok {
		return
	}
	for _, words := range c.tok.Feed(data) {
		r.runCommand(id, c, words)
	}
	if c.removing {
		r.onClosed(id)
	}
}

// runCommand implements §4.8's run_command: empty lines fail with a fixed
// message; otherwise words[0] is the tag, words[1] the verb, and the rest
// are arguments.
func (r *Reactor) runCommand(id player.ClientId, c *Connection, words []string) {
	if len(words) == 0 {
		c.enqueue(response.Ack(response.Broadcast, response.AckFail, "bad command"))
		return
	}
	tag := words[0]
	var verb string
	var args []string
	if len(words) > 1 {
		verb = words[1]
		args = words[2:]
	}
	ack := r.player.Dispatch(id, tag, verb, args)
	c.enqueue(ack)
}

func (r *Reactor) onClosed(id player.ClientId) {
	c, ok := r.pool.get(id)
	if !ok {
		return
	}
	slog.Info("client disconnected", "id", id, "addr", c.Name())
	c.close()
	r.pool.remove(id)
}

// shutdown implements §4.9's shutdown sequence: stop accepting, tell every
// live connection goodbye, then close out each connection.
func (r *Reactor) shutdown() {
	_ = r.listener.Close()
	r.pool.each(func(c *Connection) {
		c.enqueue(response.New(response.Broadcast, response.OHAI, "bye"))
	})
	r.pool.each(func(c *Connection) {
		c.close()
	})
	r.conns.Wait()
}
