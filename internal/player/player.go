// Package player implements the player state machine (C5): command
// handlers over the current Audio, periodic pipeline updates, and the
// response broadcasts and acknowledgements those produce.
package player

import (
	"log/slog"

	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/response"
	perr "github.com/jscyril/playd/pkg/errors"
)

// ClientId identifies a connection within the reactor's pool. Broadcast
// (0) is reserved and never assigned to a live connection.
type ClientId uint32

// Broadcast addresses every live connection.
const Broadcast ClientId = 0

// ResponseSink is the addressing abstraction (C10) the Player uses to
// deliver responses without knowing how they reach a socket. The Player
// acquires one via SetIO after construction, resolving the natural
// Player<->Reactor cycle: the reactor needs a Player to dispatch commands
// to, and the Player needs a sink to speak through.
type ResponseSink interface {
	Respond(id ClientId, r response.Response)
}

// SourceFactory opens a Source for a file path.
type SourceFactory func(path string) (audio.Source, error)

// SinkFactory builds a Sink for a freshly opened Source, bound to a host
// output device.
type SinkFactory func(source audio.Source, deviceID int) (audio.Sink, error)

const version = "0.1"

// Player owns the current Audio and drives the state machine of §4.5. At
// most one Audio is loaded at a time; loading replaces and drops any
// previous one.
type Player struct {
	audio audio.Audio

	dead bool
	io   ResponseSink

	deviceID    int
	sinkFactory SinkFactory
	extensions  map[string]SourceFactory

	faults *audio.FaultBus

	prevState        audio.SinkState
	lastBroadcastSec uint64
	announcedPos     bool
}

// New builds a Player with no file loaded, bound to deviceID for future
// Sink construction. extensions maps lowercase file extensions (including
// the leading dot) to the Source factory that opens them.
func New(deviceID int, sinkFactory SinkFactory, extensions map[string]SourceFactory, faults *audio.FaultBus) *Player {
	return &Player{
		audio:       audio.NullAudio{},
		deviceID:    deviceID,
		sinkFactory: sinkFactory,
		extensions:  extensions,
		faults:      faults,
		prevState:   audio.SinkStopped,
	}
}

// SetIO attaches the response sink the Player broadcasts and acknowledges
// through. It must be called once, after both the Player and its Reactor
// exist, breaking the cyclic construction dependency between them.
func (p *Player) SetIO(io ResponseSink) {
	p.io = io
}

func (p *Player) broadcast(code response.Code, args ...string) {
	if p.io == nil {
		return
	}
	p.io.Respond(Broadcast, response.New(response.Broadcast, code, args...))
}

func (p *Player) unicast(id ClientId, code response.Code, args ...string) {
	if p.io == nil {
		return
	}
	p.io.Respond(id, response.New(response.Broadcast, code, args...))
}

// Dead reports whether the player has processed a quit command.
func (p *Player) Dead() bool {
	return p.dead
}

// Update runs one iteration of the reactor's periodic tick (§4.5): it
// drains any pending device fault, advances the pipeline, detects and
// broadcasts an AT_END crossing, and throttles a POS broadcast while
// playing. It returns false once the reactor should exit.
func (p *Player) Update() bool {
	if p.dead {
		return false
	}

	p.drainFaults()

	state, err := p.audio.Update()
	if err != nil {
		p.handleAsyncFault(err)
		return true
	}

	if state == audio.SinkAtEnd && p.prevState != audio.SinkAtEnd {
		p.broadcast(response.END)
		p.broadcast(response.STOP)
	}
	p.prevState = state

	if state == audio.SinkPlaying {
		posMicros, err := p.audio.PositionMicros()
		if err == nil && p.canBroadcastPos(posMicros) {
			p.broadcast(response.POS, microsToArg(posMicros))
		}
	}

	return true
}

// drainFaults consumes at most one pending device-thread fault per tick;
// FaultBus.Publish drops extras, so one is always enough to notice.
func (p *Player) drainFaults() {
	select {
	case err := <-p.faults.Faults():
		p.handleAsyncFault(err)
	default:
	}
}

// handleAsyncFault implements §7's policy for errors raised outside a
// command: log it, and if it is decode- or device-fatal, eject the
// current audio with an unsolicited broadcast.
func (p *Player) handleAsyncFault(err error) {
	slog.Error("playback fault", "error", err, "kind", perr.KindOf(err).String())
	kind := perr.KindOf(err)
	if kind == perr.KindDecode || kind == perr.KindInternal {
		p.ejectLocked()
	}
}

// canBroadcastPos implements the Player-level POS throttle (§4.5 step 4,
// distinct from Pipe Audio's own can_announce_time bookkeeping): it is
// truthy iff the whole-second floor of posMicros exceeds the last
// broadcast whole-second, or nothing has been broadcast since the last
// load or seek (both reset this throttle, per the design notes'
// resolution of the corresponding open question).
func (p *Player) canBroadcastPos(posMicros uint64) bool {
	sec := posMicros / 1_000_000
	if !p.announcedPos || sec > p.lastBroadcastSec {
		p.lastBroadcastSec = sec
		p.announcedPos = true
		return true
	}
	return false
}

func (p *Player) resetPosThrottle() {
	p.lastBroadcastSec = 0
	p.announcedPos = false
}

func microsToArg(micros uint64) string {
	return uintToString(micros)
}
