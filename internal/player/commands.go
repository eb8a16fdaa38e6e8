package player

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/response"
	perr "github.com/jscyril/playd/pkg/errors"
)

func uintToString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// CommandFn is a Player command handler. callerID is the ClientId of the
// connection that issued it (used only by dump, which unicasts back to
// its caller); args excludes the tag and verb.
type CommandFn func(p *Player, callerID ClientId, args []string) error

// Commands maps lowercase verbs to their handlers, per §6's VERB set.
var Commands = map[string]CommandFn{
	"play":  cmdPlay,
	"stop":  cmdStop,
	"load":  cmdLoad,
	"eject": cmdEject,
	"pos":   cmdPos,
	"end":   cmdEnd,
	"dump":  cmdDump,
	"quit":  cmdQuit,
}

func cmdLoad(p *Player, _ ClientId, args []string) error {
	if len(args) != 1 {
		return perr.New(perr.KindInvalid, "load", perr.ErrBadArity)
	}
	return p.Load(args[0])
}

func cmdEject(p *Player, _ ClientId, args []string) error {
	if len(args) != 0 {
		return perr.New(perr.KindInvalid, "eject", perr.ErrBadArity)
	}
	return p.Eject()
}

func cmdPlay(p *Player, _ ClientId, args []string) error {
	if len(args) != 0 {
		return perr.New(perr.KindInvalid, "play", perr.ErrBadArity)
	}
	return p.SetPlaying(true)
}

func cmdStop(p *Player, _ ClientId, args []string) error {
	if len(args) != 0 {
		return perr.New(perr.KindInvalid, "stop", perr.ErrBadArity)
	}
	return p.SetPlaying(false)
}

func cmdPos(p *Player, _ ClientId, args []string) error {
	if len(args) != 1 {
		return perr.New(perr.KindInvalid, "pos", perr.ErrBadArity)
	}
	micros, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return perr.New(perr.KindInvalid, "pos", err)
	}
	return p.Pos(micros)
}

func cmdEnd(p *Player, _ ClientId, args []string) error {
	if len(args) != 0 {
		return perr.New(perr.KindInvalid, "end", perr.ErrBadArity)
	}
	return p.End()
}

func cmdDump(p *Player, callerID ClientId, args []string) error {
	if len(args) != 0 {
		return perr.New(perr.KindInvalid, "dump", perr.ErrBadArity)
	}
	p.Dump(callerID)
	return nil
}

func cmdQuit(p *Player, _ ClientId, args []string) error {
	if len(args) != 0 {
		return perr.New(perr.KindInvalid, "quit", perr.ErrBadArity)
	}
	p.dead = true
	return nil
}

// Load selects a Source factory by path's lowercase extension, builds the
// Source and its Sink, replaces the current Audio, and broadcasts the
// standard post-load state (§4.5 load row).
func (p *Player) Load(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	factory, ok := p.extensions[ext]
	if !ok {
		return perr.New(perr.KindNoFile, "Load", nil)
	}

	source, err := factory(path)
	if err != nil {
		return perr.New(perr.KindLoad, "Load", err)
	}

	sink, err := p.sinkFactory(source, p.deviceID)
	if err != nil {
		_ = source.Close()
		return perr.New(perr.KindLoad, "Load", err)
	}

	p.closeAndClear()

	p.audio = audio.NewPipeAudio(source, sink)
	p.prevState = audio.SinkStopped
	p.resetPosThrottle()

	lengthMicros, _ := p.audio.LengthMicros()

	p.broadcast(response.FLOAD, path)
	p.broadcast(response.POS, "0")
	p.broadcast(response.LEN, uintToString(lengthMicros))
	p.broadcast(response.STOP)

	return nil
}

// Eject drops the current Audio, broadcasting EJECT first if one was
// loaded. Ejecting with nothing loaded is a no-op, not a failure.
func (p *Player) Eject() error {
	p.ejectLocked()
	return nil
}

// ejectLocked performs a broadcasting eject without returning an error,
// for internal callers that need the EJECT broadcast: the real eject
// command and the async-fault path. Load does not go through this; §4.5
// routes load-over-an-already-loaded-file through a replace transition,
// not eject, so it uses closeAndClear directly.
func (p *Player) ejectLocked() {
	if _, ok := p.audio.(*audio.PipeAudio); !ok {
		return
	}
	p.closeAndClear()
	p.broadcast(response.EJECT)
}

// closeAndClear closes the current Audio, if it is a loaded PipeAudio,
// and resets to NullAudio, without broadcasting anything.
func (p *Player) closeAndClear() {
	if _, ok := p.audio.(*audio.PipeAudio); !ok {
		return
	}
	_ = p.audio.Close()
	p.audio = audio.NullAudio{}
	p.prevState = audio.SinkStopped
	p.resetPosThrottle()
}

// SetPlaying starts or stops the sink. Starting from AT_END fails with
// KindNoFile, per the chosen resolution of the AT_END-restart open
// question (§9): a seek or load is required first.
func (p *Player) SetPlaying(playing bool) error {
	if err := p.audio.SetPlaying(playing); err != nil {
		return err
	}
	if playing {
		p.prevState = audio.SinkPlaying
		p.broadcast(response.PLAY)
	} else {
		p.prevState = audio.SinkStopped
		p.broadcast(response.STOP)
	}
	return nil
}

// Pos parses and applies a seek: stop, seek, and restart if the audio was
// previously playing and the new position is before the end.
func (p *Player) Pos(micros uint64) error {
	wasPlaying := p.prevState == audio.SinkPlaying

	if err := p.audio.SetPlaying(false); err != nil {
		return err
	}
	if err := p.audio.SetPositionMicros(micros); err != nil {
		return err
	}
	p.prevState = audio.SinkStopped
	p.resetPosThrottle()

	length, lenErr := p.audio.LengthMicros()
	if wasPlaying && (lenErr != nil || length == audio.UnknownLength || micros < length) {
		if err := p.audio.SetPlaying(true); err != nil {
			return err
		}
		p.prevState = audio.SinkPlaying
	}

	p.broadcast(response.POS, uintToString(micros))
	return nil
}

// End forces an immediate transition to AT_END.
func (p *Player) End() error {
	if err := p.audio.End(); err != nil {
		return err
	}
	p.broadcast(response.END)
	p.broadcast(response.STOP)
	p.prevState = audio.SinkAtEnd
	return nil
}

// Dump emits a full unicast snapshot to id: identity, then whatever state
// a fresh connection needs to reconstruct what's currently loaded and
// playing (§4.5 dump row, §8 scenario 1).
func (p *Player) Dump(id ClientId) {
	p.unicast(id, response.OHAI, "playd", version)
	p.unicast(id, response.IAMA, "player/file")
	p.dumpFileInfo(id)
	p.dumpState(id)
}

// dumpFileInfo emits the FLOAD/EJECT and LEN parts of a dump: which file,
// if any, and its length. Split from dumpState to mirror the original
// implementation's two-part dump shape (file info vs transport state).
func (p *Player) dumpFileInfo(id ClientId) {
	path, err := p.audio.Path()
	if err != nil {
		p.unicast(id, response.EJECT)
		return
	}
	p.unicast(id, response.FLOAD, path)
	if length, err := p.audio.LengthMicros(); err == nil {
		p.unicast(id, response.LEN, uintToString(length))
	}
}

// dumpState emits the POS and PLAY/STOP/END part of a dump.
func (p *Player) dumpState(id ClientId) {
	pos, err := p.audio.PositionMicros()
	if err != nil {
		p.unicast(id, response.STOP)
		return
	}
	p.unicast(id, response.POS, uintToString(pos))

	switch p.prevState {
	case audio.SinkPlaying:
		p.unicast(id, response.PLAY)
	case audio.SinkAtEnd:
		p.unicast(id, response.END)
		p.unicast(id, response.STOP)
	default:
		p.unicast(id, response.STOP)
	}
}
