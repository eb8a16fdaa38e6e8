package audio

import (
	perr "github.com/jscyril/playd/pkg/errors"
)

// PipeAudio is the loaded variant of Audio: it owns one Source and one
// Sink and drives decode/transfer on each tick.
type PipeAudio struct {
	source Source
	sink   Sink

	frame  []byte
	cursor int

	// lastAnnouncedSec and announced back Pipe Audio's own broadcast
	// throttle (§4.4 can_announce_time), tracked independently of the
	// Player-level throttle used to gate the actual POS broadcast.
	lastAnnouncedSec uint64
	announced        bool
}

var _ Audio = (*PipeAudio)(nil)

// NewPipeAudio builds a PipeAudio over an already-opened Source and an
// already-built Sink. The Sink is assumed STOPPED at sample 0, matching
// the state a fresh load() leaves Player in.
func NewPipeAudio(source Source, sink Sink) *PipeAudio {
	return &PipeAudio{source: source, sink: sink}
}

func (p *PipeAudio) frameFinished() bool {
	return p.cursor >= len(p.frame)
}

// Update implements the §4.4 update cycle: refill the frame if finished,
// transfer what's pending to the sink, and report the resulting state.
func (p *PipeAudio) Update() (SinkState, error) {
	if p.frameFinished() {
		state, bytes, err := p.source.Decode()
		if err != nil {
			return p.sink.State(), perr.New(perr.KindDecode, "PipeAudio.Update", err)
		}
		p.frame = bytes
		p.cursor = 0
		if state == EndOfFile {
			p.sink.SourceOut()
		}
	}

	if !p.frameFinished() {
		n := p.sink.Transfer(p.frame[p.cursor:])
		p.cursor += n
	}

	return p.sink.State(), nil
}

func (p *PipeAudio) Path() (string, error) {
	return p.source.Path(), nil
}

func (p *PipeAudio) PositionMicros() (uint64, error) {
	return MicrosFromSamples(p.source, p.sink.Position()), nil
}

func (p *PipeAudio) LengthMicros() (uint64, error) {
	length := p.source.Length()
	if length == UnknownLength {
		return UnknownLength, nil
	}
	return MicrosFromSamples(p.source, length), nil
}

// SetPositionMicros implements §4.4's seek: convert to samples, ask the
// source to seek, tell the sink where that actually landed, and clear the
// in-flight frame and announce-throttle. The sink must already be STOPPED;
// the Player enforces that by stopping before seeking and restoring
// whatever playing state it had afterwards.
func (p *PipeAudio) SetPositionMicros(micros uint64) error {
	samples := SamplesFromMicros(p.source, micros)
	actual, err := p.source.Seek(samples)
	if err != nil {
		return perr.New(perr.KindSeek, "PipeAudio.SetPositionMicros", err)
	}
	if err := p.sink.SetPosition(actual); err != nil {
		return perr.New(perr.KindInternal, "PipeAudio.SetPositionMicros", err)
	}
	p.frame = nil
	p.cursor = 0
	p.announced = false
	p.lastAnnouncedSec = 0
	return nil
}

func (p *PipeAudio) SetPlaying(playing bool) error {
	if playing {
		if err := p.sink.Start(); err != nil {
			return perr.New(perr.KindNoFile, "PipeAudio.SetPlaying", err)
		}
		return nil
	}
	p.sink.Stop()
	return nil
}

// End forces an immediate transition to AT_END, landing the sink there
// itself rather than merely stopping and leaving PullFrames to catch up
// on its own schedule (PullFrames only ever transitions out of PLAYING,
// never STOPPED).
func (p *PipeAudio) End() error {
	length := p.source.Length()
	if length == UnknownLength {
		length = p.sink.Position()
	}
	p.sink.ForceAtEnd(length)
	p.frame = nil
	p.cursor = 0
	return nil
}

func (p *PipeAudio) Close() error {
	return p.source.Close()
}

// CanAnnounceTime reports whether the whole-second floor of micros exceeds
// the previously announced whole-second, or nothing has been announced
// since the last reset (seek). It is Pipe Audio's own bookkeeping,
// separate from the Player-level throttle that actually gates broadcasts.
func (p *PipeAudio) CanAnnounceTime(micros uint64) bool {
	sec := micros / 1_000_000
	if !p.announced || sec > p.lastAnnouncedSec {
		p.lastAnnouncedSec = sec
		p.announced = true
		return true
	}
	return false
}
