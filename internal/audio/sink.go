package audio

import (
	"sync/atomic"

	"github.com/jscyril/playd/internal/format"
	"github.com/jscyril/playd/internal/ring"
	perr "github.com/jscyril/playd/pkg/errors"
)

// SinkState is the transport state of a Sink.
type SinkState uint32

const (
	SinkStopped SinkState = iota
	SinkPlaying
	SinkAtEnd
)

func (s SinkState) String() string {
	switch s {
	case SinkStopped:
		return "STOPPED"
	case SinkPlaying:
		return "PLAYING"
	case SinkAtEnd:
		return "AT_END"
	default:
		return "UNKNOWN"
	}
}

// Sink is the capability interface a pluggable audio device backend must
// satisfy from the reactor thread's point of view. RingSink is the only
// implementation the core ships; device backends (see otosink) drive it
// from their own real-time thread via PullFrames.
type Sink interface {
	Start() error
	Stop()
	SourceOut()
	State() SinkState
	Position() uint64
	SetPosition(samples uint64) error
	Transfer(data []byte) (consumed int)

	// ForceAtEnd lands the sink in AT_END immediately, at the given sample
	// position, regardless of its current state. Unlike SourceOut (which
	// only arms the Playing->AtEnd transition PullFrames performs once the
	// ring drains), this is end()'s own synchronous transition: it must
	// observe AT_END on the very next read, not some later tick.
	ForceAtEnd(position uint64)
}

// RingSink is the one Sink implementation: an SPSC ring buffer plus a pair
// of atomic fields (state, position) shared between the reactor thread
// (writer of state on start/stop/source-out, writer via Transfer) and the
// real-time device thread (reader via PullFrames, which advances position,
// and the sole writer of the one-shot drain-driven Playing->AtEnd
// transition). The reactor thread stores position only through
// SetPosition and ForceAtEnd.
type RingSink struct {
	buf        *ring.Buffer
	frameSize  int
	state      atomic.Uint32
	position   atomic.Uint64
	sourcedOut atomic.Bool
}

// NewRingSink builds a RingSink with a ring buffer sized to hold at least
// minBytes of PCM for the given format.
func NewRingSink(f format.Format, minBytes int) (*RingSink, error) {
	buf, err := ring.New(minBytes)
	if err != nil {
		return nil, perr.New(perr.KindInternal, "audio.NewRingSink", err)
	}
	return &RingSink{buf: buf, frameSize: f.FrameSize()}, nil
}

// Start transitions STOPPED -> PLAYING. It fails with KindNoFile from
// AT_END: a seek or load is required to leave AT_END, per the chosen
// open-question resolution in the design notes.
func (s *RingSink) Start() error {
	if SinkState(s.state.Load()) == SinkAtEnd {
		return perr.New(perr.KindNoFile, "RingSink.Start", nil)
	}
	s.state.Store(uint32(SinkPlaying))
	return nil
}

// Stop transitions to STOPPED unconditionally.
func (s *RingSink) Stop() {
	s.state.Store(uint32(SinkStopped))
}

// SourceOut marks the upstream source exhausted. It is idempotent; the
// actual AT_END transition happens once the ring buffer drains, inside
// PullFrames.
func (s *RingSink) SourceOut() {
	s.sourcedOut.Store(true)
}

func (s *RingSink) State() SinkState {
	return SinkState(s.state.Load())
}

// Position returns the sample index of the frame most recently handed to
// the device, or the last value set by SetPosition before any transfer.
func (s *RingSink) Position() uint64 {
	return s.position.Load()
}

// SetPosition forcibly sets the position counter and flushes the ring
// buffer. Callable only when STOPPED.
func (s *RingSink) SetPosition(samples uint64) error {
	if SinkState(s.state.Load()) != SinkStopped {
		return perr.New(perr.KindInternal, "RingSink.SetPosition", perr.ErrNotStopped)
	}
	s.buf.Flush()
	s.position.Store(samples)
	s.sourcedOut.Store(false)
	return nil
}

// ForceAtEnd flushes the ring, pins the position, and stores AT_END
// directly, bypassing Stop and the drain-then-transition PullFrames
// normally performs on its own schedule. PullFrames only ever transitions
// out of PLAYING; a bare Stop followed by SourceOut leaves the sink in
// STOPPED forever, never AT_END, which is why end() calls this instead.
func (s *RingSink) ForceAtEnd(position uint64) {
	s.buf.Flush()
	s.position.Store(position)
	s.sourcedOut.Store(true)
	s.state.Store(uint32(SinkAtEnd))
}

// Transfer copies as many whole frames as fit from data into the ring
// buffer and returns the number of bytes consumed. It never blocks, and it
// refuses to accept more data once the sink has reached AT_END: the caller
// must set_position before transferring again.
func (s *RingSink) Transfer(data []byte) int {
	if SinkState(s.state.Load()) == SinkAtEnd {
		return 0
	}
	if s.frameSize <= 0 {
		return 0
	}
	free := s.buf.WriteCapacity()
	free -= free % s.frameSize
	if free <= 0 {
		return 0
	}
	n := len(data)
	if n > free {
		n = free
	}
	n -= n % s.frameSize
	if n <= 0 {
		return 0
	}
	return s.buf.Write(data[:n])
}

// PullFrames is the real-time device callback contract: it reads up to
// len(p) bytes from the ring buffer, zero-fills any shortfall, and
// advances the position counter by the whole frames actually delivered
// (including the zero-filled ones, since the device still consumes them
// at real time). It must not allocate, lock, or perform blocking I/O, and
// is the only place that writes the STOPPED-is-implicit Playing->AtEnd
// transition.
func (s *RingSink) PullFrames(p []byte) {
	state := SinkState(s.state.Load())
	if state == SinkStopped {
		zero(p)
		return
	}

	drained := s.sourcedOut.Load() && s.buf.ReadCapacity() == 0

	n := s.buf.Read(p)
	if n < len(p) {
		zero(p[n:])
	}

	if s.frameSize > 0 {
		frames := uint64(len(p) / s.frameSize)
		s.position.Add(frames)
	}

	if state == SinkPlaying && drained {
		s.state.CompareAndSwap(uint32(SinkPlaying), uint32(SinkAtEnd))
	}
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
