package audio

import (
	"testing"

	"github.com/jscyril/playd/internal/format"
)

func newTestSink(t *testing.T) *RingSink {
	t.Helper()
	f := format.Format{Sample: format.Int16, Channels: 2, SampleRate: 44100}
	s, err := NewRingSink(f, 64)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRingSinkStartStop(t *testing.T) {
	s := newTestSink(t)
	if s.State() != SinkStopped {
		t.Fatalf("initial state = %v, want STOPPED", s.State())
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if s.State() != SinkPlaying {
		t.Fatalf("state after Start = %v, want PLAYING", s.State())
	}
	s.Stop()
	if s.State() != SinkStopped {
		t.Fatalf("state after Stop = %v, want STOPPED", s.State())
	}
}

func TestRingSinkStartFromAtEndFails(t *testing.T) {
	s := newTestSink(t)
	s.state.Store(uint32(SinkAtEnd))
	if err := s.Start(); err == nil {
		t.Fatal("expected error starting from AT_END")
	}
}

func TestRingSinkSetPositionRequiresStopped(t *testing.T) {
	s := newTestSink(t)
	s.Start()
	if err := s.SetPosition(10); err == nil {
		t.Fatal("expected error setting position while PLAYING")
	}
	s.Stop()
	if err := s.SetPosition(10); err != nil {
		t.Fatal(err)
	}
	if got := s.Position(); got != 10 {
		t.Fatalf("Position() = %d, want 10", got)
	}
}

func TestRingSinkTransferRespectsFrameSize(t *testing.T) {
	s := newTestSink(t)
	// frame size is 4 bytes (2 channels x 2-byte samples); 5 bytes is not
	// a whole number of frames, so only 4 bytes should be accepted.
	n := s.Transfer([]byte{1, 2, 3, 4, 5})
	if n != 4 {
		t.Fatalf("Transfer = %d, want 4", n)
	}
}

func TestRingSinkPullFramesZeroFillsOnUnderrun(t *testing.T) {
	s := newTestSink(t)
	s.Start()
	s.Transfer([]byte{1, 1, 1, 1}) // one frame

	buf := make([]byte, 8) // two frames requested, only one buffered
	s.PullFrames(buf)

	want := []byte{1, 1, 1, 1, 0, 0, 0, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("PullFrames output = %v, want %v", buf, want)
		}
	}
	if got := s.Position(); got != 2 {
		t.Fatalf("Position() after PullFrames = %d, want 2", got)
	}
}

func TestRingSinkStoppedPullFramesEmitsSilenceWithoutTouchingRing(t *testing.T) {
	s := newTestSink(t)
	s.Transfer([]byte{9, 9, 9, 9})

	buf := []byte{1, 2, 3, 4}
	s.PullFrames(buf)
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("expected silence while STOPPED, got %v", buf)
		}
	}
	if got := s.buf.ReadCapacity(); got != 4 {
		t.Fatalf("ring contents consumed while STOPPED: ReadCapacity = %d, want 4", got)
	}
}

func TestRingSinkTransitionsToAtEndOnceDrained(t *testing.T) {
	s := newTestSink(t)
	s.Start()
	s.Transfer([]byte{1, 1, 1, 1})
	s.SourceOut()

	buf := make([]byte, 4)
	s.PullFrames(buf) // drains the last frame, still PLAYING
	if s.State() != SinkPlaying {
		t.Fatalf("state after draining last frame = %v, want PLAYING", s.State())
	}

	s.PullFrames(buf) // ring now empty and sourced-out: transitions
	if s.State() != SinkAtEnd {
		t.Fatalf("state after drained+sourced-out pull = %v, want AT_END", s.State())
	}
}

func TestRingSinkTransferRefusedAtEnd(t *testing.T) {
	s := newTestSink(t)
	s.state.Store(uint32(SinkAtEnd))
	if n := s.Transfer([]byte{1, 2, 3, 4}); n != 0 {
		t.Fatalf("Transfer at AT_END = %d, want 0", n)
	}
}
